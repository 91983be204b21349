package server_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/opst/footprintweb/pkg/configs/server"
)

func TestUnmarshal(t *testing.T) {
	t.Run("it loads config from yaml: ", func(t *testing.T) {
		conf := []byte(`
port: 8080
database: postgres://footprint@db.example.com/footprint
seeds: /etc/footprintweb/seeds.yaml
session:
  cookie: fp-session
  key: 0123456789abcdef0123456789abcdef
  ttl: 2h
housekeeping:
  interval: 10m
  idle: 48h
`)
		result, err := server.Unmarshal(conf)
		if err != nil {
			t.Fatalf("failed to parse config.: %v", err)
		}

		if actual := result.Port(); actual != 8080 {
			t.Errorf(".port: %d", actual)
		}
		if actual := result.Database(); actual != "postgres://footprint@db.example.com/footprint" {
			t.Errorf(".database: %s", actual)
		}
		if actual := result.Seeds(); actual != "/etc/footprintweb/seeds.yaml" {
			t.Errorf(".seeds: %s", actual)
		}
		if actual := result.Session().Cookie(); actual != "fp-session" {
			t.Errorf(".session.cookie: %s", actual)
		}
		if actual := result.Session().Key(); !bytes.Equal(actual, []byte("0123456789abcdef0123456789abcdef")) {
			t.Errorf(".session.key: %s", actual)
		}
		if actual := result.Session().TTL(); actual != 2*time.Hour {
			t.Errorf(".session.ttl: %s", actual)
		}
		if actual := result.Housekeeping().Interval(); actual != 10*time.Minute {
			t.Errorf(".housekeeping.interval: %s", actual)
		}
		if actual := result.Housekeeping().Idle(); actual != 48*time.Hour {
			t.Errorf(".housekeeping.idle: %s", actual)
		}
	})

	t.Run("it fills defaults", func(t *testing.T) {
		result, err := server.Unmarshal([]byte(`
port: 8080
session:
  key: 0123456789abcdef0123456789abcdef
`))
		if err != nil {
			t.Fatal(err)
		}
		if result.Database() != "" || result.Seeds() != "" {
			t.Errorf("unexpected optionals: %q, %q", result.Database(), result.Seeds())
		}
		if actual := result.Session().Cookie(); actual != "footprintweb-session" {
			t.Errorf(".session.cookie: %s", actual)
		}
		if actual := result.Session().TTL(); actual != 24*time.Hour {
			t.Errorf(".session.ttl: %s", actual)
		}
		if actual := result.Housekeeping().Interval(); actual != time.Hour {
			t.Errorf(".housekeeping.interval: %s", actual)
		}
		if actual := result.Housekeeping().Idle(); actual != 7*24*time.Hour {
			t.Errorf(".housekeeping.idle: %s", actual)
		}
	})

	for name, testcase := range map[string]struct {
		yaml     string
		contains string
	}{
		"empty": {
			yaml:     ``,
			contains: "(root).port is required",
		},
		"no session": {
			yaml:     "port: 8080\n",
			contains: "(root).session is required",
		},
		"no key": {
			yaml:     "port: 8080\nsession:\n  ttl: 1h\n",
			contains: "(root).session.key is required",
		},
		"short key": {
			yaml:     "port: 8080\nsession:\n  key: short\n",
			contains: "(root).session.key should be 32 bytes or longer",
		},
		"broken duration": {
			yaml:     "port: 8080\nsession:\n  key: 0123456789abcdef0123456789abcdef\n  ttl: soon\n",
			contains: "(root).session.ttl can not be parsed",
		},
		"negative duration": {
			yaml:     "port: 8080\nsession:\n  key: 0123456789abcdef0123456789abcdef\nhousekeeping:\n  idle: -1h\n",
			contains: "(root).housekeeping.idle should be positive",
		},
	} {
		t.Run("it rejects misconfiguration: "+name, func(t *testing.T) {
			_, err := server.Unmarshal([]byte(testcase.yaml))
			if err == nil {
				t.Fatal("no error")
			}
			if !strings.Contains(err.Error(), testcase.contains) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}

	t.Run("it rejects broken yaml", func(t *testing.T) {
		if _, err := server.Unmarshal([]byte("port: [")); err == nil {
			t.Error("no error")
		}
	})
}

func TestTrySeal(t *testing.T) {
	t.Run("it panics with path of misconfiguration", func(t *testing.T) {
		defer func() {
			r := recover()
			if r == nil {
				t.Fatal("not panicked")
			}
			if msg, ok := r.(string); !ok || msg != "(root).session is required" {
				t.Errorf("unexpected panic: %v", r)
			}
		}()
		server.TrySeal[*server.ServerConfig](&server.ServerConfigMarshall{Port: 8080})
	})
}

func TestLoad(t *testing.T) {
	t.Run("it loads a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "footprintweb.yaml")
		content := "port: 9000\nsession:\n  key: 0123456789abcdef0123456789abcdef\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		result, err := server.Load(path)
		if err != nil {
			t.Fatal(err)
		}
		if result.Port() != 9000 {
			t.Errorf("unexpected port: %d", result.Port())
		}
	})

	t.Run("it returns an error for missing files", func(t *testing.T) {
		if _, err := server.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Error("no error")
		}
	})
}
