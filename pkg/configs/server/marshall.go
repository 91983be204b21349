package server

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// minimum length of session keys, in bytes.
const minKeyLength = 32

type Marshalled[S any] interface {
	trySeal(string) S
}

// TrySeal seals a marshalled configuration.
//
// It PANICS when misconfiguration is found. The panic value tells the path of it.
func TrySeal[S any](conf Marshalled[S]) S {
	return conf.trySeal("(root)")
}

// ServerConfigMarshall is the mutable form of ServerConfig, read from yaml.
type ServerConfigMarshall struct {
	Port         int32                       `yaml:"port"`
	Database     string                      `yaml:"database,omitempty"`
	Seeds        string                      `yaml:"seeds,omitempty"`
	Session      *SessionConfigMarshall      `yaml:"session"`
	Housekeeping *HousekeepingConfigMarshall `yaml:"housekeeping,omitempty"`
}

var _ Marshalled[*ServerConfig] = &ServerConfigMarshall{}

func (m *ServerConfigMarshall) trySeal(path string) *ServerConfig {
	hk := m.Housekeeping
	if hk == nil {
		hk = &HousekeepingConfigMarshall{}
	}
	return &ServerConfig{
		port:         required(m.Port, path+".port"),
		database:     m.Database,
		seeds:        m.Seeds,
		session:      nonnil(m.Session, path+".session").trySeal(path + ".session"),
		housekeeping: hk.trySeal(path + ".housekeeping"),
	}
}

type SessionConfigMarshall struct {
	Cookie string `yaml:"cookie,omitempty"`
	Key    string `yaml:"key"`
	TTL    string `yaml:"ttl,omitempty"`
}

func (m *SessionConfigMarshall) trySeal(path string) *SessionConfig {
	key := required(m.Key, path+".key")
	if len(key) < minKeyLength {
		panic(fmt.Sprintf("%s.key should be %d bytes or longer", path, minKeyLength))
	}
	cookie := m.Cookie
	if cookie == "" {
		cookie = "footprintweb-session"
	}
	return &SessionConfig{
		cookie: cookie,
		key:    []byte(key),
		ttl:    duration(m.TTL, 24*time.Hour, path+".ttl"),
	}
}

type HousekeepingConfigMarshall struct {
	Interval string `yaml:"interval,omitempty"`
	Idle     string `yaml:"idle,omitempty"`
}

func (m *HousekeepingConfigMarshall) trySeal(path string) *HousekeepingConfig {
	return &HousekeepingConfig{
		interval: duration(m.Interval, time.Hour, path+".interval"),
		idle:     duration(m.Idle, 7*24*time.Hour, path+".idle"),
	}
}

func nonnil[T any](v *T, path string) *T {
	if v == nil {
		panic(path + " is required")
	}
	return v
}

func required[T comparable](v T, path string) T {
	if v == *new(T) {
		panic(path + " is required")
	}
	return v
}

// duration parses s, or gives def for "". Durations should be positive.
func duration(s string, def time.Duration, path string) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(fmt.Errorf("%s can not be parsed: %w", path, err))
	}
	if d <= 0 {
		panic(path + " should be positive")
	}
	return d
}

// Load reads a configuration file.
func Load(filepath string) (*ServerConfig, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	return Unmarshal(content)
}

// Unmarshal reads a yaml configuration. Misconfiguration is returned as an error.
func Unmarshal(conf []byte) (out *ServerConfig, err error) {
	var m *ServerConfigMarshall
	if err := yaml.Unmarshal(conf, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = &ServerConfigMarshall{}
	}
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("config: %v", r)
		}
	}()
	return TrySeal(m), nil
}
