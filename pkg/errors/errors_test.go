package errors_test

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	xe "github.com/opst/footprintweb/pkg/errors"
)

type rootErr struct{}

func (rootErr) Error() string {
	return "root cause for test"
}

func createError(message string) error {
	return xe.New(message)
}

func passThrough(err error) error {
	return xe.Wrapf(err, "passing %s", "through")
}

func TestNew(t *testing.T) {
	t.Run("it knows the location where it is created", func(t *testing.T) {
		testee := createError("test error")
		message := testee.Error()

		_, thisFile, _, _ := runtime.Caller(0)

		if !strings.Contains(message, "createError") {
			t.Errorf("it does not know function name: %s", message)
		}
		if !strings.Contains(message, thisFile) {
			t.Errorf("it does not know file (%s): %s", thisFile, message)
		}
	})
}

func TestWrap(t *testing.T) {
	t.Run("it supports errors protocol", func(t *testing.T) {
		err := xe.Wrap(fmt.Errorf("%w", fmt.Errorf("%w", rootErr{})))

		if !errors.Is(err, rootErr{}) {
			t.Error("it does not support unwrapping.")
		}
	})

	t.Run("it keeps nil as nil", func(t *testing.T) {
		if err := xe.Wrap(nil); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if err := xe.Wrapf(nil, "note"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("it records the note", func(t *testing.T) {
		err := passThrough(rootErr{})
		if !strings.Contains(err.Error(), "(passing through)") {
			t.Errorf("note is missing: %s", err)
		}
	})
}

func TestFrames(t *testing.T) {
	t.Run("it lists frames outermost first", func(t *testing.T) {
		err := xe.Wrap(passThrough(createError("deep")))

		frames := xe.Frames(err)
		if len(frames) != 3 {
			t.Fatalf("unexpected frames: %v", frames)
		}
		if !strings.HasSuffix(frames[0].Func, "TestFrames.func1") {
			t.Errorf("unexpected outermost frame: %s", frames[0])
		}
		if !strings.HasSuffix(frames[1].Func, "passThrough") {
			t.Errorf("unexpected middle frame: %s", frames[1])
		}
		if !strings.HasSuffix(frames[2].Func, "createError") {
			t.Errorf("unexpected innermost frame: %s", frames[2])
		}
	})
}
