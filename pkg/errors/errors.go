// Package errors annotates errors with the place where they are passed through.
//
// Usage:
//
//	return xe.Wrap(err)
//
// The message of an annotated error looks like
//
//	@ pkg.Func "file.go" l12 <- @ pkg.Other "other.go" l40 <- root cause
//
// so reading it from left to right follows the call path back to the root cause.
// Use Frames to get the path as values, for example to log it line by line.
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// Frame is a location an error passed through.
type Frame struct {
	Func string
	File string
	Line int
}

func (f Frame) String() string {
	return fmt.Sprintf(`%s "%s" l%d`, f.Func, f.File, f.Line)
}

// Annotated is an error with the Frame where it was wrapped.
type Annotated struct {
	frame Frame
	note  string
	err   error
}

func (e *Annotated) Frame() Frame {
	return e.frame
}

func (e *Annotated) Error() string {
	if e.note == "" {
		return fmt.Sprintf("@ %s <- %s", e.frame, e.err.Error())
	}
	return fmt.Sprintf("@ %s (%s) <- %s", e.frame, e.note, e.err.Error())
}

func (e *Annotated) Unwrap() error {
	return e.err
}

// New creates an annotated error with the text.
func New(text string) error {
	return annotate("", errors.New(text), 1)
}

// Wrap annotates err with the caller's location.
//
// Wrap(nil) is nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return annotate("", err, 1)
}

// Wrapf annotates err with the caller's location and a formatted note.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return annotate(fmt.Sprintf(format, args...), err, 1)
}

// Frames lists the locations err passed through, outermost first.
func Frames(err error) []Frame {
	frames := []Frame{}
	for err != nil {
		if a, ok := err.(*Annotated); ok {
			frames = append(frames, a.frame)
		}
		err = errors.Unwrap(err)
	}
	return frames
}

func annotate(note string, err error, depth int) error {
	pc, file, line, ok := runtime.Caller(depth + 1)
	if !ok {
		file = "?"
		line = -1
	}
	funcname := "(unknown func)"
	if fn := runtime.FuncForPC(pc); fn != nil {
		funcname = fn.Name()
	}

	return &Annotated{
		frame: Frame{Func: funcname, File: file, Line: line},
		note:  note,
		err:   err,
	}
}
