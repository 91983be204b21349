// Package filewatch cancels contexts on file changes.
//
// footprintweb uses it to quit (and get restarted by its supervisor) when the seed
// catalog or the configuration file is rewritten.
package filewatch

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// ModifiedError is the cancel cause of a context returned by UntilModified.
type ModifiedError struct {
	Path string
	Op   fsnotify.Op
}

func (m *ModifiedError) Error() string {
	return fmt.Sprintf("%s is updated (%s)", m.Path, m.Op.String())
}

// UntilModified returns a context that is canceled when any of paths is written,
// created, removed or renamed.
//
// The cause of the cancellation (context.Cause) is a *ModifiedError.
// When paths are directories, changes of files in them are also reported.
//
// If err is not nil, both of the context and the cancel func are nil.
func UntilModified(ctx context.Context, paths ...string) (context.Context, context.CancelFunc, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	for _, p := range paths {
		if err := w.Add(p); err != nil {
			w.Close()
			return nil, nil, err
		}
	}

	cctx, cancel := context.WithCancelCause(ctx)
	go func() {
		defer w.Close()
		for {
			select {
			case <-cctx.Done():
				return
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				cancel(err)
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op == fsnotify.Chmod {
					continue
				}
				cancel(&ModifiedError{Path: ev.Name, Op: ev.Op})
				return
			}
		}
	}()

	return cctx, func() { cancel(nil) }, nil
}
