// Package testsuite checks behaviors every repository.Provider should have.
package testsuite

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/opst/footprintweb/pkg/domain"
	"github.com/opst/footprintweb/pkg/domain/catalog"
	"github.com/opst/footprintweb/pkg/graph"
	"github.com/opst/footprintweb/pkg/repository"
	"github.com/opst/footprintweb/pkg/utils/try"
)

func document(t *testing.T, names ...string) *graph.Document {
	t.Helper()
	cat := catalog.Builtin()
	store := graph.New(cat)
	for _, name := range names {
		obj := try.To(cat.Construct("Storage", map[string]domain.Value{"name": domain.Text(name)})).OrFatal(t)
		if _, _, err := store.Add(obj); err != nil {
			t.Fatal(err)
		}
	}
	return store.Document()
}

func names(t *testing.T, doc *graph.Document) []string {
	t.Helper()
	store := try.To(graph.Load(catalog.Builtin(), doc)).OrFatal(t)
	ret := []string{}
	for _, o := range store.Objects() {
		ret = append(ret, o.Name())
	}
	return ret
}

// Run checks provider. Each subtest opens its own session.
func Run(t *testing.T, provider repository.Provider) {
	ctx := context.Background()
	session := func() repository.Interface {
		return provider.Open("test-" + uuid.NewString())
	}

	t.Run("a new session has nothing", func(t *testing.T) {
		testee := session()
		if doc := try.To(testee.Get(ctx)).OrFatal(t); doc != nil {
			t.Errorf("unexpected document: %+v", doc)
		}
		if try.To(testee.HasData(ctx)).OrFatal(t) {
			t.Error("it has data")
		}
		if err := testee.Clear(ctx); err != nil {
			t.Errorf("clearing nothing: %v", err)
		}
	})

	t.Run("saved documents are loaded with new revisions", func(t *testing.T) {
		testee := session()
		rev := try.To(testee.Save(ctx, document(t, "a"))).OrFatal(t)
		if rev != 1 {
			t.Errorf("unexpected revision: %d", rev)
		}
		loaded := try.To(testee.Get(ctx)).OrFatal(t)
		if loaded.Revision != 1 || !slices.Equal(names(t, loaded), []string{"a"}) {
			t.Errorf("unexpected document: revision %d, %v", loaded.Revision, names(t, loaded))
		}

		next := document(t, "a", "b")
		next.Revision = loaded.Revision
		if rev := try.To(testee.Save(ctx, next)).OrFatal(t); rev != 2 {
			t.Errorf("unexpected revision: %d", rev)
		}
		loaded = try.To(testee.Get(ctx)).OrFatal(t)
		if loaded.Revision != 2 || !slices.Equal(names(t, loaded), []string{"a", "b"}) {
			t.Errorf("unexpected document: revision %d, %v", loaded.Revision, names(t, loaded))
		}
		if !try.To(testee.HasData(ctx)).OrFatal(t) {
			t.Error("it has no data")
		}
	})

	t.Run("a stale save is a conflict", func(t *testing.T) {
		testee := session()
		try.To(testee.Save(ctx, document(t, "a"))).OrFatal(t)

		for name, revision := range map[string]int64{"first save again": 0, "future": 5} {
			t.Run(name, func(t *testing.T) {
				stale := document(t, "x")
				stale.Revision = revision
				if _, err := testee.Save(ctx, stale); !errors.Is(err, repository.ErrConflict) {
					t.Errorf("unexpected error: %v", err)
				}
				loaded := try.To(testee.Get(ctx)).OrFatal(t)
				if loaded.Revision != 1 || !slices.Equal(names(t, loaded), []string{"a"}) {
					t.Errorf("document is changed: revision %d, %v", loaded.Revision, names(t, loaded))
				}
			})
		}
	})

	t.Run("sessions are isolated", func(t *testing.T) {
		one, other := session(), session()
		try.To(one.Save(ctx, document(t, "a"))).OrFatal(t)
		if try.To(other.HasData(ctx)).OrFatal(t) {
			t.Error("another session has data")
		}
	})

	t.Run("cleared session starts over", func(t *testing.T) {
		testee := session()
		try.To(testee.Save(ctx, document(t, "a"))).OrFatal(t)
		if err := testee.Clear(ctx); err != nil {
			t.Fatal(err)
		}
		if try.To(testee.HasData(ctx)).OrFatal(t) {
			t.Error("it has data")
		}
		if rev := try.To(testee.Save(ctx, document(t, "b"))).OrFatal(t); rev != 1 {
			t.Errorf("unexpected revision: %d", rev)
		}
	})

	t.Run("expiration removes documents saved before", func(t *testing.T) {
		id := "test-" + uuid.NewString()
		testee := provider.Open(id)
		try.To(testee.Save(ctx, document(t, "a"))).OrFatal(t)

		expired := try.To(provider.Expire(ctx, time.Now().Add(-24*time.Hour))).OrFatal(t)
		if slices.Contains(expired, id) {
			t.Errorf("fresh session is expired: %v", expired)
		}
		expired = try.To(provider.Expire(ctx, time.Now().Add(time.Hour))).OrFatal(t)
		if !slices.Contains(expired, id) {
			t.Errorf("session is not expired: %v", expired)
		}
		if try.To(testee.HasData(ctx)).OrFatal(t) {
			t.Error("expired session has data")
		}
	})
}
