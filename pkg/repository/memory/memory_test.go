package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/opst/footprintweb/pkg/domain/catalog"
	"github.com/opst/footprintweb/pkg/graph"
	"github.com/opst/footprintweb/pkg/repository/memory"
	"github.com/opst/footprintweb/pkg/repository/testsuite"
	"github.com/opst/footprintweb/pkg/utils/try"
)

func TestProvider(t *testing.T) {
	testsuite.Run(t, memory.New())
}

func TestProvider_Clock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.October, 1, 12, 0, 0, 0, time.UTC)
	testee := memory.New(memory.WithClock(func() time.Time { return now }))

	doc := graph.New(catalog.Builtin()).Document()
	try.To(testee.Open("old").Save(ctx, doc)).OrFatal(t)
	now = now.Add(time.Hour)
	try.To(testee.Open("new").Save(ctx, doc)).OrFatal(t)

	expired := try.To(testee.Expire(ctx, now.Add(-time.Minute))).OrFatal(t)
	if len(expired) != 1 || expired[0] != "old" {
		t.Errorf("unexpected expiration: %v", expired)
	}
}

func TestProvider_LoadedDocumentsAreCopies(t *testing.T) {
	ctx := context.Background()
	testee := memory.New().Open("session")
	try.To(testee.Save(ctx, graph.New(catalog.Builtin()).Document())).OrFatal(t)

	loaded := try.To(testee.Get(ctx)).OrFatal(t)
	loaded.Revision = 42

	again := try.To(testee.Get(ctx)).OrFatal(t)
	if again.Revision != 1 {
		t.Errorf("saved document is changed: revision %d", again.Revision)
	}
}
