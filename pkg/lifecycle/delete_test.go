package lifecycle_test

import (
	"errors"
	"testing"

	"github.com/opst/footprintweb/pkg/cmp"
	"github.com/opst/footprintweb/pkg/domain"
	"github.com/opst/footprintweb/pkg/domain/catalog"
	domerr "github.com/opst/footprintweb/pkg/domain/errors"
	"github.com/opst/footprintweb/pkg/forms"
	"github.com/opst/footprintweb/pkg/graph"
	"github.com/opst/footprintweb/pkg/lifecycle"
	"github.com/opst/footprintweb/pkg/utils/try"
)

func step(t *testing.T, cat *catalog.Catalog, store *graph.Store, name string) *domain.Object {
	t.Helper()
	s := try.To(cat.Construct("UsageJourneyStep", map[string]domain.Value{"name": domain.Text(name)})).OrFatal(t)
	add(t, store, s)
	return s
}

func directJob(t *testing.T, testee *lifecycle.Orchestrator, store *graph.Store, server *domain.Object, container *domain.Object) *domain.Object {
	t.Helper()
	req := lifecycle.CreateRequest{
		Class: "JobBase",
		Payload: form(
			forms.TypeSelectorID, "Job",
			forms.ParentFieldID, server.ID(),
			forms.IntermediateFieldID, forms.DirectCallPrefix+server.ID(),
		),
	}
	if container != nil {
		req.ParentID = container.ID()
	}
	return get(t, store, try.To(testee.Create(store, req)).OrFatal(t).ID)
}

func has(store *graph.Store, id string) bool {
	_, ok := store.Lookup(id)
	return ok
}

func TestDelete_Cascade(t *testing.T) {
	cat := catalog.Builtin()
	store := graph.New(cat)
	testee := lifecycle.NewBuiltin(cat)

	server := createServer(t, testee, store, "web")
	storage := server.Ref("storage")
	s := step(t, cat, store, "browse")
	job := directJob(t, testee, store, server, s)

	res := try.To(testee.Delete(store, lifecycle.DeleteRequest{ID: server.ID()})).OrFatal(t)

	if res.Action != lifecycle.Deleted {
		t.Fatalf("unexpected action: %s (blockers: %v)", res.Action, res.Blockers)
	}
	if want := []string{job.ID(), server.ID(), storage.ID()}; !cmp.SliceEq(res.Deleted, want) {
		t.Errorf("unexpected deleted:\n- actual: %v\n- expected: %v", res.Deleted, want)
	}
	if !cmp.SliceEq(res.Updated, []string{s.ID()}) {
		t.Errorf("unexpected updated: %v", res.Updated)
	}
	if len(s.List("jobs")) != 0 {
		t.Errorf("job remains in the step: %v", s.List("jobs").IDs())
	}
	for _, id := range res.Deleted {
		if has(store, id) {
			t.Errorf("%s remains", id)
		}
	}
	if !has(store, s.ID()) {
		t.Error("step is deleted")
	}
}

func TestDelete_SharedOwnedObject(t *testing.T) {
	cat := catalog.Builtin()
	store := graph.New(cat)
	testee := lifecycle.NewBuiltin(cat)

	storage := try.To(cat.Construct("Storage", map[string]domain.Value{"name": domain.Text("shared")})).OrFatal(t)
	add(t, store, storage)
	servers := []*domain.Object{}
	for _, name := range []string{"s1", "s2", "s3"} {
		s := try.To(cat.Construct("Server", map[string]domain.Value{
			"name":    domain.Text(name),
			"storage": domain.Ref{Object: storage},
		})).OrFatal(t)
		add(t, store, s)
		servers = append(servers, s)
	}

	for i, s := range servers {
		res := try.To(testee.Delete(store, lifecycle.DeleteRequest{ID: s.ID()})).OrFatal(t)
		last := i == len(servers)-1

		want := []string{s.ID()}
		if last {
			want = append(want, storage.ID())
		}
		if !cmp.SliceEq(res.Deleted, want) {
			t.Errorf("deleting %s: unexpected deleted: %v", s.Name(), res.Deleted)
		}
		if has(store, storage.ID()) == last {
			t.Errorf("deleting %s: storage is in the graph: %v", s.Name(), !last)
		}
	}
}

// vetoHooks blocks every deletion.
type vetoHooks struct {
	lifecycle.NoopHooks
}

func (vetoHooks) CanDelete(d *lifecycle.Deletion) ([]string, error) {
	return []string{"audit of " + d.Object.Name()}, nil
}

func TestDelete_Blocked(t *testing.T) {
	cat := catalog.Builtin()

	t.Run("a storage referred by a server", func(t *testing.T) {
		store := graph.New(cat)
		testee := lifecycle.NewBuiltin(cat)
		server := createServer(t, testee, store, "web")
		storage := server.Ref("storage")

		res := try.To(testee.Delete(store, lifecycle.DeleteRequest{ID: storage.ID()})).OrFatal(t)
		if res.Action != lifecycle.Blocked || !cmp.SliceEq(res.Blockers, []string{"web"}) {
			t.Errorf("unexpected result: %+v", res)
		}
		if !has(store, storage.ID()) {
			t.Error("storage is deleted")
		}
	})

	t.Run("a usage journey referred by a usage pattern", func(t *testing.T) {
		store := graph.New(cat)
		testee := lifecycle.NewBuiltin(cat)
		journey := newJourney(t, cat, store, "journey")
		up := usagePattern(t, cat, store, journey)

		res := try.To(testee.Delete(store, lifecycle.DeleteRequest{ID: journey.ID()})).OrFatal(t)
		if res.Action != lifecycle.Blocked || !cmp.SliceEq(res.Blockers, []string{up.Name()}) {
			t.Errorf("unexpected result: %+v", res)
		}
	})

	t.Run("a cascade stops at what hooks keep", func(t *testing.T) {
		store := graph.New(cat)
		testee := lifecycle.NewBuiltin(cat, lifecycle.WithHooks("JobBase", vetoHooks{}))
		server := createServer(t, testee, store, "web")
		job := directJob(t, testee, store, server, nil)
		before := len(store.Objects())

		res := try.To(testee.Delete(store, lifecycle.DeleteRequest{ID: server.ID()})).OrFatal(t)
		if res.Action != lifecycle.Blocked || !cmp.SliceEq(res.Blockers, []string{"audit of " + job.Name()}) {
			t.Errorf("unexpected result: %+v", res)
		}
		if len(store.Objects()) != before {
			t.Errorf("graph is modified: %d objects", len(store.Objects()))
		}
	})
}

func TestDelete_FromContainer(t *testing.T) {
	cat := catalog.Builtin()
	store := graph.New(cat)
	testee := lifecycle.NewBuiltin(cat)

	server := createServer(t, testee, store, "web")
	s1 := step(t, cat, store, "browse")
	s2 := step(t, cat, store, "buy")
	job := directJob(t, testee, store, server, s1)
	s2.Set("jobs", domain.RefList{job})

	t.Run("it unlinks from the container only", func(t *testing.T) {
		res := try.To(testee.Delete(store, lifecycle.DeleteRequest{ID: job.ID(), FromContainerID: s1.ID()})).OrFatal(t)

		if res.Action != lifecycle.RemovedFromContainer {
			t.Errorf("unexpected action: %s", res.Action)
		}
		if !cmp.SliceEq(res.WebIDs, []string{s1.ID() + "_" + job.ID()}) {
			t.Errorf("unexpected web ids: %v", res.WebIDs)
		}
		if !cmp.SliceEq(res.Updated, []string{s1.ID()}) {
			t.Errorf("unexpected updated: %v", res.Updated)
		}
		if s1.List("jobs").Contains(job.ID()) || !s2.List("jobs").Contains(job.ID()) {
			t.Errorf("unexpected lists: %v, %v", s1.List("jobs").IDs(), s2.List("jobs").IDs())
		}
		if !has(store, job.ID()) {
			t.Error("job is deleted")
		}
	})

	t.Run("an object not in the container", func(t *testing.T) {
		_, err := testee.Delete(store, lifecycle.DeleteRequest{ID: job.ID(), FromContainerID: s1.ID()})
		var verr *domerr.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("a full deletion unlinks from every container", func(t *testing.T) {
		s1.Set("jobs", domain.RefList{job})

		res := try.To(testee.Delete(store, lifecycle.DeleteRequest{ID: job.ID()})).OrFatal(t)
		if !cmp.SliceEq(res.Deleted, []string{job.ID()}) {
			t.Errorf("unexpected deleted: %v", res.Deleted)
		}
		if !cmp.SliceContentEq(res.Updated, []string{s1.ID(), s2.ID()}) {
			t.Errorf("unexpected updated: %v", res.Updated)
		}
		if !has(store, server.ID()) {
			t.Error("server is deleted")
		}
	})
}

func TestDelete_ExternalAPI(t *testing.T) {
	cat := catalog.Builtin()
	store := graph.New(cat)
	testee := lifecycle.NewBuiltin(cat)

	created := try.To(testee.Create(store, lifecycle.CreateRequest{
		Class: "ExternalAPI", Payload: form("ExternalAPI_name", "assistant", "ExternalAPI_model_name", "mistral-small"),
	})).OrFatal(t)
	server := get(t, store, created.Override.ID)
	storage := server.Ref("storage")

	res := try.To(testee.Delete(store, lifecycle.DeleteRequest{ID: created.ID})).OrFatal(t)
	if want := []string{created.ID, server.ID(), storage.ID()}; !cmp.SliceEq(res.Deleted, want) {
		t.Errorf("unexpected deleted:\n- actual: %v\n- expected: %v", res.Deleted, want)
	}
	if len(store.Objects()) != 0 {
		t.Errorf("objects remain: %d", len(store.Objects()))
	}
}

func TestDelete_Missing(t *testing.T) {
	cat := catalog.Builtin()
	testee := lifecycle.NewBuiltin(cat)
	_, err := testee.Delete(graph.New(cat), lifecycle.DeleteRequest{ID: "nothing"})
	if !errors.Is(err, domerr.ErrMissing) {
		t.Errorf("unexpected error: %v", err)
	}
}
