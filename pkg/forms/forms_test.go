package forms_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/goccy/go-json"
	"github.com/opst/footprintweb/pkg/cmp"
	"github.com/opst/footprintweb/pkg/domain"
	"github.com/opst/footprintweb/pkg/domain/catalog"
	domerr "github.com/opst/footprintweb/pkg/domain/errors"
	"github.com/opst/footprintweb/pkg/forms"
	"github.com/opst/footprintweb/pkg/graph"
	"github.com/opst/footprintweb/pkg/utils/slices"
	"github.com/opst/footprintweb/pkg/utils/try"
)

type recordingLogger struct {
	warnings []string
}

func (r *recordingLogger) Warnf(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

func construct(t *testing.T, store *graph.Store, class string, values map[string]domain.Value) *domain.Object {
	t.Helper()
	obj := try.To(store.Catalog().Construct(class, values)).OrFatal(t)
	if _, _, err := store.Add(obj); err != nil {
		t.Fatal(err)
	}
	return obj
}

func seed(t *testing.T, store *graph.Store, id string) *domain.Object {
	t.Helper()
	return try.To(store.GetByID(id)).OrFatal(t).Object()
}

func server(t *testing.T, store *graph.Store, class string, name string) *domain.Object {
	t.Helper()
	storage := try.To(store.Catalog().Construct("Storage", map[string]domain.Value{
		"name": domain.Text(name + " storage"),
	})).OrFatal(t)
	return construct(t, store, class, map[string]domain.Value{
		"name":    domain.Text(name),
		"storage": domain.Ref{Object: storage},
	})
}

func values(opts []forms.Option) []string {
	return slices.Map(opts, func(o forms.Option) string { return o.Value })
}

func entry(t *testing.T, fc *forms.FormContext, fieldID string) *forms.DynamicEntry {
	t.Helper()
	for _, d := range fc.Dynamic {
		if d.FieldID() == fieldID {
			return d
		}
	}
	t.Fatalf("no dynamic entry for %s", fieldID)
	return nil
}

func field(t *testing.T, st *forms.Structure, id string) *forms.Field {
	t.Helper()
	f, ok := st.Field(id)
	if !ok {
		t.Fatalf("no field %s", id)
	}
	return f
}

func TestSignature(t *testing.T) {
	t.Run("name comes first and excluded parameters are skipped", func(t *testing.T) {
		testee := forms.NewBuilder(catalog.Builtin(), forms.BuiltinConfig())
		sig := try.To(testee.Signature("GPUServer")).OrFatal(t)

		keys := sig.Keys()
		if keys[0] != "name" {
			t.Errorf("unexpected first parameter: %s", keys[0])
		}
		if _, ok := sig.Get("storage"); ok {
			t.Error("excluded parameter is in signature")
		}
		if _, ok := sig.Get("nb_gpus_per_instance"); !ok {
			t.Error("parameter of subclass is not in signature")
		}
	})

	cat := catalog.MustNew(&domain.Type{
		Name:   "Widget",
		Params: []domain.Param{{Name: "mystery", Kind: domain.Unresolved}},
	})

	for name, testcase := range map[string]struct {
		fallback     bool
		wantError    bool
		wantWarnings int
	}{
		"unresolved parameter is a configuration error": {fallback: false, wantError: true},
		"unresolved parameter is read as text with a warning": {fallback: true, wantWarnings: 1},
	} {
		t.Run(name, func(t *testing.T) {
			logger := &recordingLogger{}
			testee := forms.NewBuilder(
				cat,
				&forms.Config{Labels: map[string]string{"Widget": "Widget"}, TextFallback: testcase.fallback},
				forms.WithLogger(logger),
			)
			sig, err := testee.Signature("Widget")
			if testcase.wantError {
				var cerr *domerr.ConfigurationError
				if !errors.As(err, &cerr) {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			p, _ := sig.Get("mystery")
			if p.Kind != domain.KindText {
				t.Errorf("unexpected kind: %s", p.Kind)
			}
			if len(logger.warnings) != testcase.wantWarnings {
				t.Errorf("unexpected warnings: %v", logger.warnings)
			}
		})
	}
}

func TestCollapse(t *testing.T) {
	a := forms.Option{Value: "a", Label: "A"}
	b := forms.Option{Value: "b", Label: "B"}
	c := forms.Option{Value: "c", Label: "C"}

	type when struct {
		selected   []forms.Option
		unselected []forms.Option
	}
	type then struct {
		value   string
		options []string
	}
	for name, testcase := range map[string]struct {
		when when
		then then
	}{
		"on creation, the first unselected option is chosen": {
			when: when{selected: []forms.Option{}, unselected: []forms.Option{a, b, c}},
			then: then{value: "a", options: []string{"a", "b", "c"}},
		},
		"on edition, the selected option is chosen and comes first": {
			when: when{selected: []forms.Option{b}, unselected: []forms.Option{a, c}},
			then: then{value: "b", options: []string{"b", "a", "c"}},
		},
		"with many selections, the first one is kept": {
			when: when{selected: []forms.Option{c, a}, unselected: []forms.Option{b}},
			then: then{value: "c", options: []string{"c", "a", "b"}},
		},
	} {
		t.Run(name, func(t *testing.T) {
			got := try.To(forms.Collapse(forms.Field{
				ID:         "UsagePattern_devices",
				InputType:  forms.InputSelectMultiple,
				Selected:   testcase.when.selected,
				Unselected: testcase.when.unselected,
			})).OrFatal(t)

			if got.InputType != forms.InputSelectObject {
				t.Errorf("unexpected input type: %s", got.InputType)
			}
			if got.Value != testcase.then.value {
				t.Errorf("unexpected value: %v", got.Value)
			}
			if len(got.Selected) != 1 || got.Selected[0].Value != testcase.then.value {
				t.Errorf("unexpected selection: %v", got.Selected)
			}
			if !cmp.SliceEq(values(got.Options), testcase.then.options) {
				t.Errorf("unexpected options: %v", values(got.Options))
			}
			if len(got.Unselected) != 0 {
				t.Errorf("unselected options remain: %v", got.Unselected)
			}
		})
	}

	t.Run("a single selection cannot be collapsed", func(t *testing.T) {
		_, err := forms.Collapse(forms.Field{InputType: forms.InputSelectObject})
		var cerr *domerr.ConfigurationError
		if !errors.As(err, &cerr) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestCreationContext_UsagePattern(t *testing.T) {
	cat := catalog.Builtin()

	t.Run("it requires a usage journey", func(t *testing.T) {
		testee := forms.NewBuilder(cat, forms.BuiltinConfig())
		_, err := testee.CreationContext("UsagePattern", forms.ContextRequest{}, graph.New(cat))
		var verr *domerr.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("a reference without candidate is a configuration error", func(t *testing.T) {
		config := forms.BuiltinConfig()
		tc := config.Types["UsagePattern"]
		tc.Requires = nil
		config.Types["UsagePattern"] = tc
		testee := forms.NewBuilder(cat, config)

		_, err := testee.CreationContext("UsagePattern", forms.ContextRequest{}, graph.New(cat))
		var cerr *domerr.ConfigurationError
		if !errors.As(err, &cerr) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("devices are collapsed and defaults are selected by label", func(t *testing.T) {
		store := graph.New(cat)
		construct(t, store, "UsageJourney", map[string]domain.Value{"name": domain.Text("journey")})
		testee := forms.NewBuilder(cat, forms.BuiltinConfig())

		fc := try.To(testee.CreationContext("UsagePattern", forms.ContextRequest{}, store)).OrFatal(t)
		if fc.Strategy != forms.Simple {
			t.Errorf("unexpected strategy: %s", fc.Strategy)
		}
		if fc.Structure.TypeSelector != nil {
			t.Error("single candidate form has a type selector")
		}

		devices := field(t, &fc.Structure, "UsagePattern_devices")
		if devices.InputType != forms.InputSelectObject {
			t.Errorf("devices are not collapsed: %s", devices.InputType)
		}
		if devices.Value != "device-laptop" {
			t.Errorf("unexpected device: %v", devices.Value)
		}
		if len(devices.Options) != 4 {
			t.Errorf("unexpected device options: %v", devices.Options)
		}

		for id, want := range map[string]string{
			"UsagePattern_network": "network-wifi",
			"UsagePattern_country": "country-france",
			"UsagePattern_name":    "Usage pattern 1",
		} {
			if got := field(t, &fc.Structure, id).Value; got != want {
				t.Errorf("%s: got %v, want %s", id, got, want)
			}
		}

		fields := fc.Structure.Sections[0].Fields
		if last := fields[len(fields)-1]; last.InputType != forms.InputTimeseries {
			t.Errorf("timeseries should come last: %s", last.ID)
		}
		if !field(t, &fc.Structure, "UsagePattern_extra").Advanced {
			t.Error("advanced field is not marked")
		}
	})

	t.Run("re-assembly is idempotent and leaves the graph as it is", func(t *testing.T) {
		store := graph.New(cat)
		construct(t, store, "UsageJourney", map[string]domain.Value{"name": domain.Text("journey")})
		testee := forms.NewBuilder(cat, forms.BuiltinConfig())

		first := try.To(testee.CreationContext("UsagePattern", forms.ContextRequest{}, store)).OrFatal(t)
		second := try.To(testee.CreationContext("UsagePattern", forms.ContextRequest{}, store)).OrFatal(t)

		a := try.To(json.Marshal(first)).OrFatal(t)
		b := try.To(json.Marshal(second)).OrFatal(t)
		if string(a) != string(b) {
			t.Errorf("forms differ:\n%s\n%s", a, b)
		}
		if len(store.Objects()) != 1 {
			t.Errorf("graph is modified: %d objects", len(store.Objects()))
		}
	})
}

func TestEditionContext_UsagePattern(t *testing.T) {
	cat := catalog.Builtin()
	store := graph.New(cat)
	journey := construct(t, store, "UsageJourney", map[string]domain.Value{"name": domain.Text("journey")})
	pattern := construct(t, store, "UsagePattern", map[string]domain.Value{
		"name":          domain.Text("mobile users"),
		"usage_journey": domain.Ref{Object: journey},
		"devices":       domain.RefList{seed(t, store, "device-smartphone")},
		"network":       domain.Ref{Object: seed(t, store, "network-mobile")},
		"country":       domain.Ref{Object: seed(t, store, "country-germany")},
	})
	testee := forms.NewBuilder(cat, forms.BuiltinConfig())

	fc := try.To(testee.EditionContext(pattern.ID(), store)).OrFatal(t)
	if fc.ObjectID != pattern.ID() {
		t.Errorf("unexpected object id: %s", fc.ObjectID)
	}

	devices := field(t, &fc.Structure, "UsagePattern_devices")
	if devices.Value != "device-smartphone" {
		t.Errorf("unexpected device: %v", devices.Value)
	}
	if got := values(devices.Options); !cmp.SliceEq(
		got, []string{"device-smartphone", "device-laptop", "device-screen", "device-box"},
	) {
		t.Errorf("unexpected options: %v", got)
	}
	if got := field(t, &fc.Structure, "UsagePattern_country").Value; got != "country-germany" {
		t.Errorf("default label overrides current value: %v", got)
	}
	if got := field(t, &fc.Structure, "UsagePattern_name").Value; got != "mobile users" {
		t.Errorf("unexpected name: %v", got)
	}

	if _, err := testee.EditionContext("id-nothing", store); !errors.Is(err, domerr.ErrMissing) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestEditionContext_Seed(t *testing.T) {
	cat := catalog.Builtin()
	store := graph.New(cat)
	testee := forms.NewBuilder(cat, forms.BuiltinConfig())

	fc := try.To(testee.EditionContext("country-france", store)).OrFatal(t)
	if fc.ObjectID != "country-france" {
		t.Errorf("unexpected object id: %s", fc.ObjectID)
	}
	if store.Dirty() {
		t.Error("graph is marked dirty by reading a form")
	}
	if len(store.Objects()) != 0 {
		t.Errorf("seed becomes a member: %d objects", len(store.Objects()))
	}
}

func TestField_Number(t *testing.T) {
	cat := catalog.Builtin()
	testee := forms.NewBuilder(cat, forms.BuiltinConfig())

	type then struct {
		value         float64
		step          float64
		canBeNegative bool
	}

	for name, testcase := range map[string]struct {
		class string
		attr  string
		when  domain.Quantity
		then  then
	}{
		"values are rounded to 2 decimals": {
			class: "Job", attr: "ram_needed",
			when: domain.Quantity{Value: 1.234, Unit: "MB"},
			then: then{value: 1.23, step: 0.01},
		},
		"integral values step by 1": {
			class: "Job", attr: "ram_needed",
			when: domain.Quantity{Value: 2.004, Unit: "MB"},
			then: then{value: 2, step: 1},
		},
		"recurrent needs can be negative": {
			class: "Job", attr: "data_stored",
			when: domain.Quantity{Value: -3.5, Unit: "kB"},
			then: then{value: -3.5, step: 0.01, canBeNegative: true},
		},
	} {
		t.Run(name, func(t *testing.T) {
			p, ok := cat.Param(testcase.class, testcase.attr)
			if !ok {
				t.Fatalf("no param %s of %s", testcase.attr, testcase.class)
			}
			f, _, err := testee.Field(testcase.class, p, testcase.when, graph.New(cat))
			if err != nil {
				t.Fatal(err)
			}
			if f.Value != testcase.then.value || f.Step != testcase.then.step {
				t.Errorf("unexpected number: value=%v step=%v", f.Value, f.Step)
			}
			if f.CanBeNegative != testcase.then.canBeNegative {
				t.Errorf("unexpected can_be_negative: %v", f.CanBeNegative)
			}
		})
	}
}

func TestCreationContext_Server(t *testing.T) {
	cat := catalog.Builtin()
	testee := forms.NewBuilder(cat, forms.BuiltinConfig())

	fc := try.To(testee.CreationContext("ServerBase", forms.ContextRequest{}, graph.New(cat))).OrFatal(t)
	if fc.Strategy != forms.WithCompanionObject {
		t.Errorf("unexpected strategy: %s", fc.Strategy)
	}
	if fc.Companion == nil || fc.Companion.Class != "Storage" || fc.Companion.Attribute != "storage" {
		t.Fatalf("unexpected companion: %+v", fc.Companion)
	}
	if _, ok := fc.Companion.Structure.Field("Storage_storage_capacity"); !ok {
		t.Error("companion form has no capacity")
	}

	selector := fc.Structure.TypeSelector
	if selector == nil {
		t.Fatal("no type selector")
	}
	if got := values(selector.Options); !cmp.SliceEq(got, []string{"Server", "GPUServer", "BoaviztaCloudServer"}) {
		t.Errorf("unexpected candidates: %v", got)
	}
	if selector.Value != "Server" {
		t.Errorf("unexpected selected type: %v", selector.Value)
	}
	if _, ok := fc.Structure.Field("Server_storage"); ok {
		t.Error("excluded field is shown")
	}

	instance := entry(t, fc, "BoaviztaCloudServer_instance_type")
	if instance.ControllingFieldID() != "BoaviztaCloudServer_provider" {
		t.Errorf("unexpected controller: %s", instance.ControllingFieldID())
	}
	if !cmp.SliceEq(instance.Values(), []string{"aws", "azure", "gcp", "scaleway"}) {
		t.Errorf("unexpected controlling values: %v", instance.Values())
	}
	if got := field(t, &fc.Structure, "BoaviztaCloudServer_instance_type").Value; got != "DEV1-S" {
		t.Errorf("unexpected default instance type: %v", got)
	}

	ram := field(t, &fc.Structure, "Server_ram")
	if ram.Value != 128.0 || ram.Unit != "GB" || ram.Step != 1 {
		t.Errorf("unexpected ram field: %+v", ram)
	}
	if !cmp.SliceContentEq(ram.Units, []string{"B", "kB", "MB", "GB", "TB", "PB"}) {
		t.Errorf("unexpected compatible units: %v", ram.Units)
	}
}

func TestCreationContext_Service(t *testing.T) {
	cat := catalog.Builtin()
	store := graph.New(cat)
	cpu := server(t, store, "Server", "web")
	gpu := server(t, store, "GPUServer", "gpu")
	testee := forms.NewBuilder(cat, forms.BuiltinConfig())

	for name, testcase := range map[string]struct {
		parent string
		then   []string
	}{
		"regular servers host web applications and video streaming": {
			parent: cpu.ID(), then: []string{"WebApplication", "VideoStreaming"},
		},
		"gpu servers also host GenAI models": {
			parent: gpu.ID(), then: []string{"GenAIModel", "WebApplication", "VideoStreaming"},
		},
	} {
		t.Run(name, func(t *testing.T) {
			fc := try.To(testee.CreationContext("ServiceBase", forms.ContextRequest{ParentID: testcase.parent}, store)).OrFatal(t)
			if fc.Parent == nil || fc.Parent.Value != testcase.parent {
				t.Errorf("unexpected parent: %+v", fc.Parent)
			}
			if got := values(fc.Structure.TypeSelector.Options); !cmp.SliceEq(got, testcase.then) {
				t.Errorf("unexpected candidates: %v", got)
			}
		})
	}

	t.Run("without parent, it is a validation error", func(t *testing.T) {
		_, err := testee.CreationContext("ServiceBase", forms.ContextRequest{}, store)
		var verr *domerr.ValidationError
		if !errors.As(err, &verr) || verr.Field != forms.ParentFieldID {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("unknown parent is missing", func(t *testing.T) {
		_, err := testee.CreationContext("ServiceBase", forms.ContextRequest{ParentID: "id-nothing"}, store)
		if !errors.Is(err, domerr.ErrMissing) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("parent of another class is a validation error", func(t *testing.T) {
		storage := cpu.Ref("storage")
		_, err := testee.CreationContext("ServiceBase", forms.ContextRequest{ParentID: storage.ID()}, store)
		var verr *domerr.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestCreationContext_Job(t *testing.T) {
	cat := catalog.Builtin()
	testee := forms.NewBuilder(cat, forms.BuiltinConfig())

	t.Run("without servers, it is a validation error", func(t *testing.T) {
		_, err := testee.CreationContext("JobBase", forms.ContextRequest{}, graph.New(cat))
		var verr *domerr.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	store := graph.New(cat)
	web := server(t, store, "Server", "web")
	gpu := server(t, store, "GPUServer", "gpu")
	app := construct(t, store, "WebApplication", map[string]domain.Value{
		"name": domain.Text("shop"), "server": domain.Ref{Object: web},
	})
	journey := construct(t, store, "UsageJourney", map[string]domain.Value{"name": domain.Text("journey")})
	step := construct(t, store, "UsageJourneyStep", map[string]domain.Value{"name": domain.Text("browse")})
	journey.Set("uj_steps", domain.RefList{step})

	fc := try.To(testee.CreationContext("JobBase", forms.ContextRequest{ParentID: step.ID()}, store)).OrFatal(t)

	if fc.Container == nil || fc.Container.Value != step.ID() {
		t.Errorf("unexpected container: %+v", fc.Container)
	}
	if got := values(fc.ParentField.Options); !cmp.SliceEq(got, []string{web.ID(), gpu.ID()}) {
		t.Errorf("unexpected parents: %v", got)
	}
	if fc.ParentField.Value != web.ID() {
		t.Errorf("unexpected selected parent: %v", fc.ParentField.Value)
	}
	if !fc.IntermediateField.Dynamic || fc.IntermediateField.Value != forms.DirectCallPrefix+web.ID() {
		t.Errorf("unexpected intermediate field: %+v", fc.IntermediateField)
	}

	intermediates := entry(t, fc, forms.IntermediateFieldID)
	if intermediates.ControllingFieldID() != forms.ParentFieldID {
		t.Errorf("unexpected controller: %s", intermediates.ControllingFieldID())
	}
	webCalls := intermediates.Options(web.ID())
	if got := values(webCalls); !cmp.SliceEq(got, []string{forms.DirectCallPrefix + web.ID(), app.ID()}) {
		t.Errorf("unexpected calls of web: %v", got)
	}
	if webCalls[0].Label != "Direct call to web" {
		t.Errorf("unexpected label: %s", webCalls[0].Label)
	}
	if got := values(intermediates.Options(gpu.ID())); !cmp.SliceEq(got, []string{forms.DirectCallPrefix + gpu.ID()}) {
		t.Errorf("unexpected calls of gpu: %v", got)
	}

	types := entry(t, fc, forms.TypeSelectorID)
	if types.ControllingFieldID() != forms.IntermediateFieldID {
		t.Errorf("unexpected controller: %s", types.ControllingFieldID())
	}
	for value, want := range map[string][]string{
		forms.DirectCallPrefix + web.ID(): {"Job"},
		forms.DirectCallPrefix + gpu.ID(): {"Job", "GPUJob"},
		app.ID():                          {"WebApplicationJob"},
	} {
		if got := values(types.Options(value)); !cmp.SliceEq(got, want) {
			t.Errorf("types for %s: got %v, want %v", value, got, want)
		}
	}

	selector := fc.Structure.TypeSelector
	if !selector.Dynamic {
		t.Error("type selector is not dynamic")
	}
	if got := values(selector.Options); !cmp.SliceEq(got, []string{"Job", "GPUJob", "WebApplicationJob"}) {
		t.Errorf("unexpected candidates: %v", got)
	}

	t.Run("a container of another class is a validation error", func(t *testing.T) {
		_, err := testee.CreationContext("JobBase", forms.ContextRequest{ParentID: journey.ID()}, store)
		var verr *domerr.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestCreationContext_ComponentNeed(t *testing.T) {
	cat := catalog.Builtin()
	store := graph.New(cat)
	cpu := construct(t, store, "EdgeCPUComponent", map[string]domain.Value{"name": domain.Text("cpu")})
	ram := construct(t, store, "EdgeRAMComponent", map[string]domain.Value{"name": domain.Text("ram")})
	device := construct(t, store, "EdgeDevice", map[string]domain.Value{
		"name": domain.Text("sensor"), "components": domain.RefList{cpu, ram},
	})
	need := construct(t, store, "RecurrentEdgeDeviceNeed", map[string]domain.Value{
		"name": domain.Text("sensing"), "edge_device": domain.Ref{Object: device},
	})
	testee := forms.NewBuilder(cat, forms.BuiltinConfig())

	fc := try.To(testee.CreationContext(
		"RecurrentEdgeComponentNeedBase", forms.ContextRequest{ParentID: need.ID()}, store,
	)).OrFatal(t)

	if got := values(fc.NestedField.Options); !cmp.SliceEq(got, []string{cpu.ID(), ram.ID()}) {
		t.Errorf("unexpected components: %v", got)
	}
	types := entry(t, fc, forms.TypeSelectorID)
	if types.ControllingFieldID() != forms.NestedFieldID {
		t.Errorf("unexpected controller: %s", types.ControllingFieldID())
	}
	if got := values(types.Options(ram.ID())); !cmp.SliceEq(got, []string{"RecurrentEdgeRAMNeed"}) {
		t.Errorf("unexpected types: %v", got)
	}
	if got := values(fc.Structure.TypeSelector.Options); !cmp.SliceEq(got, []string{"RecurrentEdgeCPUNeed", "RecurrentEdgeRAMNeed"}) {
		t.Errorf("unexpected candidates: %v", got)
	}
	if _, ok := fc.Structure.Field("RecurrentEdgeCPUNeed_edge_component"); ok {
		t.Error("excluded field is shown")
	}
}

func TestCreationContext_Misconfigured(t *testing.T) {
	cat := catalog.Builtin()

	for name, testcase := range map[string]*forms.Config{
		"unknown strategy": {
			Labels: map[string]string{"Storage": "Storage"},
			Types:  map[string]forms.TypeConfig{"Storage": {Strategy: "sideways"}},
		},
		"missing label": {
			Labels: map[string]string{},
		},
		"unknown candidate query": {
			Labels: map[string]string{"ServiceBase": "Service", "WebApplication": "Web application"},
			Types: map[string]forms.TypeConfig{
				"ServiceBase": {
					Strategy: forms.ChildOfKnownParent,
					Parent:   &forms.KnownParent{Class: "ServerBase", Query: "nothing"},
				},
			},
		},
	} {
		t.Run(name, func(t *testing.T) {
			store := graph.New(cat)
			parent := ""
			class := "Storage"
			if testcase.Types["ServiceBase"].Parent != nil {
				parent = server(t, store, "Server", "web").ID()
				class = "ServiceBase"
			}
			testee := forms.NewBuilder(cat, testcase)
			_, err := testee.CreationContext(class, forms.ContextRequest{ParentID: parent}, store)
			var cerr *domerr.ConfigurationError
			if !errors.As(err, &cerr) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
