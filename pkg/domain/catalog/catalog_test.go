package catalog_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/opst/footprintweb/pkg/cmp"
	"github.com/opst/footprintweb/pkg/domain"
	"github.com/opst/footprintweb/pkg/domain/catalog"
	domerr "github.com/opst/footprintweb/pkg/domain/errors"
	"github.com/opst/footprintweb/pkg/utils/try"
)

func TestBuiltin_Lineage(t *testing.T) {
	testee := catalog.Builtin()

	if got := testee.Subclasses("ServerBase"); !cmp.SliceEq(
		got, []string{"Server", "GPUServer", "BoaviztaCloudServer", "ExternalAPIServer"},
	) {
		t.Errorf("unexpected subclasses: %v", got)
	}
	if got := testee.Subclasses("Storage"); !cmp.SliceEq(got, []string{"Storage"}) {
		t.Errorf("unexpected subclasses: %v", got)
	}
	if !testee.IsA("GenAIJob", "JobBase") {
		t.Error("GenAIJob is not a JobBase")
	}
	if testee.IsA("GenAIJob", "ServiceBase") {
		t.Error("GenAIJob is a ServiceBase")
	}
	if !testee.CanBeNegative("Job", "data_stored") {
		t.Error("data_stored of jobs should be able to be negative")
	}
}

func TestParams(t *testing.T) {
	testee := catalog.Builtin()

	params := try.To(testee.Params("VideoStreaming")).OrFatal(t)
	names := []string{}
	for _, p := range params {
		names = append(names, p.Name)
	}
	if !cmp.SliceEq(
		names,
		[]string{"server", "base_ram_consumption", "base_compute_consumption", "bits_per_pixel", "static_delivery_cpu_cost"},
	) {
		t.Errorf("unexpected params: %v", names)
	}

	p, ok := testee.Param("VideoStreaming", "base_ram_consumption")
	if !ok {
		t.Fatal("param is not found")
	}
	if p.Advanced || !p.Default.Equal(domain.Quantity{Value: 1, Unit: "GB"}) {
		t.Errorf("overridden param is not used: %+v", p)
	}

	if _, err := testee.Params("Spaceship"); !errors.Is(err, domerr.ErrMissing) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConstruct(t *testing.T) {
	testee := catalog.Builtin()

	t.Run("it fills defaults", func(t *testing.T) {
		obj := try.To(testee.Construct("Storage", map[string]domain.Value{
			"name":             domain.Text("SSD storage"),
			"storage_capacity": domain.Quantity{Value: 2, Unit: "TB"},
		})).OrFatal(t)

		if obj.Name() != "SSD storage" || obj.Class() != "Storage" {
			t.Errorf("unexpected object: %s (%s)", obj.Name(), obj.Class())
		}
		if !strings.HasPrefix(obj.ID(), "id-") || !strings.HasSuffix(obj.ID(), "-SSD-storage") {
			t.Errorf("unexpected id: %s", obj.ID())
		}
		if q, _ := obj.Quantity("storage_capacity"); q.Value != 2 {
			t.Errorf("unexpected capacity: %v", q)
		}
		if q, _ := obj.Quantity("lifespan"); q.Value != 6 || q.Unit != "year" {
			t.Errorf("unexpected lifespan: %v", q)
		}
		if _, ok := obj.Get("fixed_nb_of_instances"); !ok {
			t.Error("optional param with default is not set")
		}
	})

	storage := try.To(testee.Construct("Storage", map[string]domain.Value{
		"name": domain.Text("storage"),
	})).OrFatal(t)

	for name, testcase := range map[string]struct {
		class  string
		values map[string]domain.Value
		then   func(error) bool
	}{
		"missing name": {
			class:  "Storage",
			values: map[string]domain.Value{},
			then:   func(err error) bool { return errors.As(err, new(*domerr.ValidationError)) },
		},
		"missing required reference": {
			class:  "Server",
			values: map[string]domain.Value{"name": domain.Text("server")},
			then:   func(err error) bool { return errors.As(err, new(*domerr.ValidationError)) },
		},
		"wrong kind": {
			class: "Server",
			values: map[string]domain.Value{
				"name": domain.Text("server"), "storage": domain.Ref{Object: storage},
				"ram": domain.Text("lots"),
			},
			then: func(err error) bool { return errors.As(err, new(*domerr.ValidationError)) },
		},
		"negative not allowed": {
			class: "Server",
			values: map[string]domain.Value{
				"name": domain.Text("server"), "storage": domain.Ref{Object: storage},
				"ram": domain.Quantity{Value: -1, Unit: "GB"},
			},
			then: func(err error) bool { return errors.As(err, new(*domerr.ValidationError)) },
		},
		"not a choice": {
			class: "Server",
			values: map[string]domain.Value{
				"name": domain.Text("server"), "storage": domain.Ref{Object: storage},
				"server_type": domain.Choice("quantum"),
			},
			then: func(err error) bool { return errors.As(err, new(*domerr.ValidationError)) },
		},
		"conditional choice of another controller": {
			class: "BoaviztaCloudServer",
			values: map[string]domain.Value{
				"name": domain.Text("server"), "storage": domain.Ref{Object: storage},
				"provider": domain.Choice("aws"), "instance_type": domain.Choice("DEV1-S"),
			},
			then: func(err error) bool { return errors.As(err, new(*domerr.ValidationError)) },
		},
		"abstract class": {
			class:  "ServerBase",
			values: map[string]domain.Value{"name": domain.Text("server")},
			then:   func(err error) bool { return errors.As(err, new(*domerr.ConfigurationError)) },
		},
		"insufficient storage": {
			class: "Server",
			values: map[string]domain.Value{
				"name": domain.Text("server"), "storage": domain.Ref{Object: storage},
				"base_storage_need": domain.Quantity{Value: 1500, Unit: "GB"},
			},
			then: func(err error) bool {
				r, ok := domerr.AsRecoverable(err)
				if !ok {
					return false
				}
				ice, ok := r.(*domerr.InsufficientCapacityError)
				return ok && ice.Object == storage.ID() && ice.Required == 1.5
			},
		},
	} {
		t.Run("it errors: "+name, func(t *testing.T) {
			_, err := testee.Construct(testcase.class, testcase.values)
			if err == nil || !testcase.then(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}

	t.Run("a missing conditional choice is the first choice for its controller", func(t *testing.T) {
		obj := try.To(testee.Construct("BoaviztaCloudServer", map[string]domain.Value{
			"name": domain.Text("server"), "storage": domain.Ref{Object: storage},
			"provider": domain.Choice("aws"),
		})).OrFatal(t)
		if got, _ := obj.Get("instance_type"); got != domain.Choice("m5.large") {
			t.Errorf("unexpected instance type: %v", got)
		}
	})

	t.Run("a job needing more ram than its server is insufficient capacity", func(t *testing.T) {
		server := try.To(testee.Construct("Server", map[string]domain.Value{
			"name": domain.Text("server"), "storage": domain.Ref{Object: storage},
			"ram": domain.Quantity{Value: 1, Unit: "GB"},
		})).OrFatal(t)

		_, err := testee.Construct("Job", map[string]domain.Value{
			"name": domain.Text("job"), "server": domain.Ref{Object: server},
			"ram_needed": domain.Quantity{Value: 2000, Unit: "MB"},
		})
		if !errors.Is(err, domerr.ErrRecoverable) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestSeeds(t *testing.T) {
	testee := catalog.Builtin()

	countries := testee.Seeds("Country")
	if len(countries) == 0 {
		t.Fatal("no countries")
	}
	france, ok := testee.Seed("country-france")
	if !ok {
		t.Fatal("France is not seeded")
	}
	obj := try.To(testee.Materialize(france)).OrFatal(t)
	if obj.ID() != "country-france" || obj.Name() != "France" {
		t.Errorf("unexpected object: %s %s", obj.ID(), obj.Name())
	}
	if q, _ := obj.Quantity("average_carbon_intensity"); q.Value != 85 || q.Unit != "gCO2e/kWh" {
		t.Errorf("unexpected carbon intensity: %v", q)
	}

	t.Run("seed files override seeds by id", func(t *testing.T) {
		err := testee.LoadSeeds(strings.NewReader(`
seeds:
  - id: country-france
    class: Country
    name: France (2030)
    attributes:
      average_carbon_intensity: 42.5
`))
		if err != nil {
			t.Fatal(err)
		}
		s, _ := testee.Seed("country-france")
		obj := try.To(testee.Materialize(s)).OrFatal(t)
		if obj.Name() != "France (2030)" {
			t.Errorf("unexpected name: %s", obj.Name())
		}
		if q, _ := obj.Quantity("average_carbon_intensity"); q.Value != 42.5 {
			t.Errorf("unexpected carbon intensity: %v", q)
		}
	})

	t.Run("seeds for a class which is not seeded are rejected", func(t *testing.T) {
		err := testee.LoadSeeds(strings.NewReader(`
seeds:
  - id: storage-1
    class: Storage
    name: storage
`))
		if !errors.As(err, new(*domerr.ConfigurationError)) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
