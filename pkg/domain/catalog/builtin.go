package catalog

import (
	"bytes"
	"fmt"
	"time"

	"github.com/opst/footprintweb/pkg/domain"
	domerr "github.com/opst/footprintweb/pkg/domain/errors"
	"github.com/opst/footprintweb/pkg/units"
)

func text(name string, def string) domain.Param {
	return domain.Param{Name: name, Kind: domain.KindText, Default: domain.Text(def)}
}

func qty(name string, v float64, unit string) domain.Param {
	return domain.Param{
		Name: name, Kind: domain.KindQuantity, Unit: unit,
		Default: domain.Quantity{Value: v, Unit: unit, Source: "hypothesis"},
	}
}

func ratio(name string, v float64) domain.Param {
	return domain.Param{
		Name: name, Kind: domain.KindDimensionless,
		Default: domain.Quantity{Value: v, Source: "hypothesis"},
	}
}

func choice(name string, def string, values ...string) domain.Param {
	return domain.Param{Name: name, Kind: domain.KindChoice, ListValues: values, Default: domain.Choice(def)}
}

func conditional(name string, dependsOn string, values map[string][]string) domain.Param {
	return domain.Param{
		Name: name, Kind: domain.KindConditionalChoice,
		DependsOn: dependsOn, ConditionalValues: values,
	}
}

func ref(name string, class string) domain.Param {
	return domain.Param{Name: name, Kind: domain.KindObject, Class: class}
}

func list(name string, class string) domain.Param {
	return domain.Param{Name: name, Kind: domain.KindObjectList, Class: class, Default: domain.RefList{}}
}

func timeseries(name string) domain.Param {
	return domain.Param{
		Name: name, Kind: domain.KindTimeseries,
		Default: domain.Timeseries{
			StartDate:             time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			Duration:              3,
			DurationUnit:          "year",
			InitialVolume:         1000,
			InitialVolumeTimespan: "year",
			NetGrowthRate:         10,
			NetGrowthRateTimespan: "year",
		},
	}
}

func advanced(p domain.Param) domain.Param {
	p.Advanced = true
	return p
}

func optional(p domain.Param) domain.Param {
	p.Optional = true
	return p
}

// sameUnit converts q into unit. Unconvertible units are compared as they are.
func sameUnit(q domain.Quantity, unit string) float64 {
	v, err := units.Convert(q.Value, q.Unit, unit)
	if err != nil {
		return q.Value
	}
	return v
}

// storageFitsServer: companion storage should hold the base storage need of the server.
func storageFitsServer(server *domain.Object) error {
	storage := server.Ref("storage")
	if storage == nil {
		return nil
	}
	need, ok := server.Quantity("base_storage_need")
	if !ok {
		return nil
	}
	capacity, ok := storage.Quantity("storage_capacity")
	if !ok {
		return nil
	}
	if required := sameUnit(need, capacity.Unit); capacity.Value < required {
		return &domerr.InsufficientCapacityError{
			Object:    storage.ID(),
			Attribute: "storage_capacity",
			Available: capacity.Value,
			Required:  required,
			Unit:      capacity.Unit,
		}
	}
	return nil
}

// jobFitsServer: a job cannot need more ram than its server has.
func jobFitsServer(job *domain.Object) error {
	server := job.Ref("server")
	if server == nil {
		return nil
	}
	need, ok := job.Quantity("ram_needed")
	if !ok {
		return nil
	}
	ram, ok := server.Quantity("ram")
	if !ok {
		return nil
	}
	if required := sameUnit(need, ram.Unit); ram.Value < required {
		return &domerr.InsufficientCapacityError{
			Object:    server.ID(),
			Attribute: "ram",
			Available: ram.Value,
			Required:  required,
			Unit:      ram.Unit,
		}
	}
	return nil
}

// serviceOnServer: a job for a service runs on the server where the service is installed.
func serviceOnServer(job *domain.Object) error {
	service := job.Ref("service")
	if service == nil {
		return nil
	}
	if s := service.Ref("server"); s != nil && s.ID() != job.Ref("server").ID() {
		return domerr.NewValidation(
			"service", "service %s is not installed on %s", service.Name(), job.Ref("server").Name(),
		)
	}
	return nil
}

var cloudInstances = map[string][]string{
	"aws":      {"m5.large", "m5.xlarge", "c5.2xlarge", "r5.4xlarge"},
	"azure":    {"Standard_D2s_v3", "Standard_D4s_v3", "Standard_E8s_v3"},
	"gcp":      {"n2-standard-2", "n2-standard-4", "e2-highmem-8"},
	"scaleway": {"DEV1-S", "GP1-M", "PRO2-L"},
}

var genAIModels = map[string][]string{
	"openai":    {"gpt-4o", "gpt-4o-mini", "o3"},
	"anthropic": {"claude-3-5-haiku", "claude-3-7-sonnet"},
	"mistralai": {"mistral-small", "mistral-large"},
}

func keys(m map[string][]string, order ...string) []string {
	ret := []string{}
	for _, k := range order {
		if _, ok := m[k]; ok {
			ret = append(ret, k)
		}
	}
	return ret
}

func hardware() []domain.Param {
	return []domain.Param{
		qty("carbon_footprint_fabrication", 150, "kgCO2e"),
		qty("power", 50, "W"),
		qty("lifespan", 6, "year"),
		advanced(qty("idle_power", 0, "W")),
	}
}

// BuiltinTypes returns schemas of the built-in classes, bases before subclasses.
func BuiltinTypes() []*domain.Type {
	return []*domain.Type{
		{
			Name: "Country", Seeded: true,
			Params: []domain.Param{
				text("short_name", ""),
				qty("average_carbon_intensity", 100, "gCO2e/kWh"),
				text("timezone", "UTC"),
			},
		},
		{
			Name: "Device", Seeded: true,
			Params: append(hardware(), ratio("fraction_of_usage_time", 0.1)),
		},
		{
			Name: "Network", Seeded: true,
			Params: []domain.Param{qty("bandwidth_energy_intensity", 0.05, "kWh/GB")},
		},
		{
			Name: "Storage",
			Params: append(hardware(),
				qty("storage_capacity", 1, "TB"),
				advanced(ratio("data_replication_factor", 3)),
				advanced(qty("data_storage_duration", 5, "year")),
				advanced(qty("base_storage_need", 0, "TB")),
				advanced(optional(ratio("fixed_nb_of_instances", 0))),
			),
			Calculated: []string{"nb_of_instances"},
		},
		{
			Name: "ServerBase", Abstract: true,
			Params: append(hardware(),
				choice("server_type", "autoscaling", "autoscaling", "on-premise", "serverless"),
				qty("ram", 128, "GB"),
				ratio("compute", 24),
				advanced(ratio("power_usage_effectiveness", 1.2)),
				advanced(qty("average_carbon_intensity", 100, "gCO2e/kWh")),
				advanced(ratio("utilization_rate", 0.9)),
				advanced(qty("base_ram_consumption", 0, "GB")),
				advanced(ratio("base_compute_consumption", 0)),
				advanced(qty("base_storage_need", 0, "TB")),
				ref("storage", "Storage"),
			),
			Calculated: []string{"nb_of_instances", "raw_nb_of_instances"},
			Validate:   storageFitsServer,
		},
		{Name: "Server", Base: "ServerBase"},
		{
			Name: "GPUServer", Base: "ServerBase",
			Params: []domain.Param{
				ratio("nb_gpus_per_instance", 4),
				qty("gpu_power", 400, "W"),
				qty("ram_per_gpu", 80, "GB"),
			},
		},
		{
			Name: "BoaviztaCloudServer", Base: "ServerBase",
			Params: []domain.Param{
				choice("provider", "scaleway", keys(cloudInstances, "aws", "azure", "gcp", "scaleway")...),
				conditional("instance_type", "provider", cloudInstances),
			},
		},
		{Name: "ExternalAPIServer", Base: "ServerBase"},
		{
			Name: "ServiceBase", Abstract: true,
			Params: []domain.Param{
				ref("server", "ServerBase"),
				advanced(qty("base_ram_consumption", 0, "GB")),
				advanced(ratio("base_compute_consumption", 0)),
			},
		},
		{
			Name: "WebApplication", Base: "ServiceBase",
			Params: []domain.Param{
				choice("technology", "php-symfony", "php-symfony", "python-django", "java-springboot", "go-echo"),
			},
		},
		{
			Name: "VideoStreaming", Base: "ServiceBase",
			Params: []domain.Param{
				qty("base_ram_consumption", 1, "GB"),
				advanced(ratio("bits_per_pixel", 0.1)),
				advanced(ratio("static_delivery_cpu_cost", 4)),
			},
		},
		{
			Name: "GenAIModel", Base: "ServiceBase",
			Params: []domain.Param{
				choice("provider", "mistralai", keys(genAIModels, "openai", "anthropic", "mistralai")...),
				conditional("model_name", "provider", genAIModels),
				advanced(ratio("nb_of_bits_per_parameter", 16)),
				advanced(ratio("llm_memory_factor", 1.2)),
			},
		},
		{
			Name: "JobBase", Abstract: true,
			Params: []domain.Param{
				ref("server", "ServerBase"),
				qty("data_transferred", 150, "kB"),
				qty("data_stored", 100, "kB"),
				qty("request_duration", 1, "s"),
				ratio("compute_needed", 1),
				qty("ram_needed", 100, "MB"),
			},
			NegativeAllowed: []string{"data_stored"},
			Validate:        jobFitsServer,
		},
		{Name: "Job", Base: "JobBase"},
		{
			Name: "GPUJob", Base: "JobBase",
			Params: []domain.Param{ratio("compute_needed", 0.5)},
		},
		{
			Name: "WebApplicationJob", Base: "JobBase",
			Params: []domain.Param{
				ref("service", "WebApplication"),
				choice("implementation_details", "default", "default", "mysql", "no-db", "aggregation-code"),
			},
			Validate: serviceOnServer,
		},
		{
			Name: "VideoStreamingJob", Base: "JobBase",
			Params: []domain.Param{
				ref("service", "VideoStreaming"),
				choice("resolution", "1080p", "480p", "720p", "1080p", "2160p"),
				qty("video_duration", 1, "hour"),
				ratio("refresh_rate", 30),
			},
			Validate: serviceOnServer,
		},
		{
			Name: "GenAIJob", Base: "JobBase",
			Params: []domain.Param{
				ref("service", "GenAIModel"),
				ratio("output_token_count", 1000),
			},
			Validate: serviceOnServer,
		},
		{Name: "ExternalAPIJob", Base: "JobBase"},
		{
			Name: "ExternalAPI",
			Params: []domain.Param{
				choice("provider", "mistralai", keys(genAIModels, "openai", "anthropic", "mistralai")...),
				conditional("model_name", "provider", genAIModels),
				optional(ref("server", "ExternalAPIServer")),
			},
		},
		{
			Name: "UsageJourneyStep",
			Params: []domain.Param{
				qty("user_time_spent", 1, "min"),
				list("jobs", "JobBase"),
			},
		},
		{
			Name: "UsageJourney",
			Params: []domain.Param{
				list("uj_steps", "UsageJourneyStep"),
			},
		},
		{
			Name: "UsagePattern",
			Params: []domain.Param{
				ref("usage_journey", "UsageJourney"),
				list("devices", "Device"),
				ref("network", "Network"),
				ref("country", "Country"),
				timeseries("hourly_usage_journey_starts"),
				advanced(optional(domain.Param{Name: "extra", Kind: domain.KindStructured})),
			},
		},
		{
			Name: "EdgeDevice",
			Params: append(hardware(),
				list("components", "EdgeComponentBase"),
			),
		},
		{
			Name: "EdgeComponentBase", Abstract: true,
			Params: hardware(),
		},
		{
			Name: "EdgeCPUComponent", Base: "EdgeComponentBase",
			Params: []domain.Param{ratio("compute", 4)},
		},
		{
			Name: "EdgeRAMComponent", Base: "EdgeComponentBase",
			Params: []domain.Param{qty("ram", 8, "GB")},
		},
		{
			Name: "EdgeStorage", Base: "EdgeComponentBase",
			Params: []domain.Param{qty("storage_capacity", 256, "GB")},
		},
		{
			Name: "RecurrentEdgeDeviceNeed",
			Params: []domain.Param{
				ref("edge_device", "EdgeDevice"),
				list("recurrent_edge_component_needs", "RecurrentEdgeComponentNeedBase"),
			},
		},
		{
			Name: "RecurrentEdgeComponentNeedBase", Abstract: true,
			Params: []domain.Param{
				ref("edge_component", "EdgeComponentBase"),
				ratio("recurrent_need", 1),
			},
			NegativeAllowed: []string{"recurrent_need"},
		},
		{
			Name: "RecurrentEdgeCPUNeed", Base: "RecurrentEdgeComponentNeedBase",
			Validate: componentIs("EdgeCPUComponent"),
		},
		{
			Name: "RecurrentEdgeRAMNeed", Base: "RecurrentEdgeComponentNeedBase",
			Params:   []domain.Param{qty("recurrent_need", 1, "GB")},
			Validate: componentIs("EdgeRAMComponent"),
		},
		{
			Name: "RecurrentEdgeStorageNeed", Base: "RecurrentEdgeComponentNeedBase",
			Params:   []domain.Param{qty("recurrent_need", 1, "GB")},
			Validate: componentIs("EdgeStorage"),
		},
	}
}

func componentIs(class string) func(*domain.Object) error {
	return func(need *domain.Object) error {
		c := need.Ref("edge_component")
		if c != nil && c.Class() != class {
			return domerr.NewValidation(
				"edge_component", "%s needs a %s, got %s", need.Class(), class, c.Class(),
			)
		}
		return nil
	}
}

// Builtin returns a catalog of the built-in classes and seeds.
func Builtin() *Catalog {
	c := MustNew(BuiltinTypes()...)
	if err := c.LoadSeeds(bytes.NewReader(builtinSeeds)); err != nil {
		panic(fmt.Sprintf("catalog: built-in seeds: %v", err))
	}
	return c
}
