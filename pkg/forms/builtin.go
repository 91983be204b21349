package forms

import (
	"github.com/opst/footprintweb/pkg/domain"
	"github.com/opst/footprintweb/pkg/domain/catalog"
	"github.com/opst/footprintweb/pkg/graph"
)

// installableServices lists services which can be installed on the server parent.
func installableServices(parent *domain.Object, cat *catalog.Catalog) []string {
	switch {
	case cat.IsA(parent.Class(), "ExternalAPIServer"):
		return []string{}
	case cat.IsA(parent.Class(), "GPUServer"):
		return []string{"GenAIModel", "WebApplication", "VideoStreaming"}
	default:
		return []string{"WebApplication", "VideoStreaming"}
	}
}

// edgeComponents lists components of the edge device of a recurrent need.
func edgeComponents(parent *domain.Object, store *graph.Store) []*domain.Object {
	device := parent.Ref("edge_device")
	if device == nil {
		return nil
	}
	return device.List("components")
}

// BuiltinConfig is the form configuration of the built-in catalog.
func BuiltinConfig() *Config {
	return &Config{
		Labels: map[string]string{
			"Country":                        "Country",
			"Device":                         "Device",
			"Network":                        "Network",
			"Storage":                        "Storage",
			"ServerBase":                     "Server type",
			"Server":                         "Server",
			"GPUServer":                      "GPU server",
			"BoaviztaCloudServer":            "Cloud server",
			"ExternalAPIServer":              "External API server",
			"ServiceBase":                    "Service type",
			"WebApplication":                 "Web application",
			"VideoStreaming":                 "Video streaming",
			"GenAIModel":                     "GenAI model",
			"JobBase":                        "Job type",
			"Job":                            "Manually defined job",
			"GPUJob":                         "Manually defined GPU job",
			"WebApplicationJob":              "Web application job",
			"VideoStreamingJob":              "Video streaming job",
			"GenAIJob":                       "GenAI job",
			"ExternalAPIJob":                 "External API job",
			"ExternalAPI":                    "External API",
			"UsageJourneyStep":               "Usage journey step",
			"UsageJourney":                   "Usage journey",
			"UsagePattern":                   "Usage pattern",
			"EdgeDevice":                     "Edge device",
			"EdgeComponentBase":              "Component type",
			"EdgeCPUComponent":               "CPU component",
			"EdgeRAMComponent":               "RAM component",
			"EdgeStorage":                    "Edge storage",
			"RecurrentEdgeDeviceNeed":        "Recurrent edge device need",
			"RecurrentEdgeComponentNeedBase": "Need type",
			"RecurrentEdgeCPUNeed":           "Recurrent CPU need",
			"RecurrentEdgeRAMNeed":           "Recurrent RAM need",
			"RecurrentEdgeStorageNeed":       "Recurrent storage need",
		},
		AttributeLabels: map[string]string{
			"uj_steps":                    "Usage journey steps",
			"hourly_usage_journey_starts": "Hourly usage journey starts",
			"power_usage_effectiveness":   "PUE",
			"ram":                         "RAM",
			"ram_needed":                  "RAM needed",
			"nb_gpus_per_instance":        "Number of GPUs per instance",
		},
		Types: map[string]TypeConfig{
			"ServerBase": {
				Strategy:   WithCompanionObject,
				Candidates: []string{"Server", "GPUServer", "BoaviztaCloudServer"},
				Excluded:   []string{"storage"},
				Companion:  &Companion{Class: "Storage", Attribute: "storage"},
			},
			"ServiceBase": {
				Strategy: ChildOfKnownParent,
				Excluded: []string{"server"},
				Parent:   &KnownParent{Class: "ServerBase", Attribute: "server", Query: "installable_services"},
			},
			"JobBase": {
				Strategy: ParentSelection,
				Excluded: []string{"server", "service"},
				Selection: &Selection{
					Class:     "ServerBase",
					Attribute: "server",
					Intermediate: &Intermediate{
						Class: "ServiceBase", Attribute: "service", ParentAttribute: "server",
					},
					TypeFilter: map[string][]string{
						"Server":              {"Job"},
						"GPUServer":           {"Job", "GPUJob"},
						"BoaviztaCloudServer": {"Job"},
						"ExternalAPIServer":   {"ExternalAPIJob"},
						"WebApplication":      {"WebApplicationJob"},
						"VideoStreaming":      {"VideoStreamingJob"},
						"GenAIModel":          {"GenAIJob"},
					},
					Container: &Container{Class: "UsageJourneyStep", ListAttribute: "jobs"},
				},
			},
			"ExternalAPI": {
				Excluded: []string{"server"},
			},
			"UsageJourneyStep": {
				Strategy: ChildOfKnownParent,
				Parent:   &KnownParent{Class: "UsageJourney", ListAttribute: "uj_steps"},
			},
			"UsagePattern": {
				Requires:   []string{"UsageJourney"},
				Transforms: map[string]string{"devices": MultipleToSingle},
				DefaultLabels: map[string]string{
					"devices": "Laptop",
					"network": "Wifi network",
					"country": "France",
				},
			},
			"EdgeComponentBase": {
				Strategy: ChildOfKnownParent,
				Parent:   &KnownParent{Class: "EdgeDevice", ListAttribute: "components"},
			},
			"RecurrentEdgeDeviceNeed": {
				Requires: []string{"EdgeDevice"},
			},
			"RecurrentEdgeComponentNeedBase": {
				Strategy: NestedParentSelection,
				Excluded: []string{"edge_component"},
				Parent: &KnownParent{
					Class: "RecurrentEdgeDeviceNeed", ListAttribute: "recurrent_edge_component_needs",
				},
				Nested: &Nested{
					Resolver:  "edge_components",
					Attribute: "edge_component",
					TypeFilter: map[string][]string{
						"EdgeCPUComponent": {"RecurrentEdgeCPUNeed"},
						"EdgeRAMComponent": {"RecurrentEdgeRAMNeed"},
						"EdgeStorage":      {"RecurrentEdgeStorageNeed"},
					},
				},
			},
		},
		Queries: map[string]Query{
			"installable_services": installableServices,
		},
		Resolvers: map[string]Resolver{
			"edge_components": edgeComponents,
		},
	}
}
