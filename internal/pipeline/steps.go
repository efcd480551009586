package pipeline

// Step names reported in progress events, logs and spans
const (
	StepNormalize  = "normalize_profile"
	StepSynthesize = "synthesize_queries"
	StepDiscover   = "discover_resources"
	StepCategorize = "categorize_resources"
	StepAggregate  = "aggregate_bundle"
	StepPersist    = "persist_bundle"
	StepComplete   = "complete"
)

// Step categories
const (
	CategoryAnalysis  = "analysis"
	CategoryDiscovery = "discovery"
	CategoryAssembly  = "assembly"
	CategoryStorage   = "storage"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name         string
	Category     string
	Index        int
	Dependencies []string
}

// StepRegistry holds all step definitions
var StepRegistry = map[string]StepDefinition{
	StepNormalize: {
		Name:         StepNormalize,
		Category:     CategoryAnalysis,
		Index:        1,
		Dependencies: []string{},
	},
	StepSynthesize: {
		Name:         StepSynthesize,
		Category:     CategoryAnalysis,
		Index:        2,
		Dependencies: []string{StepNormalize},
	},
	StepDiscover: {
		Name:         StepDiscover,
		Category:     CategoryDiscovery,
		Index:        3,
		Dependencies: []string{StepSynthesize},
	},
	StepCategorize: {
		Name:         StepCategorize,
		Category:     CategoryAssembly,
		Index:        4,
		Dependencies: []string{StepDiscover},
	},
	StepAggregate: {
		Name:         StepAggregate,
		Category:     CategoryAssembly,
		Index:        5,
		Dependencies: []string{StepCategorize},
	},
	StepPersist: {
		Name:         StepPersist,
		Category:     CategoryStorage,
		Index:        6,
		Dependencies: []string{StepAggregate},
	},
}

// TotalSteps is the number of registered steps.
var TotalSteps = len(StepRegistry)

// StepCategory returns the category of a step, or "" for unknown steps.
func StepCategory(step string) string {
	if step == StepComplete {
		return CategoryStorage
	}
	return StepRegistry[step].Category
}
