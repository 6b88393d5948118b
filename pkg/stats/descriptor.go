package stats

import (
	"github.com/google/jsonschema-go/jsonschema"

	"stats-tool/internal/models"
)

const (
	ToolName        = "stats"
	ToolDescription = "Compute descriptive statistics on a list of numbers. " +
		"Returns count, min, max, mean, median, and standard deviation, " +
		"plus any requested percentiles. " +
		"Use this whenever you need to summarise or analyse numeric data."
)

// Parameter names in the call bag
const (
	ParamNumbers     = "numbers"
	ParamPrecision   = "precision"
	ParamPercentiles = "percentiles"
)

// parametersSchema builds a fresh schema on every call, so no caller can
// change what another one sees
func parametersSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			ParamNumbers: {
				Type:        "array",
				Description: "List of numeric values to analyse",
				Items:       &jsonschema.Schema{Type: "number"},
			},
			ParamPrecision: {
				Type:        "integer",
				Description: "Decimal places in output (default: 4, range: 0-10)",
			},
			ParamPercentiles: {
				Type:        "array",
				Description: "Percentile values to compute, e.g. [25, 75, 95]",
				Items:       &jsonschema.Schema{Type: "number"},
			},
		},
		Required: []string{ParamNumbers},
	}
}

// Descriptor returns the capability descriptor of the stats tool. Each call
// returns an independent copy.
func Descriptor() models.ToolDescriptor {
	return models.ToolDescriptor{
		Name:        ToolName,
		Description: ToolDescription,
		Parameters:  parametersSchema(),
	}
}
