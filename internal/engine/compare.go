package engine

import (
	"fmt"

	"github.com/piwi3910/atlaspack/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.PackSettings
}

// ComparisonResult holds the pack result and derived statistics for a
// single scenario. Err is set when the scenario could not be packed.
type ComparisonResult struct {
	Scenario      ComparisonScenario
	Result        model.PackResult
	ContainerArea int
	WastePercent  float64
	Err           error
}

// CompareScenarios packs the same sprites under each scenario and returns
// the results in scenario order. A failing scenario does not stop the others.
func CompareScenarios(scenarios []ComparisonScenario, sprites []model.Sprite) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		packer := New(scenario.Settings)
		result, err := packer.PackSprites(sprites)
		if err != nil {
			results = append(results, ComparisonResult{Scenario: scenario, Err: err})
			continue
		}

		waste := 0.0
		if result.Area() > 0 {
			waste = 100.0 - result.Utilization()*100.0
		}

		results = append(results, ComparisonResult{
			Scenario:      scenario,
			Result:        result,
			ContainerArea: result.Area(),
			WastePercent:  waste,
		})
	}

	return results
}

// BuildDefaultScenarios generates what-if alternatives around the current
// settings: the current padding, padding toggled on or off, and double
// padding when padding is in use.
func BuildDefaultScenarios(base model.PackSettings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			Settings: base,
		},
	}

	toggled := base
	if base.Padding == 0 {
		toggled.Padding = 1
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "Padding 1px",
			Settings: toggled,
		})
	} else {
		toggled.Padding = 0
		scenarios = append(scenarios, ComparisonScenario{
			Name:     "No Padding",
			Settings: toggled,
		})

		doubled := base
		doubled.Padding = base.Padding * 2
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Padding %dpx (double)", doubled.Padding),
			Settings: doubled,
		})
	}

	return scenarios
}
