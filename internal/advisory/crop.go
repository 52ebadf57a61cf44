// Package advisory turns soil analyses into farmer-facing advice.
package advisory

import (
	"kisansarathi/pkg/types"
)

const SuitableSoilAdvice = "Soil is suitable for this crop"

// nutrientAdvice is checked in order; the order is preserved in the output.
var nutrientAdvice = []struct {
	nutrient string
	advice   string
}{
	{types.NutrientNitrogen, "Add Nitrogen (Urea)"},
	{types.NutrientPhosphorus, "Add Phosphorus (DAP)"},
	{types.NutrientPotassium, "Add Potassium (MOP)"},
	{types.NutrientSulphur, "Add Sulphur"},
}

// Recommend lists fertiliser advice for every nutrient the soil holds less of
// than the crop's minimum. Nutrients absent from the soil report count as 0.
func Recommend(nutrients types.Nutrients, crop *types.CropRequirement) []string {
	out := make([]string, 0, len(nutrientAdvice))
	for _, n := range nutrientAdvice {
		if nutrients[n.nutrient] < crop.Minimum(n.nutrient) {
			out = append(out, n.advice)
		}
	}

	if len(out) == 0 {
		out = append(out, SuitableSoilAdvice)
	}

	return out
}
