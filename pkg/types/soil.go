package types

import "time"

const (
	NutrientNitrogen   = "nitrogen"
	NutrientPhosphorus = "phosphorus"
	NutrientPotassium  = "potassium"
	NutrientSulphur    = "sulphur"
	NutrientPH         = "ph"
)

// Nutrients is stored as jsonb. A nutrient missing from the map reads as 0.
type Nutrients map[string]float64

type SoilReport struct {
	ID                 string    `db:"id" json:"id"`
	FarmerID           string    `db:"farmer_id" json:"-"`
	FarmName           string    `db:"farm_name" json:"farm_name"`
	SoilType           string    `db:"soil_type" json:"soil_type"`
	EstimatedNutrients Nutrients `db:"estimated_nutrients" json:"nutrients"`
	HealthScore        *float64  `db:"health_score" json:"health_score"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// SoilAnalysis is the structured answer expected from the model.
type SoilAnalysis struct {
	SoilType    string    `json:"soil_type"`
	HealthScore *float64  `json:"health_score"`
	Nutrients   Nutrients `json:"nutrients"`
}

type CropRequirement struct {
	CropName      string   `db:"crop_name" json:"crop_name"`
	NitrogenMin   *float64 `db:"nitrogen_min" json:"nitrogen_min"`
	PhosphorusMin *float64 `db:"phosphorus_min" json:"phosphorus_min"`
	PotassiumMin  *float64 `db:"potassium_min" json:"potassium_min"`
	SulphurMin    *float64 `db:"sulphur_min" json:"sulphur_min"`
	WaterNeed     *string  `db:"water_need" json:"water_need"`
	Climate       *string  `db:"climate" json:"climate"`
}

// Minimum returns the crop's minimum for a nutrient, 0 when unset.
func (c *CropRequirement) Minimum(nutrient string) float64 {
	var v *float64
	switch nutrient {
	case NutrientNitrogen:
		v = c.NitrogenMin
	case NutrientPhosphorus:
		v = c.PhosphorusMin
	case NutrientPotassium:
		v = c.PotassiumMin
	case NutrientSulphur:
		v = c.SulphurMin
	}
	if v == nil {
		return 0
	}
	return *v
}

type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Weather struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Condition   string  `json:"condition"`
}

type CropRecommendation struct {
	Crop            string    `json:"crop"`
	SoilType        string    `json:"soil_type"`
	Nutrients       Nutrients `json:"nutrients"`
	Recommendations []string  `json:"recommendations"`
	WaterNeed       *string   `json:"water_need"`
	Climate         *string   `json:"climate"`
	Location        Location  `json:"location"`
	Weather         *Weather  `json:"weather,omitempty"`
}
