package healthcalc

import (
	"github.com/yanqian/healthcalc/internal/domain/calculator"
	"github.com/yanqian/healthcalc/internal/domain/healthtips"
)

// Evaluation is a validated, computed and formatted calculation.
type Evaluation struct {
	Kind     calculator.Kind
	Input    calculator.Input
	Result   calculator.Result
	Summary  calculator.Summary
	RecordID string
}

// Response is returned by the stateless calculate endpoint.
type Response struct {
	Calculator calculator.Kind     `json:"calculator"`
	Name       string              `json:"name"`
	Result     calculator.Result   `json:"result"`
	Summary    calculator.Summary  `json:"summary"`
	Tips       healthtips.Response `json:"tips"`
	RecordID   string              `json:"recordId,omitempty"`
}

// CatalogEntry describes one calculator for clients.
type CatalogEntry struct {
	Type        calculator.Kind `json:"type"`
	Name        string          `json:"name"`
	Fields      []string        `json:"fields"`
	TipRequests int64           `json:"tipRequests"`
}

var catalogFields = map[calculator.Kind][]string{
	calculator.KindBMI:         {"height", "weight", "unit"},
	calculator.KindCalorie:     {"age", "gender", "height", "weight", "activityLevel", "unit"},
	calculator.KindHeartRate:   {"age"},
	calculator.KindBodyFat:     {"gender", "height", "neck", "waist", "hip", "unit"},
	calculator.KindIdealWeight: {"gender", "height", "unit"},
	calculator.KindWHR:         {"waist", "hip", "gender", "unit"},
	calculator.KindWaterIntake: {"weight", "activityLevel", "unit"},
}
