package calculator

import "strings"

// Kind identifies one of the supported calculators.
type Kind string

const (
	KindBMI         Kind = "bmi"
	KindCalorie     Kind = "calorie"
	KindHeartRate   Kind = "heart-rate"
	KindBodyFat     Kind = "body-fat"
	KindIdealWeight Kind = "ideal-weight"
	KindWHR         Kind = "whr"
	KindWaterIntake Kind = "water-intake"
)

// Kinds lists calculators in presentation order.
var Kinds = []Kind{
	KindBMI,
	KindCalorie,
	KindHeartRate,
	KindBodyFat,
	KindIdealWeight,
	KindWHR,
	KindWaterIntake,
}

var displayNames = map[Kind]string{
	KindBMI:         "BMI",
	KindCalorie:     "Calorie Intake",
	KindHeartRate:   "Target Heart Rate",
	KindBodyFat:     "Body Fat %",
	KindIdealWeight: "Ideal Weight",
	KindWHR:         "WHR",
	KindWaterIntake: "Water Intake",
}

// DisplayName is the label sent to the tip generator and shown to users.
func (k Kind) DisplayName() string {
	if name, ok := displayNames[k]; ok {
		return name
	}
	return string(k)
}

// ParseKind resolves a calculator slug.
func ParseKind(value string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(value)))
	_, ok := displayNames[k]
	return k, ok
}

// UnitSystem is the measurement system the user entered values in.
type UnitSystem string

const (
	Metric   UnitSystem = "metric"
	Imperial UnitSystem = "imperial"
)

// Valid reports whether the unit system is known.
func (u UnitSystem) Valid() bool {
	return u == Metric || u == Imperial
}

func (u UnitSystem) lengthLabel() string {
	if u == Imperial {
		return "in"
	}
	return "cm"
}

func (u UnitSystem) weightLabel() string {
	if u == Imperial {
		return "lbs"
	}
	return "kg"
}

// ParseUnitSystem defaults to metric when value is empty.
func ParseUnitSystem(value string) (UnitSystem, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Metric, nil
	}
	u := UnitSystem(v)
	if !u.Valid() {
		return "", invalid("unit", CodeInvalidUnit, "unit must be metric or imperial")
	}
	return u, nil
}

// Gender drives the sex-specific formulas and classifiers.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// Valid reports whether the gender is known.
func (g Gender) Valid() bool {
	return g == Male || g == Female
}

// ParseGender requires a value when required is true.
func ParseGender(value string, required bool) (Gender, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		if required {
			return "", invalid("gender", CodeRequired, "gender is required")
		}
		return "", nil
	}
	g := Gender(v)
	if !g.Valid() {
		return "", invalid("gender", CodeInvalidGender, "gender must be male or female")
	}
	return g, nil
}

// ActivityLevel is one of five ordered tiers.
type ActivityLevel string

const (
	Sedentary  ActivityLevel = "sedentary"
	Light      ActivityLevel = "light"
	Moderate   ActivityLevel = "moderate"
	Active     ActivityLevel = "active"
	VeryActive ActivityLevel = "very_active"
)

var calorieMultipliers = map[ActivityLevel]float64{
	Sedentary:  1.2,
	Light:      1.375,
	Moderate:   1.55,
	Active:     1.725,
	VeryActive: 1.9,
}

var waterMultipliers = map[ActivityLevel]float64{
	Sedentary:  1.0,
	Light:      1.1,
	Moderate:   1.25,
	Active:     1.4,
	VeryActive: 1.6,
}

// Valid reports whether the activity level is known.
func (a ActivityLevel) Valid() bool {
	_, ok := calorieMultipliers[a]
	return ok
}

// ParseActivityLevel requires one of the five tiers.
func ParseActivityLevel(value string) (ActivityLevel, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return "", invalid("activityLevel", CodeRequired, "activity level is required")
	}
	a := ActivityLevel(v)
	if !a.Valid() {
		return "", invalid("activityLevel", CodeInvalidActivity, "activity level must be one of sedentary, light, moderate, active, very_active")
	}
	return a, nil
}
