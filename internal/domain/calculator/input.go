package calculator

import (
	"fmt"
	"math"
)

const (
	minAge = 1
	maxAge = 120
)

// Input is implemented by every validated calculator input.
type Input interface {
	Kind() Kind
	// UserData renders the entered values the way they are forwarded to the tip generator.
	UserData() string
}

// RawInput is the loosely typed form payload accepted over HTTP.
type RawInput struct {
	Age           *float64 `json:"age,omitempty"`
	Gender        string   `json:"gender,omitempty"`
	Height        *float64 `json:"height,omitempty"`
	Weight        *float64 `json:"weight,omitempty"`
	Neck          *float64 `json:"neck,omitempty"`
	Waist         *float64 `json:"waist,omitempty"`
	Hip           *float64 `json:"hip,omitempty"`
	ActivityLevel string   `json:"activityLevel,omitempty"`
	Unit          string   `json:"unit,omitempty"`
}

// BMIInput holds height and weight.
type BMIInput struct {
	Height Length
	Weight Mass
	Unit   UnitSystem
}

// CalorieInput holds everything the Harris-Benedict estimate needs.
type CalorieInput struct {
	Age      int
	Gender   Gender
	Height   Length
	Weight   Mass
	Activity ActivityLevel
	Unit     UnitSystem
}

// HeartRateInput only needs the age.
type HeartRateInput struct {
	Age int
}

// BodyFatInput holds the U.S. Navy circumferences. Hip is set only for females.
type BodyFatInput struct {
	Gender Gender
	Height Length
	Neck   Length
	Waist  Length
	Hip    *Length
	Unit   UnitSystem
}

// IdealWeightInput holds gender and height.
type IdealWeightInput struct {
	Gender Gender
	Height Length
	Unit   UnitSystem
}

// WHRInput holds waist and hip. Gender is optional.
type WHRInput struct {
	Waist  Length
	Hip    Length
	Gender Gender
	Unit   UnitSystem
}

// WaterIntakeInput holds weight and activity.
type WaterIntakeInput struct {
	Weight   Mass
	Activity ActivityLevel
	Unit     UnitSystem
}

func (BMIInput) Kind() Kind         { return KindBMI }
func (CalorieInput) Kind() Kind     { return KindCalorie }
func (HeartRateInput) Kind() Kind   { return KindHeartRate }
func (BodyFatInput) Kind() Kind     { return KindBodyFat }
func (IdealWeightInput) Kind() Kind { return KindIdealWeight }
func (WHRInput) Kind() Kind         { return KindWHR }
func (WaterIntakeInput) Kind() Kind { return KindWaterIntake }

// NewBMIInput validates a BMI form.
func NewBMIInput(height, weight float64, unit UnitSystem) (BMIInput, error) {
	if err := checkUnit(unit); err != nil {
		return BMIInput{}, err
	}
	if err := checkPositive("height", height); err != nil {
		return BMIInput{}, err
	}
	if err := checkPositive("weight", weight); err != nil {
		return BMIInput{}, err
	}
	return BMIInput{
		Height: Length{Value: height, System: unit},
		Weight: Mass{Value: weight, System: unit},
		Unit:   unit,
	}, nil
}

// NewCalorieInput validates a calorie needs form.
func NewCalorieInput(age int, gender Gender, height, weight float64, activity ActivityLevel, unit UnitSystem) (CalorieInput, error) {
	if err := checkUnit(unit); err != nil {
		return CalorieInput{}, err
	}
	if err := checkAge(age); err != nil {
		return CalorieInput{}, err
	}
	if err := checkGender(gender); err != nil {
		return CalorieInput{}, err
	}
	if err := checkPositive("height", height); err != nil {
		return CalorieInput{}, err
	}
	if err := checkPositive("weight", weight); err != nil {
		return CalorieInput{}, err
	}
	if err := checkActivity(activity); err != nil {
		return CalorieInput{}, err
	}
	return CalorieInput{
		Age:      age,
		Gender:   gender,
		Height:   Length{Value: height, System: unit},
		Weight:   Mass{Value: weight, System: unit},
		Activity: activity,
		Unit:     unit,
	}, nil
}

// NewHeartRateInput validates the age.
func NewHeartRateInput(age int) (HeartRateInput, error) {
	if err := checkAge(age); err != nil {
		return HeartRateInput{}, err
	}
	return HeartRateInput{Age: age}, nil
}

// NewBodyFatInput validates a body fat form. hip must be positive for females and is dropped for males.
func NewBodyFatInput(gender Gender, height, neck, waist float64, hip *float64, unit UnitSystem) (BodyFatInput, error) {
	if err := checkUnit(unit); err != nil {
		return BodyFatInput{}, err
	}
	if err := checkGender(gender); err != nil {
		return BodyFatInput{}, err
	}
	for _, f := range []struct {
		name  string
		value float64
	}{{"height", height}, {"neck", neck}, {"waist", waist}} {
		if err := checkPositive(f.name, f.value); err != nil {
			return BodyFatInput{}, err
		}
	}
	in := BodyFatInput{
		Gender: gender,
		Height: Length{Value: height, System: unit},
		Neck:   Length{Value: neck, System: unit},
		Waist:  Length{Value: waist, System: unit},
		Unit:   unit,
	}
	if gender == Female {
		if hip == nil || *hip <= 0 || math.IsNaN(*hip) {
			return BodyFatInput{}, invalid("hip", CodeHipRequired, "hip circumference is required and must be positive for females")
		}
		in.Hip = &Length{Value: *hip, System: unit}
	}
	return in, nil
}

// NewIdealWeightInput validates an ideal weight form.
func NewIdealWeightInput(gender Gender, height float64, unit UnitSystem) (IdealWeightInput, error) {
	if err := checkUnit(unit); err != nil {
		return IdealWeightInput{}, err
	}
	if err := checkGender(gender); err != nil {
		return IdealWeightInput{}, err
	}
	if err := checkPositive("height", height); err != nil {
		return IdealWeightInput{}, err
	}
	return IdealWeightInput{Gender: gender, Height: Length{Value: height, System: unit}, Unit: unit}, nil
}

// NewWHRInput validates a waist-to-hip form. An empty gender is allowed.
func NewWHRInput(waist, hip float64, gender Gender, unit UnitSystem) (WHRInput, error) {
	if err := checkUnit(unit); err != nil {
		return WHRInput{}, err
	}
	if err := checkPositive("waist", waist); err != nil {
		return WHRInput{}, err
	}
	if err := checkPositive("hip", hip); err != nil {
		return WHRInput{}, err
	}
	if gender != "" {
		if err := checkGender(gender); err != nil {
			return WHRInput{}, err
		}
	}
	return WHRInput{
		Waist:  Length{Value: waist, System: unit},
		Hip:    Length{Value: hip, System: unit},
		Gender: gender,
		Unit:   unit,
	}, nil
}

// NewWaterIntakeInput validates a water intake form.
func NewWaterIntakeInput(weight float64, activity ActivityLevel, unit UnitSystem) (WaterIntakeInput, error) {
	if err := checkUnit(unit); err != nil {
		return WaterIntakeInput{}, err
	}
	if err := checkPositive("weight", weight); err != nil {
		return WaterIntakeInput{}, err
	}
	if err := checkActivity(activity); err != nil {
		return WaterIntakeInput{}, err
	}
	return WaterIntakeInput{Weight: Mass{Value: weight, System: unit}, Activity: activity, Unit: unit}, nil
}

// Parse converts a raw form payload into the typed input for kind.
func Parse(kind Kind, raw RawInput) (Input, error) {
	switch kind {
	case KindBMI:
		unit, err := ParseUnitSystem(raw.Unit)
		if err != nil {
			return nil, err
		}
		height, weight, err := requireBoth("height", raw.Height, "weight", raw.Weight)
		if err != nil {
			return nil, err
		}
		return typed(NewBMIInput(height, weight, unit))
	case KindCalorie:
		unit, err := ParseUnitSystem(raw.Unit)
		if err != nil {
			return nil, err
		}
		age, err := parseAge(raw.Age)
		if err != nil {
			return nil, err
		}
		gender, err := ParseGender(raw.Gender, true)
		if err != nil {
			return nil, err
		}
		height, weight, err := requireBoth("height", raw.Height, "weight", raw.Weight)
		if err != nil {
			return nil, err
		}
		activity, err := ParseActivityLevel(raw.ActivityLevel)
		if err != nil {
			return nil, err
		}
		return typed(NewCalorieInput(age, gender, height, weight, activity, unit))
	case KindHeartRate:
		age, err := parseAge(raw.Age)
		if err != nil {
			return nil, err
		}
		return typed(NewHeartRateInput(age))
	case KindBodyFat:
		unit, err := ParseUnitSystem(raw.Unit)
		if err != nil {
			return nil, err
		}
		gender, err := ParseGender(raw.Gender, true)
		if err != nil {
			return nil, err
		}
		height, err := requireField("height", raw.Height)
		if err != nil {
			return nil, err
		}
		neck, waist, err := requireBoth("neck", raw.Neck, "waist", raw.Waist)
		if err != nil {
			return nil, err
		}
		return typed(NewBodyFatInput(gender, height, neck, waist, raw.Hip, unit))
	case KindIdealWeight:
		unit, err := ParseUnitSystem(raw.Unit)
		if err != nil {
			return nil, err
		}
		gender, err := ParseGender(raw.Gender, true)
		if err != nil {
			return nil, err
		}
		height, err := requireField("height", raw.Height)
		if err != nil {
			return nil, err
		}
		return typed(NewIdealWeightInput(gender, height, unit))
	case KindWHR:
		unit, err := ParseUnitSystem(raw.Unit)
		if err != nil {
			return nil, err
		}
		waist, hip, err := requireBoth("waist", raw.Waist, "hip", raw.Hip)
		if err != nil {
			return nil, err
		}
		gender, err := ParseGender(raw.Gender, false)
		if err != nil {
			return nil, err
		}
		return typed(NewWHRInput(waist, hip, gender, unit))
	case KindWaterIntake:
		unit, err := ParseUnitSystem(raw.Unit)
		if err != nil {
			return nil, err
		}
		weight, err := requireField("weight", raw.Weight)
		if err != nil {
			return nil, err
		}
		activity, err := ParseActivityLevel(raw.ActivityLevel)
		if err != nil {
			return nil, err
		}
		return typed(NewWaterIntakeInput(weight, activity, unit))
	default:
		return nil, fmt.Errorf("unknown calculator %q", kind)
	}
}

func typed[T Input](in T, err error) (Input, error) {
	if err != nil {
		return nil, err
	}
	return in, nil
}

func requireField(field string, value *float64) (float64, error) {
	if value == nil {
		return 0, invalid(field, CodeRequired, field+" is required")
	}
	return *value, nil
}

func requireBoth(fieldA string, a *float64, fieldB string, b *float64) (float64, float64, error) {
	va, err := requireField(fieldA, a)
	if err != nil {
		return 0, 0, err
	}
	vb, err := requireField(fieldB, b)
	if err != nil {
		return 0, 0, err
	}
	return va, vb, nil
}

func parseAge(value *float64) (int, error) {
	if value == nil {
		return 0, invalid("age", CodeRequired, "age is required")
	}
	if *value != math.Trunc(*value) || math.IsInf(*value, 0) {
		return 0, invalid("age", CodeNotInteger, "age must be a whole number")
	}
	if *value < minAge || *value > maxAge {
		return 0, invalid("age", CodeAgeOutOfRange, fmt.Sprintf("age must be between %d and %d", minAge, maxAge))
	}
	return int(*value), nil
}

func checkAge(age int) error {
	if age < minAge || age > maxAge {
		return invalid("age", CodeAgeOutOfRange, fmt.Sprintf("age must be between %d and %d", minAge, maxAge))
	}
	return nil
}

func checkPositive(field string, value float64) error {
	if !(value > 0) || math.IsInf(value, 0) {
		return invalid(field, CodeNotPositive, field+" must be a positive number")
	}
	return nil
}

func checkUnit(unit UnitSystem) error {
	if !unit.Valid() {
		return invalid("unit", CodeInvalidUnit, "unit must be metric or imperial")
	}
	return nil
}

func checkGender(gender Gender) error {
	if gender == "" {
		return invalid("gender", CodeRequired, "gender is required")
	}
	if !gender.Valid() {
		return invalid("gender", CodeInvalidGender, "gender must be male or female")
	}
	return nil
}

func checkActivity(activity ActivityLevel) error {
	if activity == "" {
		return invalid("activityLevel", CodeRequired, "activity level is required")
	}
	if !activity.Valid() {
		return invalid("activityLevel", CodeInvalidActivity, "activity level must be one of sedentary, light, moderate, active, very_active")
	}
	return nil
}
