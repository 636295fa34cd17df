package calculator

// Result is the closed set of calculator outcomes. Only types in this package implement it.
type Result interface {
	Kind() Kind
	sealed()
}

// BMIResult is the body mass index in kg/m².
type BMIResult struct {
	BMI      float64 `json:"bmi"`
	Category string  `json:"category"`
}

// CalorieResult is the estimated daily energy expenditure.
type CalorieResult struct {
	KcalPerDay int `json:"kcalPerDay"`
}

// HeartRateResult is the target training zone in bpm.
type HeartRateResult struct {
	Lower int `json:"lower"`
	Upper int `json:"upper"`
}

// BodyFatResult is the estimated body fat percentage.
type BodyFatResult struct {
	Percent  float64 `json:"bodyFat"`
	Category string  `json:"category"`
}

// IdealWeightResult is a weight range in kg or lbs.
type IdealWeightResult struct {
	Min  float64 `json:"idealWeightMin"`
	Max  float64 `json:"idealWeightMax"`
	Unit string  `json:"unit"`
}

// WHRResult is the waist-to-hip ratio and its risk band.
type WHRResult struct {
	Ratio float64 `json:"ratio"`
	Risk  string  `json:"risk"`
}

// WaterIntakeResult is the recommended daily intake in Liters or oz.
type WaterIntakeResult struct {
	Amount float64 `json:"dailyIntake"`
	Unit   string  `json:"unit"`
}

func (BMIResult) Kind() Kind         { return KindBMI }
func (CalorieResult) Kind() Kind     { return KindCalorie }
func (HeartRateResult) Kind() Kind   { return KindHeartRate }
func (BodyFatResult) Kind() Kind     { return KindBodyFat }
func (IdealWeightResult) Kind() Kind { return KindIdealWeight }
func (WHRResult) Kind() Kind         { return KindWHR }
func (WaterIntakeResult) Kind() Kind { return KindWaterIntake }

func (BMIResult) sealed()         {}
func (CalorieResult) sealed()     {}
func (HeartRateResult) sealed()   {}
func (BodyFatResult) sealed()     {}
func (IdealWeightResult) sealed() {}
func (WHRResult) sealed()         {}
func (WaterIntakeResult) sealed() {}

// Calculate dispatches a validated input to its formula.
func Calculate(in Input) Result {
	switch v := in.(type) {
	case BMIInput:
		return CalculateBMI(v)
	case CalorieInput:
		return CalculateCalories(v)
	case HeartRateInput:
		return CalculateHeartRate(v)
	case BodyFatInput:
		return CalculateBodyFat(v)
	case IdealWeightInput:
		return CalculateIdealWeight(v)
	case WHRInput:
		return CalculateWHR(v)
	case WaterIntakeInput:
		return CalculateWaterIntake(v)
	default:
		return nil
	}
}
