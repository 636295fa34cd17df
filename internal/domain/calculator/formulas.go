package calculator

import "math"

const (
	heartRateCeiling  = 220
	zoneLowerFraction = 0.50
	zoneUpperFraction = 0.85

	minBodyFat = 2.0
	maxBodyFat = 50.0

	devineBaseHeightIn = 60.0
	devineKgPerInch    = 2.3
	devineMaleBaseKg   = 50.0
	devineFemaleBaseKg = 45.5
	idealRangeFraction = 0.10

	waterOzPerLb  = 0.5
	waterMlPerKg  = 30.0
	mlPerLiter    = 1000.0
	unitLiters    = "Liters"
	unitOunces    = "oz"
	unitIdealKg   = "kg"
	unitIdealLbs  = "lbs"
	noGenderLabel = "Risk category requires gender selection"
)

// CalculateBMI computes weight / height² rounded to one decimal.
func CalculateBMI(in BMIInput) BMIResult {
	m := in.Height.Meters()
	bmi := roundTo(in.Weight.Kilograms()/(m*m), 1)
	return BMIResult{BMI: bmi, Category: BMICategory(bmi)}
}

// BMICategory uses inclusive lower bounds.
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25:
		return "Normal weight"
	case bmi < 30:
		return "Overweight"
	default:
		return "Obese"
	}
}

// BasalMetabolicRate uses the revised Harris-Benedict equation.
func BasalMetabolicRate(gender Gender, weightKg, heightCm float64, age int) float64 {
	if gender == Male {
		return 88.362 + 13.397*weightKg + 4.799*heightCm - 5.677*float64(age)
	}
	return 447.593 + 9.247*weightKg + 3.098*heightCm - 4.330*float64(age)
}

// CalculateCalories scales BMR by the activity multiplier.
func CalculateCalories(in CalorieInput) CalorieResult {
	bmr := BasalMetabolicRate(in.Gender, in.Weight.Kilograms(), in.Height.Centimeters(), in.Age)
	tdee := bmr * calorieMultipliers[in.Activity]
	return CalorieResult{KcalPerDay: int(math.Round(tdee))}
}

// CalculateHeartRate returns 50-85% of the age-predicted maximum.
func CalculateHeartRate(in HeartRateInput) HeartRateResult {
	maxHR := float64(heartRateCeiling - in.Age)
	return HeartRateResult{
		Lower: int(math.Round(maxHR * zoneLowerFraction)),
		Upper: int(math.Round(maxHR * zoneUpperFraction)),
	}
}

// CalculateBodyFat applies the U.S. Navy circumference method in inches.
func CalculateBodyFat(in BodyFatInput) BodyFatResult {
	height := in.Height.Inches()
	neck := in.Neck.Inches()
	waist := in.Waist.Inches()

	var bf float64
	if in.Gender == Male {
		bf = 86.010*math.Log10(waist-neck) - 70.041*math.Log10(height) + 36.76
	} else {
		var hip float64
		if in.Hip != nil {
			hip = in.Hip.Inches()
		}
		bf = 163.205*math.Log10(waist+hip-neck) - 97.684*math.Log10(height) - 78.387
	}
	// log10 of a non-positive span yields NaN/-Inf; clamp them to the floor.
	if math.IsNaN(bf) || bf < minBodyFat {
		bf = minBodyFat
	}
	if bf > maxBodyFat {
		bf = maxBodyFat
	}
	rounded := roundTo(bf, 1)
	return BodyFatResult{Percent: rounded, Category: BodyFatCategory(rounded, in.Gender)}
}

// BodyFatCategory maps a percentage to the ACE bands. Each band extends up to the next band's lower bound.
func BodyFatCategory(percent float64, gender Gender) string {
	if gender == Female {
		switch {
		case percent < 10:
			return "Critically Underfat"
		case percent < 14:
			return "Essential Fat"
		case percent < 21:
			return "Athletes"
		case percent < 25:
			return "Fitness"
		case percent <= 31:
			return "Acceptable"
		default:
			return "Obese"
		}
	}
	switch {
	case percent < 2:
		return "Critically Underfat"
	case percent < 6:
		return "Essential Fat"
	case percent < 14:
		return "Athletes"
	case percent < 18:
		return "Fitness"
	case percent <= 24:
		return "Acceptable"
	default:
		return "Obese"
	}
}

// DevineWeightKg is the base ideal weight. Heights at or below 60in get no height term.
func DevineWeightKg(gender Gender, heightIn float64) float64 {
	base := devineFemaleBaseKg
	if gender == Male {
		base = devineMaleBaseKg
	}
	if heightIn > devineBaseHeightIn {
		return base + devineKgPerInch*(heightIn-devineBaseHeightIn)
	}
	return base
}

// CalculateIdealWeight returns the Devine weight ±10% in the input unit system.
func CalculateIdealWeight(in IdealWeightInput) IdealWeightResult {
	base := DevineWeightKg(in.Gender, in.Height.Inches())
	lo := base * (1 - idealRangeFraction)
	hi := base * (1 + idealRangeFraction)
	if in.Unit == Imperial {
		return IdealWeightResult{
			Min:  roundTo(lo*poundsPerKg, 1),
			Max:  roundTo(hi*poundsPerKg, 1),
			Unit: unitIdealLbs,
		}
	}
	return IdealWeightResult{Min: roundTo(lo, 1), Max: roundTo(hi, 1), Unit: unitIdealKg}
}

// CalculateWHR divides waist by hip. Both share the entered unit so no conversion is needed.
func CalculateWHR(in WHRInput) WHRResult {
	ratio := roundTo(in.Waist.Value/in.Hip.Value, 2)
	if in.Gender == "" {
		return WHRResult{Ratio: ratio, Risk: noGenderLabel}
	}
	return WHRResult{Ratio: ratio, Risk: WHRRisk(ratio, in.Gender)}
}

// WHRRisk classifies a ratio with WHO cut-offs.
func WHRRisk(ratio float64, gender Gender) string {
	low, moderate := 0.95, 1.0
	if gender == Female {
		low, moderate = 0.80, 0.85
	}
	switch {
	case ratio <= low:
		return "Low Risk"
	case ratio <= moderate:
		return "Moderate Risk"
	default:
		return "High Risk"
	}
}

// CalculateWaterIntake returns Liters for metric input and oz for imperial input.
func CalculateWaterIntake(in WaterIntakeInput) WaterIntakeResult {
	mult := waterMultipliers[in.Activity]
	if in.Unit == Imperial {
		oz := in.Weight.Pounds() * waterOzPerLb * mult
		return WaterIntakeResult{Amount: roundTo(oz, 1), Unit: unitOunces}
	}
	ml := in.Weight.Kilograms() * waterMlPerKg * mult
	return WaterIntakeResult{Amount: roundTo(ml/mlPerLiter, 1), Unit: unitLiters}
}
