package calculator

import (
	"fmt"
	"strconv"
	"strings"
)

// Summary is the textual form of a calculation consumed by the tip generator.
type Summary struct {
	CalculatorType   string `json:"calculatorType"`
	CalculatorResult string `json:"calculatorResult"`
	UserData         string `json:"userData"`
}

// Summarize formats a result together with the input it came from.
func Summarize(in Input, res Result) Summary {
	userData := strings.TrimSpace(in.UserData())
	if userData == "" {
		userData = "N/A"
	}
	return Summary{
		CalculatorType:   res.Kind().DisplayName(),
		CalculatorResult: FormatResult(res),
		UserData:         userData,
	}
}

// FormatResult renders a result with its units and category.
func FormatResult(res Result) string {
	switch r := res.(type) {
	case BMIResult:
		return fmt.Sprintf("%s kg/m² (%s)", num(r.BMI), r.Category)
	case CalorieResult:
		return fmt.Sprintf("%d kcal/day", r.KcalPerDay)
	case HeartRateResult:
		return fmt.Sprintf("Zone: %d - %d bpm", r.Lower, r.Upper)
	case BodyFatResult:
		return fmt.Sprintf("Body Fat: %s%% (%s)", fixed(r.Percent, 1), r.Category)
	case IdealWeightResult:
		return fmt.Sprintf("Range: %s - %s %s", fixed(r.Min, 1), fixed(r.Max, 1), r.Unit)
	case WHRResult:
		return fmt.Sprintf("Ratio: %s, Risk: %s", fixed(r.Ratio, 2), r.Risk)
	case WaterIntakeResult:
		return fmt.Sprintf("Recommended Intake: %s %s/day", fixed(r.Amount, 1), r.Unit)
	default:
		return ""
	}
}

func (in BMIInput) UserData() string {
	return fmt.Sprintf("Height: %s%s, Weight: %s%s, Unit System: %s.",
		num(in.Height.Value), in.Unit.lengthLabel(), num(in.Weight.Value), in.Unit.weightLabel(), in.Unit)
}

func (in CalorieInput) UserData() string {
	return fmt.Sprintf("Age: %d, Gender: %s, Height: %s%s, Weight: %s%s, Activity Level: %s, Unit System: %s.",
		in.Age, in.Gender, num(in.Height.Value), in.Unit.lengthLabel(), num(in.Weight.Value), in.Unit.weightLabel(), in.Activity, in.Unit)
}

func (in HeartRateInput) UserData() string {
	return fmt.Sprintf("Age: %d.", in.Age)
}

func (in BodyFatInput) UserData() string {
	l := in.Unit.lengthLabel()
	var b strings.Builder
	fmt.Fprintf(&b, "Gender: %s, Height: %s%s, Neck: %s%s, Waist: %s%s, ",
		in.Gender, num(in.Height.Value), l, num(in.Neck.Value), l, num(in.Waist.Value), l)
	if in.Gender == Female && in.Hip != nil {
		fmt.Fprintf(&b, "Hip: %s%s, ", num(in.Hip.Value), l)
	}
	fmt.Fprintf(&b, "Unit System: %s.", in.Unit)
	return b.String()
}

func (in IdealWeightInput) UserData() string {
	return fmt.Sprintf("Gender: %s, Height: %s%s, Unit System: %s.",
		in.Gender, num(in.Height.Value), in.Unit.lengthLabel(), in.Unit)
}

func (in WHRInput) UserData() string {
	l := in.Unit.lengthLabel()
	out := fmt.Sprintf("Waist: %s%s, Hip: %s%s, Unit System: %s.", num(in.Waist.Value), l, num(in.Hip.Value), l, in.Unit)
	if in.Gender != "" {
		out += fmt.Sprintf(" Gender: %s.", in.Gender)
	}
	return out
}

func (in WaterIntakeInput) UserData() string {
	return fmt.Sprintf("Weight: %s%s, Activity Level: %s, Unit System: %s.",
		num(in.Weight.Value), in.Unit.weightLabel(), in.Activity, in.Unit)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fixed(v float64, places int) string {
	return strconv.FormatFloat(v, 'f', places, 64)
}
