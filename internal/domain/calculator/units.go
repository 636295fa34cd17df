package calculator

import "math"

const (
	cmPerInch   = 2.54
	kgPerPound  = 0.453592
	poundsPerKg = 2.20462
	cmPerMeter  = 100.0
)

// Length is a circumference or height entered in a unit system.
type Length struct {
	Value  float64
	System UnitSystem
}

// Centimeters normalizes the length to cm.
func (l Length) Centimeters() float64 {
	if l.System == Imperial {
		return l.Value * cmPerInch
	}
	return l.Value
}

// Inches normalizes the length to inches.
func (l Length) Inches() float64 {
	if l.System == Imperial {
		return l.Value
	}
	return l.Value / cmPerInch
}

// Meters normalizes the length to meters.
func (l Length) Meters() float64 {
	return l.Centimeters() / cmPerMeter
}

// Mass is a body weight entered in a unit system.
type Mass struct {
	Value  float64
	System UnitSystem
}

// Kilograms normalizes the mass to kg.
func (m Mass) Kilograms() float64 {
	if m.System == Imperial {
		return m.Value * kgPerPound
	}
	return m.Value
}

// Pounds normalizes the mass to lb.
func (m Mass) Pounds() float64 {
	if m.System == Imperial {
		return m.Value
	}
	return m.Value / kgPerPound
}

func roundTo(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}
