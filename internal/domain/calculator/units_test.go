package calculator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizationFactors(t *testing.T) {
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"inches to cm", Length{Value: 10, System: Imperial}.Centimeters(), 25.4},
		{"cm to inches", Length{Value: 25.4, System: Metric}.Inches(), 10},
		{"lb to kg", Mass{Value: 100, System: Imperial}.Kilograms(), 45.3592},
		{"kg to lb", Mass{Value: 45.3592, System: Metric}.Pounds(), 100},
		{"cm to m", Length{Value: 180, System: Metric}.Meters(), 1.8},
		{"metric kg identity", Mass{Value: 72, System: Metric}.Kilograms(), 72},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, tt.got, 1e-9)
		})
	}
}

func TestLengthRoundTrip(t *testing.T) {
	for _, cm := range []float64{0.5, 12.3, 99.99, 175, 250.75} {
		in := Length{Value: cm, System: Metric}.Inches()
		back := Length{Value: in, System: Imperial}.Centimeters()
		require.InDelta(t, cm, back, 0.01)
	}
}

func TestLengthAndMassNormalization(t *testing.T) {
	l := Length{Value: 70, System: Imperial}
	require.InDelta(t, 177.8, l.Centimeters(), 1e-9)
	require.InDelta(t, 1.778, l.Meters(), 1e-9)
	require.Equal(t, 70.0, l.Inches())

	l = Length{Value: 254, System: Metric}
	require.InDelta(t, 100, l.Inches(), 1e-9)

	m := Mass{Value: 200, System: Imperial}
	require.InDelta(t, 90.7184, m.Kilograms(), 1e-9)
	require.Equal(t, 200.0, m.Pounds())

	m = Mass{Value: 0.453592, System: Metric}
	require.InDelta(t, 1, m.Pounds(), 1e-9)
}
