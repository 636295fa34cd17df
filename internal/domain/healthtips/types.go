package healthtips

import (
	"strings"
	"time"

	"github.com/yanqian/healthcalc/pkg/metrics"
)

const (
	// CanonicalDisclaimer is attached whenever the backend omits one.
	CanonicalDisclaimer = "These tips are for informational purposes only and not a substitute for professional medical advice. Consult a healthcare provider for personalized guidance."
	// FallbackTip is the single tip returned when generation fails.
	FallbackTip = "An error occurred while generating tips. Please try again."

	SourceLLM      = "llm"
	SourceCache    = "cache"
	SourceFallback = "fallback"

	emptyUserData = "N/A"
)

// Request is the free-text summary forwarded to the tip backend.
type Request struct {
	CalculatorType   string `json:"calculatorType"`
	CalculatorResult string `json:"calculatorResult"`
	UserData         string `json:"userData,omitempty"`
}

func (r Request) normalized() Request {
	out := Request{
		CalculatorType:   strings.TrimSpace(r.CalculatorType),
		CalculatorResult: strings.TrimSpace(r.CalculatorResult),
		UserData:         strings.TrimSpace(r.UserData),
	}
	if out.UserData == "" {
		out.UserData = emptyUserData
	}
	return out
}

// Response always carries at least one tip and a disclaimer.
type Response struct {
	HealthTips []string            `json:"healthTips"`
	Disclaimer string              `json:"disclaimer"`
	Source     string              `json:"source"`
	DurationMs int64               `json:"durationMs,omitempty"`
	TokenUsage *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}

// Failed reports whether the response is the generation fallback.
func (r Response) Failed() bool {
	return r.Source == SourceFallback
}

// TipRecord is the cached form of a successful generation.
type TipRecord struct {
	Key        string    `json:"key"`
	HealthTips []string  `json:"healthTips"`
	Disclaimer string    `json:"disclaimer"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TrendingCalculator counts tip requests per calculator.
type TrendingCalculator struct {
	Calculator string `json:"calculator"`
	Count      int64  `json:"count"`
}

// Config holds runtime knobs for tip generation.
type Config struct {
	Model          string
	Temperature    float32
	Prompt         string
	MaxTips        int
	CacheTTL       time.Duration
	TopCalculators int
}

func fallbackResponse() Response {
	return Response{
		HealthTips: []string{FallbackTip},
		Disclaimer: CanonicalDisclaimer,
		Source:     SourceFallback,
	}
}
