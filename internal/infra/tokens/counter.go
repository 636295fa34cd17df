package tokens

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

type encoder interface {
	Encode(text string, allowedSpecial []string, disallowedSpecial []string) []int
}

// Counter estimates token counts with the model's BPE encoding.
// Encodings are loaded lazily and cached per model; when none can be loaded
// the counter falls back to whitespace separated words.
type Counter struct {
	mu       sync.Mutex
	encoders map[string]encoder
	failed   map[string]bool
	load     func(model string) (encoder, error)
	logger   *slog.Logger
}

// NewCounter constructs a tiktoken backed counter.
func NewCounter(logger *slog.Logger) *Counter {
	return &Counter{
		encoders: make(map[string]encoder),
		failed:   make(map[string]bool),
		load:     loadEncoding,
		logger:   logger.With("component", "tokens.counter"),
	}
}

// CountTokens returns the number of tokens text encodes to for model.
func (c *Counter) CountTokens(model, text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	enc := c.encoderFor(model)
	if enc == nil {
		return len(strings.Fields(text))
	}
	return len(enc.Encode(text, nil, nil))
}

func (c *Counter) encoderFor(model string) encoder {
	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.encoders[model]; ok {
		return enc
	}
	if c.failed[model] {
		return nil
	}
	enc, err := c.load(model)
	if err != nil {
		c.logger.Warn("token encoding unavailable, counting words", "model", model, "error", err)
		c.failed[model] = true
		return nil
	}
	c.encoders[model] = enc
	return enc
}

func loadEncoding(model string) (encoder, error) {
	if enc, err := tiktoken.EncodingForModel(model); err == nil {
		return enc, nil
	}
	enc, err := tiktoken.GetEncoding(fallbackEncoding)
	if err != nil {
		return nil, err
	}
	return enc, nil
}
