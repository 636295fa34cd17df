package tokens

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountTokensFallsBackToWords(t *testing.T) {
	c := newTestCounter(func(string) (encoder, error) { return nil, errors.New("offline") })

	require.Equal(t, 4, c.CountTokens("gpt-4o-mini", "drink more water daily"))
	require.Equal(t, 0, c.CountTokens("gpt-4o-mini", "   "))
}

func TestCountTokensCachesEncoders(t *testing.T) {
	loads := 0
	c := newTestCounter(func(string) (encoder, error) {
		loads++
		return fixedEncoder{}, nil
	})

	require.Equal(t, 5, c.CountTokens("m", "hello"))
	require.Equal(t, 3, c.CountTokens("m", "abc"))
	require.Equal(t, 1, loads)
}

func TestCountTokensRemembersFailures(t *testing.T) {
	loads := 0
	c := newTestCounter(func(string) (encoder, error) {
		loads++
		return nil, errors.New("offline")
	})

	c.CountTokens("m", "a b")
	c.CountTokens("m", "a b")
	require.Equal(t, 1, loads)
}

func newTestCounter(load func(string) (encoder, error)) *Counter {
	c := NewCounter(slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.load = load
	return c
}

// fixedEncoder yields one token per byte.
type fixedEncoder struct{}

func (fixedEncoder) Encode(text string, _ []string, _ []string) []int {
	return make([]int, len(text))
}
