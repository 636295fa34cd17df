package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapAndCode(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")
	err := Wrap(CodeHistory, "insert calculation", cause)

	require.Equal(t, "insert calculation: dial tcp: refused", err.Error())
	require.ErrorIs(t, err, cause)
	require.True(t, IsCode(err, CodeHistory))
	require.Equal(t, CodeHistory, CodeOf(fmt.Errorf("outer: %w", err)))
	require.Empty(t, CodeOf(cause))
	require.False(t, IsCode(nil, ""))
}

func TestIsCodeRequiresAppError(t *testing.T) {
	require.False(t, IsCode(fmt.Errorf("plain"), ""))
	require.False(t, IsCode(Wrap(CodeNotFound, "missing", nil), CodeHistory))
	require.True(t, IsCode(Wrap("", "uncoded", nil), ""))
}
