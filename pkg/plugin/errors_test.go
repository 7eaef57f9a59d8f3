package plugin

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProbeError(t *testing.T) {
	t.Run("message includes cause", func(t *testing.T) {
		err := NewError(KindAuth, "mysql", "connect", errors.New("access denied"))
		require.Equal(t, "mysql: auth_error failed in connect: access denied", err.Error())
	})

	t.Run("message without cause", func(t *testing.T) {
		err := NewError(KindConfig, "url", "new_probe", nil)
		require.Equal(t, "url: config_error failed in new_probe", err.Error())
	})

	t.Run("unwrap reaches cause", func(t *testing.T) {
		sentinel := errors.New("boom")
		err := NewError(KindConnection, "oracle", "connect", sentinel)
		require.ErrorIs(t, err, sentinel)
	})
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("iteration 3: %w", NewError(KindNetwork, "url", "request", errors.New("reset")))
	require.Equal(t, KindNetwork, KindOf(wrapped))
	require.Equal(t, KindQuery, KindOf(errors.New("plain")))
}
