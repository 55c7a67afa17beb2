package scan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarlsen/portsweep/internal/errors"
)

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("IP literal passes through", func(t *testing.T) {
		addr, err := Resolve(ctx, "192.0.2.7")
		require.NoError(t, err)
		assert.Equal(t, "192.0.2.7", addr)
	})

	t.Run("IPv6 literal passes through", func(t *testing.T) {
		addr, err := Resolve(ctx, "::1")
		require.NoError(t, err)
		assert.Equal(t, "::1", addr)
	})

	t.Run("localhost resolves to loopback", func(t *testing.T) {
		addr, err := Resolve(ctx, "localhost")
		require.NoError(t, err)
		assert.Contains(t, []string{"127.0.0.1", "::1"}, addr)
	})

	t.Run("unresolvable name is a resolution error", func(t *testing.T) {
		_, err := Resolve(ctx, "host.invalid")
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeResolution))
	})
}
