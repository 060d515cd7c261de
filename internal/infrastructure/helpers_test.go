package infrastructure

import (
	"testing"

	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetExtensionFromMIME(t *testing.T) {
	ext, err := GetExtensionFromMIME("application/json")
	require.NoError(t, err)
	assert.Equal(t, "json", ext)

	ext, err = GetExtensionFromMIME("image/png")
	require.ErrorIs(t, err, e.ErrUnsupportedMediaType)
	assert.Equal(t, "bin", ext)
}
