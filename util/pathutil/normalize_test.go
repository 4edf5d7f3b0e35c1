package pathutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	root := filepath.Join("pack", "config")
	rel, err := Normalize(root, filepath.Join(root, "plugins", "a.yml"))
	require.NoError(t, err)
	assert.Equal(t, "plugins/a.yml", rel)
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden(".a.yml.swp"))
	assert.True(t, IsHidden("plugins/.hidden/config.yml"))
	assert.True(t, IsHidden("plugins/.a.yml.swp"))

	assert.False(t, IsHidden("plugins/a.yml"))
	assert.False(t, IsHidden("server.properties"))
	assert.False(t, IsHidden("./plugins/a.yml"))
	assert.False(t, IsHidden("../config/a.yml"))
}
