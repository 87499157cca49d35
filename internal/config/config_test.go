package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	conf, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), conf)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wall.toml")
	require.NoError(t, os.WriteFile(path, []byte("width = 64\nheight = 48\nbase_color = \"white\"\nport = 9000\n"), 0644))

	conf, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, conf.Width)
	assert.Equal(t, 48, conf.Height)
	assert.Equal(t, 9000, conf.Port)
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, conf.Base())
	// Untouched fields keep their defaults.
	assert.Equal(t, Default().ChunkSize, conf.ChunkSize)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wall.toml")
	require.NoError(t, os.WriteFile(path, []byte("width = = 64"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadSanitizesBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wall.toml")
	require.NoError(t, os.WriteFile(path, []byte("width = -3\nchunk_size = 0\nport = 99999\nbrush_radius = -1\n"), 0644))

	conf, err := Load(path)
	require.NoError(t, err)
	def := Default()
	assert.Equal(t, def.Width, conf.Width)
	assert.Equal(t, def.ChunkSize, conf.ChunkSize)
	assert.Equal(t, def.Port, conf.Port)
	assert.Equal(t, def.BrushRadius, conf.BrushRadius)
}

// Oversized values are as deadly as negative ones: a chunk_size past
// the transport frame budget gets late joiners disconnected instead of
// synced, and a runaway brush or canvas stalls or starves the node.
func TestLoadSanitizesOversizedValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wall.toml")
	require.NoError(t, os.WriteFile(path, []byte("width = 99999\nheight = 99999\nchunk_size = 60000\nbrush_radius = 5000\n"), 0644))

	conf, err := Load(path)
	require.NoError(t, err)
	def := Default()
	assert.Equal(t, def.Width, conf.Width)
	assert.Equal(t, def.Height, conf.Height)
	assert.Equal(t, def.ChunkSize, conf.ChunkSize)
	assert.Equal(t, def.BrushRadius, conf.BrushRadius)
}

func TestSaveRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "wall.toml")
	conf := Default()
	conf.Width = 256
	conf.BrushColor = "#00ff00"
	require.NoError(t, Save(path, conf))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, conf, loaded)
}

func TestParseHexColor(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 0x00, G: 0xff, B: 0x00, A: 0xff}, ParseHexColor("#00ff00"))
	assert.Equal(t, color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x40}, ParseHexColor("#10203040"))

	fallback := color.NRGBA{R: 0xc8, G: 0x1e, B: 0x1e, A: 0xff}
	assert.Equal(t, fallback, ParseHexColor(""))
	assert.Equal(t, fallback, ParseHexColor("red"))
	assert.Equal(t, fallback, ParseHexColor("#zzzzzz"))
	assert.Equal(t, fallback, ParseHexColor("#fff"))
}

func TestBaseColorDefaultsToTransparent(t *testing.T) {
	conf := Default()
	assert.Equal(t, color.NRGBA{}, conf.Base())
	conf.BaseColor = "chartreuse"
	assert.Equal(t, color.NRGBA{}, conf.Base())
}
