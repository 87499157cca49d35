// Package config loads and saves wall settings from a TOML file.
package config

import (
	"bytes"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"GraffitiWall/internal/chunk"
	"GraffitiWall/internal/wire"
)

const DefaultFile = "graffitiwall.toml"

// maxDim caps a canvas dimension. Two rasters of maxDim squared pixels
// already cost 128MB; anything larger is a typo, not a wall.
const maxDim = 4096

// Config holds everything tunable about a wall session. Zero or
// missing fields fall back to the defaults from Default.
type Config struct {
	Width       int    `toml:"width"`
	Height      int    `toml:"height"`
	BaseColor   string `toml:"base_color"`
	ChunkSize   int    `toml:"chunk_size"`
	Port        int    `toml:"port"`
	BrushRadius int    `toml:"brush_radius"`
	BrushColor  string `toml:"brush_color"`
}

func Default() Config {
	return Config{
		Width:       1028,
		Height:      1028,
		BaseColor:   "transparent",
		ChunkSize:   chunk.DefaultSize,
		Port:        8890,
		BrushRadius: 6,
		BrushColor:  "#c81e1e",
	}
}

// Load reads path over the defaults. A missing file is not an error,
// the defaults are returned as-is. Out-of-range values are logged and
// replaced with their defaults so a bad file never kills a session.
func Load(path string) (Config, error) {
	conf := Default()
	if path == "" {
		path = DefaultFile
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return conf, nil
	}
	if _, err := toml.DecodeFile(path, &conf); err != nil {
		return Default(), fmt.Errorf("read config %s: %w", path, err)
	}
	conf.sanitize()
	return conf, nil
}

// Save writes conf to path, creating parent directories as needed.
func Save(path string, conf Config) error {
	if path == "" {
		path = DefaultFile
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	var buffer bytes.Buffer
	if err := toml.NewEncoder(&buffer).Encode(&conf); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, buffer.Bytes(), 0644)
}

func (c *Config) sanitize() {
	def := Default()
	if c.Width <= 0 || c.Height <= 0 || c.Width > maxDim || c.Height > maxDim {
		log.Printf("[CONFIG] invalid canvas size %dx%d, using %dx%d", c.Width, c.Height, def.Width, def.Height)
		c.Width, c.Height = def.Width, def.Height
	}
	// Above chunk.MaxSize a chunk frame no longer fits the transport's
	// read limit and late joiners get disconnected instead of synced.
	if c.ChunkSize <= 0 || c.ChunkSize > chunk.MaxSize {
		log.Printf("[CONFIG] invalid chunk_size %d, using %d", c.ChunkSize, def.ChunkSize)
		c.ChunkSize = def.ChunkSize
	}
	if c.Port <= 0 || c.Port > 65535 {
		log.Printf("[CONFIG] invalid port %d, using %d", c.Port, def.Port)
		c.Port = def.Port
	}
	if c.BrushRadius < 0 || c.BrushRadius > wire.MaxRadius {
		log.Printf("[CONFIG] invalid brush_radius %d, using %d", c.BrushRadius, def.BrushRadius)
		c.BrushRadius = def.BrushRadius
	}
}

// Base resolves the base_color field. Anything other than "white"
// means a fully transparent wall.
func (c Config) Base() color.NRGBA {
	if c.BaseColor == "white" {
		return color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
	return color.NRGBA{}
}

// Brush resolves the brush_color field.
func (c Config) Brush() color.NRGBA {
	return ParseHexColor(c.BrushColor)
}

// ParseHexColor parses #rrggbb or #rrggbbaa. Returns an opaque red if
// the string does not parse.
func ParseHexColor(s string) color.NRGBA {
	c := color.NRGBA{R: 0xc8, G: 0x1e, B: 0x1e, A: 0xff}
	if len(s) == 0 || s[0] != '#' {
		return c
	}
	var ri, gi, bi, ai uint32
	switch len(s) {
	case 7:
		if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &ri, &gi, &bi); err == nil {
			c = color.NRGBA{R: uint8(ri), G: uint8(gi), B: uint8(bi), A: 0xff}
		}
	case 9:
		if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x%02x", &ri, &gi, &bi, &ai); err == nil {
			c = color.NRGBA{R: uint8(ri), G: uint8(gi), B: uint8(bi), A: uint8(ai)}
		}
	}
	return c
}
