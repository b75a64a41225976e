package torchmaster

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/riverfjs/torchmaster-go/internal/mermaid"
	"github.com/riverfjs/torchmaster-go/internal/types"
)

// 导出类型别名
type Symbol = types.Symbol
type RenderConfig = types.RenderConfig
type DiagramConfig = mermaid.Config

var (
	defaultConfig     *RenderConfig
	defaultConfigOnce sync.Once
)

// DefaultConfig returns the default render configuration (singleton).
func DefaultConfig() *RenderConfig {
	defaultConfigOnce.Do(func() {
		defaultConfig = types.DefaultRenderConfig()
	})
	return defaultConfig
}

// FileConfig is the layout of a configuration file.
//
//	render:
//	  width: 100
//	  latex_delimiters: true
//	  symbols:
//	    bullet: "-"
//	diagrams:
//	  theme: dark
type FileConfig struct {
	Render   *RenderConfig  `yaml:"render"`
	Diagrams *DiagramConfig `yaml:"diagrams"`
}

// LoadConfig reads a YAML configuration file. Keys missing from the file
// keep their default values.
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("torchmaster: read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML configuration data over the defaults.
func ParseConfig(data []byte) (*FileConfig, error) {
	cfg := &FileConfig{
		Render:   types.DefaultRenderConfig(),
		Diagrams: mermaid.DefaultConfig(),
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("torchmaster: decode config: %w", err)
	}
	if cfg.Render == nil {
		cfg.Render = types.DefaultRenderConfig()
	}
	if cfg.Render.MarkdownSymbol == nil {
		cfg.Render.MarkdownSymbol = types.DefaultSymbol()
	}
	if cfg.Diagrams == nil {
		cfg.Diagrams = mermaid.DefaultConfig()
	}
	return cfg, nil
}
