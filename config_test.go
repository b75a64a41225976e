package torchmaster

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig_Singleton(t *testing.T) {
	if DefaultConfig() != DefaultConfig() {
		t.Error("DefaultConfig() returned different instances")
	}
	cfg := DefaultConfig()
	if !cfg.TrimCode || cfg.LatexDelimiters || cfg.MarkdownSymbol.Bullet != "•" {
		t.Errorf("DefaultConfig() = %+v", cfg)
	}
}

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		check   func(t *testing.T, cfg *FileConfig)
		wantErr string
	}{
		{
			name: "empty keeps defaults",
			yaml: "",
			check: func(t *testing.T, cfg *FileConfig) {
				if cfg.Render.Width != 80 || cfg.Diagrams.Theme != "default" {
					t.Errorf("cfg = %+v / %+v", cfg.Render, cfg.Diagrams)
				}
			},
		},
		{
			name: "partial override",
			yaml: "render:\n  width: 100\n  latex_delimiters: true\n  symbols:\n    bullet: \"-\"\ndiagrams:\n  theme: dark\n",
			check: func(t *testing.T, cfg *FileConfig) {
				r := cfg.Render
				if r.Width != 100 || !r.LatexDelimiters || !r.TrimCode {
					t.Errorf("render = %+v", r)
				}
				if r.MarkdownSymbol.Bullet != "-" || r.MarkdownSymbol.Rule != "────────" {
					t.Errorf("symbols = %+v", r.MarkdownSymbol)
				}
				if cfg.Diagrams.Theme != "dark" || cfg.Diagrams.Width != 500 {
					t.Errorf("diagrams = %+v", cfg.Diagrams)
				}
			},
		},
		{
			name: "null sections",
			yaml: "render: null\ndiagrams: null\n",
			check: func(t *testing.T, cfg *FileConfig) {
				if cfg.Render == nil || cfg.Render.MarkdownSymbol == nil || cfg.Diagrams == nil {
					t.Errorf("cfg = %+v", cfg)
				}
			},
		},
		{name: "unknown key", yaml: "render:\n  colour: red\n", wantErr: "decode config"},
		{name: "bad type", yaml: "render:\n  width: wide\n", wantErr: "decode config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.yaml))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("ParseConfig() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseConfig() error = %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "torchmaster.yaml")
	if err := os.WriteFile(path, []byte("render:\n  trim_code: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Render.TrimCode {
		t.Error("trim_code not applied")
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadConfig() of missing file succeeded")
	}
}
