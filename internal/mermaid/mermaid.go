// Package mermaid renders ```mermaid code blocks into preview images through
// the mermaid.ink service, with a mermaid.live edit link.
package mermaid

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	_ "golang.org/x/image/webp"
)

const (
	DefaultInkBase  = "https://mermaid.ink/img/"
	DefaultLiveBase = "https://mermaid.live/edit/#"

	// 预览图最大 8 MiB
	maxImageBytes = 8 << 20
)

// ErrNotImage is returned when the diagram service answers with data that
// does not decode as an image.
var ErrNotImage = errors.New("mermaid: response is not a valid image")

// Config 渲染配置
type Config struct {
	Theme    string `json:"theme" yaml:"theme"`
	Width    int    `json:"-" yaml:"width"`
	Scale    int    `json:"-" yaml:"scale"`
	Format   string `json:"-" yaml:"format"`
	InkBase  string `json:"-" yaml:"ink_base"`
	LiveBase string `json:"-" yaml:"live_base"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Theme:    "default",
		Width:    500,
		Scale:    2,
		Format:   "webp",
		InkBase:  DefaultInkBase,
		LiveBase: DefaultLiveBase,
	}
}

// Diagram is a rendered preview.
type Diagram struct {
	Image   []byte
	Format  string
	EditURL string
}

// Renderer 下载 Mermaid 预览图
type Renderer struct {
	config *Config
	client *http.Client
}

// NewRenderer creates a Renderer. A nil config uses DefaultConfig and a nil
// client gets a 10 second timeout.
func NewRenderer(config *Config, client *http.Client) *Renderer {
	if config == nil {
		config = DefaultConfig()
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Renderer{config: config, client: client}
}

// compressToDeflate 使用 zlib 压缩
func compressToDeflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := writer.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Pako encodes a diagram in the "pako:" form shared by mermaid.live and
// mermaid.ink: URL-safe base64 of zlib-compressed JSON state.
func Pako(diagram string, config *Config) (string, error) {
	if config == nil {
		config = DefaultConfig()
	}
	state := struct {
		Code    string  `json:"code"`
		Mermaid *Config `json:"mermaid"`
	}{diagram, config}

	data, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("mermaid: encode state: %w", err)
	}
	compressed, err := compressToDeflate(data)
	if err != nil {
		return "", fmt.Errorf("mermaid: compress state: %w", err)
	}
	return "pako:" + base64.URLEncoding.EncodeToString(compressed), nil
}

// EditURL returns the mermaid.live editor link for diagram.
func (r *Renderer) EditURL(diagram string) (string, error) {
	pako, err := Pako(diagram, r.config)
	if err != nil {
		return "", err
	}
	return r.config.LiveBase + pako, nil
}

// ImageURL returns the mermaid.ink image link for diagram.
func (r *Renderer) ImageURL(diagram string) (string, error) {
	pako, err := Pako(diagram, r.config)
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("theme", r.config.Theme)
	if r.config.Width > 0 {
		q.Set("width", fmt.Sprint(r.config.Width))
	}
	if r.config.Scale > 0 {
		q.Set("scale", fmt.Sprint(r.config.Scale))
	}
	if r.config.Format != "" {
		q.Set("type", r.config.Format)
	}
	return r.config.InkBase + pako + "?" + q.Encode(), nil
}

// Download fetches rawURL and returns its body.
func (r *Renderer) Download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("mermaid: build request: %w", err)
	}
	req.Header.Set("User-Agent", "torchmaster-go")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mermaid: download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mermaid: download image: HTTP %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("mermaid: read image: %w", err)
	}
	return data, nil
}

// ImageFormat returns the decoded format name ("png", "webp" ...) of data,
// or "" if data is not an image.
func ImageFormat(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	return format
}

// IsImage 检查数据是否为有效图片
func IsImage(data []byte) bool {
	return ImageFormat(data) != ""
}

// Render downloads the preview of a diagram and verifies it is an image.
func (r *Renderer) Render(ctx context.Context, diagram string) (*Diagram, error) {
	if strings.TrimSpace(diagram) == "" {
		return nil, errors.New("mermaid: empty diagram")
	}
	imgURL, err := r.ImageURL(diagram)
	if err != nil {
		return nil, err
	}
	editURL, err := r.EditURL(diagram)
	if err != nil {
		return nil, err
	}
	data, err := r.Download(ctx, imgURL)
	if err != nil {
		return nil, err
	}
	format := ImageFormat(data)
	if format == "" {
		return nil, ErrNotImage
	}
	return &Diagram{Image: data, Format: format, EditURL: editURL}, nil
}
