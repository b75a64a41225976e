package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/riverfjs/torchmaster-go/internal/render"
	"github.com/riverfjs/torchmaster-go/internal/types"
)

// outputWriter is implemented by the HTML, ANSI and JSON outputs.
type outputWriter interface {
	WriteDocument(w io.Writer, contents []types.Content) error
	WriteTranscript(w io.Writer, views []types.MessageView, ts render.Typesetter) error
}

func newOutputWriter(format string, width int, symbols *types.Symbol, plain bool) (outputWriter, error) {
	switch format {
	case "ansi":
		return render.NewANSI(width, symbols, plain), nil
	case "html":
		return render.NewHTML(symbols), nil
	case "json":
		return jsonWriter{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want ansi, html or json)", format)
	}
}

// jsonWriter 输出拆分结果，便于其他程序消费
type jsonWriter struct{}

type jsonContent struct {
	Type     string      `json:"type"`
	Block    types.Block `json:"block"`
	FileName string      `json:"file_name,omitempty"`
	Rendered string      `json:"rendered,omitempty"`
	EditURL  string      `json:"edit_url,omitempty"`
}

type jsonMessage struct {
	Role      types.Role       `json:"role"`
	Text      string           `json:"text"`
	Pending   bool             `json:"pending,omitempty"`
	Fragments []types.Fragment `json:"fragments"`
}

func (jsonWriter) WriteDocument(w io.Writer, contents []types.Content) error {
	out := make([]jsonContent, 0, len(contents))
	for _, c := range contents {
		item := jsonContent{Type: c.GetContentType().String(), Block: c.Source()}
		switch c := c.(type) {
		case *types.Code:
			item.FileName = c.FileName
		case *types.Math:
			item.Rendered = c.Rendered
		case *types.Diagram:
			item.FileName, item.EditURL = c.FileName, c.EditURL
		}
		out = append(out, item)
	}
	return encode(w, out)
}

func (jsonWriter) WriteTranscript(w io.Writer, views []types.MessageView, _ render.Typesetter) error {
	out := make([]jsonMessage, 0, len(views))
	for _, v := range views {
		out = append(out, jsonMessage{Role: v.Message.Role, Text: v.Message.Text, Pending: v.Pending, Fragments: v.Fragments})
	}
	return encode(w, out)
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
