package service

import (
	"errors"
	"path/filepath"
	"strings"
)

// Export formats.
const (
	FormatText = "txt"
	FormatJSON = "json"
)

// DefaultExportName is used when an export request carries no file name.
const DefaultExportName = "chat_export"

// ErrUnsupportedFormat is returned for export formats other than txt and json.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ExportRequest asks for a conversation transcript as a downloadable file.
type ExportRequest struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	Filename string `json:"filename"`
}

// ExportFile is a rendered export ready to be sent as an attachment.
type ExportFile struct {
	Name        string
	ContentType string
	Body        []byte
}

// Export renders req. An empty type means txt.
func Export(req ExportRequest) (ExportFile, error) {
	format := strings.ToLower(strings.TrimSpace(req.Type))
	if format == "" {
		format = FormatText
	}

	var contentType string
	switch format {
	case FormatText:
		contentType = "text/plain; charset=utf-8"
	case FormatJSON:
		contentType = "application/json"
	default:
		return ExportFile{}, ErrUnsupportedFormat
	}

	return ExportFile{
		Name:        exportName(req.Filename) + "." + format,
		ContentType: contentType,
		Body:        []byte(req.Content),
	}, nil
}

// exportName reduces name to a bare file name without directories or quotes.
func exportName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(strings.TrimSpace(name))
	name = strings.Map(func(r rune) rune {
		if r == '"' || r < 0x20 {
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == "/" {
		return DefaultExportName
	}
	return name
}
