package indexer

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// ErrUnsupportedFormat is returned for files whose extension has no extractor.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// SupportedExtensions lists the file extensions Extractor can read.
var SupportedExtensions = []string{".txt", ".md", ".pdf", ".docx"}

// SetPDFLicense registers the UniDoc metered license key used for PDF extraction.
func SetPDFLicense(key string) error {
	if err := license.SetMeteredKey(key); err != nil {
		return fmt.Errorf("failed to set PDF license key: %w", err)
	}
	return nil
}

// Extractor turns source files into plain text ready for normalization.
type Extractor struct {
	md goldmark.Markdown
}

// NewExtractor creates an extractor with GFM table support for markdown.
func NewExtractor() *Extractor {
	return &Extractor{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
	}
}

// ExtractFile reads path and returns its text content.
func (e *Extractor) ExtractFile(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read file %s: %w", path, err)
		}
		if ext == ".md" {
			return e.Markdown(data), nil
		}
		return strings.ToValidUTF8(string(data), ""), nil
	case ".pdf":
		return extractPDF(path)
	case ".docx":
		return extractDOCX(path)
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
}

// extractPDF joins the text of every page with newlines.
func extractPDF(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf %s: %w", path, err)
	}
	defer f.Close()

	reader, err := model.NewPdfReader(f)
	if err != nil {
		return "", fmt.Errorf("failed to parse pdf %s: %w", path, err)
	}
	numPages, err := reader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("failed to count pdf pages: %w", err)
	}

	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page, err := reader.GetPage(i)
		if err != nil {
			return "", fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		ex, err := extractor.New(page)
		if err != nil {
			return "", fmt.Errorf("failed to create extractor for page %d: %w", i, err)
		}
		pageText, err := ex.ExtractText()
		if err != nil {
			return "", fmt.Errorf("failed to extract pdf page %d: %w", i, err)
		}
		pages = append(pages, pageText)
	}
	return strings.ToValidUTF8(strings.Join(pages, "\n"), ""), nil
}

const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// extractDOCX returns the body paragraphs of a Word document, one per line.
func extractDOCX(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("failed to open docx %s: %w", path, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open document part: %w", err)
		}
		defer rc.Close()
		paragraphs, err := docxParagraphs(rc)
		if err != nil {
			return "", fmt.Errorf("failed to parse docx %s: %w", path, err)
		}
		return strings.Join(paragraphs, "\n"), nil
	}
	return "", fmt.Errorf("docx %s has no word/document.xml", path)
}

// docxParagraphs walks w:p elements, keeping w:t runs and mapping w:tab and w:br.
func docxParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var (
		paragraphs []string
		current    strings.Builder
		inPara     bool
		inText     bool
		propDepth  int // inside pPr/rPr, where w:tab is a tab stop
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return paragraphs, nil
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			if t.Name.Local == "pPr" || t.Name.Local == "rPr" {
				propDepth++
				continue
			}
			if propDepth > 0 {
				continue
			}
			switch t.Name.Local {
			case "p":
				inPara = true
				current.Reset()
			case "t":
				inText = true
			case "tab":
				current.WriteByte('\t')
			case "br", "cr":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "pPr", "rPr":
				propDepth--
			case "p":
				if inPara {
					paragraphs = append(paragraphs, current.String())
				}
				inPara = false
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
}

// Markdown renders markdown source as plain text. Blocks are separated by blank lines,
// ordered list items keep their "N. " numbering, thematic breaks become "___" rules
// and table rows are rendered as "a | b".
func (e *Extractor) Markdown(content []byte) string {
	content = []byte(strings.ToValidUTF8(string(content), ""))
	doc := e.md.Parser().Parse(text.NewReader(content))

	var blocks []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if s := renderBlock(n, content); s != "" {
			blocks = append(blocks, s)
		}
	}
	return strings.Join(blocks, "\n\n")
}

func renderBlock(n ast.Node, content []byte) string {
	switch node := n.(type) {
	case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
		return strings.TrimSpace(inlineText(node, content))

	case *ast.ThematicBreak:
		return "___"

	case *ast.CodeBlock, *ast.FencedCodeBlock:
		var b strings.Builder
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			b.Write(line.Value(content))
		}
		return strings.TrimRight(b.String(), "\n")

	case *ast.Blockquote:
		return renderChildren(node, content, "\n\n")

	case *ast.List:
		return renderList(node, content)

	case *extast.Table:
		var rows []string
		for row := node.FirstChild(); row != nil; row = row.NextSibling() {
			rows = append(rows, tableRowText(row, content))
		}
		return strings.Join(rows, "\n")

	case *ast.HTMLBlock:
		return ""
	}
	return renderChildren(n, content, "\n")
}

func renderChildren(n ast.Node, content []byte, sep string) string {
	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if s := renderBlock(c, content); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}

func renderList(list *ast.List, content []byte) string {
	var lines []string
	number := list.Start
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "- "
		if list.IsOrdered() {
			marker = strconv.Itoa(number) + ". "
			number++
		}
		body := renderChildren(item, content, "\n")
		lines = append(lines, marker+body)
	}
	return strings.Join(lines, "\n")
}

// inlineText concatenates the text under n, turning soft and hard line breaks into newlines.
func inlineText(n ast.Node, content []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(content))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.AutoLink:
			b.Write(v.Label(content))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// tableRowText formats the cells of a table row or header with pipe separators.
func tableRowText(row ast.Node, content []byte) string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if _, ok := cell.(*extast.TableCell); ok {
			cells = append(cells, strings.TrimSpace(inlineText(cell, content)))
		}
	}
	return strings.Join(cells, " | ")
}
