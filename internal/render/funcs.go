package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/yuin/goldmark"
)

var markdownRenderer = goldmark.New()

// Funcs is the function map available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"markdown": markdownToHTML,
		"xml":      escapeXML,
		"date":     formatDate,
		"join":     func(sep string, items []string) string { return strings.Join(items, sep) },
		"lower":    strings.ToLower,
		"upper":    strings.ToUpper,
	}
}

func markdownToHTML(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("markdown: %w", err)
	}
	return buf.String(), nil
}

func escapeXML(v any) (string, error) {
	var s string
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		s = val
	case fmt.Stringer:
		s = val.String()
	default:
		s = fmt.Sprint(val)
	}
	var buf strings.Builder
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// formatDate reformats an RFC 3339 timestamp, e.g. {{ .Updated | date "2006-01-02" }}.
// Empty input stays empty.
func formatDate(layout, value string) (string, error) {
	if value == "" {
		return "", nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return "", fmt.Errorf("date: %w", err)
	}
	return t.Format(layout), nil
}
