package models

import "strings"

// Document is the ordered text of one statement, as produced by a text source.
type Document struct {
	ID    string
	Path  string
	Lines []string
}

// NewDocument splits text into lines, normalizing CRLF and form feeds.
func NewDocument(id, path, text string) Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\f", "\n")
	return Document{ID: id, Path: path, Lines: strings.Split(text, "\n")}
}

// IsEmpty reports whether the document has no non-blank line.
func (d Document) IsEmpty() bool {
	for _, line := range d.Lines {
		if strings.TrimSpace(line) != "" {
			return false
		}
	}
	return true
}
