package types

import (
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"
)

// CodeExample is a fenced code block lifted from a documentation page
type CodeExample struct {
	Code     string
	Language string
}

// TagSet is an unordered set of tags
type TagSet map[string]struct{}

// NewTagSet builds a set from the given tags
func NewTagSet(tags ...string) TagSet {
	s := make(TagSet, len(tags))
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

// Add inserts a tag; empty tags are ignored
func (s TagSet) Add(tag string) {
	if tag == "" {
		return
	}
	s[tag] = struct{}{}
}

// Has reports whether the tag is present
func (s TagSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Sorted returns the tags in ascending order
func (s TagSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Document is one indexed documentation page
type Document struct {
	// Identification
	ID        string // Derived from Filename, stable across re-ingestion
	Filename  string
	SourceURL string

	// Classification
	Title         string
	Category      DocumentCategory
	ComponentType ComponentType
	Tags          TagSet

	// Content
	Content      string
	CodeExamples []CodeExample
	WordCount    int

	LastIndexed time.Time
}

// DocumentID derives a stable identifier from a filename.
// "Bouton (button).md" and "bouton-button.md" map to the same ID.
func DocumentID(filename string) string {
	base := filepath.Base(filepath.ToSlash(filename))
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(base) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Validate checks the document carries the fields the index relies on
func (d *Document) Validate() error {
	if d.ID == "" {
		return ErrMissingDocumentID
	}
	if d.Title == "" {
		return ErrMissingTitle
	}
	switch d.Category {
	case DocComponent, DocCore, DocAnalytics, DocPattern, DocTemplate:
	default:
		return ErrInvalidCategory
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate indexed documents
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	dst := *d
	dst.CodeExamples = append([]CodeExample(nil), d.CodeExamples...)
	dst.Tags = make(TagSet, len(d.Tags))
	for t := range d.Tags {
		dst.Tags[t] = struct{}{}
	}
	return &dst
}
