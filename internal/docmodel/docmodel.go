package docmodel

import (
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/textnorm"
	"github.com/Alexmacapple/DSFR-MCP-sub000/pkg/types"
)

const (
	// DefaultHeaderScanLines bounds how far the header labels are searched for
	DefaultHeaderScanLines = 20

	// DefaultLanguage is assigned to fenced blocks without an info string
	DefaultLanguage = "html"

	labelURL      = "URL:"
	labelTitle    = "Title:"
	markerContent = "Markdown:"
)

// urlRules maps URL path fragments to document categories, first match wins
var urlRules = []struct {
	fragment string
	category types.DocumentCategory
}{
	{"/component/", types.DocComponent},
	{"/core/", types.DocCore},
	{"/analytics/", types.DocAnalytics},
	{"/pattern/", types.DocPattern},
	{"/template/", types.DocTemplate},
}

// typeKeywords are matched against folded title tokens, in this order
var typeKeywords = []struct {
	kind     types.ComponentType
	keywords []string
}{
	{types.TypeForm, []string{
		"formulaire", "form", "champ", "input", "saisie", "bouton", "button", "checkbox",
		"case a cocher", "radio", "select", "liste deroulante", "upload", "mot de passe",
		"password", "toggle", "interrupteur", "curseur", "range",
	}},
	{types.TypeNavigation, []string{
		"navigation", "menu", "fil d'ariane", "breadcrumb", "pagination", "lien", "link",
		"onglet", "onglets", "tab", "tabs", "sommaire", "header", "en-tete", "footer",
		"pied de page", "skiplink", "evitement",
	}},
	{types.TypeFeedback, []string{
		"alerte", "alert", "notice", "bandeau", "badge", "toast", "message", "modale",
		"modal", "tooltip", "infobulle", "erreur", "succes",
	}},
	{types.TypeContent, []string{
		"carte", "card", "tuile", "tile", "tableau", "table", "citation", "quote",
		"accordeon", "accordion", "tag", "media", "image", "video", "callout",
		"mise en avant", "highlight", "contenu", "content", "transcription",
	}},
	{types.TypeLayout, []string{
		"grille", "grid", "layout", "mise en page", "conteneur", "container",
		"espacement", "spacing", "responsive",
	}},
}

// TagVocabulary is the fixed set of domain keywords turned into tags
var TagVocabulary = []string{
	"accessibilité", "aria", "rgaa", "formulaire", "navigation", "bouton",
	"responsive", "mobile", "couleur", "typographie", "grille", "icône",
	"modale", "thème", "mode sombre", "javascript", "css", "html",
}

// Builder turns raw documentation sources into Documents
type Builder struct {
	HeaderScanLines int
	now             func() time.Time
}

// New creates a Builder with default settings
func New() *Builder {
	return &Builder{
		HeaderScanLines: DefaultHeaderScanLines,
		now:             time.Now,
	}
}

// SetClock replaces the clock used for LastIndexed
func (b *Builder) SetClock(now func() time.Time) {
	b.now = now
}

// Touch returns a copy of doc indexed again at the current time
func (b *Builder) Touch(doc *types.Document) *types.Document {
	touched := doc.Clone()
	if touched != nil {
		touched.LastIndexed = b.now()
	}
	return touched
}

// Build parses a documentation source into a Document. It never fails: a
// source without any header still yields a document titled after its filename.
func (b *Builder) Build(filename, source string) *types.Document {
	h := b.parseHeader(source)

	title := h.title
	if title == "" {
		title = firstHeading(h.body)
	}
	if title == "" {
		title = humanize(filename)
	}

	doc := &types.Document{
		ID:            types.DocumentID(filename),
		Filename:      path.Base(filepath.ToSlash(filename)),
		SourceURL:     h.url,
		Title:         title,
		Category:      CategoryFromURL(h.url),
		ComponentType: ComponentTypeFromTitle(title),
		Content:       h.body,
		CodeExamples:  ExtractCodeBlocks(h.body),
		Tags:          GenerateTags(title + "\n" + h.body),
		WordCount:     len(strings.Fields(h.body)),
		LastIndexed:   b.now(),
	}
	return doc
}

type header struct {
	url   string
	title string
	body  string
}

func (b *Builder) parseHeader(source string) header {
	lines := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")
	limit := b.HeaderScanLines
	if limit <= 0 {
		limit = DefaultHeaderScanLines
	}

	var h header
	bodyStart := -1
	for i := 0; i < len(lines) && i < limit; i++ {
		line := strings.TrimSpace(lines[i])
		switch {
		case strings.HasPrefix(line, labelURL) && h.url == "":
			h.url = labelValue(lines, i, labelURL)
		case strings.HasPrefix(line, labelTitle) && h.title == "":
			h.title = labelValue(lines, i, labelTitle)
		case strings.HasPrefix(line, markerContent):
			bodyStart = i + 1
			if rest := strings.TrimSpace(strings.TrimPrefix(line, markerContent)); rest != "" {
				// Content sharing the marker line belongs to the body
				lines[i] = rest
				bodyStart = i
			}
		}
		if bodyStart >= 0 {
			break
		}
	}

	if bodyStart < 0 {
		h.body = strings.TrimSpace(source)
		return h
	}
	h.body = strings.TrimSpace(strings.Join(lines[bodyStart:], "\n"))
	return h
}

// labelValue reads a label's value from the same line or, if empty, the next non-empty line
func labelValue(lines []string, i int, label string) string {
	v := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lines[i]), label))
	if v != "" {
		return v
	}
	for j := i + 1; j < len(lines); j++ {
		next := strings.TrimSpace(lines[j])
		if next == "" {
			continue
		}
		if strings.HasPrefix(next, labelURL) || strings.HasPrefix(next, labelTitle) || strings.HasPrefix(next, markerContent) {
			return ""
		}
		return next
	}
	return ""
}

// CategoryFromURL infers the document category from URL path fragments
func CategoryFromURL(url string) types.DocumentCategory {
	for _, r := range urlRules {
		if strings.Contains(url, r.fragment) {
			return r.category
		}
	}
	return types.DocComponent
}

// ComponentTypeFromTitle infers the component family from title keywords
func ComponentTypeFromTitle(title string) types.ComponentType {
	tokens := textnorm.Tokens(title)
	folded := " " + strings.Join(tokens, " ") + " "
	for _, group := range typeKeywords {
		for _, kw := range group.keywords {
			needle := " " + strings.Join(textnorm.Tokens(kw), " ") + " "
			if strings.Contains(folded, needle) {
				return group.kind
			}
		}
	}
	return types.TypeUtility
}

// GenerateTags scans text for vocabulary keywords, ignoring case and accents
func GenerateTags(text string) types.TagSet {
	folded := textnorm.Fold(text)
	tags := types.NewTagSet()
	for _, kw := range TagVocabulary {
		if strings.Contains(folded, textnorm.Fold(kw)) {
			tags.Add(kw)
		}
	}
	return tags
}

// ExtractCodeBlocks returns fenced code blocks in document order.
// An unterminated fence runs to the end of the text.
func ExtractCodeBlocks(body string) []types.CodeExample {
	var (
		blocks  []types.CodeExample
		inBlock bool
		fence   string
		lang    string
		buf     []string
	)

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if !inBlock {
			if f := fenceOf(trimmed); f != "" {
				inBlock = true
				fence = f
				lang = strings.TrimSpace(strings.TrimLeft(trimmed, f[:1]))
				if i := strings.IndexAny(lang, " {"); i >= 0 {
					lang = lang[:i]
				}
				if lang == "" {
					lang = DefaultLanguage
				}
				buf = buf[:0]
			}
			continue
		}
		if strings.HasPrefix(trimmed, fence) && strings.Trim(trimmed, fence[:1]) == "" {
			blocks = append(blocks, types.CodeExample{Code: strings.Join(buf, "\n"), Language: strings.ToLower(lang)})
			inBlock = false
			continue
		}
		buf = append(buf, line)
	}

	if inBlock && len(buf) > 0 {
		blocks = append(blocks, types.CodeExample{Code: strings.Join(buf, "\n"), Language: strings.ToLower(lang)})
	}
	return blocks
}

// fenceOf returns the fence run opening a code block, or ""
func fenceOf(line string) string {
	for _, ch := range []string{"`", "~"} {
		if strings.HasPrefix(line, ch+ch+ch) {
			n := len(line) - len(strings.TrimLeft(line, ch))
			return strings.Repeat(ch, n)
		}
	}
	return ""
}

func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}
	return ""
}

func humanize(filename string) string {
	base := path.Base(filepath.ToSlash(filename))
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return strings.TrimSpace(base)
}
