package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/categorizer"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/searchindex"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/textnorm"
	"github.com/Alexmacapple/DSFR-MCP-sub000/pkg/types"
)

const (
	// MaxIcons bounds the icons listed in one answer; the total is still reported
	MaxIcons = 100

	suggestionCount = 3
	excerptLength   = 200
)

// Color output formats
const (
	FormatHex  = "hex"
	FormatRGB  = "rgb"
	FormatCSS  = "css"
	FormatSCSS = "scss"
)

// SearchComponents runs a fuzzy search over documentation pages
func (s *Service) SearchComponents(ctx context.Context, query, category string, limit int) *Result {
	args := map[string]string{"query": query, "category": category, "limit": strconv.Itoa(limit)}
	return s.run(ctx, OpSearchComponents, args, s.ttls.Search, func(snap *Snapshot) (*Result, error) {
		cat := types.DocumentCategory(normalizeArg(category))
		if cat != "" && !cat.Valid() {
			return invalidArgument(OpSearchComponents, "category", category, documentCategoryNames()), nil
		}

		results, err := snap.Index.Search(searchindex.SearchRequest{
			Query:    query,
			Category: cat,
			Limit:    limit,
		})
		if err != nil {
			return nil, err
		}

		// Arguments differing only in case share a cache entry, so only
		// the normalised form may appear in the output
		var b strings.Builder
		query = normalizeArg(query)
		if query == "" {
			b.WriteString("# Components")
		} else {
			fmt.Fprintf(&b, "# Search results for %q", query)
		}
		if cat != "" {
			fmt.Fprintf(&b, " in %s", cat)
		}
		b.WriteString("\n\n")

		if len(results) == 0 {
			b.WriteString("No component matches this search.\n")
		} else {
			fmt.Fprintf(&b, "%d result(s)\n", len(results))
		}

		hits := make([]map[string]any, 0, len(results))
		for _, r := range results {
			writeSearchHit(&b, r)
			hits = append(hits, map[string]any{
				"id":    r.Document.ID,
				"title": r.Document.Title,
				"score": r.Score,
			})
		}

		return &Result{
			Text: b.String(),
			Metadata: map[string]any{
				"query":    query,
				"category": string(cat),
				"count":    len(results),
				"results":  hits,
			},
		}, nil
	})
}

func writeSearchHit(b *strings.Builder, r types.SearchResult) {
	doc := r.Document
	fmt.Fprintf(b, "\n## %d. %s\n", r.Rank, doc.Title)
	fmt.Fprintf(b, "- Category: %s\n", doc.Category)
	fmt.Fprintf(b, "- Type: %s\n", doc.ComponentType)
	fmt.Fprintf(b, "- Score: %.2f\n", r.Score)
	if doc.SourceURL != "" {
		fmt.Fprintf(b, "- URL: %s\n", doc.SourceURL)
	}
	if tags := doc.Tags.Sorted(); len(tags) > 0 {
		fmt.Fprintf(b, "- Tags: %s\n", strings.Join(tags, ", "))
	}
	if text := excerpt(doc.Content, excerptLength); text != "" {
		fmt.Fprintf(b, "\n%s\n", text)
	}
}

// GetComponentDetails describes one component from its source files and documentation
func (s *Service) GetComponentDetails(ctx context.Context, name string, includeExamples, includeAccessibility bool) *Result {
	args := map[string]string{
		"name":                  name,
		"include_examples":      boolArg(includeExamples),
		"include_accessibility": boolArg(includeAccessibility),
	}
	return s.run(ctx, OpGetComponentDetails, args, s.ttls.Details, func(snap *Snapshot) (*Result, error) {
		name = normalizeArg(name)
		if name == "" {
			return nil, types.ErrEmptyName
		}

		component, hasComponent := snap.Repo.Component(name)
		doc, hasDoc := findDocument(snap, name)
		if !hasComponent && !hasDoc {
			return notFound(snap, name), nil
		}

		var b strings.Builder
		title := name
		if hasDoc {
			title = doc.Title
		}
		fmt.Fprintf(&b, "# %s\n", title)

		if hasDoc {
			b.WriteString("\n")
			fmt.Fprintf(&b, "- Category: %s\n", doc.Category)
			fmt.Fprintf(&b, "- Type: %s\n", doc.ComponentType)
			if doc.SourceURL != "" {
				fmt.Fprintf(&b, "- URL: %s\n", doc.SourceURL)
			}
			if tags := doc.Tags.Sorted(); len(tags) > 0 {
				fmt.Fprintf(&b, "- Tags: %s\n", strings.Join(tags, ", "))
			}
			if summary := firstParagraph(doc.Content); summary != "" {
				fmt.Fprintf(&b, "\n%s\n", summary)
			}
		}

		examples := 0
		if hasComponent {
			writeComponentSources(&b, component, !hasDoc)
		}

		if includeExamples {
			b.WriteString("\n## Examples\n")
			if hasDoc {
				for _, ex := range doc.CodeExamples {
					fmt.Fprintf(&b, "\n```%s\n%s\n```\n", ex.Language, ex.Code)
					examples++
				}
			}
			if hasComponent {
				for _, ex := range component.Examples {
					fmt.Fprintf(&b, "\n%s\n```html\n%s\n```\n", ex.Path, strings.TrimSpace(ex.Content))
					examples++
				}
			}
			if examples == 0 {
				b.WriteString("\nNo example available.\n")
			}
		}

		var a11y []string
		if includeAccessibility {
			a11y = accessibilityNotes(doc, component)
			b.WriteString("\n## Accessibility\n\n")
			if len(a11y) == 0 {
				b.WriteString("No accessibility guidance found in the sources.\n")
			}
			for _, note := range a11y {
				fmt.Fprintf(&b, "- %s\n", note)
			}
		}

		meta := map[string]any{
			"found":             true,
			"name":              name,
			"has_component":     hasComponent,
			"has_documentation": hasDoc,
			"examples":          examples,
			"accessibility":     len(a11y),
		}
		if hasComponent {
			meta["files"] = len(component.Files)
		}
		if hasDoc {
			meta["id"] = doc.ID
		}
		return &Result{Text: b.String(), Metadata: meta}, nil
	})
}

// findDocument resolves name as a document ID, then as an exact title
func findDocument(snap *Snapshot, name string) (*types.Document, bool) {
	if doc, ok := snap.Repo.Document(types.DocumentID(name)); ok {
		return doc, true
	}
	results, err := snap.Index.Search(searchindex.SearchRequest{
		Query:     name,
		Limit:     1,
		Threshold: searchindex.Threshold(0),
	})
	if err != nil || len(results) == 0 {
		return nil, false
	}
	return results[0].Document, true
}

func notFound(snap *Snapshot, name string) *Result {
	var b strings.Builder
	fmt.Fprintf(&b, "Component %q not found.\n", name)

	suggestions := make([]string, 0, suggestionCount)
	results, err := snap.Index.Search(searchindex.SearchRequest{Query: name, Limit: suggestionCount})
	if err == nil {
		for _, r := range results {
			suggestions = append(suggestions, r.Document.Title)
		}
	}
	if len(suggestions) > 0 {
		fmt.Fprintf(&b, "\nDid you mean: %s?\n", strings.Join(suggestions, ", "))
	}

	return &Result{
		Text:     b.String(),
		Metadata: map[string]any{"found": false, "name": name, "suggestions": suggestions},
	}
}

func writeComponentSources(b *strings.Builder, c *types.Component, withDocumentation bool) {
	b.WriteString("\n## Sources\n\n")
	writeKeys(b, "Files", c.Files)
	writeKeys(b, "Styles", c.Styles)
	writeKeys(b, "Scripts", c.Scripts)
	writeKeys(b, "Templates", c.Templates)
	if c.Schema != nil {
		keys := make([]string, 0, len(c.Schema))
		for k := range c.Schema {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintf(b, "- Schema: %s\n", strings.Join(keys, ", "))
	}
	if withDocumentation && c.Documentation != "" {
		fmt.Fprintf(b, "\n%s\n", excerpt(c.Documentation, excerptLength))
	}
}

func writeKeys(b *strings.Builder, label string, m map[string]string) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(b, "- %s: %s\n", label, strings.Join(keys, ", "))
}

// a11yMarkers are folded substrings that flag a line as accessibility guidance
var a11yMarkers = []string{"accessib", "aria", "rgaa", "lecteur d'ecran", "screen reader", "contraste", "focus", "clavier", "keyboard"}

// accessibilityNotes collects guidance lines from the documentation and ARIA
// attributes used by the component examples
func accessibilityNotes(doc *types.Document, c *types.Component) []string {
	var notes []string
	seen := make(map[string]struct{})
	add := func(note string) {
		if _, ok := seen[note]; ok {
			return
		}
		seen[note] = struct{}{}
		notes = append(notes, note)
	}

	var sources []string
	if doc != nil {
		sources = append(sources, doc.Content)
	}
	if c != nil {
		sources = append(sources, c.Documentation)
	}
	for _, src := range sources {
		for _, line := range strings.Split(src, "\n") {
			line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#-*>"))
			if line == "" || strings.HasPrefix(line, "<") {
				continue
			}
			folded := textnorm.Fold(line)
			for _, marker := range a11yMarkers {
				if strings.Contains(folded, marker) {
					add(line)
					break
				}
			}
		}
	}

	var html []string
	if doc != nil {
		for _, ex := range doc.CodeExamples {
			html = append(html, ex.Code)
		}
	}
	if c != nil {
		for _, ex := range c.Examples {
			html = append(html, ex.Content)
		}
	}
	attrs := make(map[string]struct{})
	for _, h := range html {
		for _, m := range ariaAttr.FindAllString(h, -1) {
			attrs[m] = struct{}{}
		}
	}
	if len(attrs) > 0 {
		names := make([]string, 0, len(attrs))
		for a := range attrs {
			names = append(names, a)
		}
		sort.Strings(names)
		add("Attributes used in examples: " + strings.Join(names, ", "))
	}
	return notes
}

// ListCategories summarises documents per category and the ingested entities
func (s *Service) ListCategories(ctx context.Context) *Result {
	return s.run(ctx, OpListCategories, nil, s.ttls.Categories, func(snap *Snapshot) (*Result, error) {
		facets := snap.Index.Categories()
		counts := snap.Repo.Counts()

		var b strings.Builder
		b.WriteString("# Categories\n\n")
		b.WriteString("| Category | Documents |\n|---|---|\n")
		categories := make(map[string]any, len(facets))
		total := 0
		for _, cat := range types.AllDocumentCategories() {
			n := facets[cat]
			total += n
			categories[string(cat)] = n
			fmt.Fprintf(&b, "| %s | %d |\n", cat, n)
		}
		fmt.Fprintf(&b, "\n%d document(s)\n", total)

		b.WriteString("\n## Sources\n\n")
		fmt.Fprintf(&b, "- Components: %d\n", counts.Components)
		fmt.Fprintf(&b, "- Core modules: %d\n", counts.CoreModules)
		fmt.Fprintf(&b, "- Utilities: %d\n", counts.Utilities)
		fmt.Fprintf(&b, "- Analytics: %d\n", counts.Analytics)
		fmt.Fprintf(&b, "- Schemas: %d\n", counts.Schemas)
		fmt.Fprintf(&b, "- Icons: %d\n", counts.Icons)
		fmt.Fprintf(&b, "- Colors: %d\n", counts.Colors)

		return &Result{
			Text: b.String(),
			Metadata: map[string]any{
				"categories": categories,
				"total":      total,
				"components": counts.Components,
			},
		}, nil
	})
}

// SearchPatterns searches pattern pages, optionally restricted to one component type
func (s *Service) SearchPatterns(ctx context.Context, query, patternType string) *Result {
	args := map[string]string{"query": query, "pattern_type": patternType}
	return s.run(ctx, OpSearchPatterns, args, s.ttls.Patterns, func(snap *Snapshot) (*Result, error) {
		kind := types.ComponentType(normalizeArg(patternType))
		if kind != "" && !kind.Valid() {
			return invalidArgument(OpSearchPatterns, "pattern_type", patternType, componentTypeNames()), nil
		}

		results, err := snap.Index.Search(searchindex.SearchRequest{
			Query:    query,
			Category: types.DocPattern,
			Limit:    searchindex.MaxLimit,
		})
		if err != nil {
			return nil, err
		}

		matched := make([]types.SearchResult, 0, searchindex.DefaultLimit)
		for _, r := range results {
			if kind != "" && r.Document.ComponentType != kind {
				continue
			}
			if len(matched) == searchindex.DefaultLimit {
				break
			}
			r.Rank = len(matched) + 1
			matched = append(matched, r)
		}

		var b strings.Builder
		b.WriteString("# Patterns")
		if kind != "" {
			fmt.Fprintf(&b, " (%s)", kind)
		}
		b.WriteString("\n\n")
		if len(matched) == 0 {
			b.WriteString("No pattern matches this search.\n")
		} else {
			fmt.Fprintf(&b, "%d pattern(s)\n", len(matched))
		}
		ids := make([]string, 0, len(matched))
		for _, r := range matched {
			writeSearchHit(&b, r)
			ids = append(ids, r.Document.ID)
		}

		return &Result{
			Text: b.String(),
			Metadata: map[string]any{
				"query":        normalizeArg(query),
				"pattern_type": string(kind),
				"count":        len(matched),
				"ids":          ids,
			},
		}, nil
	})
}

// GetIcons lists icons filtered by category and a name fragment
func (s *Service) GetIcons(ctx context.Context, category, search string) *Result {
	args := map[string]string{"category": category, "search": search}
	return s.run(ctx, OpGetIcons, args, s.ttls.Icons, func(snap *Snapshot) (*Result, error) {
		wantCategory := normalizeArg(category)
		needle := textnorm.Fold(strings.TrimSpace(search))

		var matched []types.Icon
		categories := make(map[string]int)
		for _, icon := range snap.Repo.Icons() {
			categories[icon.Category]++
			if wantCategory != "" && strings.ToLower(icon.Category) != wantCategory {
				continue
			}
			if needle != "" && !strings.Contains(textnorm.Fold(icon.Name), needle) {
				continue
			}
			matched = append(matched, icon)
		}

		var b strings.Builder
		b.WriteString("# Icons\n\n")
		if len(matched) == 0 {
			b.WriteString("No icon matches.\n")
			if len(categories) > 0 {
				fmt.Fprintf(&b, "\nAvailable categories: %s\n", strings.Join(sortedKeys(categories), ", "))
			}
		} else {
			fmt.Fprintf(&b, "%d icon(s)\n", len(matched))
		}

		shown := matched
		if len(shown) > MaxIcons {
			shown = shown[:MaxIcons]
		}
		current := ""
		for _, icon := range shown {
			if icon.Category != current {
				current = icon.Category
				fmt.Fprintf(&b, "\n## %s\n\n", current)
			}
			fmt.Fprintf(&b, "- `fr-icon-%s`\n", icon.Name)
		}
		if len(matched) > len(shown) {
			fmt.Fprintf(&b, "\n%d more icon(s) not shown, refine the search.\n", len(matched)-len(shown))
		}

		return &Result{
			Text: b.String(),
			Metadata: map[string]any{
				"category": wantCategory,
				"search":   normalizeArg(search),
				"count":    len(matched),
				"shown":    len(shown),
			},
		}, nil
	})
}

// GetColors renders the colour tokens in the requested format. Tokens
// declared in utility sources are only listed when includeUtilities is set.
func (s *Service) GetColors(ctx context.Context, format string, includeUtilities bool) *Result {
	args := map[string]string{"format": format, "include_utilities": boolArg(includeUtilities)}
	return s.run(ctx, OpGetColors, args, s.ttls.Colors, func(snap *Snapshot) (*Result, error) {
		format = normalizeArg(format)
		if format == "" {
			format = FormatHex
		}
		switch format {
		case FormatHex, FormatRGB, FormatCSS, FormatSCSS:
		default:
			return invalidArgument(OpGetColors, "format", format, []string{FormatHex, FormatRGB, FormatCSS, FormatSCSS}), nil
		}

		var colors []types.Color
		for _, c := range snap.Repo.Colors() {
			if !includeUtilities && categorizer.Categorize(c.Source) == types.CategoryUtility {
				continue
			}
			// Colors is sorted by name then source: the greatest source wins
			if n := len(colors); n > 0 && colors[n-1].Name == c.Name {
				colors[n-1] = c
				continue
			}
			colors = append(colors, c)
		}

		var b strings.Builder
		b.WriteString("# Colors\n\n")
		if len(colors) == 0 {
			b.WriteString("No color token found.\n")
		}
		if format == FormatCSS {
			b.WriteString(":root {\n")
		}
		for _, c := range colors {
			switch format {
			case FormatHex:
				fmt.Fprintf(&b, "- %s: %s\n", c.Name, c.Value)
			case FormatRGB:
				fmt.Fprintf(&b, "- %s: %s\n", c.Name, hexToRGB(c.Value))
			case FormatCSS:
				fmt.Fprintf(&b, "  --%s: %s;\n", c.Name, c.Value)
			case FormatSCSS:
				fmt.Fprintf(&b, "$%s: %s;\n", c.Name, c.Value)
			}
		}
		if format == FormatCSS {
			b.WriteString("}\n")
		}

		return &Result{
			Text: b.String(),
			Metadata: map[string]any{
				"format":            format,
				"include_utilities": includeUtilities,
				"count":             len(colors),
			},
		}, nil
	})
}

// hexToRGB converts #rgb, #rrggbb and their alpha forms; other values are returned unchanged
func hexToRGB(hex string) string {
	h := strings.TrimPrefix(hex, "#")
	if len(h) == 3 || len(h) == 4 {
		var expanded strings.Builder
		for _, r := range h {
			expanded.WriteRune(r)
			expanded.WriteRune(r)
		}
		h = expanded.String()
	}
	if len(h) != 6 && len(h) != 8 {
		return hex
	}

	channel := func(i int) (uint64, bool) {
		v, err := strconv.ParseUint(h[i:i+2], 16, 8)
		return v, err == nil
	}
	r, ok1 := channel(0)
	g, ok2 := channel(2)
	bl, ok3 := channel(4)
	if !ok1 || !ok2 || !ok3 {
		return hex
	}
	if len(h) == 8 {
		a, ok := channel(6)
		if !ok {
			return hex
		}
		return fmt.Sprintf("rgba(%d, %d, %d, %.2f)", r, g, bl, float64(a)/255)
	}
	return fmt.Sprintf("rgb(%d, %d, %d)", r, g, bl)
}

func invalidArgument(op, name, value string, allowed []string) *Result {
	return &Result{
		Text:     fmt.Sprintf("Error in %s: invalid %s %q, expected one of: %s", op, name, value, strings.Join(allowed, ", ")),
		Metadata: map[string]any{"error": "invalid " + name, "allowed": allowed},
		IsError:  true,
	}
}

func documentCategoryNames() []string {
	var names []string
	for _, c := range types.AllDocumentCategories() {
		names = append(names, string(c))
	}
	return names
}

func componentTypeNames() []string {
	var names []string
	for _, t := range types.AllComponentTypes() {
		names = append(names, string(t))
	}
	return names
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
