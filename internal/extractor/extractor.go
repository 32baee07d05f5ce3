// Package extractor turns a categorised source file into typed fragments.
//
// Extract is pure: given the same (category, path, content) it always returns
// the same Extraction and it never fails. The repository applies extractions to
// its entity maps; the extractor itself holds no state.
//
//	ext := extractor.Extract(types.CategoryComponent, "src/component/button/button.scss", scss)
//	// ext.Target == TargetComponent, ext.Name == "button"
//	// ext.Fragments == [{SlotStyle default}, {SlotFile button.scss}]
package extractor

import (
	"path"
	"regexp"
	"strings"

	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/categorizer"
	"github.com/Alexmacapple/DSFR-MCP-sub000/pkg/types"
)

// Target names the entity map an extraction is merged into
type Target string

const (
	TargetNone          Target = "none"
	TargetComponent     Target = "component"
	TargetCore          Target = "core"
	TargetUtility       Target = "utility"
	TargetAnalytics     Target = "analytics"
	TargetSchema        Target = "schema"
	TargetDocumentation Target = "documentation"
)

// Slot is the field of the target entity a fragment lands in
type Slot string

const (
	SlotFile          Slot = "file"
	SlotStyle         Slot = "style"
	SlotScript        Slot = "script"
	SlotTemplate      Slot = "template"
	SlotSchema        Slot = "schema"
	SlotDocumentation Slot = "documentation"
	SlotExample       Slot = "example"
	SlotRecord        Slot = "record"
)

// Style and script variant keys
const (
	VariantLegacy  = "legacy"
	VariantPrint   = "print"
	VariantMain    = "main"
	VariantAPI     = "api"
	VariantDefault = "default"
)

// Fragment is one typed piece of a file
type Fragment struct {
	Slot    Slot
	Key     string
	Content string
	Data    map[string]any // parsed schema data for SlotSchema
}

// Extraction is everything learned from one file
type Extraction struct {
	Category  types.Category
	Path      string
	Target    Target
	Name      string
	Fragments []Fragment
	Colors    []types.Color
	Icons     []types.Icon
}

// Retained reports whether the extraction contributes anything to the repository
func (e *Extraction) Retained() bool {
	return e.Target != TargetNone && (len(e.Fragments) > 0 || len(e.Colors) > 0 || len(e.Icons) > 0)
}

var examplePath = regexp.MustCompile(`/example/component/([^/]+)/`)

// Extract routes content according to its category
func Extract(category types.Category, filePath, content string) *Extraction {
	p := categorizer.Normalize(filePath)
	ext := &Extraction{Category: category, Path: filePath, Target: TargetNone}

	switch category {
	case types.CategoryComponent:
		extractComponent(ext, p, content)
	case types.CategoryCore:
		extractModule(ext, p, content, TargetCore, categorizer.MarkerCore)
	case types.CategoryUtility:
		extractModule(ext, p, content, TargetUtility, categorizer.MarkerUtility)
	case types.CategoryAnalytics:
		ext.Target = TargetAnalytics
		ext.Name = path.Base(p)
		ext.Fragments = []Fragment{{Slot: SlotRecord, Key: ext.Name, Content: content}}
	case types.CategoryExample:
		// Categorize already classifies "/example/component/<name>/" paths as
		// component, so they reach extractComponent. This branch serves callers
		// passing the example category explicitly.
		if m := examplePath.FindStringSubmatch(p); m != nil {
			ext.Target = TargetComponent
			ext.Name = m[1]
			ext.Fragments = []Fragment{{Slot: SlotExample, Key: filePath, Content: content}}
		}
	case types.CategorySchema:
		ext.Target = TargetSchema
		ext.Name = categorizer.SegmentAfter(p, categorizer.MarkerComponent)
		if ext.Name == "" {
			ext.Name = strings.TrimSuffix(path.Base(p), ".schema.yml")
		}
		ext.Fragments = []Fragment{{Slot: SlotSchema, Key: ext.Name, Data: ParseLenientYAML(content)}}
	case types.CategoryDocumentation:
		ext.Target = TargetDocumentation
		ext.Name = trimExt(path.Base(p))
		ext.Fragments = []Fragment{{Slot: SlotRecord, Key: ext.Name, Content: content}}
	}

	return ext
}

func extractComponent(ext *Extraction, p, content string) {
	name := categorizer.SegmentAfter(p, categorizer.MarkerComponent)
	if name == "" {
		return
	}
	ext.Target = TargetComponent
	ext.Name = name

	base := path.Base(p)
	switch {
	case strings.HasSuffix(base, ".scss"):
		ext.add(SlotStyle, styleVariant(base), content)
	case strings.HasSuffix(base, ".js"):
		ext.add(SlotScript, scriptVariant(base), content)
	case strings.HasSuffix(base, ".yml") || strings.HasSuffix(base, ".yaml"):
		ext.Fragments = append(ext.Fragments, Fragment{Slot: SlotSchema, Key: name, Data: ParseLenientYAML(content)})
	case strings.HasSuffix(base, ".md"):
		ext.add(SlotDocumentation, name, content)
	case strings.Contains(p, categorizer.MarkerExample):
		ext.add(SlotExample, ext.Path, content)
	case strings.HasSuffix(base, ".ejs"):
		ext.add(SlotTemplate, trimExt(base), content)
	}
	ext.add(SlotFile, base, content)
}

func extractModule(ext *Extraction, p, content string, target Target, marker string) {
	name := categorizer.SegmentAfter(p, marker)
	if name == "" {
		// Files sitting directly under the marker belong to the root module
		name = string(target)
	}
	ext.Target = target
	ext.Name = name

	base := path.Base(p)
	if strings.HasSuffix(base, ".md") {
		ext.add(SlotDocumentation, name, content)
	} else {
		ext.add(SlotFile, base, content)
	}

	if strings.HasSuffix(base, ".scss") {
		ext.Colors = ExtractColors(ext.Path, content)
	}
	if icon, ok := iconFromPath(ext.Path, p); ok {
		ext.Icons = append(ext.Icons, icon)
	}
}

func (e *Extraction) add(slot Slot, key, content string) {
	e.Fragments = append(e.Fragments, Fragment{Slot: slot, Key: key, Content: content})
}

func styleVariant(base string) string {
	switch {
	case strings.Contains(base, VariantLegacy):
		return VariantLegacy
	case strings.Contains(base, VariantPrint):
		return VariantPrint
	case strings.Contains(base, VariantMain):
		return VariantMain
	default:
		return VariantDefault
	}
}

func scriptVariant(base string) string {
	switch {
	case strings.Contains(base, VariantAPI):
		return VariantAPI
	case strings.Contains(base, VariantLegacy):
		return VariantLegacy
	case strings.Contains(base, VariantMain):
		return VariantMain
	default:
		return VariantDefault
	}
}

func trimExt(base string) string {
	return strings.TrimSuffix(base, path.Ext(base))
}
