// Package repository holds the entities produced by ingestion.
//
// A Repository is an owned, injectable object: every map has its own RWMutex,
// so files of the same component processed concurrently in one batch merge
// safely while readers of unrelated maps are never blocked. Read accessors
// return copies.
package repository

import (
	"sort"
	"strings"
	"sync"

	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/extractor"
	"github.com/Alexmacapple/DSFR-MCP-sub000/pkg/types"
)

// guarded is a string-keyed map behind its own lock
type guarded[V any] struct {
	mu sync.RWMutex
	m  map[string]V
}

func newGuarded[V any]() *guarded[V] {
	return &guarded[V]{m: make(map[string]V)}
}

func (g *guarded[V]) update(key string, fn func(current V, ok bool) V) {
	g.mu.Lock()
	defer g.mu.Unlock()
	current, ok := g.m[key]
	g.m[key] = fn(current, ok)
}

func (g *guarded[V]) get(key string) (V, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.m[key]
	return v, ok
}

func (g *guarded[V]) keys() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.m))
	for k := range g.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (g *guarded[V]) len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.m)
}

// Repository stores components, modules, records and documents
type Repository struct {
	components    *guarded[*types.Component]
	coreModules   *guarded[*types.Module]
	utilities     *guarded[*types.Module]
	analytics     *guarded[types.AnalyticsRecord]
	schemas       *guarded[types.SchemaRecord]
	documentation *guarded[types.DocPage]
	documents     *guarded[storedDocument]
	icons         *guarded[types.Icon]
	colors        *guarded[types.Color]
}

// New creates an empty repository
func New() *Repository {
	return &Repository{
		components:    newGuarded[*types.Component](),
		coreModules:   newGuarded[*types.Module](),
		utilities:     newGuarded[*types.Module](),
		analytics:     newGuarded[types.AnalyticsRecord](),
		schemas:       newGuarded[types.SchemaRecord](),
		documentation: newGuarded[types.DocPage](),
		documents:     newGuarded[storedDocument](),
		icons:         newGuarded[types.Icon](),
		colors:        newGuarded[types.Color](),
	}
}

// Apply merges one extraction into the entity maps. Extractions for the same
// entity may be applied concurrently and in any order.
func (r *Repository) Apply(ext *extractor.Extraction) {
	if ext == nil || !ext.Retained() {
		return
	}

	switch ext.Target {
	case extractor.TargetComponent:
		r.components.update(ext.Name, func(c *types.Component, ok bool) *types.Component {
			if !ok {
				c = types.NewComponent(ext.Name)
			}
			applyComponent(c, ext)
			return c
		})
	case extractor.TargetCore:
		r.applyModule(r.coreModules, types.ModuleCore, ext)
	case extractor.TargetUtility:
		r.applyModule(r.utilities, types.ModuleUtility, ext)
	case extractor.TargetAnalytics:
		for _, f := range ext.Fragments {
			rec := types.AnalyticsRecord{Filename: f.Key, Path: ext.Path, Content: f.Content}
			r.analytics.update(f.Key, func(cur types.AnalyticsRecord, ok bool) types.AnalyticsRecord {
				return pickByPath(cur, rec, ok, cur.Path, rec.Path)
			})
		}
	case extractor.TargetSchema:
		for _, f := range ext.Fragments {
			rec := types.SchemaRecord{Name: ext.Name, Path: ext.Path, Data: f.Data}
			r.schemas.update(ext.Name, func(cur types.SchemaRecord, ok bool) types.SchemaRecord {
				return pickByPath(cur, rec, ok, cur.Path, rec.Path)
			})
		}
	case extractor.TargetDocumentation:
		for _, f := range ext.Fragments {
			page := types.DocPage{Name: f.Key, Path: ext.Path, Content: f.Content}
			r.documentation.update(f.Key, func(cur types.DocPage, ok bool) types.DocPage {
				return pickByPath(cur, page, ok, cur.Path, page.Path)
			})
		}
	}

	// One entry per declaring file, so a core token survives a utility redeclaration
	for _, c := range ext.Colors {
		c := c
		r.colors.update(c.Source+"#"+c.Name, func(types.Color, bool) types.Color { return c })
	}
	for _, icon := range ext.Icons {
		icon := icon
		r.icons.update(icon.Path, func(types.Icon, bool) types.Icon { return icon })
	}
}

// pickByPath keeps whichever value comes from the greater source path
func pickByPath[V any](cur, next V, ok bool, curPath, nextPath string) V {
	if ok && curPath > nextPath {
		return cur
	}
	return next
}

func applyComponent(c *types.Component, ext *extractor.Extraction) {
	for _, f := range ext.Fragments {
		switch f.Slot {
		case extractor.SlotStyle:
			c.SetStyle(f.Key, ext.Path, f.Content)
		case extractor.SlotScript:
			c.SetScript(f.Key, ext.Path, f.Content)
		case extractor.SlotTemplate:
			c.SetTemplate(f.Key, ext.Path, f.Content)
		case extractor.SlotSchema:
			c.SetSchema(ext.Path, f.Data)
		case extractor.SlotDocumentation:
			c.SetDocumentation(ext.Path, f.Content)
		case extractor.SlotExample:
			c.AddExample(f.Key, f.Content)
		case extractor.SlotFile:
			c.SetFile(f.Key, ext.Path, f.Content)
		}
	}
}

func (r *Repository) applyModule(g *guarded[*types.Module], kind types.ModuleKind, ext *extractor.Extraction) {
	if len(ext.Fragments) == 0 {
		return
	}
	g.update(ext.Name, func(m *types.Module, ok bool) *types.Module {
		if !ok {
			m = types.NewModule(ext.Name, kind)
		}
		for _, f := range ext.Fragments {
			switch f.Slot {
			case extractor.SlotDocumentation:
				m.SetDocumentation(ext.Path, f.Content)
			case extractor.SlotFile:
				m.SetFile(f.Key, ext.Path, f.Content)
			}
		}
		return m
	})
}

type storedDocument struct {
	path string
	doc  *types.Document
}

// PutDocument adds or replaces a document built from the file at path. When
// two files yield the same ID the greater path wins.
func (r *Repository) PutDocument(path string, doc *types.Document) {
	if doc == nil || doc.ID == "" {
		return
	}
	next := storedDocument{path: path, doc: doc.Clone()}
	r.documents.update(doc.ID, func(cur storedDocument, ok bool) storedDocument {
		return pickByPath(cur, next, ok, cur.path, next.path)
	})
}

// Component returns a copy of the named component. Lookup falls back to a
// case-insensitive match.
func (r *Repository) Component(name string) (*types.Component, bool) {
	var found *types.Component
	var ok bool
	r.components.mu.RLock()
	defer r.components.mu.RUnlock()
	if found, ok = r.components.m[name]; !ok {
		lower := strings.ToLower(strings.TrimSpace(name))
		found, ok = r.components.m[lower]
	}
	if !ok {
		return nil, false
	}
	return found.Clone(), true
}

// ComponentNames lists component names in ascending order
func (r *Repository) ComponentNames() []string { return r.components.keys() }

// Module returns a copy of a core or utility module
func (r *Repository) Module(kind types.ModuleKind, name string) (*types.Module, bool) {
	g := r.coreModules
	if kind == types.ModuleUtility {
		g = r.utilities
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	m, ok := g.m[name]
	if !ok {
		return nil, false
	}
	return m.Clone(), true
}

// ModuleNames lists module names of a kind in ascending order
func (r *Repository) ModuleNames(kind types.ModuleKind) []string {
	if kind == types.ModuleUtility {
		return r.utilities.keys()
	}
	return r.coreModules.keys()
}

// Analytics returns an analytics record by filename
func (r *Repository) Analytics(filename string) (types.AnalyticsRecord, bool) {
	return r.analytics.get(filename)
}

// Schema returns the schema record of a component
func (r *Repository) Schema(name string) (types.SchemaRecord, bool) {
	return r.schemas.get(name)
}

// DocPage returns a raw documentation page by name
func (r *Repository) DocPage(name string) (types.DocPage, bool) {
	return r.documentation.get(name)
}

// Document returns a copy of a document by ID
func (r *Repository) Document(id string) (*types.Document, bool) {
	stored, ok := r.documents.get(id)
	if !ok {
		return nil, false
	}
	return stored.doc.Clone(), true
}

// Documents returns copies of all documents ordered by ID
func (r *Repository) Documents() []*types.Document {
	r.documents.mu.RLock()
	defer r.documents.mu.RUnlock()
	out := make([]*types.Document, 0, len(r.documents.m))
	for _, stored := range r.documents.m {
		out = append(out, stored.doc.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Icons returns all icons ordered by category then name
func (r *Repository) Icons() []types.Icon {
	r.icons.mu.RLock()
	out := make([]types.Icon, 0, len(r.icons.m))
	for _, icon := range r.icons.m {
		out = append(out, icon)
	}
	r.icons.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// Colors returns every colour declaration ordered by name, then source
func (r *Repository) Colors() []types.Color {
	r.colors.mu.RLock()
	out := make([]types.Color, 0, len(r.colors.m))
	for _, c := range r.colors.m {
		out = append(out, c)
	}
	r.colors.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Source < out[j].Source
	})
	return out
}

// Counts reports the size of every map
type Counts struct {
	Components    int
	CoreModules   int
	Utilities     int
	Analytics     int
	Schemas       int
	Documentation int
	Documents     int
	Icons         int
	Colors        int
}

// Counts returns the current map sizes
func (r *Repository) Counts() Counts {
	return Counts{
		Components:    r.components.len(),
		CoreModules:   r.coreModules.len(),
		Utilities:     r.utilities.len(),
		Analytics:     r.analytics.len(),
		Schemas:       r.schemas.len(),
		Documentation: r.documentation.len(),
		Documents:     r.documents.len(),
		Icons:         r.icons.len(),
		Colors:        r.colors.len(),
	}
}
