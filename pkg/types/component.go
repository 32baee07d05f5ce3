package types

import (
	"sort"
)

// Example is an HTML usage sample attached to a component
type Example struct {
	Path    string
	Content string
}

// origins records which source path currently owns each keyed slot.
// When two files compete for the same slot the greater path wins, which
// keeps merging independent of the order files were processed in.
type origins map[string]string

func (o origins) claim(slot, path string) bool {
	if current, ok := o[slot]; ok && current > path {
		return false
	}
	o[slot] = path
	return true
}

// Component aggregates every source file that belongs to one named UI component.
// Any subset of fields may be empty: a component with styles only is valid.
type Component struct {
	Name          string
	Files         map[string]string // basename -> content
	Styles        map[string]string // legacy|print|main|default -> content
	Scripts       map[string]string // api|legacy|main|default -> content
	Templates     map[string]string // template name -> content
	Documentation string
	Schema        map[string]any // nil when no schema file was seen
	Examples      []Example      // sorted by path

	origins origins
}

// NewComponent creates an empty component
func NewComponent(name string) *Component {
	return &Component{
		Name:      name,
		Files:     make(map[string]string),
		Styles:    make(map[string]string),
		Scripts:   make(map[string]string),
		Templates: make(map[string]string),
		origins:   make(origins),
	}
}

func (c *Component) ensure() {
	if c.Files == nil {
		c.Files = make(map[string]string)
	}
	if c.Styles == nil {
		c.Styles = make(map[string]string)
	}
	if c.Scripts == nil {
		c.Scripts = make(map[string]string)
	}
	if c.Templates == nil {
		c.Templates = make(map[string]string)
	}
	if c.origins == nil {
		c.origins = make(origins)
	}
}

// SetFile stores content verbatim under its basename
func (c *Component) SetFile(name, path, content string) {
	c.ensure()
	if c.origins.claim("files/"+name, path) {
		c.Files[name] = content
	}
}

// SetStyle stores a stylesheet under its variant key
func (c *Component) SetStyle(variant, path, content string) {
	c.ensure()
	if c.origins.claim("styles/"+variant, path) {
		c.Styles[variant] = content
	}
}

// SetScript stores a script under its variant key
func (c *Component) SetScript(variant, path, content string) {
	c.ensure()
	if c.origins.claim("scripts/"+variant, path) {
		c.Scripts[variant] = content
	}
}

// SetTemplate stores a template under its name
func (c *Component) SetTemplate(name, path, content string) {
	c.ensure()
	if c.origins.claim("templates/"+name, path) {
		c.Templates[name] = content
	}
}

// SetDocumentation replaces the documentation text
func (c *Component) SetDocumentation(path, content string) {
	c.ensure()
	if c.origins.claim("documentation", path) {
		c.Documentation = content
	}
}

// SetSchema replaces the parsed schema
func (c *Component) SetSchema(path string, data map[string]any) {
	c.ensure()
	if c.origins.claim("schema", path) {
		c.Schema = data
	}
}

// AddExample appends an example, replacing any previous example with the same path
func (c *Component) AddExample(path, content string) {
	for i := range c.Examples {
		if c.Examples[i].Path == path {
			c.Examples[i].Content = content
			return
		}
	}
	c.Examples = append(c.Examples, Example{Path: path, Content: content})
	sort.Slice(c.Examples, func(i, j int) bool {
		return c.Examples[i].Path < c.Examples[j].Path
	})
}

// Merge folds other into c. The result does not depend on merge order.
func (c *Component) Merge(other *Component) {
	if other == nil {
		return
	}
	c.ensure()
	for k, v := range other.Files {
		c.SetFile(k, other.origins["files/"+k], v)
	}
	for k, v := range other.Styles {
		c.SetStyle(k, other.origins["styles/"+k], v)
	}
	for k, v := range other.Scripts {
		c.SetScript(k, other.origins["scripts/"+k], v)
	}
	for k, v := range other.Templates {
		c.SetTemplate(k, other.origins["templates/"+k], v)
	}
	if path, ok := other.origins["documentation"]; ok || other.Documentation != "" {
		c.SetDocumentation(path, other.Documentation)
	}
	if other.Schema != nil {
		c.SetSchema(other.origins["schema"], other.Schema)
	}
	for _, ex := range other.Examples {
		c.AddExample(ex.Path, ex.Content)
	}
}

// Clone returns a copy whose maps and slices are independent of c
func (c *Component) Clone() *Component {
	dst := NewComponent(c.Name)
	dst.Merge(c)
	return dst
}

// ModuleKind distinguishes core modules from utilities
type ModuleKind string

const (
	ModuleCore    ModuleKind = "core"
	ModuleUtility ModuleKind = "utility"
)

// Module is a core or utility module; only files and documentation are tracked
type Module struct {
	Name          string
	Kind          ModuleKind
	Files         map[string]string
	Documentation string

	origins origins
}

// NewModule creates an empty module
func NewModule(name string, kind ModuleKind) *Module {
	return &Module{
		Name:    name,
		Kind:    kind,
		Files:   make(map[string]string),
		origins: make(origins),
	}
}

// SetFile stores content under its basename
func (m *Module) SetFile(name, path, content string) {
	if m.Files == nil {
		m.Files = make(map[string]string)
	}
	if m.origins == nil {
		m.origins = make(origins)
	}
	if m.origins.claim("files/"+name, path) {
		m.Files[name] = content
	}
}

// SetDocumentation replaces the module documentation
func (m *Module) SetDocumentation(path, content string) {
	if m.origins == nil {
		m.origins = make(origins)
	}
	if m.origins.claim("documentation", path) {
		m.Documentation = content
	}
}

// Merge folds other into m
func (m *Module) Merge(other *Module) {
	if other == nil {
		return
	}
	for k, v := range other.Files {
		m.SetFile(k, other.origins["files/"+k], v)
	}
	if path, ok := other.origins["documentation"]; ok || other.Documentation != "" {
		m.SetDocumentation(path, other.Documentation)
	}
}

// Clone returns an independent copy
func (m *Module) Clone() *Module {
	dst := NewModule(m.Name, m.Kind)
	dst.Merge(m)
	return dst
}

// AnalyticsRecord is one analytics source file
type AnalyticsRecord struct {
	Filename string
	Path     string
	Content  string
}

// SchemaRecord holds a parsed component schema
type SchemaRecord struct {
	Name string
	Path string
	Data map[string]any
}

// DocPage is a raw documentation source keyed by filename without extension
type DocPage struct {
	Name    string
	Path    string
	Content string
}

// Icon is one SVG pictogram shipped by the icon utility
type Icon struct {
	Name     string
	Category string
	Path     string
}

// Color is a design token declared in a stylesheet
type Color struct {
	Name   string // Token name without the leading $ or --
	Value  string // Hex value as declared, lower-cased
	Source string // Path of the declaring file
}
