package types

// Category is the coarse classification assigned to a source file
type Category string

const (
	CategoryComponent     Category = "component"
	CategoryCore          Category = "core"
	CategoryUtility       Category = "utility"
	CategoryAnalytics     Category = "analytics"
	CategoryExample       Category = "example"
	CategorySchema        Category = "schema"
	CategoryDocumentation Category = "documentation"
	CategoryStyle         Category = "style"
	CategoryScript        Category = "script"
	CategoryConfig        Category = "config"
	CategoryOther         Category = "other"
)

// AllCategories returns every file category in precedence order
func AllCategories() []Category {
	return []Category{
		CategoryComponent, CategoryCore, CategoryUtility, CategoryAnalytics,
		CategoryExample, CategorySchema, CategoryDocumentation, CategoryStyle,
		CategoryScript, CategoryConfig, CategoryOther,
	}
}

// Valid reports whether c is one of the enumerated file categories
func (c Category) Valid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// DocumentCategory classifies a documentation page by the section of the site it came from
type DocumentCategory string

const (
	DocComponent DocumentCategory = "component"
	DocCore      DocumentCategory = "core"
	DocAnalytics DocumentCategory = "analytics"
	DocPattern   DocumentCategory = "pattern"
	DocTemplate  DocumentCategory = "template"
)

// AllDocumentCategories lists document categories in detection order
func AllDocumentCategories() []DocumentCategory {
	return []DocumentCategory{DocComponent, DocCore, DocAnalytics, DocPattern, DocTemplate}
}

// ComponentType is the functional family of a component, inferred from its title
type ComponentType string

const (
	TypeForm       ComponentType = "form"
	TypeNavigation ComponentType = "navigation"
	TypeFeedback   ComponentType = "feedback"
	TypeContent    ComponentType = "content"
	TypeLayout     ComponentType = "layout"
	TypeUtility    ComponentType = "utility"
)

// Valid reports whether c is a known document category
func (c DocumentCategory) Valid() bool {
	for _, known := range AllDocumentCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// AllComponentTypes lists component types in detection order, utility last
func AllComponentTypes() []ComponentType {
	return []ComponentType{TypeForm, TypeNavigation, TypeFeedback, TypeContent, TypeLayout, TypeUtility}
}

// Valid reports whether t is a known component type
func (t ComponentType) Valid() bool {
	for _, known := range AllComponentTypes() {
		if t == known {
			return true
		}
	}
	return false
}
