package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentID(t *testing.T) {
	tests := map[string]string{
		"Bouton (button).md":          "bouton-button",
		"bouton-button.md":            "bouton-button",
		"src/doc/Fil d'Ariane.md":     "fil-d-ariane",
		"Accordéon.md":                "accordéon",
		"  --Page d'erreur 404--.txt": "page-d-erreur-404",
	}
	for filename, want := range tests {
		assert.Equal(t, want, DocumentID(filename), filename)
	}
}

func TestDocumentValidate(t *testing.T) {
	doc := &Document{ID: "bouton", Title: "Bouton", Category: DocComponent}
	require.NoError(t, doc.Validate())

	assert.ErrorIs(t, (&Document{Title: "x", Category: DocCore}).Validate(), ErrMissingDocumentID)
	assert.ErrorIs(t, (&Document{ID: "x", Category: DocCore}).Validate(), ErrMissingTitle)
	assert.ErrorIs(t, (&Document{ID: "x", Title: "x", Category: "widget"}).Validate(), ErrInvalidCategory)
}

func TestDocumentClone(t *testing.T) {
	doc := &Document{
		ID:           "bouton",
		Tags:         NewTagSet("bouton", "action"),
		CodeExamples: []CodeExample{{Code: "<button>", Language: "html"}},
	}
	clone := doc.Clone()
	clone.Tags.Add("extra")
	clone.CodeExamples[0].Code = "changed"

	assert.False(t, doc.Tags.Has("extra"))
	assert.Equal(t, "<button>", doc.CodeExamples[0].Code)
	assert.Nil(t, (*Document)(nil).Clone())
}

func TestTagSet(t *testing.T) {
	s := NewTagSet("b", "", "a", "b")
	assert.Len(t, s, 2)
	assert.Equal(t, []string{"a", "b"}, s.Sorted())
	assert.False(t, s.Has(""))
}

func TestComponentMerge_OrderIndependent(t *testing.T) {
	a := NewComponent("button")
	a.SetStyle("main", "src/a/button/main.scss", "A")
	a.AddExample("src/a/button/example/index.html", "<a>")

	b := NewComponent("button")
	b.SetStyle("main", "src/b/button/main.scss", "B")
	b.SetDocumentation("src/b/button/README.md", "doc")

	ab := a.Clone()
	ab.Merge(b)
	ba := b.Clone()
	ba.Merge(a)

	assert.Equal(t, "B", ab.Styles["main"])
	assert.Equal(t, ab.Styles, ba.Styles)
	assert.Equal(t, ab.Documentation, ba.Documentation)
	assert.Equal(t, ab.Examples, ba.Examples)
}

func TestComponentAddExample(t *testing.T) {
	c := NewComponent("button")
	c.AddExample("z.html", "z")
	c.AddExample("a.html", "a")
	c.AddExample("z.html", "z2")

	require.Len(t, c.Examples, 2)
	assert.Equal(t, "a.html", c.Examples[0].Path)
	assert.Equal(t, "z2", c.Examples[1].Content)
}

func TestValidEnums(t *testing.T) {
	assert.True(t, CategoryDocumentation.Valid())
	assert.False(t, Category("binary").Valid())
	assert.True(t, DocPattern.Valid())
	assert.False(t, DocumentCategory("page").Valid())
	assert.True(t, TypeUtility.Valid())
	assert.False(t, ComponentType("widget").Valid())
	assert.Len(t, AllCategories(), 11)
}

func TestSearchResultValidate(t *testing.T) {
	doc := &Document{ID: "bouton"}
	assert.NoError(t, (&SearchResult{Document: doc, Rank: 1, Score: 0.4}).Validate())
	assert.Error(t, (&SearchResult{Rank: 1}).Validate())
	assert.Error(t, (&SearchResult{Document: doc, Rank: 0}).Validate())
	assert.Error(t, (&SearchResult{Document: doc, Rank: 1, Score: 1.2}).Validate())
}
