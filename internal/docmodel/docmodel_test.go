package docmodel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alexmacapple/DSFR-MCP-sub000/pkg/types"
)

func newTestBuilder() *Builder {
	b := New()
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	b.now = func() time.Time { return fixed }
	return b
}

const boutonSource = `URL: https://www.systeme-de-design.gouv.fr/elements-d-interface/component/bouton
Title:
Bouton
Markdown:
# Bouton

Le bouton principal déclenche une action. Accessibilité : utiliser un libellé explicite.

` + "```html" + `
<button class="fr-btn">Envoyer</button>
` + "```" + `

` + "```" + `
<button class="fr-btn fr-btn--secondary">Annuler</button>
` + "```" + `
`

func TestBuild_HeaderAndBody(t *testing.T) {
	doc := newTestBuilder().Build("docs/Bouton.md", boutonSource)

	assert.Equal(t, "bouton", doc.ID)
	assert.Equal(t, "Bouton.md", doc.Filename)
	assert.Equal(t, "https://www.systeme-de-design.gouv.fr/elements-d-interface/component/bouton", doc.SourceURL)
	assert.Equal(t, "Bouton", doc.Title)
	assert.Equal(t, types.DocComponent, doc.Category)
	assert.Equal(t, types.TypeForm, doc.ComponentType)
	assert.True(t, doc.Tags.Has("accessibilité"))
	assert.True(t, doc.Tags.Has("bouton"))
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), doc.LastIndexed)
	assert.NotContains(t, doc.Content, "URL:")
	assert.True(t, len(doc.Content) > 0 && doc.Content[0] == '#')
	require.NoError(t, doc.Validate())

	require.Len(t, doc.CodeExamples, 2)
	assert.Equal(t, "html", doc.CodeExamples[0].Language)
	assert.Equal(t, `<button class="fr-btn">Envoyer</button>`, doc.CodeExamples[0].Code)
	assert.Equal(t, "html", doc.CodeExamples[1].Language, "missing info string defaults to html")
}

func TestBuild_SameLineLabelsAndFallbacks(t *testing.T) {
	t.Run("labels on the same line", func(t *testing.T) {
		src := "URL: https://x/core/grille\nTitle: Grille et points de rupture\nMarkdown:\nun deux trois"
		doc := newTestBuilder().Build("grille.md", src)
		assert.Equal(t, "Grille et points de rupture", doc.Title)
		assert.Equal(t, types.DocCore, doc.Category)
		assert.Equal(t, types.TypeLayout, doc.ComponentType)
		assert.Equal(t, 3, doc.WordCount)
	})

	t.Run("no header uses first heading", func(t *testing.T) {
		doc := newTestBuilder().Build("notes.md", "intro\n# Fil d'Ariane\ncorps")
		assert.Equal(t, "Fil d'Ariane", doc.Title)
		assert.Equal(t, types.TypeNavigation, doc.ComponentType)
		assert.Equal(t, types.DocComponent, doc.Category)
		assert.Equal(t, 5, doc.WordCount)
	})

	t.Run("no header and no heading uses filename", func(t *testing.T) {
		doc := newTestBuilder().Build("docs/mise_en-page.md", "")
		assert.Equal(t, "mise en page", doc.Title)
		assert.Equal(t, 0, doc.WordCount)
		assert.Empty(t, doc.CodeExamples)
	})

	t.Run("content on the marker line", func(t *testing.T) {
		doc := newTestBuilder().Build("a.md", "Title: A\nMarkdown: premier mot\nsecond")
		assert.Equal(t, "premier mot\nsecond", doc.Content)
	})
}

func TestCategoryFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want types.DocumentCategory
	}{
		{"https://x/component/bouton", types.DocComponent},
		{"https://x/core/couleurs", types.DocCore},
		{"https://x/analytics/tag", types.DocAnalytics},
		{"https://x/pattern/formulaire", types.DocPattern},
		{"https://x/template/page-404", types.DocTemplate},
		{"https://x/example/core/component/y", types.DocComponent},
		{"https://x/other", types.DocComponent},
		{"", types.DocComponent},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryFromURL(tt.url))
		})
	}
}

func TestComponentTypeFromTitle(t *testing.T) {
	tests := []struct {
		title string
		want  types.ComponentType
	}{
		{"Champ de saisie", types.TypeForm},
		{"Menu latéral", types.TypeNavigation},
		{"Alerte", types.TypeFeedback},
		{"Accordéon", types.TypeContent},
		{"Conteneur", types.TypeLayout},
		{"Information", types.TypeUtility},
		{"Icônes", types.TypeUtility},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, ComponentTypeFromTitle(tt.title))
		})
	}
}

func TestGenerateTags(t *testing.T) {
	tags := GenerateTags("MODE SOMBRE et Icone, attribut ARIA")
	assert.Equal(t, []string{"aria", "icône", "mode sombre"}, tags.Sorted())
	assert.Empty(t, GenerateTags("rien"))
}

func TestExtractCodeBlocks(t *testing.T) {
	body := "~~~js\nconst a = 1\n~~~\ntext\n````scss {.x}\n.a{}\n```\nstill inside\n````\n```css\nunterminated"
	blocks := ExtractCodeBlocks(body)
	require.Len(t, blocks, 3)
	assert.Equal(t, types.CodeExample{Code: "const a = 1", Language: "js"}, blocks[0])
	assert.Equal(t, types.CodeExample{Code: ".a{}\n```\nstill inside", Language: "scss"}, blocks[1])
	assert.Equal(t, types.CodeExample{Code: "unterminated", Language: "css"}, blocks[2])
}

func TestTouch(t *testing.T) {
	b := New()
	b.SetClock(func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) })
	doc := b.Build("bouton.md", "Title: Bouton\nMarkdown:\nUn bouton.")

	later := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	b.SetClock(func() time.Time { return later })
	touched := b.Touch(doc)

	assert.Equal(t, later, touched.LastIndexed)
	assert.Equal(t, doc.Title, touched.Title)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), doc.LastIndexed)
	assert.Nil(t, b.Touch(nil))
}
