package retrieval

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/cache"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/extractor"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/repository"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/searchindex"
	"github.com/Alexmacapple/DSFR-MCP-sub000/pkg/types"
)

func testRepository() *repository.Repository {
	repo := repository.New()
	files := []struct {
		category types.Category
		path     string
		content  string
	}{
		{types.CategoryComponent, "src/component/button/button.scss", ".fr-btn { color: blue; }"},
		{types.CategoryComponent, "src/component/button/button.md", "# Button\n\nUse aria-label when the button only shows an icon.\n\nPlain note."},
		{types.CategoryExample, "src/example/component/button/basic.html", `<button class="fr-btn" aria-label="Fermer">x</button>`},
		{types.CategoryCore, "src/core/style/color/_tokens.scss", "$blue-france: #000091;\n$error: #CE0500;"},
		{types.CategoryUtility, "src/utility/colors/_utility.scss", "$pink-tuile: #f5f;"},
		{types.CategoryUtility, "src/utility/icons/system/check-line.svg", "<svg/>"},
		{types.CategoryUtility, "src/utility/icons/system/close-line.svg", "<svg/>"},
		{types.CategoryUtility, "src/utility/icons/buildings/bank-line.svg", "<svg/>"},
	}
	for _, f := range files {
		repo.Apply(extractor.Extract(f.category, f.path, f.content))
	}

	docs := []*types.Document{
		{
			ID: "bouton", Title: "Bouton", Category: types.DocComponent, ComponentType: types.TypeForm,
			SourceURL: "https://www.systeme-de-design.gouv.fr/elements-d-interface/component/bouton",
			Content:   "Le bouton déclenche une action.\n\nAccessibilité : un libellé explicite est requis.",
			CodeExamples: []types.CodeExample{
				{Code: `<button class="fr-btn">Envoyer</button>`, Language: "html"},
			},
			Tags: types.NewTagSet("bouton", "accessibilité"),
		},
		{ID: "accordeon", Title: "Accordéon bouton-like", Category: types.DocComponent, ComponentType: types.TypeContent, Content: "Un accordéon."},
		{ID: "grille", Title: "Grille", Category: types.DocCore, ComponentType: types.TypeLayout, Content: "La grille."},
		{ID: "formulaire-contact", Title: "Formulaire de contact", Category: types.DocPattern, ComponentType: types.TypeForm, Content: "Un formulaire."},
		{ID: "page-erreur", Title: "Page d'erreur", Category: types.DocPattern, ComponentType: types.TypeFeedback, Content: "Une erreur."},
	}
	for _, doc := range docs {
		repo.PutDocument("src/doc/"+doc.ID+".md", doc)
	}
	return repo
}

func newTestCache(t *testing.T, cfg cache.Config) *cache.Cache {
	t.Helper()
	c, err := cache.New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func setupTestService(t *testing.T) *Service {
	t.Helper()
	snap := NewSnapshot(testRepository(), searchindex.DefaultOptions())
	return New(newTestCache(t, cache.DefaultConfig()), snap)
}

func TestSearchComponents_CacheFirst(t *testing.T) {
	s := setupTestService(t)
	ctx := context.Background()

	first := s.SearchComponents(ctx, "bouton", "", 5)
	require.False(t, first.IsError, first.Text)
	assert.False(t, first.CacheHit)
	assert.Contains(t, first.Text, "## 1. Bouton")

	results, ok := first.Metadata["results"].([]any)
	require.True(t, ok)
	require.GreaterOrEqual(t, len(results), 2)
	top := results[0].(map[string]any)
	second := results[1].(map[string]any)
	assert.Equal(t, "bouton", top["id"])
	assert.Equal(t, "accordeon", second["id"])
	assert.Less(t, top["score"].(float64), second["score"].(float64))

	// Arguments are normalised before hashing
	again := s.SearchComponents(ctx, "  BOUTON ", "", 5)
	assert.True(t, again.CacheHit)
	assert.Equal(t, first.Text, again.Text)
	assert.Equal(t, first.Metadata, again.Metadata)

	stats := s.CacheStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
}

func TestSearchComponents_Category(t *testing.T) {
	s := setupTestService(t)
	ctx := context.Background()

	res := s.SearchComponents(ctx, "", "core", 10)
	require.False(t, res.IsError)
	assert.EqualValues(t, 1, res.Metadata["count"])
	assert.Contains(t, res.Text, "Grille")

	invalid := s.SearchComponents(ctx, "bouton", "widgets", 10)
	assert.True(t, invalid.IsError)
	assert.Contains(t, invalid.Text, "pattern")

	// Error payloads are not cached
	invalid = s.SearchComponents(ctx, "bouton", "widgets", 10)
	assert.False(t, invalid.CacheHit)
}

func TestSearchComponents_NoMatch(t *testing.T) {
	s := setupTestService(t)

	res := s.SearchComponents(context.Background(), "xyzzyq", "", 5)
	require.False(t, res.IsError)
	assert.EqualValues(t, 0, res.Metadata["count"])
	assert.Contains(t, res.Text, "No component matches")
}

func TestGetComponentDetails(t *testing.T) {
	s := setupTestService(t)

	res := s.GetComponentDetails(context.Background(), "button", true, true)
	require.False(t, res.IsError, res.Text)
	assert.Equal(t, true, res.Metadata["found"])
	assert.Equal(t, true, res.Metadata["has_component"])
	assert.Contains(t, res.Text, "## Sources")
	assert.Contains(t, res.Text, "button.scss")
	assert.Contains(t, res.Text, "## Examples")
	assert.Contains(t, res.Text, "src/example/component/button/basic.html")
	assert.Contains(t, res.Text, "## Accessibility")
	assert.Contains(t, res.Text, "aria-label")
	assert.EqualValues(t, 1, res.Metadata["examples"])
}

func TestGetComponentDetails_FromDocumentation(t *testing.T) {
	s := setupTestService(t)

	res := s.GetComponentDetails(context.Background(), "Bouton", true, false)
	require.False(t, res.IsError, res.Text)
	assert.Equal(t, "bouton", res.Metadata["id"])
	assert.Equal(t, true, res.Metadata["has_documentation"])
	assert.Contains(t, res.Text, "# Bouton")
	assert.Contains(t, res.Text, "- Type: form")
	assert.Contains(t, res.Text, "Le bouton déclenche une action.")
	assert.Contains(t, res.Text, "```html\n<button class=\"fr-btn\">Envoyer</button>\n```")
	assert.NotContains(t, res.Text, "## Accessibility")
}

func TestGetComponentDetails_NotFound(t *testing.T) {
	s := setupTestService(t)
	ctx := context.Background()

	res := s.GetComponentDetails(ctx, "boutton", false, false)
	assert.False(t, res.IsError, "not found is a normal result")
	assert.Equal(t, false, res.Metadata["found"])
	assert.Contains(t, res.Text, "not found")
	assert.Contains(t, res.Text, "Bouton")

	empty := s.GetComponentDetails(ctx, "  ", false, false)
	assert.True(t, empty.IsError)
}

func TestListCategories(t *testing.T) {
	s := setupTestService(t)

	res := s.ListCategories(context.Background())
	require.False(t, res.IsError)

	categories, ok := res.Metadata["categories"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 2, categories["component"])
	assert.EqualValues(t, 1, categories["core"])
	assert.EqualValues(t, 2, categories["pattern"])
	assert.EqualValues(t, 0, categories["template"])
	assert.EqualValues(t, 5, res.Metadata["total"])
	assert.EqualValues(t, 1, res.Metadata["components"])
	assert.Contains(t, res.Text, "| pattern | 2 |")
	assert.Contains(t, res.Text, "- Icons: 3")
}

func TestSearchPatterns(t *testing.T) {
	s := setupTestService(t)
	ctx := context.Background()

	all := s.SearchPatterns(ctx, "", "")
	require.False(t, all.IsError)
	assert.EqualValues(t, 2, all.Metadata["count"])

	forms := s.SearchPatterns(ctx, "", "Form")
	require.False(t, forms.IsError)
	assert.Equal(t, []any{"formulaire-contact"}, forms.Metadata["ids"])
	assert.Contains(t, forms.Text, "## 1. Formulaire de contact")

	invalid := s.SearchPatterns(ctx, "", "carousel")
	assert.True(t, invalid.IsError)
}

func TestGetIcons(t *testing.T) {
	s := setupTestService(t)
	ctx := context.Background()

	system := s.GetIcons(ctx, "system", "")
	require.False(t, system.IsError)
	assert.EqualValues(t, 2, system.Metadata["count"])
	assert.Contains(t, system.Text, "`fr-icon-check-line`")
	assert.NotContains(t, system.Text, "bank-line")

	bank := s.GetIcons(ctx, "", "BANK")
	assert.EqualValues(t, 1, bank.Metadata["count"])
	assert.Contains(t, bank.Text, "## buildings")

	none := s.GetIcons(ctx, "weather", "")
	assert.EqualValues(t, 0, none.Metadata["count"])
	assert.Contains(t, none.Text, "Available categories: buildings, system")
}

func TestGetColors(t *testing.T) {
	s := setupTestService(t)
	ctx := context.Background()

	core := s.GetColors(ctx, "", false)
	require.False(t, core.IsError)
	assert.EqualValues(t, 2, core.Metadata["count"])
	assert.Equal(t, "hex", core.Metadata["format"])
	assert.Contains(t, core.Text, "- blue-france: #000091")
	assert.NotContains(t, core.Text, "pink-tuile")

	withUtilities := s.GetColors(ctx, "rgb", true)
	assert.EqualValues(t, 3, withUtilities.Metadata["count"])
	assert.Contains(t, withUtilities.Text, "- blue-france: rgb(0, 0, 145)")
	assert.Contains(t, withUtilities.Text, "- pink-tuile: rgb(255, 85, 255)")

	css := s.GetColors(ctx, "css", false)
	assert.Contains(t, css.Text, ":root {\n  --blue-france: #000091;\n  --error: #ce0500;\n}")

	scss := s.GetColors(ctx, "SCSS", false)
	assert.Contains(t, scss.Text, "$error: #ce0500;")

	invalid := s.GetColors(ctx, "cmyk", false)
	assert.True(t, invalid.IsError)
}

func TestGetColors_TokenInCoreAndUtility(t *testing.T) {
	repo := repository.New()
	repo.Apply(extractor.Extract(types.CategoryCore, "src/core/style/color/_tokens.scss", "$blue-france: #000091;"))
	repo.Apply(extractor.Extract(types.CategoryUtility, "src/utility/colors/_utility.scss", "$blue-france: #000091;\n$pink-tuile: #f5f;"))
	s := New(newTestCache(t, cache.DefaultConfig()), NewSnapshot(repo, searchindex.DefaultOptions()))
	ctx := context.Background()

	core := s.GetColors(ctx, "hex", false)
	require.False(t, core.IsError)
	assert.EqualValues(t, 1, core.Metadata["count"])
	assert.Contains(t, core.Text, "- blue-france: #000091")

	all := s.GetColors(ctx, "hex", true)
	assert.EqualValues(t, 2, all.Metadata["count"], "a token declared twice is listed once")
	assert.Contains(t, all.Text, "- pink-tuile: #f5f")
}

func TestSearchComponents_CaseSharesCacheEntry(t *testing.T) {
	s := setupTestService(t)
	ctx := context.Background()

	lower := s.SearchComponents(ctx, "bouton", "", 5)
	upper := s.SearchComponents(ctx, " BOUTON ", "", 5)
	assert.True(t, upper.CacheHit)
	assert.Equal(t, lower.Text, upper.Text)
	assert.Contains(t, upper.Text, `# Search results for "bouton"`)

	details := s.GetComponentDetails(ctx, "Carrousel", true, false)
	assert.Contains(t, details.Text, `Component "carrousel" not found.`)
	assert.True(t, s.GetComponentDetails(ctx, "carrousel", true, false).CacheHit)
}

func TestReload_ClearsCache(t *testing.T) {
	s := setupTestService(t)
	ctx := context.Background()

	before := s.ListCategories(ctx)
	assert.True(t, s.ListCategories(ctx).CacheHit)

	s.Reload(NewSnapshot(repository.New(), searchindex.DefaultOptions()))
	after := s.ListCategories(ctx)
	assert.False(t, after.CacheHit)
	assert.NotEqual(t, before.Metadata["total"], after.Metadata["total"])
	assert.EqualValues(t, 0, after.Metadata["total"])

	s.Reload(nil)
	assert.Equal(t, 0, s.Snapshot().Index.Len(), "nil snapshot is ignored")
}

func TestRun_ReloadDuringQuery(t *testing.T) {
	s := setupTestService(t)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan *Result, 1)
	go func() {
		done <- s.run(ctx, OpListCategories, nil, time.Hour, func(*Snapshot) (*Result, error) {
			close(started)
			<-release
			return &Result{Text: "previous snapshot"}, nil
		})
	}()

	<-started
	s.Reload(NewSnapshot(repository.New(), searchindex.DefaultOptions()))
	close(release)

	// The running caller still gets its answer, but it is not cached
	assert.Equal(t, "previous snapshot", (<-done).Text)
	assert.Equal(t, int64(0), s.CacheStats().Sets)

	fresh := s.ListCategories(ctx)
	assert.False(t, fresh.CacheHit)
	assert.EqualValues(t, 0, fresh.Metadata["total"])
	assert.True(t, s.ListCategories(ctx).CacheHit)
}

func TestRun_RecoversPanics(t *testing.T) {
	// A snapshot without an index makes every search panic
	s := New(newTestCache(t, cache.DefaultConfig()), &Snapshot{Repo: repository.New()})

	res := s.SearchComponents(context.Background(), "bouton", "", 5)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "internal error")
	assert.Equal(t, int64(0), s.CacheStats().Sets)
}

func TestRun_Cancelled(t *testing.T) {
	s := setupTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := s.ListCategories(ctx)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, context.Canceled.Error())
}

func TestRun_OversizedResultStillServed(t *testing.T) {
	c := newTestCache(t, cache.Config{MaxMemory: 64, SweepInterval: time.Minute})
	s := New(c, NewSnapshot(testRepository(), searchindex.DefaultOptions()))
	ctx := context.Background()

	res := s.ListCategories(ctx)
	require.False(t, res.IsError)
	assert.Contains(t, res.Text, "# Categories")
	assert.False(t, s.ListCategories(ctx).CacheHit)
	assert.Equal(t, int64(2), s.CacheStats().Rejected)
}

func TestCacheKey(t *testing.T) {
	a := cacheKey(OpSearchComponents, map[string]string{"query": "Bouton", "limit": "5"})
	b := cacheKey(OpSearchComponents, map[string]string{"limit": "5", "query": " bouton "})
	c := cacheKey(OpSearchPatterns, map[string]string{"query": "bouton", "limit": "5"})
	d := cacheKey(OpSearchComponents, map[string]string{"query": "bouton", "limit": "6"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
	assert.Regexp(t, `^search_components:[0-9a-f]{64}$`, a)
}

func TestHexToRGB(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"#000091", "rgb(0, 0, 145)"},
		{"#fff", "rgb(255, 255, 255)"},
		{"#00000080", "rgba(0, 0, 0, 0.50)"},
		{"#12345", "#12345"},
		{"#gggggg", "#gggggg"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, hexToRGB(tt.in))
		})
	}
}

func TestExcerpt(t *testing.T) {
	text := "# Title\n\n```html\n<div></div>\n```\nLe bouton principal déclenche une action importante."
	assert.Equal(t, "# Title Le bouton principal déclenche une action importante.", excerpt(text, 200))
	assert.Equal(t, "# Title Le bouton…", excerpt(text, 20))
	assert.Equal(t, "Le bouton principal déclenche une action importante.", firstParagraph(text))
}
