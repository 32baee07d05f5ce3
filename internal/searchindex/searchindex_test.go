package searchindex

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alexmacapple/DSFR-MCP-sub000/pkg/types"
)

func testDocuments() []*types.Document {
	return []*types.Document{
		{ID: "bouton", Title: "Bouton", Category: types.DocComponent, Content: "Le bouton déclenche une action."},
		{ID: "accordeon", Title: "Accordéon bouton-like", Category: types.DocComponent, Content: "Un accordéon."},
		{ID: "alerte", Title: "Alerte", Category: types.DocComponent, Content: "Message d'alerte", Tags: types.NewTagSet("accessibilité")},
		{ID: "grille", Title: "Grille", Category: types.DocCore, Content: "La grille responsive."},
		{ID: "modale", Title: "Modale", Category: types.DocPattern, Content: "Fenêtre de dialogue."},
	}
}

func setupTestIndex(t *testing.T) *Index {
	t.Helper()
	return Build(testDocuments(), DefaultOptions())
}

func ids(results []types.SearchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Document.ID
	}
	return out
}

func TestSearch_ExactTitleFirst(t *testing.T) {
	ix := setupTestIndex(t)

	results, err := ix.Search(SearchRequest{Query: "bouton", Limit: 5})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(results), 2)

	assert.Equal(t, "bouton", results[0].Document.ID)
	assert.Equal(t, 0.0, results[0].Score)
	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, "accordeon", results[1].Document.ID)
	assert.Greater(t, results[1].Score, results[0].Score)
	for _, r := range results {
		require.NoError(t, r.Validate())
	}
}

func TestSearch_ExactBeatsFuzzy(t *testing.T) {
	ix := setupTestIndex(t)

	exact, err := ix.Search(SearchRequest{Query: "alerte"})
	require.NoError(t, err)
	require.NotEmpty(t, exact)
	assert.Equal(t, "alerte", exact[0].Document.ID)

	fuzzy, err := ix.Search(SearchRequest{Query: "alert"})
	require.NoError(t, err)
	require.NotEmpty(t, fuzzy)
	assert.Equal(t, "alerte", fuzzy[0].Document.ID)
	assert.LessOrEqual(t, exact[0].Score, fuzzy[0].Score)
}

func TestSearch_Typo(t *testing.T) {
	ix := setupTestIndex(t)

	results, err := ix.Search(SearchRequest{Query: "buton"})
	require.NoError(t, err)
	assert.Contains(t, ids(results), "bouton")
	for _, r := range results {
		assert.Greater(t, r.Score, 0.2)
		assert.LessOrEqual(t, r.Score, DefaultThreshold)
	}
}

func TestSearch_AccentInsensitive(t *testing.T) {
	ix := setupTestIndex(t)

	results, err := ix.Search(SearchRequest{Query: "ACCORDEON"})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "accordeon", results[0].Document.ID)
}

func TestSearch_Tags(t *testing.T) {
	ix := setupTestIndex(t)

	results, err := ix.Search(SearchRequest{Query: "accessibilite"})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "alerte", results[0].Document.ID)
	assert.Equal(t, 0.0, results[0].Score)
}

func TestSearch_Threshold(t *testing.T) {
	ix := setupTestIndex(t)

	tests := []struct {
		name      string
		query     string
		threshold float64
		want      []string
	}{
		{name: "exact only", query: "bouton", threshold: 0, want: []string{"bouton"}},
		{name: "anything", query: "zzzz", threshold: 1, want: []string{"accordeon", "alerte", "bouton", "grille", "modale"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := ix.Search(SearchRequest{Query: tt.query, Threshold: Threshold(tt.threshold)})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(results))
		})
	}

	_, err := ix.Search(SearchRequest{Query: "x", Threshold: Threshold(1.5)})
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestSearch_CategoryFilter(t *testing.T) {
	ix := setupTestIndex(t)

	results, err := ix.Search(SearchRequest{Query: "grille", Category: types.DocComponent})
	require.NoError(t, err)
	assert.NotContains(t, ids(results), "grille")

	results, err = ix.Search(SearchRequest{Query: "grille", Category: types.DocCore})
	require.NoError(t, err)
	assert.Equal(t, []string{"grille"}, ids(results))
}

func TestSearch_EmptyQuery(t *testing.T) {
	ix := setupTestIndex(t)

	results, err := ix.Search(SearchRequest{Category: types.DocComponent})
	require.NoError(t, err)
	assert.Equal(t, []string{"accordeon", "alerte", "bouton"}, ids(results))
	for _, r := range results {
		assert.Equal(t, 0.0, r.Score)
	}

	results, err = ix.Search(SearchRequest{Query: "   ", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearch_Deterministic(t *testing.T) {
	docs := testDocuments()
	first := Build(docs, DefaultOptions())

	shuffled := append([]*types.Document(nil), docs...)
	rand.New(rand.NewSource(42)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	second := Build(shuffled, DefaultOptions())

	for _, q := range []string{"bouton", "buton", "", "a", "grille responsive"} {
		a, err := first.Search(SearchRequest{Query: q, Threshold: Threshold(1)})
		require.NoError(t, err)
		b, err := second.Search(SearchRequest{Query: q, Threshold: Threshold(1)})
		require.NoError(t, err)
		assert.Equal(t, ids(a), ids(b), "query %q", q)
	}
}

func TestSearch_ReturnsCopies(t *testing.T) {
	ix := setupTestIndex(t)

	results, err := ix.Search(SearchRequest{Query: "bouton", Threshold: Threshold(0)})
	require.NoError(t, err)
	require.Len(t, results, 1)
	results[0].Document.Title = "changed"

	again, err := ix.Search(SearchRequest{Query: "bouton", Threshold: Threshold(0)})
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, "Bouton", again[0].Document.Title)
}

func TestCategoriesAndLen(t *testing.T) {
	ix := setupTestIndex(t)

	assert.Equal(t, 5, ix.Len())
	assert.Equal(t, map[types.DocumentCategory]int{
		types.DocComponent: 3,
		types.DocCore:      1,
		types.DocPattern:   1,
	}, ix.Categories())

	empty := Build(nil, Options{})
	assert.Equal(t, 0, empty.Len())
	results, err := empty.Search(SearchRequest{Query: "bouton"})
	require.NoError(t, err)
	assert.Empty(t, results)
}
