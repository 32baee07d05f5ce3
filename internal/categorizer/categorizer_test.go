package categorizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alexmacapple/DSFR-MCP-sub000/pkg/types"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		path string
		want types.Category
	}{
		{"src/component/button/button.scss", types.CategoryComponent},
		{"component/button/button.md", types.CategoryComponent},
		{"/abs/src/core/style/color.scss", types.CategoryCore},
		{"src/utility/icons/system/check.svg", types.CategoryUtility},
		{"src/analytics/tracker.js", types.CategoryAnalytics},
		{"src/example/page/index.html", types.CategoryExample},
		{"src/scheme/dark.scss", types.CategoryOther},
		{"schemas/button.schema.yml", types.CategorySchema},
		{"site/doc/intro.txt", types.CategoryDocumentation},
		{"README.md", types.CategoryDocumentation},
		{"styles/main.scss", types.CategoryStyle},
		{"scripts/app.js", types.CategoryScript},
		{"config/site.yml", types.CategoryConfig},
		{"config/site.yaml", types.CategoryConfig},
		{"assets/logo.png", types.CategoryOther},
		{"", types.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.path))
		})
	}
}

func TestCategorize_Precedence(t *testing.T) {
	t.Run("component wins over core", func(t *testing.T) {
		assert.Equal(t, types.CategoryComponent, Categorize("src/core/component/x/x.scss"))
	})

	t.Run("example wins over documentation", func(t *testing.T) {
		assert.Equal(t, types.CategoryExample, Categorize("src/example/readme.md"))
	})

	t.Run("schema wins over config", func(t *testing.T) {
		assert.Equal(t, types.CategorySchema, Categorize("data/card.schema.yml"))
	})

	t.Run("segment rules are case sensitive", func(t *testing.T) {
		assert.Equal(t, types.CategoryStyle, Categorize("src/Component/button/button.scss"))
	})
}

func TestCategorize_PureAndTotal(t *testing.T) {
	inputs := []string{
		"", "/", "//", "a", ".md", "x/.scss", "component", "/component/",
		"src\\component\\button\\button.js", "ünïcödé/doc/é.md", "a/b/c.schema.yml.bak",
	}
	for _, in := range inputs {
		first := Categorize(in)
		assert.True(t, first.Valid(), "category for %q must be enumerated, got %q", in, first)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, Categorize(in), "categorize must be deterministic for %q", in)
		}
	}
}

func TestSegmentAfter(t *testing.T) {
	assert.Equal(t, "button", SegmentAfter("src/component/button/button.scss", MarkerComponent))
	assert.Equal(t, "button", SegmentAfter("component/button/example/a.html", MarkerComponent))
	assert.Equal(t, "grid", SegmentAfter("src/core/grid/_grid.scss", MarkerCore))
	assert.Equal(t, "", SegmentAfter("src/component/button.scss", MarkerComponent))
	assert.Equal(t, "", SegmentAfter("src/button.scss", MarkerComponent))
}
