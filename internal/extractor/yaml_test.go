package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLenientYAML_WellFormed(t *testing.T) {
	got := ParseLenientYAML("name: button\nvariants:\n  primary: true\n  size: 3\n")
	assert.Equal(t, "button", got["name"])
	assert.Equal(t, map[string]any{"primary": true, "size": 3}, got["variants"])
}

func TestParseLenientYAML_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    map[string]any
	}{
		{
			name:    "tab indentation and stray lines are skipped",
			content: "title: Bouton\n\tbroken: [\nnot a pair\nlabel: \"Envoyer\"\n",
			want:    map[string]any{"title": "Bouton", "label": "Envoyer"},
		},
		{
			name:    "one level of nesting",
			content: "props:\n  size: md\n  disabled: false\n    deeper: ignored: x\n: nokey\n",
			want: map[string]any{
				"props": map[string]any{"size": "md", "disabled": false, "deeper": "ignored: x"},
			},
		},
		{
			name:    "comments and lists",
			content: "# header\nitems:\n- a\n- b\ncount: 2 # trailing\n[unterminated\n",
			want:    map[string]any{"items": map[string]any{}, "count": 2},
		},
		{
			name:    "empty input",
			content: "",
			want:    map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.want, ParseLenientYAML(tt.content))
			})
		})
	}
}
