package extractor

import (
	"path"
	"regexp"
	"strings"

	"github.com/Alexmacapple/DSFR-MCP-sub000/pkg/types"
)

// colorDecl matches "$blue-france: #000091;" and "--blue-france: #000091;"
var colorDecl = regexp.MustCompile(`(?m)^\s*(?:\$|--)([A-Za-z0-9_-]+)\s*:\s*(#[0-9A-Fa-f]{3,8})\b`)

// ExtractColors returns the colour tokens declared in a stylesheet, in declaration order.
// A token declared twice keeps its last value.
func ExtractColors(source, content string) []types.Color {
	matches := colorDecl.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]int, len(matches))
	colors := make([]types.Color, 0, len(matches))
	for _, m := range matches {
		c := types.Color{Name: m[1], Value: strings.ToLower(m[2]), Source: source}
		if i, ok := seen[c.Name]; ok {
			colors[i] = c
			continue
		}
		seen[c.Name] = len(colors)
		colors = append(colors, c)
	}
	return colors
}

// iconFromPath recognises "<...>/icons/<category>/<name>.svg"
func iconFromPath(original, normalized string) (types.Icon, bool) {
	if !strings.HasSuffix(normalized, ".svg") {
		return types.Icon{}, false
	}
	idx := strings.Index(normalized, "/icons/")
	if idx < 0 {
		return types.Icon{}, false
	}
	rest := normalized[idx+len("/icons/"):]
	category := "misc"
	if dir := path.Dir(rest); dir != "." {
		category = path.Base(dir)
	}
	name := strings.TrimSuffix(path.Base(rest), ".svg")
	return types.Icon{Name: name, Category: category, Path: original}, true
}
