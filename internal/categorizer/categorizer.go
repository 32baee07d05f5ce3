// Package categorizer assigns a category to every source file path.
//
// Rules are evaluated in a fixed order and the first match wins. Segment rules
// test for case-sensitive containment of "/name/" in the slash-normalised path,
// so both "src/component/button/x.scss" and "component/button/x.scss" match
// the component rule. Unmatched paths fall through to CategoryOther; there is
// no error path.
package categorizer

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/Alexmacapple/DSFR-MCP-sub000/pkg/types"
)

// Path markers recognised by the segment rules
const (
	MarkerComponent = "/component/"
	MarkerCore      = "/core/"
	MarkerUtility   = "/utility/"
	MarkerAnalytics = "/analytics/"
	MarkerExample   = "/example/"
	MarkerScheme    = "/scheme/"
	MarkerDoc       = "/doc/"
)

type rule struct {
	category types.Category
	match    func(p string) bool
}

func segment(marker string) func(string) bool {
	return func(p string) bool { return strings.Contains(p, marker) }
}

func suffix(s string) func(string) bool {
	return func(p string) bool { return strings.HasSuffix(p, s) }
}

// rules is evaluated top to bottom. The scheme rule is recognised but folded
// into CategoryOther.
var rules = []rule{
	{types.CategoryComponent, segment(MarkerComponent)},
	{types.CategoryCore, segment(MarkerCore)},
	{types.CategoryUtility, segment(MarkerUtility)},
	{types.CategoryAnalytics, segment(MarkerAnalytics)},
	{types.CategoryExample, segment(MarkerExample)},
	{types.CategoryOther, segment(MarkerScheme)},
	{types.CategorySchema, suffix(".schema.yml")},
	{types.CategoryDocumentation, func(p string) bool {
		return strings.Contains(p, MarkerDoc) || strings.HasSuffix(p, ".md")
	}},
	{types.CategoryStyle, suffix(".scss")},
	{types.CategoryScript, suffix(".js")},
	{types.CategoryConfig, func(p string) bool {
		return strings.HasSuffix(p, ".yml") || strings.HasSuffix(p, ".yaml")
	}},
}

// Categorize returns the category of a file path
func Categorize(filePath string) types.Category {
	p := Normalize(filePath)
	for _, r := range rules {
		if r.match(p) {
			return r.category
		}
	}
	return types.CategoryOther
}

// Normalize converts separators to slashes and anchors the path with a leading
// slash so that a top-level directory still matches "/name/" markers.
func Normalize(filePath string) string {
	p := filepath.ToSlash(filePath)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// SegmentAfter returns the path segment directly following marker, or "" when
// the marker is absent or is the last segment.
func SegmentAfter(filePath, marker string) string {
	p := Normalize(filePath)
	idx := strings.Index(p, marker)
	if idx < 0 {
		return ""
	}
	rest := p[idx+len(marker):]
	if i := strings.Index(rest, "/"); i >= 0 {
		return rest[:i]
	}
	// The marker is followed by the file name itself, not a directory
	return ""
}

// Basename returns the final element of a slash or OS separated path
func Basename(filePath string) string {
	return path.Base(Normalize(filePath))
}
