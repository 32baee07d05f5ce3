// Package docmodel builds Document records from documentation sources.
//
// A source starts with a loosely structured header followed by the page body:
//
//	URL: https://www.systeme-de-design.gouv.fr/elements-d-interface/composants/bouton
//	Title:
//	Bouton
//	Markdown:
//	# Bouton
//	...
//
// URL and Title labels are searched in the first HeaderScanLines lines; their
// value sits on the same line or on the next non-empty one. Everything after
// the Markdown: marker is the body. Sources without a header are accepted: the
// whole text becomes the body and the title falls back to the first H1 heading,
// then to the humanised filename.
//
// Derived fields:
//   - Category: first URL fragment rule that matches, component by default
//   - ComponentType: first keyword family found among the title words
//   - Tags: vocabulary keywords found anywhere in title or body
//   - CodeExamples: fenced blocks, language defaulting to html
//   - WordCount: whitespace separated tokens of the body
package docmodel
