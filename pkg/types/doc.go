// Package types provides shared type definitions for the DSFR knowledge server.
//
// The types describe what ingestion produces and what retrieval serves:
//
//   - Category: the tag a source file receives from the categorizer
//   - Component and Module: aggregates built incrementally from many files
//   - Document: one documentation page, the unit of search
//   - SearchResult: a ranked hit with a distance-style score (0 = exact)
//
// # Partial aggregates
//
// A Component grows as files for the same name are processed. Every field is
// optional; a component with only styles is valid. Merge is order independent:
// when two files compete for the same slot the one with the greater source path
// wins, so concurrent ingestion produces the same shape on every run.
//
//	c := types.NewComponent("button")
//	c.SetStyle("default", "src/component/button/button.scss", scss)
//	c.SetDocumentation("src/component/button/button.md", md)
//
// # Documents
//
// Document IDs are derived from filenames with DocumentID, which makes them
// stable across re-ingestion:
//
//	id := types.DocumentID("Bouton.md") // "bouton"
package types
