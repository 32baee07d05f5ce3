// Package searchindex implements fuzzy search over documentation pages.
//
// Each document is matched on three fields: title, content and tags.
// A field scores 0 on exact (case and accent insensitive) equality, below 0.2
// when it contains the whole query, and between 0.2 and 1 by token Levenshtein
// similarity otherwise. Field scores are divided by the field weight and the
// best field wins, so lower is better.
//
// # Basic Usage
//
//	ix := searchindex.Build(repo.Documents(), searchindex.DefaultOptions())
//
//	results, err := ix.Search(searchindex.SearchRequest{
//	    Query:    "bouton",
//	    Category: types.DocComponent,
//	    Limit:    5,
//	})
//
//	for _, r := range results {
//	    fmt.Printf("[%d] %s (score: %.2f)\n", r.Rank, r.Document.Title, r.Score)
//	}
//
// # Threshold
//
// Results scoring above the threshold are dropped. A threshold of 0 keeps
// exact matches only and 1 keeps everything:
//
//	ix.Search(searchindex.SearchRequest{Query: "alerte", Threshold: searchindex.Threshold(0)})
//
// # Ordering
//
// Ties on score are broken by title, then by document ID, so identical
// inputs always produce identical output. An empty query lists every
// document of the requested category ordered by title.
package searchindex
