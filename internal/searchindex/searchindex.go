package searchindex

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/textnorm"
	"github.com/Alexmacapple/DSFR-MCP-sub000/pkg/types"
)

const (
	DefaultLimit     = 10
	MaxLimit         = 100
	DefaultThreshold = 0.4

	// substringCeiling is the worst score a whole-query substring hit can get;
	// token similarity scores start here.
	substringCeiling = 0.2
)

// Options configures field weights and the default match threshold
type Options struct {
	TitleWeight   float64
	ContentWeight float64
	TagsWeight    float64
	Threshold     float64
}

// DefaultOptions weights title highest, content and tags equally below it
func DefaultOptions() Options {
	return Options{
		TitleWeight:   1.0,
		ContentWeight: 0.5,
		TagsWeight:    0.5,
		Threshold:     DefaultThreshold,
	}
}

// SearchRequest contains parameters for a search operation
type SearchRequest struct {
	Query    string
	Category types.DocumentCategory // empty matches every category
	Limit    int
	// Threshold bounds the admissible score: 0 is exact only, 1 admits
	// anything. Nil uses the index default.
	Threshold *float64
}

// Threshold returns a pointer suitable for SearchRequest.Threshold
func Threshold(v float64) *float64 { return &v }

var ErrInvalidThreshold = errors.New("threshold must be between 0 and 1")

// field is a pre-normalised searchable value
type field struct {
	text   string
	tokens []string // unique, sorted
}

type entry struct {
	doc     *types.Document
	title   field
	content field
	tags    []field
}

// Index is an immutable fuzzy index over a document snapshot. Rebuilding is the
// only way to change it; concurrent searches are safe.
type Index struct {
	opts       Options
	entries    []entry
	categories map[types.DocumentCategory]int
}

// Build indexes docs in a single pass. Documents are copied, so later changes
// to the inputs do not affect the index.
func Build(docs []*types.Document, opts Options) *Index {
	if opts.TitleWeight <= 0 && opts.ContentWeight <= 0 && opts.TagsWeight <= 0 {
		opts = DefaultOptions()
	}

	ix := &Index{
		opts:       opts,
		entries:    make([]entry, 0, len(docs)),
		categories: make(map[types.DocumentCategory]int),
	}

	for _, d := range docs {
		if d == nil {
			continue
		}
		doc := d.Clone()
		e := entry{
			doc:     doc,
			title:   newField(doc.Title),
			content: newField(doc.Content),
		}
		for _, tag := range doc.Tags.Sorted() {
			e.tags = append(e.tags, newField(tag))
		}
		ix.entries = append(ix.entries, e)
		ix.categories[doc.Category]++
	}

	sort.Slice(ix.entries, func(i, j int) bool {
		return ix.entries[i].doc.ID < ix.entries[j].doc.ID
	})
	return ix
}

func newField(s string) field {
	f := field{text: strings.Join(strings.Fields(textnorm.Fold(s)), " ")}
	seen := make(map[string]struct{})
	for _, tok := range textnorm.Tokens(s) {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		f.tokens = append(f.tokens, tok)
	}
	sort.Strings(f.tokens)
	return f
}

// Len returns the number of indexed documents
func (ix *Index) Len() int { return len(ix.entries) }

// Categories returns the number of documents per category
func (ix *Index) Categories() map[types.DocumentCategory]int {
	out := make(map[types.DocumentCategory]int, len(ix.categories))
	for k, v := range ix.categories {
		out[k] = v
	}
	return out
}

// Search returns matching documents ordered by score, then title, then ID.
// An empty query enumerates the category with score 0.
func (ix *Index) Search(req SearchRequest) ([]types.SearchResult, error) {
	if err := ix.validateRequest(&req); err != nil {
		return nil, fmt.Errorf("invalid search request: %w", err)
	}

	query := newField(req.Query)
	threshold := *req.Threshold

	var hits []types.SearchResult
	for i := range ix.entries {
		e := &ix.entries[i]
		if req.Category != "" && e.doc.Category != req.Category {
			continue
		}

		score := 0.0
		if query.text != "" {
			score = ix.score(query, e)
			if score > threshold {
				continue
			}
		}
		hits = append(hits, types.SearchResult{Document: e.doc, Score: score})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.Score != b.Score {
			return a.Score < b.Score
		}
		if a.Document.Title != b.Document.Title {
			return a.Document.Title < b.Document.Title
		}
		return a.Document.ID < b.Document.ID
	})

	if len(hits) > req.Limit {
		hits = hits[:req.Limit]
	}
	for i := range hits {
		hits[i].Document = hits[i].Document.Clone()
		hits[i].Rank = i + 1
	}
	return hits, nil
}

// validateRequest fills defaults and rejects out of range values
func (ix *Index) validateRequest(req *SearchRequest) error {
	req.Query = strings.TrimSpace(req.Query)

	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}
	if req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}

	if req.Threshold == nil {
		req.Threshold = Threshold(ix.opts.Threshold)
	}
	if t := *req.Threshold; t < 0 || t > 1 {
		return ErrInvalidThreshold
	}
	return nil
}

// score is the best weighted field score of a document, in [0, 1]
func (ix *Index) score(q field, e *entry) float64 {
	best := weighted(fieldScore(q, e.title), ix.opts.TitleWeight)
	if best == 0 {
		return 0
	}
	if s := weighted(fieldScore(q, e.content), ix.opts.ContentWeight); s < best {
		best = s
	}
	for _, tag := range e.tags {
		if s := weighted(fieldScore(q, tag), ix.opts.TagsWeight); s < best {
			best = s
		}
	}
	return best
}

func weighted(raw, weight float64) float64 {
	if weight <= 0 {
		return 1
	}
	s := raw / weight
	if s > 1 {
		return 1
	}
	return s
}

// fieldScore is 0 for equality, (0, 0.2) for a substring hit and
// [0.2, 1] for token similarity.
func fieldScore(q, f field) float64 {
	if f.text == "" {
		return 1
	}
	if q.text == f.text {
		return 0
	}
	if strings.Contains(f.text, q.text) {
		ratio := float64(utf8.RuneCountInString(q.text)) / float64(utf8.RuneCountInString(f.text))
		return substringCeiling * (1 - ratio)
	}
	if len(q.tokens) == 0 || len(f.tokens) == 0 {
		return 1
	}

	var total float64
	for _, qt := range q.tokens {
		total += bestSimilarity(qt, f.tokens)
	}
	avg := total / float64(len(q.tokens))
	return substringCeiling + (1-substringCeiling)*(1-avg)
}

// bestSimilarity returns the highest 1 - distance/maxlen over candidates
func bestSimilarity(token string, candidates []string) float64 {
	tl := utf8.RuneCountInString(token)
	best := 0.0
	for _, c := range candidates {
		cl := utf8.RuneCountInString(c)
		longest := max(tl, cl)
		if longest == 0 {
			continue
		}
		// length difference alone bounds the distance from below
		diff := tl - cl
		if diff < 0 {
			diff = -diff
		}
		if 1-float64(diff)/float64(longest) <= best {
			continue
		}
		sim := 1 - float64(levenshtein.ComputeDistance(token, c))/float64(longest)
		if sim > best {
			best = sim
			if best == 1 {
				break
			}
		}
	}
	return best
}
