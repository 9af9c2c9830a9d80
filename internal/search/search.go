// Package search looks up licensed products for the registration wizard.
package search

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"gopkg.in/yaml.v3"

	"github.com/jask/budregistry/internal/product"
)

// Searcher finds registry candidates for a free-text query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]product.Product, error)
}

//go:embed registry.yaml
var defaultRegistry []byte

type rank int

const (
	rankExact rank = iota
	rankPrefix
	rankSubstring
	rankFuzzy
	rankNone
)

// Index is an in-memory registry lookup.
type Index struct {
	items []product.Product
	limit int
}

// NewIndex builds an index over items. A limit of 0 returns every match.
func NewIndex(items []product.Product, limit int) *Index {
	out := make([]product.Product, len(items))
	for i, it := range items {
		out[i] = product.Normalize(it)
	}
	return &Index{items: out, limit: limit}
}

// DefaultIndex loads the embedded registry snapshot.
func DefaultIndex() (*Index, error) {
	items, err := LoadRegistry(bytes.NewReader(defaultRegistry))
	if err != nil {
		return nil, err
	}
	return NewIndex(items, 8), nil
}

// LoadRegistry decodes a YAML registry document.
func LoadRegistry(r io.Reader) ([]product.Product, error) {
	var doc struct {
		Products []product.Product `yaml:"products"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	for i, p := range doc.Products {
		if strings.TrimSpace(p.ID) == "" {
			return nil, fmt.Errorf("registry[%d]: id is required", i)
		}
		doc.Products[i].Markets = product.KnownMarkets(p.Markets)
	}
	return doc.Products, nil
}

// Len reports how many products are indexed.
func (ix *Index) Len() int {
	return len(ix.items)
}

// Search ranks exact matches first, then prefixes, substrings and near-miss
// names. Order within a rank follows the registry.
func (ix *Index) Search(ctx context.Context, query string) ([]product.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}
	type hit struct {
		p product.Product
		r rank
	}
	var hits []hit
	for _, it := range ix.items {
		if r := score(it, q); r != rankNone {
			hits = append(hits, hit{p: it, r: r})
		}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].r < hits[b].r
	})
	if ix.limit > 0 && len(hits) > ix.limit {
		hits = hits[:ix.limit]
	}
	out := make([]product.Product, len(hits))
	for i, h := range hits {
		out[i] = h.p.Clone()
	}
	return out, nil
}

func score(p product.Product, q string) rank {
	name := strings.ToLower(p.Name)
	license := strings.ToLower(p.LicenseNumber)
	switch {
	case name == q || license == q || (p.UPC != "" && p.UPC == q):
		return rankExact
	case strings.HasPrefix(name, q) || strings.HasPrefix(license, q) || (p.UPC != "" && strings.HasPrefix(p.UPC, q)):
		return rankPrefix
	case strings.Contains(name, q) || strings.Contains(strings.ToLower(p.Brand), q) || strings.Contains(strings.ToLower(p.Strain), q):
		return rankSubstring
	}
	if fuzzy(name, q) {
		return rankFuzzy
	}
	return rankNone
}

// fuzzy tolerates roughly one typo per four query runes against the whole
// name or any single word of it.
func fuzzy(name, q string) bool {
	n := len([]rune(q))
	if n < 4 {
		return false
	}
	limit := n / 4
	if limit > 3 {
		limit = 3
	}
	if levenshtein.ComputeDistance(name, q) <= limit {
		return true
	}
	for _, w := range strings.Fields(name) {
		if levenshtein.ComputeDistance(w, q) <= limit {
			return true
		}
	}
	return false
}

// Empty never finds anything.
type Empty struct{}

func (Empty) Search(ctx context.Context, _ string) ([]product.Product, error) {
	return nil, ctx.Err()
}

// Delayed adds an artificial lookup latency in front of another Searcher.
type Delayed struct {
	Inner Searcher
	Delay time.Duration
}

func (d Delayed) Search(ctx context.Context, query string) ([]product.Product, error) {
	if d.Delay > 0 {
		t := time.NewTimer(d.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	return d.Inner.Search(ctx, query)
}

// Lookup is an in-flight search that can be cancelled.
type Lookup struct {
	Query string

	cancel  context.CancelFunc
	done    chan struct{}
	results []product.Product
	err     error
}

// Start runs s.Search on its own goroutine.
func Start(ctx context.Context, s Searcher, query string) *Lookup {
	ctx, cancel := context.WithCancel(ctx)
	l := &Lookup{Query: query, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(l.done)
		defer cancel()
		l.results, l.err = s.Search(ctx, query)
	}()
	return l
}

// Cancel stops the lookup. Result then reports context.Canceled unless the
// search had already finished.
func (l *Lookup) Cancel() {
	l.cancel()
}

// Done is closed once the search returns.
func (l *Lookup) Done() <-chan struct{} {
	return l.done
}

// Result blocks until the search returns.
func (l *Lookup) Result() ([]product.Product, error) {
	<-l.done
	return l.results, l.err
}
