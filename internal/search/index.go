// Package search maintains the in-memory member directory index.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/nexogroup/nexo-server/internal/domain"
	"github.com/nexogroup/nexo-server/internal/normalize"
)

const (
	defaultLimit = 50
	maxLimit     = 200
	batchSize    = 500
)

// MemberIndex is a bleve index over the member directory. It lives in
// memory and is rebuilt from the store at startup, then kept current as
// members are approved, registered or change status.
//
// All methods are safe for concurrent use.
type MemberIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	logger *slog.Logger
}

// Query filters a directory search. Empty fields match everything.
type Query struct {
	Text    string
	Status  domain.MemberStatus
	Segment string
	Limit   int
}

// Hit is a matching member id with its relevance score.
type Hit struct {
	ID    string
	Score float64
}

// NewMemberIndex creates an empty in-memory index.
func NewMemberIndex(logger *slog.Logger) (*MemberIndex, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	index, err := bleve.NewMemOnly(buildMemberMapping())
	if err != nil {
		return nil, fmt.Errorf("create member index: %w", err)
	}

	return &MemberIndex{index: index, logger: logger}, nil
}

// Close releases the index.
func (x *MemberIndex) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.index.Close()
}

// Index adds or replaces a member document.
func (x *MemberIndex) Index(m *domain.Member) error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.index.Index(m.ID, toDocument(m))
}

// Remove drops a member document. Unknown ids are ignored.
func (x *MemberIndex) Remove(id string) error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.index.Delete(id)
}

// Rebuild replaces the index contents with members. Searches keep using the
// old index until the new one is complete.
func (x *MemberIndex) Rebuild(members []*domain.Member) error {
	fresh, err := bleve.NewMemOnly(buildMemberMapping())
	if err != nil {
		return fmt.Errorf("create member index: %w", err)
	}

	for start := 0; start < len(members); start += batchSize {
		end := min(start+batchSize, len(members))

		batch := fresh.NewBatch()
		for _, m := range members[start:end] {
			if err := batch.Index(m.ID, toDocument(m)); err != nil {
				fresh.Close()
				return fmt.Errorf("index member %s: %w", m.ID, err)
			}
		}
		if err := fresh.Batch(batch); err != nil {
			fresh.Close()
			return fmt.Errorf("apply batch: %w", err)
		}
	}

	x.mu.Lock()
	old := x.index
	x.index = fresh
	x.mu.Unlock()

	if err := old.Close(); err != nil {
		x.logger.Warn("closing replaced member index", "error", err)
	}

	x.logger.Info("member index rebuilt", "members", len(members))
	return nil
}

// Count returns the number of indexed members.
func (x *MemberIndex) Count() (uint64, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.index.DocCount()
}

// Search returns matching member ids, best match first.
func (x *MemberIndex) Search(ctx context.Context, q Query) ([]Hit, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	req := bleve.NewSearchRequestOptions(buildQuery(q), limit, 0, false)
	req.SortBy([]string{"-_score", "_id"})

	x.mu.RLock()
	defer x.mu.RUnlock()

	res, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search members: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{ID: h.ID, Score: h.Score})
	}
	return hits, nil
}

func toDocument(m *domain.Member) map[string]any {
	return map[string]any{
		"name":        normalize.Fold(m.Name),
		"company":     normalize.Fold(m.Company),
		"segment":     normalize.Fold(m.Segment),
		"position":    normalize.Fold(m.Position),
		"bio":         normalize.Fold(m.Bio),
		"email":       strings.ToLower(m.Email),
		"status":      string(m.Status),
		"segment_key": normalize.Segment(m.Segment),
	}
}

func buildQuery(q Query) query.Query {
	var must []query.Query

	if text := strings.TrimSpace(q.Text); text != "" {
		must = append(must, textQuery(text))
	}

	if q.Status != "" {
		tq := bleve.NewTermQuery(string(q.Status))
		tq.SetField("status")
		must = append(must, tq)
	}

	if key := normalize.Segment(q.Segment); key != "" {
		tq := bleve.NewTermQuery(key)
		tq.SetField("segment_key")
		must = append(must, tq)
	}

	switch len(must) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return must[0]
	default:
		return bleve.NewConjunctionQuery(must...)
	}
}

// textQuery matches free text against the directory fields. The last word
// also matches as a prefix so results narrow while the user types.
func textQuery(text string) query.Query {
	folded := normalize.Fold(text)

	var should []query.Query

	for field, boost := range map[string]float64{
		"name":     3,
		"company":  2,
		"segment":  1.5,
		"position": 1,
		"bio":      0.5,
	} {
		mq := bleve.NewMatchQuery(folded)
		mq.SetField(field)
		mq.SetBoost(boost)
		should = append(should, mq)
	}

	if words := strings.Fields(folded); len(words) > 0 && len(words[len(words)-1]) >= 2 {
		last := words[len(words)-1]
		for _, field := range []string{"name", "company"} {
			pq := bleve.NewPrefixQuery(last)
			pq.SetField(field)
			should = append(should, pq)
		}
	}

	email := strings.ToLower(text)
	eq := bleve.NewTermQuery(email)
	eq.SetField("email")
	eq.SetBoost(5)
	should = append(should, eq)

	ep := bleve.NewPrefixQuery(email)
	ep.SetField("email")
	should = append(should, ep)

	return bleve.NewDisjunctionQuery(should...)
}
