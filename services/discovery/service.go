package discovery

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Entry is a single record of the knowledge index
type Entry struct {
	ID        string  `json:"id"`
	Topic     string  `json:"topic"`
	Context   string  `json:"context"`
	Relevance float64 `json:"relevance"`
}

// defaultIndex is the enterprise historical index served by discovery
var defaultIndex = []Entry{
	{ID: "K-001", Topic: "Q4 Strategy", Context: "Alignment with Global sustainability goals", Relevance: 0.92},
	{ID: "K-002", Topic: "Avatar Guidelines", Context: "Diversity and inclusion standards for RPM avatars", Relevance: 0.85},
	{ID: "K-003", Topic: "Security Protocol", Context: "Data encryption standards for spatial sessions", Relevance: 0.78},
	{ID: "K-004", Topic: "Project GreenGalaxy", Context: "Initial Architecture Review (March 2025)", Relevance: 0.88},
	{ID: "K-005", Topic: "Global Supply Chain", Context: "Logistics: Optimization Session #42", Relevance: 0.75},
	{ID: "K-006", Topic: "Executive Boardroom", Context: "Strategy: Q4 Revenue Alignment", Relevance: 0.95},
	{ID: "K-007", Topic: "Retail XR Prototype", Context: "Customer Engagement Metrics", Relevance: 0.80},
	{ID: "K-008", Topic: "Infinite Canvas Collab", Context: "Product Roadmap Sync", Relevance: 0.83},
	{ID: "K-009", Topic: "Security Protocol Alpha", Context: "Enterprise E2E Encryption Standup", Relevance: 0.90},
	{ID: "K-010", Topic: "Zen Brainlab", Context: "High-Focus productivity benchmarks", Relevance: 0.70},
	{ID: "K-011", Topic: "Studio Creative Session", Context: "Multi-Avatar Emote System Design", Relevance: 0.87},
}

// Option configures a Service
type Option func(*Service)

// WithIndex replaces the default index
func WithIndex(entries []Entry) Option {
	return func(s *Service) {
		s.index = entries
	}
}

// WithRand sets the source used to pick the fallback entry
func WithRand(r *rand.Rand) Option {
	return func(s *Service) {
		s.rng = r
	}
}

// Service performs keyword lookups over a fixed in-memory index
type Service struct {
	index  []Entry
	logger *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewService creates a discovery service over the default index
func NewService(logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		index:  defaultIndex,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// Search returns every entry whose topic or context contains any word of the query.
// When nothing matches, a single entry is picked at random.
func (s *Service) Search(ctx context.Context, query string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	words := strings.Fields(strings.ToLower(query))
	results := make([]Entry, 0)
	for _, entry := range s.index {
		if matches(entry, words) {
			results = append(results, entry)
		}
	}

	if len(results) > 0 || len(s.index) == 0 {
		s.logger.Debug("discovery search", zap.Int("words", len(words)), zap.Int("matches", len(results)))
		return results, nil
	}

	s.mu.Lock()
	pick := s.index[s.rng.Intn(len(s.index))]
	s.mu.Unlock()

	s.logger.Debug("discovery search had no matches, returning random entry", zap.String("entry_id", pick.ID))
	return []Entry{pick}, nil
}

// Len returns the number of indexed entries
func (s *Service) Len() int {
	return len(s.index)
}

func matches(entry Entry, words []string) bool {
	topic := strings.ToLower(entry.Topic)
	context := strings.ToLower(entry.Context)
	for _, word := range words {
		if strings.Contains(topic, word) || strings.Contains(context, word) {
			return true
		}
	}
	return false
}
