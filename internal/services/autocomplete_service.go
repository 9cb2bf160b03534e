package services

import (
	"context"
	"fmt"

	"garage-billing-api/internal/autocomplete"
	"garage-billing-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// AutocompleteService answers prefix queries over the recurring entry names.
// Each session (and each one-shot query) builds its own tries from the
// store, so no suggestion state is shared between callers.
type AutocompleteService struct {
	names  repositories.AutocompleteRepository
	logger *logrus.Logger
}

// NewAutocompleteService creates a new autocomplete service
func NewAutocompleteService(names repositories.AutocompleteRepository, logger *logrus.Logger) *AutocompleteService {
	if logger == nil {
		logger = logrus.New()
	}
	return &AutocompleteService{
		names:  names,
		logger: logger,
	}
}

// Session holds per-category tries seeded from the store at creation time.
// Later upserts by other callers are not visible until a new session is
// started.
type Session struct {
	tries map[repositories.Category]*autocomplete.Trie
}

// NewSession seeds a fresh suggestion session covering every category.
// Names are loaded most recently used first, which biases same-node sibling
// ordering toward recent entries.
func (s *AutocompleteService) NewSession(ctx context.Context) (*Session, error) {
	tries := make(map[repositories.Category]*autocomplete.Trie, len(repositories.Categories()))
	for _, category := range repositories.Categories() {
		trie := autocomplete.NewTrie()
		if err := s.names.LoadInto(ctx, category, trie); err != nil {
			return nil, err
		}
		tries[category] = trie
	}

	return &Session{tries: tries}, nil
}

// Suggest returns up to five completions for the prefix within a category.
func (sess *Session) Suggest(category repositories.Category, prefix string) []string {
	trie, ok := sess.tries[category]
	if !ok {
		return []string{}
	}
	return trie.Suggest(prefix)
}

// Clear drops all suggestion state for the session.
func (sess *Session) Clear() {
	for _, trie := range sess.tries {
		trie.Clear()
	}
}

// Suggest answers a one-shot prefix query by seeding a single-category trie
// from the store.
func (s *AutocompleteService) Suggest(ctx context.Context, category repositories.Category, prefix string) ([]string, error) {
	if !category.Valid() {
		return nil, repositories.ValidationError("autocomplete", string(category),
			fmt.Errorf("unknown category: %s", category))
	}

	trie := autocomplete.NewTrie()
	if err := s.names.LoadInto(ctx, category, trie); err != nil {
		return nil, err
	}

	return trie.Suggest(prefix), nil
}

// Record stores one name in a category, refreshing its recency.
func (s *AutocompleteService) Record(ctx context.Context, category repositories.Category, name string) error {
	return s.names.Upsert(ctx, category, name)
}
