package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"garage-billing-api/internal/autocomplete"
	"garage-billing-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// AutocompleteRepository implements the AutocompleteRepository interface for
// SQLite. Each category maps to its own single-column-key table
// (name PRIMARY KEY, last_used TIMESTAMP).
type AutocompleteRepository struct {
	baseRepository
}

// NewAutocompleteRepository creates a new SQLite autocomplete repository
func NewAutocompleteRepository(db *sql.DB, logger *logrus.Logger) repositories.AutocompleteRepository {
	return &AutocompleteRepository{
		baseRepository: newBaseRepository(db, "autocomplete", logger),
	}
}

// Upsert inserts (name, now) or bumps last_used when the name already exists.
// Blank names are a no-op. This is the only mutation point for the
// autocomplete corpus; it runs after every successful invoice save.
func (r *AutocompleteRepository) Upsert(ctx context.Context, category repositories.Category, name string) error {
	if !category.Valid() {
		return repositories.ValidationError("autocomplete", string(category),
			fmt.Errorf("unknown category %q", category))
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	// category is a closed set validated above, never caller text
	query := fmt.Sprintf(`
		INSERT INTO %s (name, last_used) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET last_used = excluded.last_used`, category)

	if _, err := r.executeExec(ctx, r.db, "upsert", query, name, time.Now().UTC()); err != nil {
		return repositories.NewRepositoryError("upsert", string(category), name, err)
	}

	return nil
}

// LoadInto seeds trie with every name in the category ordered by last_used
// descending. Inserting most-recent-first is what gives the trie's fixed
// traversal order its approximate recency bias.
func (r *AutocompleteRepository) LoadInto(ctx context.Context, category repositories.Category, trie *autocomplete.Trie) error {
	if !category.Valid() {
		return repositories.ValidationError("autocomplete", string(category),
			fmt.Errorf("unknown category %q", category))
	}

	query := fmt.Sprintf("SELECT name FROM %s ORDER BY last_used DESC", category)

	rows, err := r.executeQuery(ctx, r.db, "load", query)
	if err != nil {
		return repositories.NewRepositoryError("load", string(category), "", err)
	}
	defer rows.Close()

	loaded := 0
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return repositories.NewRepositoryError("load", string(category), "", err)
		}
		trie.Insert(name)
		loaded++
	}

	if err := rows.Err(); err != nil {
		return repositories.NewRepositoryError("load", string(category), "", err)
	}

	r.logger.WithFields(logrus.Fields{
		"category": category,
		"count":    loaded,
	}).Debug("Seeded autocomplete trie")

	return nil
}
