package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/monngon/bep/internal/errors"
)

// Dictionary is the permanent translation store backed by Postgres.
// Writes only happen at bootstrap and on promotion, both through
// InsertIfAbsent; rows are never updated or deleted.
type Dictionary struct {
	pool *pgxpool.Pool
}

func NewDictionary(pool *pgxpool.Pool) *Dictionary {
	return &Dictionary{pool: pool}
}

const dictionarySchema = `
CREATE TABLE IF NOT EXISTS dictionary_entries (
    normalized_source TEXT PRIMARY KEY,
    source_text       TEXT NOT NULL,
    canonical_english TEXT NOT NULL,
    general_form      TEXT NOT NULL DEFAULT '',
    category          TEXT NOT NULL DEFAULT '',
    calories          DOUBLE PRECISION NOT NULL DEFAULT 0,
    protein           DOUBLE PRECISION NOT NULL DEFAULT 0,
    carbs             DOUBLE PRECISION NOT NULL DEFAULT 0,
    fat               DOUBLE PRECISION NOT NULL DEFAULT 0,
    added_by          TEXT NOT NULL,
    added_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
    usage_count       BIGINT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_dictionary_canonical
    ON dictionary_entries (canonical_english);
`

// EnsureSchema creates the dictionary table if it does not exist yet.
// Called once at process start; safe to run concurrently.
func (d *Dictionary) EnsureSchema(ctx context.Context) error {
	if _, err := d.pool.Exec(ctx, dictionarySchema); err != nil {
		return apperrors.NewStoreUnavailableError("failed to ensure dictionary schema", err)
	}
	return nil
}

const selectEntry = `
SELECT source_text, normalized_source, canonical_english, general_form, category,
       calories, protein, carbs, fat, added_by, added_at, usage_count
FROM dictionary_entries
`

// Get looks up an entry by its normalized source slug. Returns nil when
// the slug is unknown.
func (d *Dictionary) Get(ctx context.Context, normalizedSource string) (*DictionaryEntry, error) {
	row := d.pool.QueryRow(ctx, selectEntry+"WHERE normalized_source = $1", normalizedSource)
	return scanEntry(row)
}

// GetByCanonical looks up an entry by canonical English name. Multiple
// source strings can map to one canonical name; the oldest row wins so
// nutrition lookups stay stable.
func (d *Dictionary) GetByCanonical(ctx context.Context, canonicalEnglish string) (*DictionaryEntry, error) {
	row := d.pool.QueryRow(ctx,
		selectEntry+"WHERE canonical_english = $1 ORDER BY added_at ASC LIMIT 1", canonicalEnglish)
	return scanEntry(row)
}

// InsertIfAbsent writes the entry unless the slug already exists.
// The ON CONFLICT clause makes concurrent promotion of the same entry
// benign: exactly one writer wins and the rest observe inserted=false.
func (d *Dictionary) InsertIfAbsent(ctx context.Context, e DictionaryEntry) (bool, error) {
	tag, err := d.pool.Exec(ctx, `
INSERT INTO dictionary_entries
    (normalized_source, source_text, canonical_english, general_form, category,
     calories, protein, carbs, fat, added_by, added_at, usage_count)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (normalized_source) DO NOTHING`,
		e.NormalizedSource, e.SourceText, e.CanonicalEnglish, e.GeneralForm, e.Category,
		e.Nutrition.Calories, e.Nutrition.Protein, e.Nutrition.Carbs, e.Nutrition.Fat,
		string(e.AddedBy), e.AddedAt, e.UsageCount)
	if err != nil {
		return false, apperrors.NewStoreUnavailableError(
			fmt.Sprintf("failed to insert dictionary entry %q", e.NormalizedSource), err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanEntry(row pgx.Row) (*DictionaryEntry, error) {
	var e DictionaryEntry
	var addedBy string
	err := row.Scan(&e.SourceText, &e.NormalizedSource, &e.CanonicalEnglish, &e.GeneralForm,
		&e.Category, &e.Nutrition.Calories, &e.Nutrition.Protein, &e.Nutrition.Carbs,
		&e.Nutrition.Fat, &addedBy, &e.AddedAt, &e.UsageCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("failed to read dictionary entry", err)
	}
	e.AddedBy = TranslationSource(addedBy)
	return &e, nil
}
