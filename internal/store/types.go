// Package store holds the persistence layer for ingredient translations:
// the permanent Postgres dictionary, the time-limited Redis learned cache,
// and the Redis job status rows.
package store

import (
	"time"

	"github.com/monngon/bep/internal/ingredient"
)

// TranslationSource records how a dictionary or learned entry came to be.
type TranslationSource string

const (
	SourceBootstrap TranslationSource = "bootstrap"
	SourcePromoted  TranslationSource = "promoted"
	SourceAI        TranslationSource = "ai"
)

// DictionaryEntry is a permanent translation record. Keyed by the
// normalized source slug; immutable once written, never expires.
type DictionaryEntry struct {
	SourceText       string               `json:"source_text"`
	NormalizedSource string               `json:"normalized_source"`
	CanonicalEnglish string               `json:"canonical_english"`
	GeneralForm      string               `json:"general_form"`
	Category         string               `json:"category"`
	Nutrition        ingredient.Nutrition `json:"nutrition"`
	AddedBy          TranslationSource    `json:"added_by"`
	AddedAt          time.Time            `json:"added_at"`
	UsageCount       int64                `json:"usage_count"`
}

// LearnedEntry is a time-limited translation record learned from an AI
// call. Same shape as DictionaryEntry plus expiry and recency tracking.
// Destroyed by TTL or by promotion into the dictionary.
type LearnedEntry struct {
	SourceText       string               `json:"source_text"`
	NormalizedSource string               `json:"normalized_source"`
	CanonicalEnglish string               `json:"canonical_english"`
	GeneralForm      string               `json:"general_form"`
	Category         string               `json:"category"`
	Nutrition        ingredient.Nutrition `json:"nutrition"`
	AddedBy          TranslationSource    `json:"added_by"`
	AddedAt          time.Time            `json:"added_at"`
	UsageCount       int64                `json:"usage_count"`
	LastUsedAt       time.Time            `json:"last_used_at"`
	ExpiresAt        time.Time            `json:"expires_at"`
}

// Expired reports whether the entry's TTL has elapsed. Store-level TTL
// reaping is advisory; every read re-checks this against now.
func (e *LearnedEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// ToDictionary converts a learned entry into its promoted dictionary form.
func (e *LearnedEntry) ToDictionary() DictionaryEntry {
	return DictionaryEntry{
		SourceText:       e.SourceText,
		NormalizedSource: e.NormalizedSource,
		CanonicalEnglish: e.CanonicalEnglish,
		GeneralForm:      e.GeneralForm,
		Category:         e.Category,
		Nutrition:        e.Nutrition,
		AddedBy:          SourcePromoted,
		AddedAt:          time.Now().UTC(),
		UsageCount:       e.UsageCount,
	}
}
