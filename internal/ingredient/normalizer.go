// Package ingredient provides deterministic normalization of free-text
// Vietnamese ingredient names into slug form, the key used by every
// dictionary and cache lookup in the engine.
package ingredient

import "strings"

// foldTable maps Vietnamese letters (all tone variants) to their base
// Latin letter. Fixed table so normalization never depends on locale
// or Unicode library behavior.
var foldTable = map[rune]rune{
	'à': 'a', 'á': 'a', 'ả': 'a', 'ã': 'a', 'ạ': 'a',
	'ă': 'a', 'ằ': 'a', 'ắ': 'a', 'ẳ': 'a', 'ẵ': 'a', 'ặ': 'a',
	'â': 'a', 'ầ': 'a', 'ấ': 'a', 'ẩ': 'a', 'ẫ': 'a', 'ậ': 'a',
	'è': 'e', 'é': 'e', 'ẻ': 'e', 'ẽ': 'e', 'ẹ': 'e',
	'ê': 'e', 'ề': 'e', 'ế': 'e', 'ể': 'e', 'ễ': 'e', 'ệ': 'e',
	'ì': 'i', 'í': 'i', 'ỉ': 'i', 'ĩ': 'i', 'ị': 'i',
	'ò': 'o', 'ó': 'o', 'ỏ': 'o', 'õ': 'o', 'ọ': 'o',
	'ô': 'o', 'ồ': 'o', 'ố': 'o', 'ổ': 'o', 'ỗ': 'o', 'ộ': 'o',
	'ơ': 'o', 'ờ': 'o', 'ớ': 'o', 'ở': 'o', 'ỡ': 'o', 'ợ': 'o',
	'ù': 'u', 'ú': 'u', 'ủ': 'u', 'ũ': 'u', 'ụ': 'u',
	'ư': 'u', 'ừ': 'u', 'ứ': 'u', 'ử': 'u', 'ữ': 'u', 'ự': 'u',
	'ỳ': 'y', 'ý': 'y', 'ỷ': 'y', 'ỹ': 'y', 'ỵ': 'y',
	'đ': 'd',
}

// Normalize converts a raw ingredient name into its canonical slug:
// lowercase, diacritics folded, whitespace runs collapsed to single
// hyphens, anything outside [a-z0-9-] stripped, hyphens trimmed.
// Pure and idempotent; the output is stable across runs.
func Normalize(raw string) string {
	lower := strings.ToLower(strings.TrimSpace(raw))

	var b strings.Builder
	b.Grow(len(lower))
	prevHyphen := false
	for _, r := range lower {
		if folded, ok := foldTable[r]; ok {
			r = folded
		}
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevHyphen = false
		case r == ' ', r == '\t', r == '\n', r == '\r', r == '-', r == '_':
			if !prevHyphen && b.Len() > 0 {
				b.WriteByte('-')
				prevHyphen = true
			}
		default:
			// Strip everything else, including unmapped Unicode.
		}
	}

	return strings.Trim(b.String(), "-")
}

// listSeparators split a free-text ingredient list into individual items.
// Both English and Vietnamese conjunctions are recognized.
var listSeparators = []string{",", ";", " và ", " and ", "&"}

// SplitList breaks free text that may contain several ingredients into
// individual raw tokens. Empty tokens are dropped; tokens are trimmed
// but otherwise untouched (Normalize is the caller's job).
func SplitList(raw string) []string {
	parts := []string{raw}
	for _, sep := range listSeparators {
		var next []string
		for _, p := range parts {
			next = append(next, strings.Split(p, sep)...)
		}
		parts = next
	}

	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeList splits and normalizes a free-text ingredient list,
// dropping duplicates while preserving first-seen order.
func NormalizeList(raw string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, item := range SplitList(raw) {
		slug := Normalize(item)
		if slug == "" {
			continue
		}
		if _, dup := seen[slug]; dup {
			continue
		}
		seen[slug] = struct{}{}
		out = append(out, slug)
	}
	return out
}
