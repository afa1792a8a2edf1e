// Package dedupe drops postings that describe the same opening.
//
// The fingerprint hashes (source, title, company, city) lower-cased. It is a
// heuristic: paraphrased titles or differently written company names are not
// detected, and country is not part of the key, so identical titles in two
// countries collapse.
package dedupe

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/jimezsa/jobradar/internal/models"
)

const keySeparator = "|"

// Stats describes one deduplication pass.
type Stats struct {
	Total      int
	Duplicates int
	Unique     int
}

// DiffStats captures stats for filtering incoming postings against existing ones.
type DiffStats struct {
	TotalIncoming int
	TotalExisting int
	Duplicates    int
	Unseen        int
}

// Fingerprint returns the hex SHA-256 of the pipe-joined lower-cased
// source, title, company and city.
func Fingerprint(p models.Posting) string {
	key := strings.Join([]string{
		strings.ToLower(p.Source),
		strings.ToLower(p.Title),
		strings.ToLower(p.Company),
		strings.ToLower(p.City),
	}, keySeparator)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Deduplicate keeps the first posting for each fingerprint, preserving input order.
func Deduplicate(postings []models.Posting) []models.Posting {
	unique, _ := DeduplicateWithStats(postings)
	return unique
}

// DeduplicateWithStats is Deduplicate plus counters.
func DeduplicateWithStats(postings []models.Posting) ([]models.Posting, Stats) {
	stats := Stats{Total: len(postings)}
	seen := make(map[string]struct{}, len(postings))
	unique := make([]models.Posting, 0, len(postings))
	for _, p := range postings {
		key := Fingerprint(p)
		if _, exists := seen[key]; exists {
			stats.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, p)
	}
	stats.Unique = len(unique)
	return unique, stats
}

// Diff returns the postings of incoming whose fingerprint appears neither in
// existing nor earlier in incoming.
func Diff(incoming []models.Posting, existing []models.Posting) ([]models.Posting, DiffStats) {
	stats := DiffStats{
		TotalIncoming: len(incoming),
		TotalExisting: len(existing),
	}

	known := make(map[string]struct{}, len(existing)+len(incoming))
	for _, p := range existing {
		known[Fingerprint(p)] = struct{}{}
	}

	unseen := make([]models.Posting, 0, len(incoming))
	for _, p := range incoming {
		key := Fingerprint(p)
		if _, exists := known[key]; exists {
			stats.Duplicates++
			continue
		}
		known[key] = struct{}{}
		unseen = append(unseen, p)
	}

	stats.Unseen = len(unseen)
	return unseen, stats
}

// MergeStats captures stats for merging incoming postings into a history.
type MergeStats struct {
	TotalExisting int
	TotalIncoming int
	Added         int
	TotalOut      int
}

// Merge appends the unseen postings of incoming to existing. Repeats inside
// existing are collapsed too.
func Merge(existing []models.Posting, incoming []models.Posting) ([]models.Posting, MergeStats) {
	stats := MergeStats{
		TotalExisting: len(existing),
		TotalIncoming: len(incoming),
	}

	out := Deduplicate(existing)
	unseen, _ := Diff(incoming, out)
	out = append(out, unseen...)

	stats.Added = len(unseen)
	stats.TotalOut = len(out)
	return out, stats
}

// StableID derives a posting id that survives re-harvesting:
// "<source>-<source_job_id>", or "<source>-<16 hex of the fingerprint>" when
// the source exposes no id.
func StableID(p models.Posting) string {
	if p.SourceJobID != "" {
		return p.Source + "-" + p.SourceJobID
	}
	return p.Source + "-" + Fingerprint(p)[:16]
}
