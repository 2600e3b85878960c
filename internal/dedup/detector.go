// Package dedup decides whether a newly ingested book duplicates an existing
// catalog entry and whether the incoming copy should supersede it.
//
// Matching is two-tier: a trusted document identifier is authoritative; when
// there is none, books are matched by the normalized (title, author,
// language) duplicate key and ranked by a pairwise comparison score.
package dedup

import (
	"fmt"
	"log"
	"math"

	"github.com/akovalenko/homelib/internal/entities"
)

// MatchType names the tier that produced a duplicate match.
type MatchType string

const (
	MatchNone         MatchType = "none"
	MatchTrustedID    MatchType = "trusted_id"
	MatchDuplicateKey MatchType = "duplicate_key"
)

// Comparison scoring. The scale is deliberate policy: a version delta scores
// ×100, a document-date win 10, a size win 5; ties keep the existing entry.
const (
	versionEpsilon = 1e-9
	dateWinScore   = 10
	sizeWinScore   = 5
)

// Result is the transient outcome of one duplicate check. It is never
// persisted; Reason is a human-readable audit string.
type Result struct {
	IsDuplicate   bool
	Existing      *entities.Book
	ShouldReplace bool
	MatchType     MatchType
	Score         int
	Reason        string

	// FromBatch is set when the match came from an open batch context,
	// meaning the existing book has no persisted row yet.
	FromBatch bool
}

// Store is the persisted-catalog surface the detector reads and annotates.
// It never bypasses the schema manager.
type Store interface {
	ActiveByContentHash(hash string) ([]*entities.Book, error)
	ActiveByDuplicateKey(key string) ([]*entities.Book, error)
	MarkReplaced(id, byID string) error
	ReplacedCount() (int, error)
	TrustedActiveCount() (int, error)
	DuplicateKeyGroupCount() (int, error)
}

// Detector applies the duplicate-resolution policy against a store, with an
// optional in-memory batch overlay for bulk imports.
type Detector struct {
	store Store
}

// NewDetector creates a detector over the given store.
func NewDetector(store Store) *Detector {
	return &Detector{store: store}
}

// Check resolves a single incoming book against the persisted store.
func (d *Detector) Check(incoming *entities.Book) Result {
	return d.CheckWithBatch(incoming, nil)
}

// CheckWithBatch resolves an incoming book, consulting the batch overlay
// first when one is open. Store lookup failures are logged and degrade to
// "not a duplicate" so ingestion keeps going.
func (d *Detector) CheckWithBatch(incoming *entities.Book, batch *Batch) Result {
	incoming.DocumentIDTrusted = IsTrustedID(incoming.ContentHash)

	if incoming.DocumentIDTrusted {
		if res, ok := d.checkTrusted(incoming, batch); ok {
			return res
		}
	}
	return d.checkDuplicateKey(incoming, batch)
}

func (d *Detector) checkTrusted(incoming *entities.Book, batch *Batch) (Result, bool) {
	var candidates []*entities.Book
	fromBatch := false

	if batch != nil {
		if existing := batch.byHash[incoming.ContentHash]; existing != nil {
			candidates = []*entities.Book{existing}
			fromBatch = true
		}
	}
	if len(candidates) == 0 {
		var err error
		candidates, err = d.store.ActiveByContentHash(incoming.ContentHash)
		if err != nil {
			log.Printf("duplicate check: content hash lookup failed for %s: %v", incoming.ID, err)
			return Result{}, false
		}
	}
	if len(candidates) == 0 {
		return Result{}, false
	}

	existing, score, reason := bestCandidate(incoming, candidates)
	if fromBatch {
		reason += " (matched in batch)"
	}
	return Result{
		IsDuplicate:   true,
		Existing:      existing,
		ShouldReplace: score > 0,
		MatchType:     MatchTrustedID,
		Score:         score,
		Reason:        fmt.Sprintf("trusted id %s: %s", incoming.ContentHash, reason),
		FromBatch:     fromBatch,
	}, true
}

func (d *Detector) checkDuplicateKey(incoming *entities.Book, batch *Batch) Result {
	key := incoming.DuplicateKey
	if key == "" {
		key = incoming.ComputeDuplicateKey()
	}

	var candidates []*entities.Book
	fromBatch := false

	if batch != nil && len(batch.byKey[key]) > 0 {
		candidates = batch.byKey[key]
		fromBatch = true
	} else {
		var err error
		candidates, err = d.store.ActiveByDuplicateKey(key)
		if err != nil {
			log.Printf("duplicate check: duplicate key lookup failed for %s: %v", incoming.ID, err)
			return notADuplicate()
		}
	}

	// The stored key can be stale relative to later edits; re-verify the
	// pairwise equivalence before treating a candidate as a duplicate.
	var verified []*entities.Book
	for _, c := range candidates {
		if looksLikeSame(incoming, c) {
			verified = append(verified, c)
		}
	}
	if len(verified) == 0 {
		return notADuplicate()
	}

	existing, score, reason := bestCandidate(incoming, verified)
	if fromBatch {
		reason += " (matched in batch)"
	}
	return Result{
		IsDuplicate:   true,
		Existing:      existing,
		ShouldReplace: score > 0,
		MatchType:     MatchDuplicateKey,
		Score:         score,
		Reason:        fmt.Sprintf("duplicate key %q: %s", key, reason),
		FromBatch:     fromBatch,
	}
}

func notADuplicate() Result {
	return Result{MatchType: MatchNone, Reason: "no active match"}
}

// bestCandidate scores the incoming book against every candidate and keeps
// the highest-scoring one.
func bestCandidate(incoming *entities.Book, candidates []*entities.Book) (*entities.Book, int, string) {
	best := candidates[0]
	bestScore, bestReason := compareBooks(incoming, best)
	for _, c := range candidates[1:] {
		if score, reason := compareBooks(incoming, c); score > bestScore {
			best, bestScore, bestReason = c, score, reason
		}
	}
	return best, bestScore, bestReason
}

// compareBooks produces the signed replacement score: version delta first,
// then document date, then size. Zero or negative keeps the existing copy.
func compareBooks(incoming, existing *entities.Book) (int, string) {
	delta := incoming.Version - existing.Version
	switch {
	case delta > versionEpsilon:
		return int(math.Round(delta * 100)),
			fmt.Sprintf("incoming version %.2f supersedes %.2f", incoming.Version, existing.Version)
	case delta < -versionEpsilon:
		return int(math.Round(delta * 100)),
			fmt.Sprintf("incoming version %.2f is older than %.2f", incoming.Version, existing.Version)
	}

	if existing.DocumentDate.Before(incoming.DocumentDate) {
		return dateWinScore, "same version, incoming document date is later"
	}
	if existing.DocumentDate.Equal(incoming.DocumentDate) && incoming.DocumentSize > existing.DocumentSize {
		return sizeWinScore,
			fmt.Sprintf("same version and date, incoming is larger (%d > %d bytes)", incoming.DocumentSize, existing.DocumentSize)
	}
	return 0, "existing copy is as good or better"
}

// looksLikeSame is the pairwise title/author/language equivalence predicate.
func looksLikeSame(a, b *entities.Book) bool {
	return entities.MakeDuplicateKey(a.Title, a.PrimaryAuthor(), a.Language) ==
		entities.MakeDuplicateKey(b.Title, b.PrimaryAuthor(), b.Language)
}

// CommitReplacement marks the matched existing book as replaced by the
// incoming one. A match found only inside an open batch context has no
// persisted row yet, so nothing is written for it. Failure is logged and
// never aborts ingestion.
func (d *Detector) CommitReplacement(incoming *entities.Book, res Result) {
	if !res.ShouldReplace || res.Existing == nil || res.FromBatch {
		return
	}
	if err := d.store.MarkReplaced(res.Existing.ID, incoming.ID); err != nil {
		log.Printf("failed to mark book %s replaced by %s: %v", res.Existing.ID, incoming.ID, err)
	}
}

// Stats are the on-demand duplicate aggregates; nothing here is maintained
// as a running total.
type Stats struct {
	ReplacedBooks      int
	TrustedActiveBooks int
	DuplicateKeyGroups int
}

// Stats recomputes the duplicate aggregates from the store.
func (d *Detector) Stats() (Stats, error) {
	var s Stats
	var err error
	if s.ReplacedBooks, err = d.store.ReplacedCount(); err != nil {
		return s, err
	}
	if s.TrustedActiveBooks, err = d.store.TrustedActiveCount(); err != nil {
		return s, err
	}
	if s.DuplicateKeyGroups, err = d.store.DuplicateKeyGroupCount(); err != nil {
		return s, err
	}
	return s, nil
}
