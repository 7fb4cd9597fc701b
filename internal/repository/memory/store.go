// Package memory implements the repository interfaces in process memory.
// It backs tests and storeless deployments; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/arenahub/arenahub-backend/internal/errs"
	"github.com/arenahub/arenahub-backend/internal/model"
)

// Store holds per-game ledgers, incrementally maintained profiles, and
// the reset audit log behind one mutex. The mutex spans the wallet
// duplicate check and the append, so concurrent identical submissions
// cannot both land.
type Store struct {
	mu       sync.Mutex
	entries  map[string][]model.ScoreEntry // game -> ledger, append order
	profiles map[string]*model.Profile     // lowercase address -> aggregates
	resets   map[string][]model.AdminLogEntry
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		entries:  make(map[string][]model.ScoreEntry),
		profiles: make(map[string]*model.Profile),
		resets:   make(map[string][]model.AdminLogEntry),
	}
}

// Append stores an accepted entry and, for wallet submissions, updates
// the address's profile counters.
func (s *Store) Append(_ context.Context, e *model.ScoreEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.Kind == model.KindWallet {
		for _, old := range s.entries[e.Game] {
			if old.Kind == model.KindWallet && old.Address == e.Address && old.ClientTS == e.ClientTS {
				return fmt.Errorf("append %s/%s@%d: %w", e.Game, e.Address, e.ClientTS, errs.ErrDuplicateSubmission)
			}
		}
	}
	s.entries[e.Game] = append(s.entries[e.Game], *e)

	if e.Kind == model.KindWallet {
		p := s.profiles[e.Address]
		if p == nil {
			p = &model.Profile{Address: e.Address}
			s.profiles[e.Address] = p
		}
		p.GamesPlayed++
		p.TotalScore += e.Score
		if e.Score > p.BestScore {
			p.BestScore = e.Score
		}
	}
	return nil
}

// RankOf returns the best rank held by an address within a game, or 0.
func (s *Store) RankOf(_ context.Context, game, address string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.sorted(game) {
		if e.Address == address {
			return i + 1, nil
		}
	}
	return 0, nil
}

// TopN returns the leaderboard head for a game.
func (s *Store) TopN(_ context.Context, game string, n int) ([]model.RankedEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ordered := s.sorted(game)
	if n < len(ordered) {
		ordered = ordered[:n]
	}
	out := make([]model.RankedEntry, 0, len(ordered))
	for i, e := range ordered {
		out = append(out, model.RankedEntry{
			Rank:    i + 1,
			Name:    e.DisplayName,
			Address: e.Address,
			Score:   e.Score,
		})
	}
	return out, nil
}

// Profile returns the incrementally maintained aggregates for an address.
// Aggregates are not rewound by admin resets (see DESIGN.md).
func (s *Store) Profile(_ context.Context, address string) (model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p := s.profiles[address]; p != nil {
		return *p, nil
	}
	return model.Profile{Address: address}, nil
}

// Reset clears a game's ledger and records the audit entry.
func (s *Store) Reset(_ context.Context, game string, at int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, game)
	s.resets[game] = append(s.resets[game], model.AdminLogEntry{
		Action:    "reset",
		Game:      game,
		Timestamp: at,
	})
	return nil
}

// LastReset returns the newest audit timestamp for a game, or nil.
func (s *Store) LastReset(_ context.Context, game string) (*int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.resets[game]
	if len(log) == 0 {
		return nil, nil
	}
	ts := log[len(log)-1].Timestamp
	return &ts, nil
}

// sorted snapshots a game's ledger in ranking order: score DESC, then
// earlier recorded_at, then entry ID to keep ties deterministic.
// Caller must hold s.mu.
func (s *Store) sorted(game string) []model.ScoreEntry {
	ordered := append([]model.ScoreEntry(nil), s.entries[game]...)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.RecordedAt != b.RecordedAt {
			return a.RecordedAt < b.RecordedAt
		}
		return a.ID.String() < b.ID.String()
	})
	return ordered
}
