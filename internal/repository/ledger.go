// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/arenahub/arenahub-backend/internal/model"
)

// Ledger is the authoritative store of accepted score submissions.
// Implementations must make the wallet duplicate check and the append
// atomic per (game, address, client timestamp).
type Ledger interface {
	// Append stores an accepted entry. A wallet entry that repeats the
	// (game, address, client timestamp) of an existing one fails with
	// errs.ErrDuplicateSubmission and leaves the ledger unchanged.
	// Guest entries always append.
	Append(ctx context.Context, e *model.ScoreEntry) error

	// RankOf returns the 1-based position of the address's best-placed
	// entry in the game's descending-score ordering (ties broken by
	// earlier recording), or 0 when the address has no entries.
	RankOf(ctx context.Context, game, address string) (int, error)

	// TopN returns at most n entries for the game, ordered by score
	// descending, each annotated with its 1-based rank.
	TopN(ctx context.Context, game string, n int) ([]model.RankedEntry, error)

	// Profile aggregates accepted wallet submissions for an address
	// across all games. Unknown addresses yield a zeroed profile.
	Profile(ctx context.Context, address string) (model.Profile, error)
}

// AdminLog owns the reset audit trail.
type AdminLog interface {
	// Reset removes every entry of the game from the ledger and appends
	// one audit record with the given timestamp (epoch ms). The clear and
	// the audit append commit together or not at all.
	Reset(ctx context.Context, game string, at int64) error

	// LastReset returns the newest audit timestamp for the game, or nil
	// when the game has never been reset.
	LastReset(ctx context.Context, game string) (*int64, error)
}
