// Package model defines domain entities used by services and repositories.
package model

import (
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
)

// ActorKind distinguishes wallet-authenticated submissions from guest ones.
type ActorKind string

// Submission kinds.
const (
	KindWallet ActorKind = "wallet"
	KindGuest  ActorKind = "guest"
)

// Domain limits.
const (
	// MaxScore is the largest score a single submission may carry.
	MaxScore int64 = 10_000_000

	// FreshnessWindow is the symmetric tolerance between the claimed and
	// server time; signed messages outside it are treated as replays.
	FreshnessWindow = 5 * time.Minute

	// DefaultTopN caps leaderboard views.
	DefaultTopN = 100

	// MaxDisplayName caps free-text player names (runes).
	MaxDisplayName = 64

	// AnonymousName substitutes a blank display name.
	AnonymousName = "Anonymous"
)

// ScoreEntry is one accepted submission. Entries are immutable once
// appended and are removed only in bulk by an admin reset of their game.
type ScoreEntry struct {
	ID          uuid.UUID // server-generated
	Game        string    // leaderboard the entry belongs to
	Kind        ActorKind
	Address     string // lowercase hex wallet address; empty for guests
	DisplayName string
	Score       int64
	ClientTS    int64 // epoch ms claimed by the client; 0 for guests
	RecordedAt  int64 // epoch ms assigned at append time
}

// RankedEntry is a leaderboard row annotated with its 1-based position.
type RankedEntry struct {
	Rank    int
	Name    string
	Address string // full lowercase address; empty for guests
	Score   int64
}

// Profile aggregates accepted wallet submissions for one address across
// all games.
type Profile struct {
	Address     string
	GamesPlayed int64
	TotalScore  int64
	BestScore   int64
}

// AdminLogEntry is an append-only audit record of a leaderboard reset.
type AdminLogEntry struct {
	Action    string // always "reset"
	Game      string
	Timestamp int64 // epoch ms, server-assigned
}

// NormalizeAddress canonicalizes an address for storage and comparison.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// ShortAddress renders the first6...last4 display form used in
// leaderboard views. Short inputs pass through unchanged.
func ShortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

// CleanDisplayName trims, caps, and defaults a player-supplied name.
func CleanDisplayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return AnonymousName
	}
	if r := []rune(name); len(r) > MaxDisplayName {
		return string(r[:MaxDisplayName])
	}
	return name
}
