// Package service contains application services for score submission,
// leaderboard queries, and administrative reset.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/arenahub/arenahub-backend/internal/errs"
	"github.com/arenahub/arenahub-backend/internal/model"
	"github.com/arenahub/arenahub-backend/internal/repository"
	"github.com/arenahub/arenahub-backend/internal/sigverify"
)

// WalletSubmission carries one signed score submission.
type WalletSubmission struct {
	Address     string
	Signature   string
	DisplayName string
	Game        string
	Score       int64
	Timestamp   int64 // epoch ms claimed by the client
}

// GuestSubmission carries one anonymous score submission.
type GuestSubmission struct {
	DisplayName string
	Game        string
	Score       int64
}

// ScoreService orchestrates submission checks and ledger access.
type ScoreService struct {
	ledger repository.Ledger
	log    *zap.Logger
	now    func() time.Time
}

// NewScoreService constructs a ScoreService over the given ledger.
func NewScoreService(ledger repository.Ledger, log *zap.Logger) *ScoreService {
	return &ScoreService{ledger: ledger, log: log, now: time.Now}
}

// SubmitWallet validates, authenticates, and appends a signed submission,
// returning the submitter's 1-based rank as of their own append.
// Check order: field validation, score range, freshness window, signature
// recovery; nothing is appended unless all pass.
func (s *ScoreService) SubmitWallet(ctx context.Context, sub WalletSubmission) (int, error) {
	if sub.Game == "" || sub.Address == "" || sub.Signature == "" || sub.Timestamp == 0 {
		return 0, fmt.Errorf("missing fields: %w", errs.ErrValidation)
	}
	if !common.IsHexAddress(sub.Address) {
		return 0, fmt.Errorf("malformed address: %w", errs.ErrValidation)
	}
	if sub.Score < 0 || sub.Score > model.MaxScore {
		return 0, fmt.Errorf("score %d out of range: %w", sub.Score, errs.ErrInvalidScore)
	}
	if err := s.checkFreshness(sub.Timestamp); err != nil {
		return 0, err
	}

	ok, err := sigverify.Verify(sub.Address, sub.Score, sub.Timestamp, sub.Signature)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errs.ErrSignatureMismatch
	}

	id, err := uuid.NewV4()
	if err != nil {
		return 0, err
	}
	entry := &model.ScoreEntry{
		ID:          id,
		Game:        sub.Game,
		Kind:        model.KindWallet,
		Address:     model.NormalizeAddress(sub.Address),
		DisplayName: model.CleanDisplayName(sub.DisplayName),
		Score:       sub.Score,
		ClientTS:    sub.Timestamp,
		RecordedAt:  s.now().UnixMilli(),
	}
	if err := s.ledger.Append(ctx, entry); err != nil {
		return 0, err
	}

	s.log.Info("score accepted",
		zap.String("game", entry.Game),
		zap.String("address", model.ShortAddress(entry.Address)),
		zap.Int64("score", entry.Score),
	)
	return s.ledger.RankOf(ctx, entry.Game, entry.Address)
}

// SubmitGuest validates and appends an anonymous submission. Guests get
// no rank in the response and no duplicate check; the server-assigned
// record time keeps entries distinct.
func (s *ScoreService) SubmitGuest(ctx context.Context, sub GuestSubmission) error {
	if sub.Game == "" {
		return fmt.Errorf("missing game: %w", errs.ErrValidation)
	}
	if sub.Score < 0 || sub.Score > model.MaxScore {
		return fmt.Errorf("score %d out of range: %w", sub.Score, errs.ErrInvalidScore)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	return s.ledger.Append(ctx, &model.ScoreEntry{
		ID:          id,
		Game:        sub.Game,
		Kind:        model.KindGuest,
		DisplayName: model.CleanDisplayName(sub.DisplayName),
		Score:       sub.Score,
		RecordedAt:  s.now().UnixMilli(),
	})
}

// Leaderboard returns the top entries for a game, capped at
// model.DefaultTopN. Store failures degrade to an empty view so the
// read path stays available (mutations never degrade; see errs mapping
// at the HTTP layer).
func (s *ScoreService) Leaderboard(ctx context.Context, game string, limit int) ([]model.RankedEntry, error) {
	if game == "" {
		return nil, fmt.Errorf("missing game: %w", errs.ErrValidation)
	}
	if limit <= 0 || limit > model.DefaultTopN {
		limit = model.DefaultTopN
	}
	top, err := s.ledger.TopN(ctx, game, limit)
	if err != nil {
		s.log.Warn("leaderboard read failed, serving empty view",
			zap.String("game", game), zap.Error(err))
		return []model.RankedEntry{}, nil
	}
	if top == nil {
		top = []model.RankedEntry{}
	}
	return top, nil
}

// Profile returns aggregate stats for a wallet address. Unknown
// addresses yield a zeroed profile, not an error.
func (s *ScoreService) Profile(ctx context.Context, address string) (model.Profile, error) {
	if !common.IsHexAddress(address) {
		return model.Profile{}, fmt.Errorf("malformed address: %w", errs.ErrValidation)
	}
	return s.ledger.Profile(ctx, model.NormalizeAddress(address))
}

// checkFreshness enforces the symmetric replay window: claims further
// than the window from server time in either direction are rejected, so
// a pre-signed far-future message is as dead as a replayed old one.
func (s *ScoreService) checkFreshness(clientTS int64) error {
	drift := s.now().UnixMilli() - clientTS
	if drift < 0 {
		drift = -drift
	}
	if drift > model.FreshnessWindow.Milliseconds() {
		return fmt.Errorf("claimed timestamp off by %dms: %w", drift, errs.ErrTimestampExpired)
	}
	return nil
}
