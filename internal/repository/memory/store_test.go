package memory

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/arenahub/arenahub-backend/internal/errs"
	"github.com/arenahub/arenahub-backend/internal/model"
	"github.com/arenahub/arenahub-backend/internal/repository"
)

var (
	_ repository.Ledger   = (*Store)(nil)
	_ repository.AdminLog = (*Store)(nil)
)

func wallet(addr string, score, clientTS, recordedAt int64) *model.ScoreEntry {
	return &model.ScoreEntry{
		ID:          uuid.Must(uuid.NewV4()),
		Game:        "roninoid",
		Kind:        model.KindWallet,
		Address:     addr,
		DisplayName: model.AnonymousName,
		Score:       score,
		ClientTS:    clientTS,
		RecordedAt:  recordedAt,
	}
}

func TestStore_Append_RejectsWalletDuplicate(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Append(ctx, wallet("0xabc", 500, 1000, 2000)))

	err := s.Append(ctx, wallet("0xabc", 500, 1000, 2001))
	require.ErrorIs(t, err, errs.ErrDuplicateSubmission)

	top, err := s.TopN(ctx, "roninoid", 100)
	require.NoError(t, err)
	require.Len(t, top, 1)

	// Profile untouched by the rejected duplicate.
	p, err := s.Profile(ctx, "0xabc")
	require.NoError(t, err)
	require.Equal(t, int64(1), p.GamesPlayed)
	require.Equal(t, int64(500), p.TotalScore)
}

func TestStore_Append_SameAddressDifferentTimestamp(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Append(ctx, wallet("0xabc", 500, 1000, 2000)))
	require.NoError(t, s.Append(ctx, wallet("0xabc", 600, 1001, 2001)))

	top, err := s.TopN(ctx, "roninoid", 100)
	require.NoError(t, err)
	require.Len(t, top, 2)
}

func TestStore_Append_GuestsNeverCollide(t *testing.T) {
	ctx := context.Background()
	s := New()

	g := &model.ScoreEntry{
		ID: uuid.Must(uuid.NewV4()), Game: "roninoid", Kind: model.KindGuest,
		DisplayName: "Bob", Score: 100, RecordedAt: 2000,
	}
	require.NoError(t, s.Append(ctx, g))
	g2 := *g
	g2.ID = uuid.Must(uuid.NewV4())
	require.NoError(t, s.Append(ctx, &g2))

	top, err := s.TopN(ctx, "roninoid", 100)
	require.NoError(t, err)
	require.Len(t, top, 2)

	// Guests leave no profile behind.
	p, err := s.Profile(ctx, "")
	require.NoError(t, err)
	require.Zero(t, p.GamesPlayed)
}

func TestStore_Ranking_OrderAndTieBreak(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Append(ctx, wallet("0xaaa", 500, 1000, 2000)))
	require.NoError(t, s.Append(ctx, wallet("0xbbb", 500, 1001, 2001))) // tie, recorded later
	require.NoError(t, s.Append(ctx, wallet("0xccc", 900, 1002, 2002)))

	top, err := s.TopN(ctx, "roninoid", 100)
	require.NoError(t, err)
	require.Equal(t, []string{"0xccc", "0xaaa", "0xbbb"},
		[]string{top[0].Address, top[1].Address, top[2].Address})
	for i := 1; i < len(top); i++ {
		require.LessOrEqual(t, top[i].Score, top[i-1].Score)
		require.Equal(t, i+1, top[i].Rank)
	}

	rank, err := s.RankOf(ctx, "roninoid", "0xbbb")
	require.NoError(t, err)
	require.Equal(t, 3, rank)
}

func TestStore_RankOf_NewTopDisplacesPrevious(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Append(ctx, wallet("0xaaa", 500, 1000, 2000)))
	rank, err := s.RankOf(ctx, "roninoid", "0xaaa")
	require.NoError(t, err)
	require.Equal(t, 1, rank)

	require.NoError(t, s.Append(ctx, wallet("0xbbb", 501, 1001, 2001)))
	rank, err = s.RankOf(ctx, "roninoid", "0xaaa")
	require.NoError(t, err)
	require.Equal(t, 2, rank)
}

func TestStore_RankOf_UsesBestEntryOfAddress(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Append(ctx, wallet("0xaaa", 100, 1000, 2000)))
	require.NoError(t, s.Append(ctx, wallet("0xaaa", 900, 1001, 2001)))
	require.NoError(t, s.Append(ctx, wallet("0xbbb", 500, 1002, 2002)))

	rank, err := s.RankOf(ctx, "roninoid", "0xaaa")
	require.NoError(t, err)
	require.Equal(t, 1, rank)
}

func TestStore_TopN_Bounds(t *testing.T) {
	ctx := context.Background()
	s := New()

	for i := int64(0); i < 5; i++ {
		require.NoError(t, s.Append(ctx, wallet("0xaaa", 100+i, 1000+i, 2000+i)))
	}

	top, err := s.TopN(ctx, "roninoid", 3)
	require.NoError(t, err)
	require.Len(t, top, 3)

	top, err = s.TopN(ctx, "roninoid", 50)
	require.NoError(t, err)
	require.Len(t, top, 5)
}

func TestStore_GamesAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := New()

	a := wallet("0xaaa", 500, 1000, 2000)
	b := wallet("0xbbb", 900, 1001, 2001)
	b.Game = "other-game"
	require.NoError(t, s.Append(ctx, a))
	require.NoError(t, s.Append(ctx, b))

	rank, err := s.RankOf(ctx, "roninoid", "0xaaa")
	require.NoError(t, err)
	require.Equal(t, 1, rank)

	top, err := s.TopN(ctx, "other-game", 100)
	require.NoError(t, err)
	require.Len(t, top, 1)
}

func TestStore_ProfileAggregates(t *testing.T) {
	ctx := context.Background()
	s := New()

	scores := []int64{500, 300, 700}
	for i, sc := range scores {
		require.NoError(t, s.Append(ctx, wallet("0xabc", sc, int64(1000+i), int64(2000+i))))
	}

	p, err := s.Profile(ctx, "0xabc")
	require.NoError(t, err)
	require.Equal(t, int64(3), p.GamesPlayed)
	require.Equal(t, int64(1500), p.TotalScore)
	require.Equal(t, int64(700), p.BestScore)
}

func TestStore_ResetAndLastReset(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Append(ctx, wallet("0xabc", 500, 1000, 2000)))

	ts, err := s.LastReset(ctx, "roninoid")
	require.NoError(t, err)
	require.Nil(t, ts)

	require.NoError(t, s.Reset(ctx, "roninoid", 1700000000000))

	top, err := s.TopN(ctx, "roninoid", 100)
	require.NoError(t, err)
	require.Empty(t, top)

	ts, err = s.LastReset(ctx, "roninoid")
	require.NoError(t, err)
	require.NotNil(t, ts)
	require.Equal(t, int64(1700000000000), *ts)

	// Later reset wins.
	require.NoError(t, s.Reset(ctx, "roninoid", 1700000001000))
	ts, err = s.LastReset(ctx, "roninoid")
	require.NoError(t, err)
	require.Equal(t, int64(1700000001000), *ts)
}
