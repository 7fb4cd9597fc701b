package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/arenahub/arenahub-backend/internal/errs"
	"github.com/arenahub/arenahub-backend/internal/model"
)

// ScoreRepo implements repository.Ledger using PostgreSQL. Wallet
// duplicate rejection relies on the partial unique index over
// (game, address, client_ts) rather than a check-then-insert, so
// concurrent identical submissions cannot both land.
type ScoreRepo struct{ db *DB }

// NewScoreRepo constructs a score ledger repository.
func NewScoreRepo(db *DB) *ScoreRepo { return &ScoreRepo{db: db} }

// Append inserts one accepted submission.
func (r *ScoreRepo) Append(ctx context.Context, e *model.ScoreEntry) error {
	const q = `
INSERT INTO scores (id, game, kind, address, display_name, score, client_ts, recorded_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	var addr, clientTS any
	if e.Kind == model.KindWallet {
		addr, clientTS = e.Address, e.ClientTS
	}
	_, err := r.db.Pool.Exec(ctx, q,
		e.ID, e.Game, string(e.Kind), addr, e.DisplayName, e.Score, clientTS, e.RecordedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("append %s/%s@%d: %w", e.Game, e.Address, e.ClientTS, errs.ErrDuplicateSubmission)
	}
	return err
}

// RankOf returns the best rank held by an address within a game, or 0.
// Ordering: score DESC, earlier recorded_at first, id as stabilizer.
func (r *ScoreRepo) RankOf(ctx context.Context, game, address string) (int, error) {
	const q = `
WITH ranked AS (
    SELECT address,
           ROW_NUMBER() OVER (ORDER BY score DESC, recorded_at ASC, id ASC) AS pos
    FROM scores
    WHERE game=$1
)
SELECT COALESCE(MIN(pos),0) FROM ranked WHERE address=$2`

	var pos int64
	if err := r.db.Pool.QueryRow(ctx, q, game, address).Scan(&pos); err != nil {
		return 0, err
	}
	return int(pos), nil
}

// TopN returns the leaderboard head for a game.
func (r *ScoreRepo) TopN(ctx context.Context, game string, n int) ([]model.RankedEntry, error) {
	const q = `
SELECT display_name, COALESCE(address,''), score,
       ROW_NUMBER() OVER (ORDER BY score DESC, recorded_at ASC, id ASC) AS pos
FROM scores
WHERE game=$1
ORDER BY score DESC, recorded_at ASC, id ASC
LIMIT $2`

	rows, err := r.db.Pool.Query(ctx, q, game, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RankedEntry
	for rows.Next() {
		var (
			e   model.RankedEntry
			pos int64
		)
		if err := rows.Scan(&e.Name, &e.Address, &e.Score, &pos); err != nil {
			return nil, err
		}
		e.Rank = int(pos)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Profile aggregates wallet submissions for an address across all games.
// Derived from the ledger on every read, so it always reflects resets.
func (r *ScoreRepo) Profile(ctx context.Context, address string) (model.Profile, error) {
	const q = `
SELECT COUNT(*), COALESCE(SUM(score),0), COALESCE(MAX(score),0)
FROM scores
WHERE kind='wallet' AND address=$1`

	p := model.Profile{Address: address}
	if err := r.db.Pool.QueryRow(ctx, q, address).Scan(&p.GamesPlayed, &p.TotalScore, &p.BestScore); err != nil {
		return model.Profile{}, err
	}
	return p, nil
}

// AdminRepo implements repository.AdminLog using PostgreSQL.
type AdminRepo struct{ db *DB }

// NewAdminRepo constructs a reset audit repository.
func NewAdminRepo(db *DB) *AdminRepo { return &AdminRepo{db: db} }

// Reset clears a game's ledger and appends the audit row in one
// transaction; a crash mid-reset leaves both or neither.
func (r *AdminRepo) Reset(ctx context.Context, game string, at int64) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM scores WHERE game=$1`, game); err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `INSERT INTO admin_log (action, game, ts) VALUES ('reset',$1,$2)`, game, at)
	return err
}

// LastReset returns the newest audit timestamp for a game, or nil.
func (r *AdminRepo) LastReset(ctx context.Context, game string) (*int64, error) {
	const q = `SELECT ts FROM admin_log WHERE game=$1 ORDER BY ts DESC, id DESC LIMIT 1`

	var ts int64
	if err := r.db.Pool.QueryRow(ctx, q, game).Scan(&ts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &ts, nil
}
