package httpserver

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arenahub/arenahub-backend/internal/repository/memory"
	"github.com/arenahub/arenahub-backend/internal/service"
	"github.com/arenahub/arenahub-backend/internal/sigverify"
)

const adminPassword = "hunter2"

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	store := memory.New()
	log := zap.NewNop()
	scores := service.NewScoreService(store, log)
	admin := service.NewAdminService(store, []byte(adminPassword), []byte("test-sign-key"), 15*time.Minute, log)
	return New(scores, admin, log).Router(nil)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func signedBody(t *testing.T, key *ecdsa.PrivateKey, game string, score, ts int64) map[string]any {
	t.Helper()
	sig, err := sigverify.Sign(sigverify.ChallengeMessage(score, ts), key)
	require.NoError(t, err)
	return map[string]any{
		"address":   crypto.PubkeyToAddress(key.PublicKey).Hex(),
		"signature": sig,
		"game":      game,
		"score":     score,
		"timestamp": ts,
	}
}

func TestSubmitScore_WalletThenDuplicate(t *testing.T) {
	h := newTestServer(t)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	body := signedBody(t, key, "roninoid", 500, time.Now().UnixMilli())

	rec, out := doJSON(t, h, http.MethodPost, "/submit-score", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, out["success"])
	require.Equal(t, float64(1), out["rank"])

	// Identical payload again: rejected, ledger unchanged.
	rec, out = doJSON(t, h, http.MethodPost, "/submit-score", body, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, false, out["success"])
	require.Equal(t, "Score already submitted", out["error"])

	_, lb := doJSON(t, h, http.MethodGet, "/leaderboard?game=roninoid", nil, nil)
	require.Len(t, lb["leaderboard"], 1)
}

func TestSubmitScore_RankDisplacement(t *testing.T) {
	h := newTestServer(t)
	k1, err := crypto.GenerateKey()
	require.NoError(t, err)
	k2, err := crypto.GenerateKey()
	require.NoError(t, err)

	now := time.Now().UnixMilli()
	_, out := doJSON(t, h, http.MethodPost, "/submit-score", signedBody(t, k1, "roninoid", 500, now), nil)
	require.Equal(t, float64(1), out["rank"])

	// A strictly higher score takes rank 1 and displaces the first entry.
	_, out = doJSON(t, h, http.MethodPost, "/submit-score", signedBody(t, k2, "roninoid", 501, now+1), nil)
	require.Equal(t, float64(1), out["rank"])

	_, lb := doJSON(t, h, http.MethodGet, "/leaderboard?game=roninoid", nil, nil)
	rows := lb["leaderboard"].([]any)
	first := rows[0].(map[string]any)
	require.Equal(t, float64(501), first["score"])
}

func TestSubmitScore_InvalidScore(t *testing.T) {
	h := newTestServer(t)

	rec, out := doJSON(t, h, http.MethodPost, "/submit-score", map[string]any{
		"game": "roninoid", "score": -5, "playerName": "x",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid score", out["error"])
}

func TestSubmitScore_MissingFields(t *testing.T) {
	h := newTestServer(t)

	rec, out := doJSON(t, h, http.MethodPost, "/submit-score", map[string]any{"game": "roninoid"}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Missing required fields", out["error"])

	// Wallet path without a timestamp.
	rec, out = doJSON(t, h, http.MethodPost, "/submit-score", map[string]any{
		"game": "roninoid", "score": 10,
		"address": "0x00000000000000000000000000000000000000aa", "signature": "0x01",
	}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Missing required fields", out["error"])
}

func TestSubmitScore_ExpiredTimestamp(t *testing.T) {
	h := newTestServer(t)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	stale := time.Now().Add(-6 * time.Minute).UnixMilli()
	rec, out := doJSON(t, h, http.MethodPost, "/submit-score", signedBody(t, key, "roninoid", 500, stale), nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Timestamp expired", out["error"])
}

func TestSubmitScore_ForgedSignature(t *testing.T) {
	h := newTestServer(t)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	body := signedBody(t, key, "roninoid", 500, time.Now().UnixMilli())
	body["address"] = "0x00000000000000000000000000000000000000aa"

	rec, out := doJSON(t, h, http.MethodPost, "/submit-score", body, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Authentication failed", out["error"])

	_, lb := doJSON(t, h, http.MethodGet, "/leaderboard?game=roninoid", nil, nil)
	require.Empty(t, lb["leaderboard"])
}

func TestSubmitScore_Guest(t *testing.T) {
	h := newTestServer(t)

	rec, out := doJSON(t, h, http.MethodPost, "/submit-score", map[string]any{
		"playerName": "Bob", "score": 100, "game": "roninoid",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, out["success"])
	_, hasRank := out["rank"]
	require.False(t, hasRank, "guests get no rank")

	_, lb := doJSON(t, h, http.MethodGet, "/leaderboard?game=roninoid", nil, nil)
	rows := lb["leaderboard"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	require.Equal(t, "Bob", row["name"])
	require.Nil(t, row["address"])
}

func TestLeaderboard_ShortAddressForm(t *testing.T) {
	h := newTestServer(t)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr := crypto.PubkeyToAddress(key.PublicKey).Hex()

	_, _ = doJSON(t, h, http.MethodPost, "/submit-score", signedBody(t, key, "roninoid", 500, time.Now().UnixMilli()), nil)

	_, lb := doJSON(t, h, http.MethodGet, "/leaderboard?game=roninoid", nil, nil)
	row := lb["leaderboard"].([]any)[0].(map[string]any)
	short := row["address"].(string)
	require.Len(t, short, 13) // 6 + "..." + 4
	require.Contains(t, short, "...")
	require.NotEqual(t, addr, short)
}

func TestLeaderboard_MissingGame(t *testing.T) {
	h := newTestServer(t)
	rec, out := doJSON(t, h, http.MethodGet, "/leaderboard", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Missing game", out["error"])
}

func TestProfile_AggregatesAndUnknown(t *testing.T) {
	h := newTestServer(t)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr := crypto.PubkeyToAddress(key.PublicKey).Hex()

	now := time.Now().UnixMilli()
	for i, score := range []int64{500, 300, 700} {
		rec, _ := doJSON(t, h, http.MethodPost, "/submit-score",
			signedBody(t, key, "roninoid", score, now+int64(i)), nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, out := doJSON(t, h, http.MethodGet, "/profile/"+addr, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	p := out["profile"].(map[string]any)
	require.Equal(t, float64(3), p["gamesPlayed"])
	require.Equal(t, float64(1500), p["totalScore"])
	require.Equal(t, float64(700), p["bestScore"])

	// Unknown address: zeroed profile, not an error.
	rec, out = doJSON(t, h, http.MethodGet, "/profile/0x00000000000000000000000000000000000000bb", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	p = out["profile"].(map[string]any)
	require.Equal(t, float64(0), p["gamesPlayed"])

	// Malformed address: client error.
	rec, _ = doJSON(t, h, http.MethodGet, "/profile/nonsense", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminReset_Flow(t *testing.T) {
	h := newTestServer(t)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	start := time.Now().UnixMilli()

	_, _ = doJSON(t, h, http.MethodPost, "/submit-score", signedBody(t, key, "roninoid", 500, start), nil)

	// Never reset yet.
	rec, out := doJSON(t, h, http.MethodGet, "/admin/last-reset?game=roninoid", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, out["resetAt"])
	require.Equal(t, "never", out["formatted"])

	// Wrong password leaves everything untouched.
	rec, out = doJSON(t, h, http.MethodPost, "/admin/reset", map[string]any{
		"game": "roninoid", "password": "wrong",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid password", out["error"])
	_, lb := doJSON(t, h, http.MethodGet, "/leaderboard?game=roninoid", nil, nil)
	require.Len(t, lb["leaderboard"], 1)

	// Missing password.
	rec, out = doJSON(t, h, http.MethodPost, "/admin/reset", map[string]any{"game": "roninoid"}, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Missing password", out["error"])

	// Correct password clears the board and records the reset.
	rec, out = doJSON(t, h, http.MethodPost, "/admin/reset", map[string]any{
		"game": "roninoid", "password": adminPassword,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resetAt := int64(out["resetAt"].(float64))
	require.GreaterOrEqual(t, resetAt, start)

	_, lb = doJSON(t, h, http.MethodGet, "/leaderboard?game=roninoid", nil, nil)
	require.Empty(t, lb["leaderboard"])

	rec, out = doJSON(t, h, http.MethodGet, "/admin/last-reset?game=roninoid", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, float64(resetAt), out["resetAt"])
	require.NotEqual(t, "never", out["formatted"])
}

func TestAdminLogin_TokenReset(t *testing.T) {
	h := newTestServer(t)

	rec, out := doJSON(t, h, http.MethodPost, "/admin/login", map[string]any{"password": adminPassword}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	token := out["token"].(string)
	require.NotEmpty(t, token)

	rec, _ = doJSON(t, h, http.MethodPost, "/admin/reset", map[string]any{"game": "roninoid"},
		map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, h, http.MethodPost, "/admin/reset", map[string]any{"game": "roninoid"},
		map[string]string{"Authorization": "Bearer bogus"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)
	for _, path := range []string{"/", "/health"} {
		rec, out := doJSON(t, h, http.MethodGet, path, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		require.NotEmpty(t, out["status"], path)
	}
}

func TestGamesDoNotShareLeaderboards(t *testing.T) {
	h := newTestServer(t)

	for i, game := range []string{"roninoid", "asteroids"} {
		rec, _ := doJSON(t, h, http.MethodPost, "/submit-score", map[string]any{
			"playerName": fmt.Sprintf("p%d", i), "score": 100 + i, "game": game,
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	_, lb := doJSON(t, h, http.MethodGet, "/leaderboard?game=roninoid", nil, nil)
	require.Len(t, lb["leaderboard"], 1)
	_, lb = doJSON(t, h, http.MethodGet, "/leaderboard?game=asteroids", nil, nil)
	require.Len(t, lb["leaderboard"], 1)
}
