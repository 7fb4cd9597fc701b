package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/arenahub/arenahub-backend/internal/errs"
	"github.com/arenahub/arenahub-backend/internal/model"
	"github.com/arenahub/arenahub-backend/internal/service"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ArenaHub Backend is running"})
}

// handleSubmit accepts both wallet and guest submissions on one route:
// the presence of address or signature selects the wallet path.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Game == "" || req.Score == nil {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	if req.Address == "" && req.Signature == "" {
		if err := s.scores.SubmitGuest(r.Context(), service.GuestSubmission{
			DisplayName: req.PlayerName,
			Game:        req.Game,
			Score:       *req.Score,
		}); err != nil {
			s.writeSubmitError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, submitResponse{Success: true, Message: "Score submitted"})
		return
	}

	if req.Address == "" || req.Signature == "" || req.Timestamp == 0 {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	rank, err := s.scores.SubmitWallet(r.Context(), service.WalletSubmission{
		Address:     req.Address,
		Signature:   req.Signature,
		DisplayName: req.PlayerName,
		Game:        req.Game,
		Score:       *req.Score,
		Timestamp:   req.Timestamp,
	})
	if err != nil {
		s.writeSubmitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{
		Success: true,
		Message: "Score submitted and verified",
		Rank:    &rank,
	})
}

func (s *Server) writeSubmitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalidScore):
		writeError(w, http.StatusBadRequest, "Invalid score")
	case errors.Is(err, errs.ErrValidation):
		writeError(w, http.StatusBadRequest, "Missing required fields")
	case errors.Is(err, errs.ErrInvalidSignatureFormat):
		writeError(w, http.StatusBadRequest, "Invalid signature format")
	case errors.Is(err, errs.ErrSignatureMismatch):
		writeError(w, http.StatusUnauthorized, "Authentication failed")
	case errors.Is(err, errs.ErrTimestampExpired):
		writeError(w, http.StatusUnauthorized, "Timestamp expired")
	case errors.Is(err, errs.ErrDuplicateSubmission):
		writeError(w, http.StatusBadRequest, "Score already submitted")
	default:
		s.log.Error("submit failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	game := r.URL.Query().Get("game")
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	top, err := s.scores.Leaderboard(r.Context(), game, limit)
	if err != nil {
		if errors.Is(err, errs.ErrValidation) {
			writeError(w, http.StatusBadRequest, "Missing game")
			return
		}
		s.log.Error("leaderboard failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	rows := make([]leaderboardRow, 0, len(top))
	for _, e := range top {
		row := leaderboardRow{Rank: e.Rank, Name: e.Name, Score: e.Score}
		if e.Address != "" {
			short := model.ShortAddress(e.Address)
			row.Address = &short
		}
		rows = append(rows, row)
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Success: true, Leaderboard: rows})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]

	p, err := s.scores.Profile(r.Context(), address)
	if err != nil {
		if errors.Is(err, errs.ErrValidation) {
			writeError(w, http.StatusBadRequest, "Invalid address")
			return
		}
		s.log.Error("profile failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{
		Success: true,
		Profile: profileView{
			Address:     p.Address,
			GamesPlayed: p.GamesPlayed,
			TotalScore:  p.TotalScore,
			BestScore:   p.BestScore,
		},
	})
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, exp, err := s.admin.Login(req.Password)
	if err != nil {
		s.writeAdminError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, adminLoginResponse{
		Success:   true,
		Token:     token,
		ExpiresAt: exp.UnixMilli(),
	})
}

func (s *Server) handleAdminReset(w http.ResponseWriter, r *http.Request) {
	var req adminResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	at, err := s.admin.Reset(r.Context(), req.Game, req.Password, bearerToken(r))
	if err != nil {
		s.writeAdminError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, adminResetResponse{Success: true, ResetAt: at})
}

func (s *Server) handleLastResetInfo(w http.ResponseWriter, r *http.Request) {
	game := r.URL.Query().Get("game")

	ts, err := s.admin.LastReset(r.Context(), game)
	if err != nil {
		s.writeAdminError(w, err)
		return
	}
	resp := lastResetResponse{Success: true, ResetAt: ts, Formatted: "never"}
	if ts != nil {
		resp.Formatted = time.UnixMilli(*ts).UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeAdminError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		writeError(w, http.StatusBadRequest, "Missing game")
	case errors.Is(err, errs.ErrMissingCredential):
		writeError(w, http.StatusBadRequest, "Missing password")
	case errors.Is(err, errs.ErrInvalidCredential):
		writeError(w, http.StatusUnauthorized, "Invalid password")
	default:
		s.log.Error("admin operation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// bearerToken extracts an Authorization bearer credential, if any.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
