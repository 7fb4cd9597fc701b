package httpserver

// Wire types for the JSON API. All responses carry a success flag;
// failures add a human-readable error string.

type submitRequest struct {
	Address    string `json:"address"`
	Signature  string `json:"signature"`
	PlayerName string `json:"playerName"`
	Game       string `json:"game"`
	Score      *int64 `json:"score"` // pointer so a missing field is distinguishable from 0
	Timestamp  int64  `json:"timestamp"`
}

type submitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Rank    *int   `json:"rank,omitempty"`
}

type leaderboardRow struct {
	Rank    int     `json:"rank"`
	Name    string  `json:"name"`
	Address *string `json:"address"` // first6...last4 form; null for guests
	Score   int64   `json:"score"`
}

type leaderboardResponse struct {
	Success     bool             `json:"success"`
	Leaderboard []leaderboardRow `json:"leaderboard"`
}

type profileView struct {
	Address     string `json:"address"`
	GamesPlayed int64  `json:"gamesPlayed"`
	TotalScore  int64  `json:"totalScore"`
	BestScore   int64  `json:"bestScore"`
}

type profileResponse struct {
	Success bool        `json:"success"`
	Profile profileView `json:"profile"`
}

type adminLoginRequest struct {
	Password string `json:"password"`
}

type adminLoginResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"` // epoch ms
}

type adminResetRequest struct {
	Game     string `json:"game"`
	Password string `json:"password"`
}

type adminResetResponse struct {
	Success bool  `json:"success"`
	ResetAt int64 `json:"resetAt"` // epoch ms
}

type lastResetResponse struct {
	Success   bool   `json:"success"`
	ResetAt   *int64 `json:"resetAt"` // epoch ms; null when never reset
	Formatted string `json:"formatted"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type statusResponse struct {
	Status string `json:"status"`
}
