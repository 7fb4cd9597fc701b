// Command arenahub is a CLI client for the ArenaHub score API.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/arenahub/arenahub-backend/internal/sigverify"
)

// ---- config/token store ----

type tokenFile struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "arenahub")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "arenahub")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }
func keyPath() string   { return filepath.Join(cfgDir(), "key.hex") }

func saveToken(tok string, exp time.Time) error {
	_ = os.MkdirAll(cfgDir(), 0o700)
	f, err := os.Create(tokenPath())
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{Token: tok, ExpiresAt: exp})
}

func loadToken() (string, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return "", err
	}
	if tf.Token == "" || time.Now().After(tf.ExpiresAt) {
		return "", errors.New("no valid token (login required)")
	}
	return tf.Token, nil
}

// ---- http ----

func call(ctx context.Context, base, method, path string, body any, bearer string) (map[string]any, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, base+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("%s: %s", resp.Status, string(raw))
		}
	}
	if resp.StatusCode >= 400 {
		if msg, ok := out["error"].(string); ok {
			return out, fmt.Errorf("%s: %s", resp.Status, msg)
		}
		return out, errors.New(resp.Status)
	}
	return out, nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func usage() {
	fmt.Fprintf(os.Stderr, `arenahub CLI
Usage:
  arenahub -addr URL <cmd> [args]

Commands:
  version
  keygen                                       (writes a new signing key)
  address                                      (prints the key's address)
  submit     -game <id> -score <n> [-name <s>] (signed submission)
  guest      -game <id> -score <n> [-name <s>]
  top        -game <id> [-limit <n>]
  profile    -address <0x...>
  login      -p <password>                     (saves admin token)
  reset      -game <id> [-p <password>]        (token used when saved)
  last-reset -game <id>
`)
	os.Exit(2)
}

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands against the score API.
func main() {
	addr := flag.String("addr", "http://localhost:3001", "server base URL")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cmd {

	case "version":
		fmt.Printf("arenahub %s (%s)\n", version, buildDate)

	case "keygen":
		key, err := crypto.GenerateKey()
		must(err)
		_ = os.MkdirAll(cfgDir(), 0o700)
		must(crypto.SaveECDSA(keyPath(), key))
		fmt.Println(crypto.PubkeyToAddress(key.PublicKey).Hex())

	case "address":
		key, err := crypto.LoadECDSA(keyPath())
		must(err)
		fmt.Println(crypto.PubkeyToAddress(key.PublicKey).Hex())

	case "submit":
		fs := flag.NewFlagSet("submit", flag.ExitOnError)
		game := fs.String("game", "", "game id")
		score := fs.Int64("score", 0, "score")
		name := fs.String("name", "", "display name")
		_ = fs.Parse(flag.Args()[1:])

		key, err := crypto.LoadECDSA(keyPath())
		must(err)
		ts := time.Now().UnixMilli()
		sig, err := sigverify.Sign(sigverify.ChallengeMessage(*score, ts), key)
		must(err)
		out, err := call(ctx, *addr, http.MethodPost, "/submit-score", map[string]any{
			"address":    crypto.PubkeyToAddress(key.PublicKey).Hex(),
			"signature":  sig,
			"playerName": *name,
			"game":       *game,
			"score":      *score,
			"timestamp":  ts,
		}, "")
		must(err)
		printJSON(out)

	case "guest":
		fs := flag.NewFlagSet("guest", flag.ExitOnError)
		game := fs.String("game", "", "game id")
		score := fs.Int64("score", 0, "score")
		name := fs.String("name", "", "display name")
		_ = fs.Parse(flag.Args()[1:])

		out, err := call(ctx, *addr, http.MethodPost, "/submit-score", map[string]any{
			"playerName": *name,
			"game":       *game,
			"score":      *score,
		}, "")
		must(err)
		printJSON(out)

	case "top":
		fs := flag.NewFlagSet("top", flag.ExitOnError)
		game := fs.String("game", "", "game id")
		limit := fs.Int("limit", 0, "max rows")
		_ = fs.Parse(flag.Args()[1:])

		path := "/leaderboard?game=" + *game
		if *limit > 0 {
			path += "&limit=" + strconv.Itoa(*limit)
		}
		out, err := call(ctx, *addr, http.MethodGet, path, nil, "")
		must(err)
		printJSON(out)

	case "profile":
		fs := flag.NewFlagSet("profile", flag.ExitOnError)
		address := fs.String("address", "", "wallet address")
		_ = fs.Parse(flag.Args()[1:])

		out, err := call(ctx, *addr, http.MethodGet, "/profile/"+*address, nil, "")
		must(err)
		printJSON(out)

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		password := fs.String("p", "", "admin password")
		_ = fs.Parse(flag.Args()[1:])

		out, err := call(ctx, *addr, http.MethodPost, "/admin/login", map[string]any{
			"password": *password,
		}, "")
		must(err)
		tok, _ := out["token"].(string)
		expMs, _ := out["expiresAt"].(float64)
		must(saveToken(tok, time.UnixMilli(int64(expMs))))
		fmt.Println("token saved")

	case "reset":
		fs := flag.NewFlagSet("reset", flag.ExitOnError)
		game := fs.String("game", "", "game id")
		password := fs.String("p", "", "admin password (optional when logged in)")
		_ = fs.Parse(flag.Args()[1:])

		bearer := ""
		if *password == "" {
			tok, err := loadToken()
			must(err)
			bearer = tok
		}
		out, err := call(ctx, *addr, http.MethodPost, "/admin/reset", map[string]any{
			"game":     *game,
			"password": *password,
		}, bearer)
		must(err)
		printJSON(out)

	case "last-reset":
		fs := flag.NewFlagSet("last-reset", flag.ExitOnError)
		game := fs.String("game", "", "game id")
		_ = fs.Parse(flag.Args()[1:])

		out, err := call(ctx, *addr, http.MethodGet, "/admin/last-reset?game="+*game, nil, "")
		must(err)
		printJSON(out)

	default:
		usage()
	}
}

func must(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
