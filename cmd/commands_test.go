package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/spotx/internal/auth"
	"github.com/desertthunder/spotx/internal/repositories"
	"github.com/desertthunder/spotx/internal/services"
	"github.com/desertthunder/spotx/internal/shared"
	tu "github.com/desertthunder/spotx/internal/testing"
	"github.com/desertthunder/spotx/internal/ui"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// fixture wires a Runner to an httptest server standing in for both the accounts service
// (/api/token) and the Web API (/v1/...).
type fixture struct {
	runner  *Runner
	output  *bytes.Buffer
	server  *httptest.Server
	tokens  *repositories.TokenRepository
	port    int
	browser func(string) error

	mu     sync.Mutex
	grants []string
}

func newFixture(t *testing.T, api http.HandlerFunc) *fixture {
	t.Helper()

	f := &fixture{output: &bytes.Buffer{}, port: freePort(t)}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", f.tokenEndpoint)
	if api != nil {
		mux.Handle("/v1/", api)
	}
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)

	f.tokens = repositories.NewTokenRepository(setupTestDB(t))

	authenticator, err := auth.NewAuthenticator(auth.Credentials{
		ClientID:     "cid",
		ClientSecret: "secret",
		RedirectURI:  fmt.Sprintf("http://127.0.0.1:%d/callback", f.port),
		Scopes:       []string{"user-read-private", "playlist-read-private"},
		State:        "st",
	}, auth.Options{
		TokenURL:   f.server.URL + "/api/token",
		HTTPClient: f.server.Client(),
		OnToken:    func(tok *auth.Token) { f.runner.persistToken(tok) },
	})
	if err != nil {
		t.Fatalf("failed to create authenticator: %v", err)
	}

	dispatcher := services.NewDispatcher(authenticator, services.DispatcherOpts{
		BaseURL:    f.server.URL + "/v1",
		HTTPClient: f.server.Client(),
	})

	config := shared.DefaultConfig()
	config.Server.Host = "127.0.0.1"
	config.Server.Port = f.port

	f.runner = NewRunner(RunnerOpts{
		Config:        config,
		Authenticator: authenticator,
		Spotify:       services.NewSpotifyService(services.NewClient(dispatcher), nil),
		Tokens:        f.tokens,
		HTTPClient:    f.server.Client(),
		Logger:        shared.DiscardLogger(),
		Output:        f.output,
		Palette:       ui.Plain,
		OpenBrowser:   func(u string) error { return f.browser(u) },
	})
	f.browser = func(string) error { return errors.New("no browser") }
	return f
}

func (f *fixture) tokenEndpoint(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	grant := r.PostForm.Get("grant_type")
	f.mu.Lock()
	f.grants = append(f.grants, grant)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch grant {
	case "client_credentials":
		w.Write([]byte(`{"access_token":"app-token","token_type":"Bearer","expires_in":3600}`))
	case "authorization_code":
		if r.PostForm.Get("code") != "abc" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Write([]byte(`{"access_token":"user-token","token_type":"Bearer","expires_in":3600,"refresh_token":"r1","scope":"user-read-private"}`))
	case "refresh_token":
		w.Write([]byte(`{"access_token":"refreshed-token","token_type":"Bearer","expires_in":3600}`))
	default:
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"unsupported_grant_type"}`))
	}
}

func (f *fixture) run(args ...string) error {
	return f.runner.app().Run(context.Background(), append([]string{"spotx"}, args...))
}

func (f *fixture) grantCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.grants)
}

func (f *fixture) storedToken(t *testing.T) *auth.Token {
	t.Helper()
	tok, err := f.tokens.Get("cid")
	if err != nil {
		t.Fatalf("expected a stored token, got %v", err)
	}
	return tok
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestAuthCommands(t *testing.T) {
	t.Run("url", func(t *testing.T) {
		f := newFixture(t, nil)
		if err := f.run("auth", "url"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := f.output.String()
		for _, want := range []string{"client_id=cid", "response_type=code", "scope=user-read-private+playlist-read-private", "state=st"} {
			if !strings.Contains(out, want) {
				t.Errorf("authorization URL missing %s: %s", want, out)
			}
		}
	})

	t.Run("client-credentials persists the token", func(t *testing.T) {
		f := newFixture(t, nil)
		if err := f.run("auth", "client-credentials"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if tok := f.storedToken(t); tok.AccessToken != "app-token" {
			t.Errorf("expected app-token to be stored, got %s", tok.AccessToken)
		}
		if !strings.Contains(f.output.String(), "✓ Client credentials token issued") {
			t.Errorf("unexpected output %q", f.output.String())
		}
	})

	t.Run("exchange then refresh keeps the refresh token", func(t *testing.T) {
		f := newFixture(t, nil)
		callback := fmt.Sprintf("http://127.0.0.1:%d/callback?code=abc&state=st", f.port)
		if err := f.run("auth", "exchange", callback); err != nil {
			t.Fatalf("exchange failed: %v", err)
		}
		if tok := f.storedToken(t); tok.AccessToken != "user-token" || tok.RefreshToken != "r1" {
			t.Errorf("unexpected stored token %+v", tok)
		}

		if err := f.run("auth", "refresh"); err != nil {
			t.Fatalf("refresh failed: %v", err)
		}
		tok := f.storedToken(t)
		if tok.AccessToken != "refreshed-token" || tok.RefreshToken != "r1" {
			t.Errorf("expected refreshed token with preserved refresh token, got %+v", tok)
		}
	})

	t.Run("exchange requires an argument", func(t *testing.T) {
		f := newFixture(t, nil)
		if err := f.run("auth", "exchange"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("exchange with a callback missing the code", func(t *testing.T) {
		f := newFixture(t, nil)
		if err := f.run("auth", "exchange", "http://127.0.0.1/callback?state=st"); !errors.Is(err, shared.ErrMalformedCallback) {
			t.Errorf("expected ErrMalformedCallback, got %v", err)
		}
		if f.grantCount() != 0 {
			t.Error("expected no token request")
		}
	})

	t.Run("refresh without a refresh token", func(t *testing.T) {
		f := newFixture(t, nil)
		if err := f.run("auth", "client-credentials"); err != nil {
			t.Fatal(err)
		}
		if err := f.run("auth", "refresh"); !errors.Is(err, shared.ErrNoRefreshToken) {
			t.Errorf("expected ErrNoRefreshToken, got %v", err)
		}
	})

	t.Run("status", func(t *testing.T) {
		t.Run("not authenticated", func(t *testing.T) {
			f := newFixture(t, nil)
			if err := f.run("auth", "status"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(f.output.String(), "✗ Not authenticated") {
				t.Errorf("unexpected output %q", f.output.String())
			}
		})

		t.Run("json never includes the token", func(t *testing.T) {
			f := newFixture(t, nil)
			if err := f.run("auth", "client-credentials"); err != nil {
				t.Fatal(err)
			}
			f.output.Reset()

			if err := f.run("auth", "status", "--json"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			var status authStatus
			if err := json.Unmarshal(f.output.Bytes(), &status); err != nil {
				t.Fatalf("invalid JSON %q: %v", f.output.String(), err)
			}
			if !status.Authenticated || status.ClientID != "cid" || status.Expired || status.Refreshable {
				t.Errorf("unexpected status %+v", status)
			}
			if status.UpdatedAt.IsZero() {
				t.Error("expected saved timestamp")
			}
			if strings.Contains(f.output.String(), "app-token") {
				t.Error("status output must not contain the access token")
			}
		})
	})

	t.Run("logout", func(t *testing.T) {
		f := newFixture(t, nil)
		if err := f.run("auth", "client-credentials"); err != nil {
			t.Fatal(err)
		}
		if err := f.run("auth", "logout"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := f.tokens.Get("cid"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected token to be deleted, got %v", err)
		}

		f.output.Reset()
		if err := f.run("auth", "logout"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(f.output.String(), "No stored token") {
			t.Errorf("unexpected output %q", f.output.String())
		}
	})

	t.Run("login", func(t *testing.T) {
		t.Run("exchanges the browser callback", func(t *testing.T) {
			f := newFixture(t, nil)
			var opened string
			f.browser = func(u string) error {
				opened = u
				resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/callback?code=abc&state=st", f.port))
				if err != nil {
					return err
				}
				resp.Body.Close()
				return nil
			}

			if err := f.run("auth", "login", "--timeout", "5s"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(opened, "state=st") {
				t.Errorf("expected the authorization URL to be opened, got %q", opened)
			}
			if tok := f.storedToken(t); tok.AccessToken != "user-token" {
				t.Errorf("expected user-token to be stored, got %s", tok.AccessToken)
			}
			if !strings.Contains(f.output.String(), "✓ Authorization successful") {
				t.Errorf("unexpected output %q", f.output.String())
			}
		})

		t.Run("state mismatch", func(t *testing.T) {
			f := newFixture(t, nil)
			f.browser = func(string) error {
				resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/callback?code=abc&state=forged", f.port))
				if err != nil {
					return err
				}
				resp.Body.Close()
				return nil
			}

			if err := f.run("auth", "login", "--timeout", "5s"); !errors.Is(err, shared.ErrMalformedCallback) {
				t.Errorf("expected ErrMalformedCallback, got %v", err)
			}
			if f.grantCount() != 0 {
				t.Error("expected no token request")
			}
		})

		t.Run("times out", func(t *testing.T) {
			f := newFixture(t, nil)
			if err := f.run("auth", "login", "--no-browser", "--timeout", "50ms"); !errors.Is(err, shared.ErrTimeout) {
				t.Errorf("expected ErrTimeout, got %v", err)
			}
			if !strings.Contains(f.output.String(), "Open this URL") {
				t.Errorf("expected the URL to be printed, got %q", f.output.String())
			}
		})
	})
}

func TestAPICommands(t *testing.T) {
	t.Run("get sends params and the bearer token", func(t *testing.T) {
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer app-token" {
				t.Errorf("unexpected authorization header %q", r.Header.Get("Authorization"))
			}
			if r.URL.Path != "/v1/browse/new-releases" || r.URL.Query().Get("limit") != "2" {
				t.Errorf("unexpected request %s", r.URL)
			}
			w.Write([]byte(`{"albums":{"items":[]}}`))
		})
		if err := f.run("auth", "client-credentials"); err != nil {
			t.Fatal(err)
		}
		f.output.Reset()

		if err := f.run("api", "get", "--param", "limit=2", "browse/new-releases"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(f.output.String(), `"albums"`) {
			t.Errorf("unexpected output %q", f.output.String())
		}
	})

	t.Run("put sends the JSON body", func(t *testing.T) {
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			if r.Method != http.MethodPut || body["name"] != "Renamed" {
				t.Errorf("unexpected request %s %v", r.Method, body)
			}
		})
		if err := f.run("auth", "client-credentials"); err != nil {
			t.Fatal(err)
		}
		f.output.Reset()

		if err := f.run("api", "put", "--data", `{"name":"Renamed"}`, "playlists/p1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(f.output.String(), "✓ PUT playlists/p1") {
			t.Errorf("unexpected output %q", f.output.String())
		}
	})

	t.Run("errors carry the status", func(t *testing.T) {
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"status":404,"message":"Not found"}}`))
		})
		if err := f.run("auth", "client-credentials"); err != nil {
			t.Fatal(err)
		}

		err := f.run("api", "get", "albums/missing")
		var apiErr *shared.APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
			t.Errorf("expected a 404 APIError, got %v", err)
		}
	})

	t.Run("requires authentication", func(t *testing.T) {
		f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("expected no request")
		})
		if err := f.run("api", "get", "me"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("rejects malformed params", func(t *testing.T) {
		f := newFixture(t, nil)
		if err := f.run("api", "get", "--param", "oops", "me"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func spotifyAPI(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/me":
			w.Write([]byte(`{"id":"u1","display_name":"Test User","product":"premium","followers":{"total":3}}`))
		case "/v1/me/playlists":
			w.Write([]byte(`{"items":[
				{"id":"p1","name":"One","owner":{"id":"u1"},"tracks":{"total":1}},
				{"id":"p2","name":"Two","owner":{"id":"u1"},"tracks":{"total":1}}
			],"next":null}`))
		case "/v1/playlists/p1", "/v1/playlists/p2":
			id := strings.TrimPrefix(r.URL.Path, "/v1/playlists/")
			fmt.Fprintf(w, `{"id":%q,"name":"Playlist %s","owner":{"id":"u1"},"tracks":{"total":1,"items":[
				{"added_at":"2024-01-02T03:04:05Z","track":{"id":"t1","name":"Song","duration_ms":61000,"artists":[{"name":"Artist"}],"album":{"name":"LP"}}}
			],"next":null}}`, id, id)
		case "/v1/artists/ar1":
			w.Write([]byte(`{"id":"ar1","name":"Daft Punk","genres":["french house"],"followers":{"total":9}}`))
		case "/v1/tracks/t1":
			w.Write([]byte(`{"id":"t1","name":"Around the World","duration_ms":429000,"artists":[{"name":"Daft Punk"}],"album":{"name":"Homework"}}`))
		case "/v1/search":
			w.Write([]byte(`{"tracks":{"items":[{"id":"t1","name":"Around the World","artists":[{"name":"Daft Punk"}]}],"total":1}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}
}

func TestSpotifyCommands(t *testing.T) {
	authenticated := func(t *testing.T) *fixture {
		f := newFixture(t, spotifyAPI(t))
		if err := f.run("auth", "client-credentials"); err != nil {
			t.Fatal(err)
		}
		f.output.Reset()
		return f
	}

	t.Run("me", func(t *testing.T) {
		f := authenticated(t)
		if err := f.run("spotify", "me"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		out := f.output.String()
		if !strings.Contains(out, "Test User") || !strings.Contains(out, "premium") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("artist and track", func(t *testing.T) {
		f := authenticated(t)
		if err := f.run("spotify", "artist", "ar1"); err != nil {
			t.Fatalf("artist failed: %v", err)
		}
		if err := f.run("spotify", "track", "t1"); err != nil {
			t.Fatalf("track failed: %v", err)
		}
		out := f.output.String()
		for _, want := range []string{"french house", "Homework", "7:09"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q: %s", want, out)
			}
		}
	})

	t.Run("search", func(t *testing.T) {
		f := authenticated(t)
		if err := f.run("spotify", "search", "around the world"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(f.output.String(), "1. Daft Punk - Around the World [t1]") {
			t.Errorf("unexpected output %q", f.output.String())
		}
	})

	t.Run("playlists json", func(t *testing.T) {
		f := authenticated(t)
		if err := f.run("spotify", "playlists", "--json", "--limit", "1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		var playlists []map[string]any
		if err := json.Unmarshal(f.output.Bytes(), &playlists); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(playlists) != 1 || playlists[0]["id"] != "p1" {
			t.Errorf("unexpected playlists %v", playlists)
		}
	})

	t.Run("export", func(t *testing.T) {
		f := authenticated(t)
		dir := t.TempDir()
		if err := f.run("spotify", "export", "--format", "csv", "--dir", dir, "p1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "p1_tracks.csv"))
		tu.AssertFileExists(t, filepath.Join(dir, "p1_metadata.json"))
		if !strings.Contains(f.output.String(), "✓ Exported Playlist p1 (1 tracks)") {
			t.Errorf("unexpected output %q", f.output.String())
		}
	})

	t.Run("export rejects unknown formats", func(t *testing.T) {
		f := authenticated(t)
		if err := f.run("spotify", "export", "--format", "xml", "p1"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("export-all defaults to every playlist", func(t *testing.T) {
		f := authenticated(t)
		dir := t.TempDir()

		start := time.Now()
		if err := f.run("spotify", "export-all", "--dir", dir, "--rate", "50"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if time.Since(start) > 5*time.Second {
			t.Error("export-all took too long")
		}

		tu.AssertFileExists(t, filepath.Join(dir, "p1.json"))
		tu.AssertFileExists(t, filepath.Join(dir, "p2.json"))
		tu.AssertFileExists(t, filepath.Join(dir, "export_manifest.json"))
		if !strings.Contains(f.output.String(), "Exported 2 of 2 playlists") {
			t.Errorf("unexpected output %q", f.output.String())
		}
	})

	t.Run("export-all with explicit ids", func(t *testing.T) {
		f := authenticated(t)
		dir := t.TempDir()
		if err := f.run("spotify", "export-all", "--dir", dir, "--format", "text", "p2"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "p2_tracks.txt"))
		if !strings.Contains(f.output.String(), "Exported 1 of 1 playlists") {
			t.Errorf("unexpected output %q", f.output.String())
		}
	})

	t.Run("unauthenticated hint", func(t *testing.T) {
		f := newFixture(t, spotifyAPI(t))
		err := f.run("spotify", "me")
		if !errors.Is(err, shared.ErrNotAuthenticated) || !strings.Contains(err.Error(), "spotx auth login") {
			t.Errorf("expected a login hint, got %v", err)
		}
	})
}

func TestSetup(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")

	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(dir, "spotx.db")

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		ConfigPath: configPath,
		Logger:     shared.DiscardLogger(),
		Output:     output,
		Palette:    ui.Plain,
	})
	runner.config = config

	if err := runner.app().Run(context.Background(), []string{"spotx", "setup"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	tu.AssertFileExists(t, configPath)
	tu.AssertFileExists(t, config.Database.Path)
	if !strings.Contains(output.String(), "✓ Created "+configPath) {
		t.Errorf("unexpected output %q", output.String())
	}
}
