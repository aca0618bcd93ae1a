package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/letterstacks/internal/api"
	"github.com/mcoot/letterstacks/internal/api/apierr"
	"github.com/mcoot/letterstacks/internal/api/response"
	"github.com/mcoot/letterstacks/internal/config"
	"github.com/mcoot/letterstacks/internal/factory"
	"github.com/mcoot/letterstacks/internal/model"
	"github.com/mcoot/letterstacks/internal/services/audit"
	"github.com/mcoot/letterstacks/internal/testutil"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	stateFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "letterstacks-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/letterstacks")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		stateFile:  filepath.Join(t.TempDir(), "session.json"),
	}
}

// run executes the CLI with JSON output, returning stdout and stderr separately
func (r *cliRunner) run(args ...string) (string, string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--state-file", r.stateFile,
		"--output", "json",
	}, args...)

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Dir = filepath.Dir(r.stateFile)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func (r *cliRunner) mustRun(t *testing.T, out any, args ...string) {
	t.Helper()
	stdout, stderr, err := r.run(args...)
	require.NoError(t, err, "args: %v\nstdout: %s\nstderr: %s", args, stdout, stderr)
	if out != nil {
		require.NoError(t, json.Unmarshal([]byte(stdout), out), "stdout: %s", stdout)
	}
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	app      *factory.App
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	// Sessions are not auto-run, so boards only change when the CLI acts
	logger := testutil.NopLogger()
	cfg := config.Default()
	cfg.Auth.Secret = "e2e-secret"
	app, err := factory.New(context.Background(), cfg, factory.Options{Logger: logger})
	require.NoError(t, err)
	require.NoError(t, app.DictionaryService.LoadWords(testutil.Words))

	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		AuthService:       app.AuthService,
		GameController:    app.GameController,
		SettingsService:   app.SettingsService,
		ScoreboardService: app.ScoreboardService,
		DictionaryService: app.DictionaryService,
		HubManager:        app.HubManager,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		app:  app,
		addr: serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	var resp response.HealthResponse
	cli.mustRun(t, &resp, "health")
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, len(testutil.Words), resp.DictionaryWords)
	assert.False(t, resp.AllowAnyWord)
}

func TestCLI_WordLookup(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	var resp response.WordResponse
	cli.mustRun(t, &resp, "word", "CAT")
	assert.Equal(t, "cat", resp.Word)
	assert.True(t, resp.Valid)

	cli.mustRun(t, &resp, "word", "xzq")
	assert.False(t, resp.Valid)
}

func TestCLI_SessionLifecycle(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Create a session; the CLI remembers it in the state file
	var created response.SessionResponse
	cli.mustRun(t, &created, "session", "new", "--level", "13")
	assert.NotEmpty(t, created.Token)
	assert.Equal(t, model.SessionStateRunning, created.Session.State)
	assert.Equal(t, 13, created.Session.Level)
	assert.Equal(t, 3, created.Session.Quantity)
	assert.Len(t, created.Session.Heights, 30)

	// Later commands act on the remembered session
	var got response.SessionResponse
	cli.mustRun(t, &got, "session", "get")
	assert.Equal(t, created.Session.ID, got.Session.ID)
	assert.Empty(t, got.Token)

	cli.mustRun(t, &got, "session", "select", "0", "1")
	assert.Equal(t, []int{0, 1}, got.Session.Selection)

	cli.mustRun(t, &got, "session", "clear")
	assert.Empty(t, got.Session.Selection)

	cli.mustRun(t, &got, "session", "drop")
	assert.Greater(t, got.Session.Spawned, created.Session.Spawned)

	cli.mustRun(t, &got, "session", "settings", "20", "8")
	assert.Equal(t, 20, got.Session.Level)
	assert.Equal(t, 8, got.Session.Ceiling)
	assert.Equal(t, 4, got.Session.Quantity)

	cli.mustRun(t, &got, "session", "end")
	assert.Equal(t, model.SessionStateAbandoned, got.Session.State)

	// Ended sessions are discarded
	_, stderr, err := cli.run("session", "drop")
	require.Error(t, err)
	var errResp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(stderr), &errResp), "stderr: %s", stderr)
	assert.Equal(t, apierr.CodeSessionNotFound, errResp.Error.Code)
}

func TestCLI_SubmitTooShort(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	var created response.SessionResponse
	cli.mustRun(t, &created, "session", "new")

	_, stderr, err := cli.run("session", "submit")
	require.Error(t, err)
	var errResp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(stderr), &errResp), "stderr: %s", stderr)
	assert.Equal(t, apierr.CodeWordTooShort, errResp.Error.Code)
}

func TestCLI_ProfileSettings(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	var settings response.Settings
	cli.mustRun(t, &settings, "settings", "get", "--profile", "alice")
	assert.Equal(t, model.DefaultLevel, settings.Level)
	assert.Equal(t, model.DefaultStackCeiling, settings.StackCeiling)

	cli.mustRun(t, &settings, "settings", "set", "7", "9", "--profile", "alice")
	assert.Equal(t, 7, settings.Level)

	// New sessions for the profile pick the settings up
	var created response.SessionResponse
	cli.mustRun(t, &created, "session", "new", "--profile", "alice")
	assert.Equal(t, 7, created.Session.Level)
	assert.Equal(t, 9, created.Session.Ceiling)

	_, _, err := cli.run("settings", "set", "26", "9", "--profile", "alice")
	assert.Error(t, err)
}

func TestCLI_Scores(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	var scores response.ScoresResponse
	cli.mustRun(t, &scores, "scores")
	assert.Empty(t, scores.Scores)

	_, _, err := cli.run("scores", "--mode", "fastest")
	assert.Error(t, err)
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// No current session yet
	_, stderr, err := cli.run("session", "get")
	require.Error(t, err)
	assert.Contains(t, stderr, "no current session")

	// Unknown session with a made-up token
	_, stderr, err = cli.run("--token", "not-a-token", "session", "get", "--session", "NOPE")
	require.Error(t, err)
	var errResp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(stderr), &errResp), "stderr: %s", stderr)
	assert.Equal(t, apierr.CodeUnauthorized, errResp.Error.Code)

	// Bad cell argument never reaches the server
	cli.mustRun(t, nil, "session", "new")
	_, stderr, err = cli.run("session", "select", "first")
	require.Error(t, err)
	assert.True(t, strings.Contains(stderr, "first"), "stderr: %s", stderr)
}

func TestCLI_AuditRunsLocally(t *testing.T) {
	cli := newCLIRunner(t, "http://127.0.0.1:1")

	var report audit.Report
	cli.mustRun(t, &report, "audit", "--cycles", "40", "--seed", "7")
	assert.Equal(t, audit.DefaultLevel, report.Level)
	assert.Equal(t, 40, report.CyclesRun)
	assert.Equal(t, model.SessionStateRunning, report.FinalState)
	assert.Positive(t, report.Spawned)

	_, stderr, err := cli.run("audit", "--autoplay", "shortest")
	require.Error(t, err)
	assert.Contains(t, stderr, "unknown autoplay strategy")
}
