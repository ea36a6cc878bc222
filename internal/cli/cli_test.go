package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/scribe/internal/agent"
	"github.com/dshills/scribe/internal/auth"
	"github.com/dshills/scribe/internal/commitmsg"
	"github.com/dshills/scribe/internal/config"
	"github.com/dshills/scribe/internal/host"
	"github.com/dshills/scribe/internal/host/hosttest"
	"github.com/dshills/scribe/internal/output"
)

// resetFlags resets all package-level flag variables to their zero values.
func resetFlags() {
	flagAgent = ""
	flagAgentURL = ""
	flagProvider = ""
	flagModel = ""
	flagWrite = ""
	flagRepos = nil
	flagFormat = ""
	flagPaths = ""
	flagExclude = ""
	flagContextLines = 0
	flagMaxDiffBytes = 0
	flagDepth = 0
	flagNoRedact = false
	flagNoCache = false
	flagEdit = false
	hookBinary = "scribe"
}

// isolate points config and cache lookups at a temp dir and clears SCRIBE_*
// variables that would leak into config.Load.
func isolate(t *testing.T) string {
	t.Helper()
	resetFlags()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	for _, kv := range os.Environ() {
		if name, _, _ := strings.Cut(kv, "="); strings.HasPrefix(name, "SCRIBE_") {
			t.Setenv(name, "")
		}
	}
	return dir
}

// runCLI executes the command tree and returns the exit code and stdout.
func runCLI(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	code := execute(context.Background(), args)
	return code, out.String()
}

// useHost replaces the terminal host for one test.
func useHost(t *testing.T, h host.Host) {
	t.Helper()
	saved := newHost
	newHost = func() host.Host { return h }
	t.Cleanup(func() { newHost = saved })
}

// --- splitComma tests ---

func TestSplitComma(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", nil},
		{"single value", "foo", []string{"foo"}},
		{"multiple values", "a,b,c", []string{"a", "b", "c"}},
		{"whitespace trimmed", " a , b , c ", []string{"a", "b", "c"}},
		{"empty parts skipped", "a,,b", []string{"a", "b"}},
		{"all empty", ",,,", nil},
		{"trailing comma", "a,b,", []string{"a", "b"}},
		{"leading comma", ",a,b", []string{"a", "b"}},
		{"glob patterns", "*.go,src/**/*.ts", []string{"*.go", "src/**/*.ts"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitComma(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("splitComma(%q) = %v (len %d), want %v (len %d)",
					tt.input, got, len(got), tt.want, len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("splitComma(%q)[%d] = %q, want %q",
						tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

// --- buildOverrides tests ---

func TestBuildOverrides_NoFlags(t *testing.T) {
	resetFlags()
	m := buildOverrides()
	if len(m) != 0 {
		t.Errorf("buildOverrides() with no flags = %v, want empty map", m)
	}
}

func TestBuildOverrides_AllFlags(t *testing.T) {
	resetFlags()
	flagAgent = "direct"
	flagAgentURL = "http://agent.local"
	flagProvider = "openai"
	flagModel = "gpt-4o"
	flagFormat = "json"
	flagContextLines = 5
	flagMaxDiffBytes = 1000

	m := buildOverrides()

	expected := map[string]string{
		"agent":        "direct",
		"agentURL":     "http://agent.local",
		"provider":     "openai",
		"model":        "gpt-4o",
		"format":       "json",
		"contextLines": "5",
		"maxDiffBytes": "1000",
	}

	if len(m) != len(expected) {
		t.Fatalf("buildOverrides() returned %d entries, want %d", len(m), len(expected))
	}
	for k, v := range expected {
		if m[k] != v {
			t.Errorf("buildOverrides()[%q] = %q, want %q", k, m[k], v)
		}
	}
}

func TestBuildOverrides_ZeroIntsExcluded(t *testing.T) {
	resetFlags()
	flagProvider = "anthropic"

	m := buildOverrides()

	if _, ok := m["contextLines"]; ok {
		t.Error("contextLines=0 should not be in overrides")
	}
	if _, ok := m["maxDiffBytes"]; ok {
		t.Error("maxDiffBytes=0 should not be in overrides")
	}
}

// --- buildDiffOpts tests ---

func TestBuildDiffOpts_FromConfig(t *testing.T) {
	resetFlags()
	cfg := config.Config{
		ContextLines: 5,
		MaxDiffBytes: 100000,
		Include:      []string{"*.go"},
		Exclude:      []string{"vendor/**"},
	}

	opts := buildDiffOpts(cfg)

	if opts.ContextLines != 5 {
		t.Errorf("ContextLines = %d, want 5", opts.ContextLines)
	}
	if opts.MaxDiffBytes != 100000 {
		t.Errorf("MaxDiffBytes = %d, want 100000", opts.MaxDiffBytes)
	}
	if len(opts.Include) != 1 || opts.Include[0] != "*.go" {
		t.Errorf("Include = %v, want [*.go]", opts.Include)
	}
	if len(opts.Exclude) != 1 || opts.Exclude[0] != "vendor/**" {
		t.Errorf("Exclude = %v, want [vendor/**]", opts.Exclude)
	}
}

func TestBuildDiffOpts_PathsFlagOverridesInclude(t *testing.T) {
	resetFlags()
	flagPaths = "src/**/*.go,lib/**/*.go"

	opts := buildDiffOpts(config.Config{Include: []string{"**/*"}})

	if len(opts.Include) != 2 || opts.Include[0] != "src/**/*.go" || opts.Include[1] != "lib/**/*.go" {
		t.Errorf("Include = %v, want [src/**/*.go lib/**/*.go]", opts.Include)
	}
}

func TestBuildDiffOpts_ExcludeFlagAppends(t *testing.T) {
	resetFlags()
	flagExclude = "test/**,docs/**"
	cfg := config.Config{Exclude: []string{"vendor/**"}}

	opts := buildDiffOpts(cfg)

	want := []string{"vendor/**", "test/**", "docs/**"}
	if len(opts.Exclude) != len(want) {
		t.Fatalf("Exclude = %v, want %v", opts.Exclude, want)
	}
	for i := range want {
		if opts.Exclude[i] != want[i] {
			t.Errorf("Exclude[%d] = %q, want %q", i, opts.Exclude[i], want[i])
		}
	}
	if len(cfg.Exclude) != 1 {
		t.Errorf("config Exclude was modified: %v", cfg.Exclude)
	}
}

// --- exit code mapping ---

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name string
		code int
		want int
	}{
		{"ExitSuccess", ExitSuccess, 0},
		{"ExitUsageError", ExitUsageError, 2},
		{"ExitAuthError", ExitAuthError, 3},
		{"ExitRuntimeError", ExitRuntimeError, 4},
		{"ExitCancelled", ExitCancelled, 130},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, tt.code, tt.want)
			}
		})
	}
}

func TestOutcomeExitCode(t *testing.T) {
	tests := []struct {
		outcome commitmsg.Outcome
		want    int
	}{
		{commitmsg.OutcomeWritten, ExitSuccess},
		{commitmsg.OutcomeEmptyDiff, ExitSuccess},
		{commitmsg.OutcomeAbandoned, ExitCancelled},
		{commitmsg.OutcomeCancelled, ExitCancelled},
		{commitmsg.OutcomeNoRepository, ExitRuntimeError},
		{commitmsg.OutcomeFailed, ExitRuntimeError},
	}
	for _, tt := range tests {
		t.Run(tt.outcome.String(), func(t *testing.T) {
			if got := outcomeExitCode(tt.outcome); got != tt.want {
				t.Errorf("outcomeExitCode(%s) = %d, want %d", tt.outcome, got, tt.want)
			}
		})
	}
}

func TestAuthExitCode(t *testing.T) {
	tests := []struct {
		state auth.State
		want  int
	}{
		{auth.StateSucceeded, ExitSuccess},
		{auth.StateAlreadyAuthorized, ExitSuccess},
		{auth.StateCancelled, ExitCancelled},
		{auth.StateFailed, ExitAuthError},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := authExitCode(auth.Result{State: tt.state}); got != tt.want {
				t.Errorf("authExitCode(%s) = %d, want %d", tt.state, got, tt.want)
			}
		})
	}
}

func TestErrorExitCode(t *testing.T) {
	unauth := &agent.Error{Op: "commit message", StatusCode: http.StatusUnauthorized}
	if got := errorExitCode(unauth); got != ExitAuthError {
		t.Errorf("errorExitCode(401) = %d, want %d", got, ExitAuthError)
	}
	if got := errorExitCode(errors.New("boom")); got != ExitRuntimeError {
		t.Errorf("errorExitCode(other) = %d, want %d", got, ExitRuntimeError)
	}
}

// --- agent wiring ---

func TestNewAgent_HTTP(t *testing.T) {
	cfg := config.Default()
	cfg.AgentURL = "http://agent.local:9000"

	a, identity, err := newAgent(cfg)
	require.NoError(t, err)
	assert.IsType(t, &agent.Client{}, a)
	assert.Equal(t, "http:http://agent.local:9000", identity)
}

func TestNewAgent_Direct(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	cfg := config.Default()
	cfg.Agent = config.AgentDirect
	cfg.Provider = "anthropic"
	cfg.Model = "claude-test"

	a, identity, err := newAgent(cfg)
	require.NoError(t, err)
	assert.IsType(t, &agent.Direct{}, a)
	assert.Equal(t, "direct:anthropic:claude-test", identity)
}

func TestNewAgent_UnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Agent = config.AgentDirect
	cfg.Provider = "nope"

	_, _, err := newAgent(cfg)
	assert.Error(t, err)
}

// --- simple commands ---

func TestVersionCmd_Execute(t *testing.T) {
	isolate(t)
	code, out := runCLI(t, "version")
	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, "scribe version "+version+"\n", out)
}

func TestUnknownCommand_UsageError(t *testing.T) {
	isolate(t)
	code, _ := runCLI(t, "frobnicate")
	assert.Equal(t, ExitUsageError, code)
}

func TestModelsListCmd_Execute(t *testing.T) {
	isolate(t)
	code, out := runCLI(t, "models", "list")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "anthropic:")
}

func TestKnownModels_AllProviders(t *testing.T) {
	providers := map[string]bool{
		"anthropic": false,
		"openai":    false,
		"ollama":    false,
	}

	for _, info := range knownModels {
		if _, ok := providers[info.Provider]; ok {
			providers[info.Provider] = true
		}
		if len(info.Models) == 0 {
			t.Errorf("provider %s has no models", info.Provider)
		}
	}

	for provider, found := range providers {
		if !found {
			t.Errorf("expected provider %q not found in knownModels", provider)
		}
	}
}

// --- config command tests ---

func TestConfigInit_CreatesFile(t *testing.T) {
	tmpDir := isolate(t)

	code, _ := runCLI(t, "config", "init")
	require.Equal(t, ExitSuccess, code)

	data, err := os.ReadFile(filepath.Join(tmpDir, "config", "scribe", "config.json"))
	require.NoError(t, err, "config init did not create config.json")
	var cfg config.Config
	require.NoError(t, json.Unmarshal(data, &cfg))
	assert.Equal(t, config.AgentHTTP, cfg.Agent)
	assert.NotContains(t, string(data), "AgentToken")
}

func TestConfigInit_AlreadyExists(t *testing.T) {
	tmpDir := isolate(t)
	cfgDir := filepath.Join(tmpDir, "config", "scribe")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.json"), []byte(`{"provider":"openai"}`), 0o644))

	code, _ := runCLI(t, "config", "init")
	require.Equal(t, ExitSuccess, code)

	data, err := os.ReadFile(filepath.Join(cfgDir, "config.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"provider":"openai"}`, string(data))
}

func TestConfigSet_UpdatesFile(t *testing.T) {
	tmpDir := isolate(t)

	code, out := runCLI(t, "config", "set", "agentURL", "http://agent.local:1234")
	require.Equal(t, ExitSuccess, code, out)

	data, err := os.ReadFile(filepath.Join(tmpDir, "config", "scribe", "config.json"))
	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, json.Unmarshal(data, &cfg))
	assert.Equal(t, "http://agent.local:1234", cfg.AgentURL)
}

func TestConfigSet_InvalidKey(t *testing.T) {
	isolate(t)
	code, _ := runCLI(t, "config", "set", "unknownKey", "value")
	assert.Equal(t, ExitUsageError, code)
}

func TestConfigSet_InvalidValue(t *testing.T) {
	isolate(t)
	code, _ := runCLI(t, "config", "set", "format", "sarif")
	assert.Equal(t, ExitUsageError, code)
}

func TestConfigSet_MissingArgs(t *testing.T) {
	isolate(t)
	code, _ := runCLI(t, "config", "set", "provider")
	assert.Equal(t, ExitUsageError, code)
}

func TestConfigShow_Execute(t *testing.T) {
	isolate(t)
	t.Setenv("SCRIBE_AGENT_TOKEN", "s3cret")

	code, out := runCLI(t, "config", "show")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, `"agentURL"`)
	assert.NotContains(t, out, "s3cret")
}

// --- cache command tests ---

func TestCacheShow_Execute(t *testing.T) {
	isolate(t)
	code, out := runCLI(t, "cache", "show")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, `"messages": 0`)
}

func TestCacheClear_Execute(t *testing.T) {
	tmpDir := isolate(t)

	cacheDir := filepath.Join(tmpDir, "cache", "scribe")
	require.NoError(t, os.MkdirAll(cacheDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "abc123.json"), []byte(`{"key":"test"}`), 0o644))

	code, out := runCLI(t, "cache", "clear")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "Removed 1 cached message.")

	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			t.Errorf("cache clear did not remove %s", e.Name())
		}
	}
}

// --- end to end against a fake agent ---

type fakeAgentServer struct {
	*httptest.Server
	mu       sync.Mutex
	messages [][]string
}

// newFakeAgent serves the agent HTTP contract. The token endpoint approves
// immediately and commit-message replies with msg.
func newFakeAgent(t *testing.T, msg string) *fakeAgentServer {
	t.Helper()
	f := &fakeAgentServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/auth/url", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"url":  "https://agent.example/authorize?code=c-1",
			"code": "c-1",
		})
	})
	mux.HandleFunc("POST /v1/auth/token", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})
	mux.HandleFunc("GET /v1/status", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})
	mux.HandleFunc("POST /v1/commit-message", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Diff []string `json:"diff"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.messages = append(f.messages, req.Diff)
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeAgentServer) requests() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.messages...)
}

func TestAuthLogin_OpensBrowserAndSucceeds(t *testing.T) {
	isolate(t)
	srv := newFakeAgent(t, "unused")
	h := &hosttest.Host{}
	useHost(t, h)

	code, _ := runCLI(t, "auth", "login", "--agent-url", srv.URL)

	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, []string{"https://agent.example/authorize?code=c-1"}, h.Opened())
	assert.Equal(t, []string{auth.ProgressTitle}, h.ProgressTitles())
}

func TestAuthStatus_Ready(t *testing.T) {
	isolate(t)
	srv := newFakeAgent(t, "unused")

	code, out := runCLI(t, "auth", "status", "--agent-url", srv.URL)

	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "ready (http agent)")
}

func TestAuthStatus_Unauthenticated(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "sign in first"})
	}))
	t.Cleanup(srv.Close)

	code, out := runCLI(t, "auth", "status", "--agent-url", srv.URL)

	assert.Equal(t, ExitAuthError, code)
	assert.Contains(t, out, "unauthenticated")
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
}

// stagedRepo creates a repository with one staged file.
func stagedRepo(t *testing.T) string {
	t.Helper()
	requireGit(t)
	dir := t.TempDir()
	runGit(t, dir, "init", "-q")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.go"), []byte("package hello\n"), 0o644))
	runGit(t, dir, "add", "hello.go")
	return dir
}

func TestCommitMsg_WritesFile(t *testing.T) {
	isolate(t)
	repo := stagedRepo(t)
	srv := newFakeAgent(t, "Add hello package")
	useHost(t, &hosttest.Host{})
	msgFile := filepath.Join(t.TempDir(), "COMMIT_EDITMSG")
	require.NoError(t, os.WriteFile(msgFile, []byte("\n# Please enter the commit message\n"), 0o644))

	code, out := runCLI(t, "commit-msg", "--repo", repo, "--depth", "0", "--write", msgFile,
		"--agent-url", srv.URL, "--no-cache")

	require.Equal(t, ExitSuccess, code, out)
	data, err := os.ReadFile(msgFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Add hello package\n"), "got %q", data)
	assert.Contains(t, string(data), "# Please enter the commit message")
	assert.Contains(t, out, "written to "+msgFile)

	reqs := srv.requests()
	require.Len(t, reqs, 1)
	require.Len(t, reqs[0], 1)
	assert.Contains(t, reqs[0][0], "diff --git a/hello.go b/hello.go")
}

func TestCommitMsg_JSONReport(t *testing.T) {
	isolate(t)
	repo := stagedRepo(t)
	srv := newFakeAgent(t, "Add hello package")
	useHost(t, &hosttest.Host{})

	code, out := runCLI(t, "commit-msg", "--repo", repo, "--depth", "0", "--format", "json",
		"--agent-url", srv.URL, "--no-cache")

	require.Equal(t, ExitSuccess, code, out)
	var report output.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report), out)
	assert.Equal(t, "written", report.Outcome)
	assert.Equal(t, "staged", report.Source)
	assert.Equal(t, "Add hello package", report.Message)
	assert.Equal(t, []string{"hello.go"}, report.Files)
}

func TestCommitMsg_JSONReportIncludesBranch(t *testing.T) {
	isolate(t)
	repo := stagedRepo(t)
	runGit(t, repo, "-c", "user.name=t", "-c", "user.email=t@example.com", "commit", "-q", "-m", "init")
	runGit(t, repo, "checkout", "-q", "-b", "topic")
	require.NoError(t, os.WriteFile(filepath.Join(repo, "hello.go"), []byte("package hello\n\nvar X = 1\n"), 0o644))
	runGit(t, repo, "add", "hello.go")
	srv := newFakeAgent(t, "Add hello package")
	useHost(t, &hosttest.Host{})

	code, out := runCLI(t, "commit-msg", "--repo", repo, "--depth", "0", "--format", "json",
		"--agent-url", srv.URL, "--no-cache")

	require.Equal(t, ExitSuccess, code, out)
	var report output.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report), out)
	assert.Equal(t, "topic", report.Branch)
	assert.Empty(t, report.Omitted)
}

func TestCommitMsg_EditReplacesSubject(t *testing.T) {
	isolate(t)
	repo := stagedRepo(t)
	srv := newFakeAgent(t, "Add hello package")
	h := &hosttest.Host{PromptValue: "Introduce the hello package", PromptOK: true}
	useHost(t, h)
	msgFile := filepath.Join(t.TempDir(), "COMMIT_EDITMSG")

	code, out := runCLI(t, "commit-msg", "--repo", repo, "--depth", "0", "--write", msgFile,
		"--agent-url", srv.URL, "--no-cache", "--edit")

	require.Equal(t, ExitSuccess, code, out)
	data, err := os.ReadFile(msgFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Introduce the hello package\n"), "got %q", data)
	assert.Len(t, h.Prompts(), 1)
	assert.Contains(t, out, "edited")
}

func TestCommitMsg_EditDismissedWritesNothing(t *testing.T) {
	isolate(t)
	repo := stagedRepo(t)
	srv := newFakeAgent(t, "Add hello package")
	useHost(t, &hosttest.Host{})
	msgFile := filepath.Join(t.TempDir(), "COMMIT_EDITMSG")
	require.NoError(t, os.WriteFile(msgFile, []byte("# template\n"), 0o644))

	code, out := runCLI(t, "commit-msg", "--repo", repo, "--depth", "0", "--write", msgFile,
		"--agent-url", srv.URL, "--no-cache", "--edit")

	assert.Equal(t, ExitCancelled, code, out)
	data, err := os.ReadFile(msgFile)
	require.NoError(t, err)
	assert.Equal(t, "# template\n", string(data))
	assert.Contains(t, out, "Message discarded")
}

func TestCommitMsg_EmptyDiff(t *testing.T) {
	isolate(t)
	requireGit(t)
	repo := t.TempDir()
	runGit(t, repo, "init", "-q")
	srv := newFakeAgent(t, "unused")
	useHost(t, &hosttest.Host{})

	code, out := runCLI(t, "commit-msg", "--repo", repo, "--depth", "0", "--agent-url", srv.URL, "--no-cache")

	assert.Equal(t, ExitSuccess, code, out)
	assert.Contains(t, out, "Nothing to describe")
	assert.Empty(t, srv.requests())
}

func TestCommitMsg_NoRepository(t *testing.T) {
	isolate(t)
	h := &hosttest.Host{}
	useHost(t, h)

	code, _ := runCLI(t, "commit-msg", "--repo", t.TempDir(), "--depth", "0", "--no-cache")

	assert.Equal(t, ExitRuntimeError, code)
	require.Len(t, h.Notifications(), 1)
	assert.Equal(t, commitmsg.MsgNoRepository, h.Notifications()[0].Message)
}

func TestCommitMsg_BadFormat(t *testing.T) {
	isolate(t)
	code, _ := runCLI(t, "commit-msg", "--format", "sarif")
	assert.Equal(t, ExitUsageError, code)
}
