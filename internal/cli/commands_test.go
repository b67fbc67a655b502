package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/raphaelgruber/omnimind/internal/client"
	"github.com/raphaelgruber/omnimind/internal/config"
	"github.com/raphaelgruber/omnimind/internal/controller"
	"github.com/raphaelgruber/omnimind/internal/metrics"
	"github.com/raphaelgruber/omnimind/internal/session"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newServiceBackend serves every endpoint the subcommands call.
func newServiceBackend(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(client.Status{Status: "online", Connection: "Stable"})
		})
		r.Post("/chat", func(w http.ResponseWriter, r *http.Request) {
			var req map[string]string
			_ = json.NewDecoder(r.Body).Decode(&req)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"response":        "echo: " + req["message"],
				"speech_duration": 1,
				"suggestions":     []string{"Tell me more", "What's new?"},
			})
		})
		r.Post("/execute-skill", func(w http.ResponseWriter, r *http.Request) {
			var req map[string]string
			_ = json.NewDecoder(r.Body).Decode(&req)
			switch req["skill_id"] {
			case "web_search":
				_ = json.NewEncoder(w).Encode(client.SkillResult{Success: true, Result: "3 results for " + req["query"]})
			case "broken":
				http.Error(w, "internal error", http.StatusInternalServerError)
			default:
				_ = json.NewEncoder(w).Encode(client.SkillResult{Success: false, Error: "unknown skill"})
			}
		})
		r.Get("/skills", func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"skills": []client.Skill{{ID: "web_search", Name: "Web Search", Description: "Search the web"}},
			})
		})
		r.Get("/conversations", func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode([]client.ConversationEntry{
				{Timestamp: 1700000000, User: "first question", Assistant: "first answer"},
				{Timestamp: 1700000100, User: "second question", Assistant: "second answer"},
				{Timestamp: 1700000200, User: "third question", Assistant: "third answer"},
			})
		})
		r.Get("/profile", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"name":"Ada","interests":["ai","news"]}`))
		})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// useService points the package-level client at apiURL for one test.
func useService(t *testing.T, apiURL string) {
	t.Helper()
	logger = quietLogger()
	apiClient = client.New(
		client.WithBaseURL(apiURL),
		client.WithLogger(logger),
		client.WithMetrics(metrics.NewCollector()),
	)
	t.Cleanup(func() {
		apiClient = nil
		logger = nil
	})
}

// execute runs a command body with its output captured.
func execute(run func(*cobra.Command, []string) error, args ...string) (string, error) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	err := run(cmd, args)
	return buf.String(), err
}

func TestOpensChat(t *testing.T) {
	assert.True(t, opensChat(rootCmd))
	assert.True(t, opensChat(chatCmd))
	assert.False(t, opensChat(statusCmd))
	assert.False(t, opensChat(skillsRunCmd))
	assert.False(t, usesFullScreen(statusCmd))
}

func TestRunSend(t *testing.T) {
	useService(t, newServiceBackend(t).URL+"/api")

	out, err := execute(runSend, "hello", "world")
	require.NoError(t, err)
	assert.Equal(t, "echo: hello world\n\nSuggestions: Tell me more | What's new?\n", out)
}

func TestRunSendUnreachable(t *testing.T) {
	useService(t, "http://127.0.0.1:1/api")

	out, err := execute(runSend, "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable at http://127.0.0.1:1/api")
	assert.Empty(t, out)
}

func TestRunSkillsRun(t *testing.T) {
	useService(t, newServiceBackend(t).URL+"/api")

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{"success", []string{"web_search", "latest", "news"}, "3 results for latest news\n", false},
		{"logical failure", []string{"teleport", "mars"}, "Error: unknown skill\n", true},
		{"transport failure", []string{"broken", "anything"}, controller.SkillFailureText + "\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(runSkillsRun, tt.args...)
			assert.Equal(t, tt.want, out)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.args[0])
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestRunSkillsList(t *testing.T) {
	useService(t, newServiceBackend(t).URL+"/api")

	out, err := execute(runSkillsList)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "web_search")
	assert.Contains(t, lines[1], "Search the web")
}

func TestRunHistoryLimit(t *testing.T) {
	useService(t, newServiceBackend(t).URL+"/api")
	t.Cleanup(func() { historyLimit = 20 })

	historyLimit = 2
	out, err := execute(runHistory)
	require.NoError(t, err)
	assert.NotContains(t, out, "first question")
	assert.Contains(t, out, "you:      second question")
	assert.Contains(t, out, "omnimind: third answer")
	assert.Contains(t, out, "(1 older conversations not shown)")
	assert.Less(t, strings.Index(out, "second"), strings.Index(out, "third"))

	historyLimit = 0
	out, err = execute(runHistory)
	require.NoError(t, err)
	assert.Contains(t, out, "first question")
	assert.NotContains(t, out, "not shown")
}

func TestRunProfile(t *testing.T) {
	useService(t, newServiceBackend(t).URL+"/api")
	t.Cleanup(func() { profileJSON = false })

	out, err := execute(runProfile)
	require.NoError(t, err)
	assert.Contains(t, out, "name: Ada\n")
	assert.Contains(t, out, "- news\n")
	assert.Less(t, strings.Index(out, "interests:"), strings.Index(out, "name:"))

	profileJSON = true
	out, err = execute(runProfile)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, map[string]any{"name": "Ada", "interests": []any{"ai", "news"}}, doc)
}

func TestRunBootStatusAndReset(t *testing.T) {
	logger = quietLogger()
	t.Cleanup(func() { logger = nil })
	cfg = config.Config{BootStore: config.BootStoreFile, StateDir: t.TempDir(), SessionID: "test-shell"}

	out, err := execute(runBootStatus)
	require.NoError(t, err)
	assert.Contains(t, out, "Session: test-shell (file store)")
	assert.Contains(t, out, "Boot sequence will play")

	store, closeStore, err := openBootStore(t.Context())
	require.NoError(t, err)
	require.NoError(t, store.Set(session.BootCompleteKey, "true"))
	require.NoError(t, closeStore())

	out, err = execute(runBootStatus)
	require.NoError(t, err)
	assert.Contains(t, out, "already played")

	out, err = execute(runBootReset)
	require.NoError(t, err)
	assert.Equal(t, "Boot sequence re-armed.\n", out)

	out, err = execute(runBootStatus)
	require.NoError(t, err)
	assert.Contains(t, out, "Boot sequence will play")
}
