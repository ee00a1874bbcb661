package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/picatz/chatcli/internal/chat/config"
	"github.com/shoenig/test/must"
)

// execute runs the root command with the given arguments and captured
// output, the way fang would invoke it.
func execute(t *testing.T, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()

	if stdin == nil {
		stdin = strings.NewReader("")
	}

	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	// Cobra only assigns the execution context to a subcommand whose
	// context is nil, so clear the previous run's context before reusing
	// the command tree; otherwise later runs execute under an earlier
	// test's canceled context.
	for _, c := range rootCmd.Commands() {
		c.SetContext(nil)
	}

	err := rootCmd.ExecuteContext(t.Context())
	return stdout.String(), stderr.String(), err
}

// newStubEndpoint returns a server that replies to every chat
// completions request with a single assistant choice.
func newStubEndpoint(t *testing.T, reply string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat/completions", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "gpt-4o",
			"choices": []map[string]any{
				{
					"message":       map[string]any{"role": "assistant", "content": reply},
					"finish_reason": "stop",
					"index":         0,
				},
			},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// savedThread mirrors the on-disk thread record for assertions.
type savedThread struct {
	ID       string `json:"id"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// readThreads decodes every record under the threads directory.
func readThreads(t *testing.T, root string) []savedThread {
	t.Helper()

	entries, err := os.ReadDir(filepath.Join(root, "threads"))
	if os.IsNotExist(err) {
		return nil
	}
	must.NoError(t, err)

	var threads []savedThread
	for _, entry := range entries {
		b, err := os.ReadFile(filepath.Join(root, "threads", entry.Name()))
		must.NoError(t, err)

		var th savedThread
		must.NoError(t, json.Unmarshal(b, &th))
		threads = append(threads, th)
	}
	return threads
}

// readMarker returns the active thread marker, or empty when absent.
func readMarker(t *testing.T, root string) string {
	t.Helper()

	b, err := os.ReadFile(filepath.Join(root, "activeThread"))
	if os.IsNotExist(err) {
		return ""
	}
	must.NoError(t, err)
	return strings.TrimSpace(string(b))
}

func TestAsk_noAPIKey(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "")

	_, _, err := execute(t, nil, "ask", "--root", t.TempDir(), "hi")
	must.Error(t, err)
	must.StrContains(t, err.Error(), "no API key")
}

func TestAsk_freshExchangePersists(t *testing.T) {
	server := newStubEndpoint(t, "hello back")
	t.Setenv(config.EnvAPIKey, "sk-test")
	t.Setenv("OPENAI_BASE_URL", server.URL)

	root := t.TempDir()
	stdout, _, err := execute(t, nil, "ask", "--root", root, "hi")
	must.NoError(t, err)
	must.StrContains(t, stdout, "hello back")

	threads := readThreads(t, root)
	must.Len(t, 1, threads)
	must.Len(t, 2, threads[0].Messages)
	must.Eq(t, "user", threads[0].Messages[0].Role)
	must.Eq(t, "hi", threads[0].Messages[0].Content)
	must.Eq(t, "assistant", threads[0].Messages[1].Role)
	must.Eq(t, "hello back", threads[0].Messages[1].Content)

	must.Eq(t, threads[0].ID, readMarker(t, root))
}

func TestAsk_continuesActiveThread(t *testing.T) {
	server := newStubEndpoint(t, "ok")
	t.Setenv(config.EnvAPIKey, "sk-test")
	t.Setenv("OPENAI_BASE_URL", server.URL)

	root := t.TempDir()
	_, _, err := execute(t, nil, "ask", "--root", root, "first")
	must.NoError(t, err)
	_, _, err = execute(t, nil, "ask", "--root", root, "second")
	must.NoError(t, err)

	threads := readThreads(t, root)
	must.Len(t, 1, threads)
	must.Len(t, 4, threads[0].Messages)
	must.Eq(t, "first", threads[0].Messages[0].Content)
	must.Eq(t, "second", threads[0].Messages[2].Content)
}

func TestAsk_transportFailureLeavesNoState(t *testing.T) {
	server := newStubEndpoint(t, "unreachable")
	server.Close()
	t.Setenv(config.EnvAPIKey, "sk-test")
	t.Setenv("OPENAI_BASE_URL", server.URL)

	root := t.TempDir()
	_, stderr, err := execute(t, nil, "ask", "--root", root, "hi")
	must.NoError(t, err)
	must.StrContains(t, stderr, "chat request failed")

	must.Len(t, 0, readThreads(t, root))
	must.Eq(t, "", readMarker(t, root))
}

func TestAsk_danglingMarkerStartsFresh(t *testing.T) {
	server := newStubEndpoint(t, "fresh start")
	t.Setenv(config.EnvAPIKey, "sk-test")
	t.Setenv("OPENAI_BASE_URL", server.URL)

	root := t.TempDir()
	must.NoError(t, os.WriteFile(filepath.Join(root, "activeThread"), []byte("ghost\n"), 0o600))

	stdout, _, err := execute(t, nil, "ask", "--root", root, "hi")
	must.NoError(t, err)
	must.StrContains(t, stdout, "starting fresh")

	threads := readThreads(t, root)
	must.Len(t, 1, threads)
	must.NotEq(t, "ghost", threads[0].ID)
	must.Eq(t, threads[0].ID, readMarker(t, root))
}

func TestAsk_corruptConfigDegradesWithWarning(t *testing.T) {
	server := newStubEndpoint(t, "still works")
	t.Setenv(config.EnvAPIKey, "sk-test")
	t.Setenv("OPENAI_BASE_URL", server.URL)

	root := t.TempDir()
	must.NoError(t, os.WriteFile(filepath.Join(root, "config"), []byte("{not json"), 0o600))

	stdout, stderr, err := execute(t, nil, "ask", "--root", root, "hi")
	must.NoError(t, err)
	must.StrContains(t, stderr, "warning")
	must.StrContains(t, stdout, "still works")
}

func TestOpen_switchesActiveThread(t *testing.T) {
	server := newStubEndpoint(t, "ok")
	t.Setenv(config.EnvAPIKey, "sk-test")
	t.Setenv("OPENAI_BASE_URL", server.URL)

	root := t.TempDir()
	_, _, err := execute(t, nil, "ask", "--root", root, "hi")
	must.NoError(t, err)

	threads := readThreads(t, root)
	must.Len(t, 1, threads)

	// Point the marker elsewhere, then open the saved thread again.
	must.NoError(t, os.WriteFile(filepath.Join(root, "activeThread"), []byte("other\n"), 0o600))

	stdout, _, err := execute(t, nil, "open", "--root", root, threads[0].ID)
	must.NoError(t, err)
	must.StrContains(t, stdout, threads[0].ID)
	must.Eq(t, threads[0].ID, readMarker(t, root))
}

func TestOpen_unknownThreadKeepsMarker(t *testing.T) {
	t.Setenv(config.EnvAPIKey, "sk-test")

	root := t.TempDir()
	must.NoError(t, os.WriteFile(filepath.Join(root, "activeThread"), []byte("current\n"), 0o600))

	_, _, err := execute(t, nil, "open", "--root", root, "no-such-thread")
	must.Error(t, err)
	must.Eq(t, "current", readMarker(t, root))
}

func TestList_marksActiveThread(t *testing.T) {
	server := newStubEndpoint(t, "ok")
	t.Setenv(config.EnvAPIKey, "sk-test")
	t.Setenv("OPENAI_BASE_URL", server.URL)

	root := t.TempDir()
	_, _, err := execute(t, nil, "ask", "--root", root, "what is a monad")
	must.NoError(t, err)

	threads := readThreads(t, root)
	must.Len(t, 1, threads)

	stdout, _, err := execute(t, nil, "list", "--root", root)
	must.NoError(t, err)
	must.StrContains(t, stdout, threads[0].ID)
	must.StrContains(t, stdout, "what is a monad")
	must.StrContains(t, stdout, "2 messages")
}

func TestList_empty(t *testing.T) {
	stdout, _, err := execute(t, nil, "list", "--root", t.TempDir())
	must.NoError(t, err)
	must.StrContains(t, stdout, "no saved threads")
}

func TestConfigure_storesKey(t *testing.T) {
	root := t.TempDir()

	_, _, err := execute(t, strings.NewReader("sk-configured\n"), "configure", "--root", root)
	must.NoError(t, err)

	cfg, err := config.Load(filepath.Join(root, "config"))
	must.NoError(t, err)
	must.Eq(t, "sk-configured", cfg.APIKey)
}

func TestConfigure_blankInputKeepsKey(t *testing.T) {
	root := t.TempDir()
	must.NoError(t, config.Save(filepath.Join(root, "config"), config.Config{APIKey: "sk-existing"}))

	_, _, err := execute(t, strings.NewReader("\n"), "configure", "--root", root, "--prompt-mode")
	must.NoError(t, err)

	cfg, err := config.Load(filepath.Join(root, "config"))
	must.NoError(t, err)
	must.Eq(t, "sk-existing", cfg.APIKey)
	must.True(t, cfg.PromptMode)
}

func TestBareQueryIsAsk(t *testing.T) {
	server := newStubEndpoint(t, "shorthand works")
	t.Setenv(config.EnvAPIKey, "sk-test")
	t.Setenv("OPENAI_BASE_URL", server.URL)

	root := t.TempDir()
	stdout, _, err := execute(t, nil, "--root", root, "hello", "there")
	must.NoError(t, err)
	must.StrContains(t, stdout, "shorthand works")

	threads := readThreads(t, root)
	must.Len(t, 1, threads)
	must.Eq(t, "hello there", threads[0].Messages[0].Content)
}
