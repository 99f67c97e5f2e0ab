package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/groupscout/groupscout/internal/bridge"
	"github.com/groupscout/groupscout/internal/shared"
	tu "github.com/groupscout/groupscout/internal/testing"
	"github.com/urfave/cli/v3"
)

// appForTest assembles the CLI the way main does, against a test runner.
func appForTest(r *Runner) *cli.Command {
	return &cli.Command{Name: "groupscout", Commands: r.register()}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.dial == nil {
				t.Error("expected a default dial function")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: tu.FWriter{}})
			if err := runner.writePlain("test"); err == nil {
				t.Fatal("expected error from failing writer")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}
		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}

		names := map[string]bool{}
		for _, cmd := range commands {
			names[cmd.Name] = true
		}
		for _, want := range []string{"search", "tui", "actors", "recent", "export", "snapshot", "setup", "demo"} {
			if !names[want] {
				t.Errorf("expected command %q registered", want)
			}
		}
	})
}

// testConfig builds a config pointing at temp storage and a one-actor roster.
func testConfig(t *testing.T) *shared.Config {
	t.Helper()
	tmp := t.TempDir()

	config := shared.DefaultConfig()
	config.Storage.Path = filepath.Join(tmp, "groupscout.db")
	config.Actors.File = filepath.Join(tmp, "actors.toml")

	roster := "[[actor]]\nid = \"primary\"\nlabel = \"Main\"\nready = true\n"
	if err := os.WriteFile(config.Actors.File, []byte(roster), 0644); err != nil {
		t.Fatalf("failed to write roster: %v", err)
	}
	return config
}

func TestSearchCommand(t *testing.T) {
	t.Run("runs a search to completion and prints the table", func(t *testing.T) {
		client, backend := bridge.Pipe()
		go func() {
			for {
				select {
				case cmd := <-backend.Commands():
					if cmd.Type != bridge.CmdStartSearch {
						continue
					}
					backend.Emit(bridge.Event{Type: bridge.EventBatch, Batch: &bridge.Batch{
						Items: []bridge.Record{{Handle: "alpha_chat", Title: "Alpha", Kind: "group", Members: 4200}},
					}})
					backend.Emit(bridge.Event{Type: bridge.EventResult, Result: &bridge.Result{
						Items: []bridge.Record{
							{Handle: "alpha_chat", Title: "Alpha", Kind: "group", Members: 4200, Novelty: "new"},
							{Handle: "beta_chat", Title: "Beta", Kind: "channel", Members: 900, Novelty: "known"},
						},
						NewCount:   1,
						KnownCount: 1,
					}})
				case <-backend.Done():
					return
				}
			}
		}()

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config: testConfig(t),
			Logger: shared.NewLogger(io.Discard),
			Output: output,
			Dial: func(addr string, timeout time.Duration) (bridge.Bridge, error) {
				return client, nil
			},
		})

		app := appForTest(runner)
		if err := app.Run(context.Background(), []string{"groupscout", "search", "crypto"}); err != nil {
			t.Fatalf("search failed: %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "alpha_chat") || !strings.Contains(result, "beta_chat") {
			t.Errorf("expected both rows in output, got %q", result)
		}
		if !strings.Contains(result, "2 results (1 new, 1 known)") {
			t.Errorf("expected summary line, got %q", result)
		}
	})

	t.Run("rejects an empty query", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Config: testConfig(t),
			Logger: shared.NewLogger(io.Discard),
			Output: &bytes.Buffer{},
		})

		app := appForTest(runner)
		if err := app.Run(context.Background(), []string{"groupscout", "search"}); err == nil {
			t.Fatal("expected error for missing query")
		}
	})
}

func TestRecentCommand(t *testing.T) {
	config := testConfig(t)
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: shared.NewLogger(io.Discard),
		Output: output,
	})

	app := appForTest(runner)
	if err := app.Run(context.Background(), []string{"groupscout", "recent"}); err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if !strings.Contains(output.String(), "No recent queries") {
		t.Errorf("expected empty-list message, got %q", output.String())
	}
}
