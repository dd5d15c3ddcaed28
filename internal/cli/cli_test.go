package cli

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/revlane/revlane/pkg/render"
)

func TestRootCommandSubcommands(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	want := []string{"graph", "log", "show", "export", "serve", "cache", "completion"}
	registered := make(map[string]bool)
	for _, cmd := range root.Commands() {
		registered[cmd.Name()] = true
	}
	for _, name := range want {
		if !registered[name] {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"text"}},
		{"json", []string{"json"}},
		{"dot,svg", []string{"dot", "svg"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestRepoArg(t *testing.T) {
	if got := repoArg(nil); got != "." {
		t.Errorf("repoArg(nil) = %q", got)
	}
	if got := repoArg([]string{"/tmp/repo"}); got != "/tmp/repo" {
		t.Errorf("repoArg = %q", got)
	}
}

func TestCacheDirRespectsXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-cache", appName) {
		t.Errorf("cacheDir = %q", dir)
	}
}

func seedRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	when := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)
	for i, msg := range []string{"first", "second"} {
		when = when.Add(time.Minute)
		if err := os.WriteFile(filepath.Join(dir, "f.txt"), []byte{byte(i)}, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := wt.Add("f.txt"); err != nil {
			t.Fatalf("add: %v", err)
		}
		if _, err := wt.Commit(msg, &gogit.CommitOptions{
			Author: &object.Signature{Name: "Test", Email: "t@example.com", When: when},
		}); err != nil {
			t.Fatalf("commit: %v", err)
		}
	}
	return dir
}

func TestGraphCommandWritesJSON(t *testing.T) {
	repoDir := seedRepo(t)
	out := filepath.Join(t.TempDir(), "graph.json")

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"graph", repoDir, "--format", "json", "--output", out, "--no-cache"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var commits []render.Commit
	if err := json.Unmarshal(data, &commits); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("got %d commits, want 2", len(commits))
	}
	if commits[0].Message != "second" {
		t.Errorf("newest = %q", commits[0].Message)
	}
}

func TestGraphCommandRejectsBadFormat(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"graph", ".", "--format", "png"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	if err := root.Execute(); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
