package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/revlane/revlane/pkg/gitrepo"
	"github.com/revlane/revlane/pkg/pipeline"
)

func seedRepo(t *testing.T) (string, []string) {
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

	when := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	var hashes []string
	for i, msg := range []string{"first", "second", "third"} {
		when = when.Add(time.Minute)
		file := filepath.Join(dir, "file.txt")
		if err := os.WriteFile(file, []byte{byte('0' + i)}, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := wt.Add("file.txt"); err != nil {
			t.Fatalf("add: %v", err)
		}
		hash, err := wt.Commit(msg, &gogit.CommitOptions{
			Author: &object.Signature{Name: "Test", Email: "t@example.com", When: when},
		})
		if err != nil {
			t.Fatalf("commit: %v", err)
		}
		hashes = append(hashes, hash.String())
	}
	return dir, hashes
}

func testServer(t *testing.T) (*httptest.Server, []string) {
	t.Helper()
	dir, hashes := seedRepo(t)
	runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))
	srv := httptest.NewServer(New(runner, dir, 0, log.New(io.Discard)).Handler())
	t.Cleanup(srv.Close)
	return srv, hashes
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func TestGraphEndpoint(t *testing.T) {
	srv, hashes := testServer(t)

	var body graphResponse
	resp := getJSON(t, srv.URL+"/api/graph", &body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
	if len(body.Commits) != 3 {
		t.Fatalf("got %d commits, want 3", len(body.Commits))
	}
	if body.Commits[0].Hash != hashes[2] {
		t.Errorf("newest = %s, want %s", body.Commits[0].Hash, hashes[2])
	}
	if body.Head != hashes[2] {
		t.Errorf("head = %s", body.Head)
	}

	// Linear history: single lane, refs decorate the head.
	if body.Commits[0].Column != 0 || body.Commits[1].Column != 0 {
		t.Error("linear history should stay in column 0")
	}
	if len(body.Commits[0].Refs) == 0 {
		t.Error("head commit missing branch decoration")
	}
}

func TestGraphPagination(t *testing.T) {
	srv, hashes := testServer(t)

	var body graphResponse
	getJSON(t, srv.URL+"/api/graph?skip=1&limit=1", &body)
	if len(body.Commits) != 1 {
		t.Fatalf("got %d commits, want 1", len(body.Commits))
	}
	if body.Commits[0].Hash != hashes[1] {
		t.Errorf("paged commit = %s, want %s", body.Commits[0].Hash, hashes[1])
	}
	if body.Skip != 1 || body.Limit != 1 {
		t.Errorf("echoed window = %d/%d", body.Skip, body.Limit)
	}
}

func TestGraphBadQuery(t *testing.T) {
	srv, _ := testServer(t)

	var body errorResponse
	resp := getJSON(t, srv.URL+"/api/graph?skip=-3", &body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if body.Code != "INVALID_INPUT" {
		t.Errorf("code = %q", body.Code)
	}
}

func TestCommitEndpoint(t *testing.T) {
	srv, hashes := testServer(t)

	var details gitrepo.CommitDetails
	resp := getJSON(t, srv.URL+"/api/commits/"+hashes[0], &details)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if details.Message != "first" {
		t.Errorf("message = %q", details.Message)
	}
	if len(details.FilesChanged) != 1 || details.FilesChanged[0].Status != "added" {
		t.Errorf("files = %+v", details.FilesChanged)
	}
}

func TestCommitEndpointErrors(t *testing.T) {
	srv, _ := testServer(t)

	t.Run("unknown commit", func(t *testing.T) {
		var body errorResponse
		resp := getJSON(t, srv.URL+"/api/commits/deadbeefdeadbeefdeadbeefdeadbeefdeadbeef", &body)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.StatusCode)
		}
		if body.Code != "COMMIT_NOT_FOUND" {
			t.Errorf("code = %q", body.Code)
		}
	})

	t.Run("malformed hash", func(t *testing.T) {
		var body errorResponse
		resp := getJSON(t, srv.URL+"/api/commits/zzzz", &body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
		if body.Code != "INVALID_HASH" {
			t.Errorf("code = %q", body.Code)
		}
	})
}

func TestRefsEndpoint(t *testing.T) {
	srv, hashes := testServer(t)

	var refs map[string][]gitrepo.RefInfo
	resp := getJSON(t, srv.URL+"/api/refs", &refs)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	head := refs[hashes[2]]
	if len(head) == 0 || !head[0].IsHead {
		t.Errorf("head refs = %+v", head)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := testServer(t)

	var body map[string]string
	resp := getJSON(t, srv.URL+"/healthz", &body)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("health = %d %v", resp.StatusCode, body)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	srv, _ := testServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("X-Request-ID", "caller-supplied")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("X-Request-ID"); got != "caller-supplied" {
		t.Errorf("X-Request-ID = %q, want caller-supplied", got)
	}
}
