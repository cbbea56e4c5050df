package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "llama3.2:3b", "be terse")
	if !c.IsAvailable(context.Background()) {
		t.Error("expected server to report available")
	}
}

func TestIsAvailableFalseOnUnreachable(t *testing.T) {
	c := New("http://127.0.0.1:1", "llama3.2:3b", "")
	if c.IsAvailable(context.Background()) {
		t.Error("expected unreachable daemon to report unavailable")
	}
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(tagsResponse{Models: []struct {
			Name string `json:"name"`
		}{{Name: "llama3.2:3b"}, {Name: "qwen2.5:7b"}}})
	}))
	defer srv.Close()

	c := New(srv.URL, "", "")
	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 2 || models[0] != "llama3.2:3b" || models[1] != "qwen2.5:7b" {
		t.Errorf("unexpected models: %v", models)
	}
}

func TestGenerateSanitizesReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(chatResponse{Message: chatMessage{
			Role:    "assistant",
			Content: "**Hello**   there,\n- item one\n- item two",
		}})
	}))
	defer srv.Close()

	c := New(srv.URL, "llama3.2:3b", "system prompt")
	out, err := c.Generate(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := "Hello there,\nitem one\nitem two"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestGeneratePropagatesNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	c := New(srv.URL, "llama3.2:3b", "")
	if _, err := c.Generate(context.Background(), "hi"); err == nil {
		t.Error("expected error on non-200 status")
	}
}

func TestLoadAndUnloadModelSendKeepAlive(t *testing.T) {
	var gotKeepAlive []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		json.NewDecoder(r.Body).Decode(&req)
		gotKeepAlive = append(gotKeepAlive, req.KeepAlive)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "llama3.2:3b", "")
	if err := c.LoadModel(context.Background(), "llama3.2:3b"); err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	if err := c.UnloadModel(context.Background()); err != nil {
		t.Fatalf("UnloadModel: %v", err)
	}
	if len(gotKeepAlive) != 2 || gotKeepAlive[0] != "-1" || gotKeepAlive[1] != "0" {
		t.Errorf("unexpected keep_alive sequence: %v", gotKeepAlive)
	}
}

func TestSanitizeStripsCodeFencesAndTypography(t *testing.T) {
	in := "```go\nfmt.Println()\n```\nSo “quoted” text — with an em dash."
	out := sanitize(in)
	want := "So \"quoted\" text - with an em dash."
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}
