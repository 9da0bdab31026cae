package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kapu/contentful-constructor-go/internal/app"
	"github.com/kapu/contentful-constructor-go/internal/config"
	"github.com/kapu/contentful-constructor-go/internal/contentful"
	"github.com/kapu/contentful-constructor-go/internal/constructor"
	"github.com/kapu/contentful-constructor-go/internal/indexer"
	"go.uber.org/zap"
)

type stubUploader struct {
	calls int
}

func (s *stubUploader) UploadCatalog(context.Context, string, constructor.Credentials) (*constructor.UploadResult, error) {
	s.calls++
	return &constructor.UploadResult{TaskID: "task-1", Response: map[string]any{}}, nil
}

func (s *stubUploader) PollTask(context.Context, string, constructor.Credentials, time.Duration) (map[string]any, error) {
	return map[string]any{"status": constructor.TaskStatusCompleted}, nil
}

func newTestServer(t *testing.T) (*Server, *stubUploader) {
	t.Helper()
	logger := zap.NewNop()

	cms := contentful.NewClient("space", "master", "token", logger)
	registry := indexer.NewRegistry(cms)

	uploader := &stubUploader{}
	orch, err := app.NewOrchestrator(&app.Dependencies{
		Registry: registry,
		Uploader: uploader,
		Credentials: config.ConstructorConfig{
			EN: config.LocaleCredentials{Key: "k", Token: "t", Section: "Content"},
			FR: config.LocaleCredentials{Key: "k", Token: "t", Section: "Content-FR"},
		},
		Indexing: config.IndexingConfig{PageSize: 50, StrictContentTypes: true},
		Logger:   logger,
	})
	if err != nil {
		t.Fatalf("NewOrchestrator failed: %v", err)
	}

	container := &app.Container{
		Config:       &config.Config{},
		Logger:       logger,
		Registry:     registry,
		Orchestrator: orch,
	}
	return New(":0", container, NewEventHub(logger)), uploader
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.httpServer.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Status       string   `json:"status"`
		ContentTypes []string `json:"content_types"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("bad health body: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q", body.Status)
	}
	if len(body.ContentTypes) != 3 {
		t.Errorf("content types = %v, want 3 entries", body.ContentTypes)
	}
}

func TestIndexRejectsMalformedBody(t *testing.T) {
	srv, uploader := newTestServer(t)
	ts := httptest.NewServer(srv.httpServer.Handler)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/v1/index", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if uploader.calls != 0 {
		t.Errorf("malformed body triggered %d uploads", uploader.calls)
	}
}

func TestIndexRejectsBlankContentType(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.httpServer.Handler)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/v1/index", "application/json", strings.NewReader(`{"contentTypeId":""}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestIndexUnsupportedTypeIsOK200(t *testing.T) {
	srv, uploader := newTestServer(t)
	ts := httptest.NewServer(srv.httpServer.Handler)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/v1/index", "application/json", strings.NewReader(`{"contentTypeId":"newsletter"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body app.RunResult
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body.Ok {
		t.Error("unsupported type reported ok")
	}
	if uploader.calls != 0 {
		t.Errorf("unsupported type triggered %d uploads", uploader.calls)
	}
}

func TestLastRunWithoutCache(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.httpServer.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/runs/techTip")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", resp.StatusCode)
	}
}
