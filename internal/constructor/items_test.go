package constructor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kapu/contentful-constructor-go/internal/domain"
	"go.uber.org/zap"
)

func patchPayload() PatchPayload {
	return PatchPayload{Items: []*domain.CatalogItem{
		{ID: "tip-1", Name: "Tip One", Data: &domain.ItemData{ContentType: domain.ItemTypeTechTip}},
	}}
}

func TestPatchItemsRetriesOnRateLimit(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", r.Method)
		}
		if attempts < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"task_id":"task-9"}`))
	}))
	defer srv.Close()

	var slept []time.Duration
	client := NewClient(zap.NewNop()).WithBaseURL(srv.URL)
	client.sleep = func(d time.Duration) { slept = append(slept, d) }

	result, err := client.PatchItems(context.Background(), patchPayload(), PatchOptions{Credentials: testCreds()})
	if err != nil {
		t.Fatalf("PatchItems failed: %v", err)
	}

	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if result.TaskID != "task-9" {
		t.Errorf("task id = %q, want task-9", result.TaskID)
	}
	want := []time.Duration{300 * time.Millisecond, 1200 * time.Millisecond}
	if len(slept) != len(want) {
		t.Fatalf("backoff sleeps = %v, want %v", slept, want)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Errorf("sleep[%d] = %v, want %v", i, slept[i], want[i])
		}
	}
}

func TestPatchItemsFailsFastOnClientError(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"unknown field"}`))
	}))
	defer srv.Close()

	var slept []time.Duration
	client := NewClient(zap.NewNop()).WithBaseURL(srv.URL)
	client.sleep = func(d time.Duration) { slept = append(slept, d) }

	if _, err := client.PatchItems(context.Background(), patchPayload(), PatchOptions{Credentials: testCreds()}); err == nil {
		t.Fatal("expected patch to fail")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if len(slept) != 0 {
		t.Errorf("unexpected backoff sleeps: %v", slept)
	}
}

func TestPatchItemsGivesUpAfterMaxAttempts(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(zap.NewNop()).WithBaseURL(srv.URL)
	client.sleep = func(time.Duration) {}

	if _, err := client.PatchItems(context.Background(), patchPayload(), PatchOptions{Credentials: testCreds()}); err == nil {
		t.Fatal("expected patch to fail")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestPatchItemsRejectsEmptyPayload(t *testing.T) {
	client := NewClient(zap.NewNop())
	if _, err := client.PatchItems(context.Background(), PatchPayload{}, PatchOptions{Credentials: testCreds()}); err == nil {
		t.Fatal("expected validation error for empty payload")
	}
}

func TestPollTaskUntilCompleted(t *testing.T) {
	polls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		polls++
		if r.URL.Path != "/v1/tasks/task-5" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		if polls < 3 {
			_, _ = w.Write([]byte(`{"status":"in_progress"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"completed"}`))
	}))
	defer srv.Close()

	client := NewClient(zap.NewNop()).WithBaseURL(srv.URL)

	body, err := client.PollTask(context.Background(), "task-5", testCreds(), time.Millisecond)
	if err != nil {
		t.Fatalf("PollTask failed: %v", err)
	}
	if got := TaskStatus(body); got != TaskStatusCompleted {
		t.Errorf("status = %q, want %q", got, TaskStatusCompleted)
	}
	if polls != 3 {
		t.Errorf("polls = %d, want 3", polls)
	}
}

func TestPollTaskHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"in_progress"}`))
	}))
	defer srv.Close()

	client := NewClient(zap.NewNop()).WithBaseURL(srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := client.PollTask(ctx, "task-5", testCreds(), 5*time.Millisecond); err == nil {
		t.Fatal("expected poll to abort on context expiry")
	}
}
