package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/idilsaglam/taskday/internal/bucket"
	"github.com/idilsaglam/taskday/internal/model"
	"github.com/idilsaglam/taskday/internal/persist"
	"github.com/idilsaglam/taskday/internal/store"
	"github.com/idilsaglam/taskday/internal/suggest"
	"github.com/idilsaglam/taskday/internal/testutil"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, sg suggest.Suggester) (*httptest.Server, *store.Store, *testutil.MemSlot) {
	t.Helper()
	return newTestServerAt(t, sg, now)
}

func newTestServerAt(t *testing.T, sg suggest.Suggester, at time.Time) (*httptest.Server, *store.Store, *testutil.MemSlot) {
	t.Helper()
	ms := testutil.NewMemSlot()
	adapter := persist.New(ms, persist.Options{})
	st := store.Open(context.Background(), adapter, adapter)
	srv := New(Options{
		Store:     st,
		Suggester: sg,
		Now:       func() time.Time { return at },
		Version:   "test",
		Registry:  prometheus.NewRegistry(),
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, st, ms
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestTaskLifecycle(t *testing.T) {
	ts, st, ms := newTestServer(t, nil)

	resp := do(t, http.MethodPost, ts.URL+"/api/tasks", map[string]string{
		"summary":     "Plan team meeting",
		"description": "Book a room",
		"dueDate":     "2024-03-10",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	var created model.Task
	decode(t, resp, &created)
	if created.ID == "" || created.Completed {
		t.Fatalf("created = %+v", created)
	}
	if ms.Raw("tasks") == nil {
		t.Fatal("create did not persist")
	}

	var b bucket.Buckets
	decode(t, do(t, http.MethodGet, ts.URL+"/api/tasks", nil), &b)
	if len(b.Today) != 1 || b.Today[0].ID != created.ID {
		t.Fatalf("today = %+v", b.Today)
	}

	resp = do(t, http.MethodPost, ts.URL+"/api/tasks/"+created.ID+"/toggle", nil)
	var toggled model.Task
	decode(t, resp, &toggled)
	if !toggled.Completed {
		t.Fatal("toggle did not complete the task")
	}

	resp = do(t, http.MethodPut, ts.URL+"/api/tasks/"+created.ID, map[string]string{
		"summary":     "Plan offsite",
		"description": "Pick a venue",
		"dueDate":     "2024-03-20T09:00:00Z",
	})
	var updated model.Task
	decode(t, resp, &updated)
	if updated.Summary != "Plan offsite" || !updated.Completed || updated.ID != created.ID {
		t.Fatalf("updated = %+v", updated)
	}

	resp = do(t, http.MethodDelete, ts.URL+"/api/tasks/"+created.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	if st.Len() != 0 {
		t.Fatalf("store still has %d tasks", st.Len())
	}
	if got := string(ms.Raw("tasks")); got != "[]" {
		t.Fatalf("slot after delete = %q", got)
	}

	resp = do(t, http.MethodGet, ts.URL+"/api/tasks?flat=1", nil)
	var flat []model.Task
	decode(t, resp, &flat)
	if flat == nil || len(flat) != 0 {
		t.Fatalf("flat = %#v, want empty array", flat)
	}
}

func TestPlainDateIsTodayInServerZone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		ny = time.FixedZone("EST", -5*3600)
	}
	ts, st, _ := newTestServerAt(t, nil, time.Date(2024, 3, 10, 12, 0, 0, 0, ny))

	resp := do(t, http.MethodPost, ts.URL+"/api/tasks", map[string]string{
		"summary":     "Water plants",
		"description": "Balcony",
		"dueDate":     "2024-03-10",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}

	var b bucket.Buckets
	decode(t, do(t, http.MethodGet, ts.URL+"/api/tasks", nil), &b)
	if len(b.Today) != 1 || len(b.Overdue) != 0 {
		t.Fatalf("today = %+v, overdue = %+v", b.Today, b.Overdue)
	}
	if got, want := st.All()[0].DueDate, time.Date(2024, 3, 10, 0, 0, 0, 0, ny); !got.Equal(want) {
		t.Errorf("due = %v, want %v", got, want)
	}
}

func TestErrorStatuses(t *testing.T) {
	ts, _, _ := newTestServer(t, nil)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"get unknown", http.MethodGet, "/api/tasks/nope", nil, http.StatusNotFound},
		{"toggle unknown", http.MethodPost, "/api/tasks/nope/toggle", nil, http.StatusNotFound},
		{"delete unknown", http.MethodDelete, "/api/tasks/nope", nil, http.StatusNotFound},
		{"update unknown", http.MethodPut, "/api/tasks/nope",
			map[string]string{"summary": "a", "description": "b", "dueDate": "2024-03-10"}, http.StatusNotFound},
		{"blank summary", http.MethodPost, "/api/tasks",
			map[string]string{"summary": " ", "description": "b", "dueDate": "2024-03-10"}, http.StatusBadRequest},
		{"missing due", http.MethodPost, "/api/tasks",
			map[string]string{"summary": "a", "description": "b"}, http.StatusBadRequest},
		{"bad due", http.MethodPost, "/api/tasks",
			map[string]string{"summary": "a", "description": "b", "dueDate": "soon"}, http.StatusBadRequest},
		{"empty summary suggestion", http.MethodPost, "/api/suggest",
			map[string]string{"taskSummary": ""}, http.StatusBadRequest},
		{"unavailable suggester", http.MethodPost, "/api/suggest",
			map[string]string{"taskSummary": "Plan"}, http.StatusServiceUnavailable},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			resp := do(t, c.method, ts.URL+c.path, c.body)
			if resp.StatusCode != c.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, c.want)
			}
		})
	}
}

func TestSuggest(t *testing.T) {
	sg := suggest.Func(func(_ context.Context, summary string) (string, error) {
		return "Details for " + summary, nil
	})
	ts, _, _ := newTestServer(t, sg)

	resp := do(t, http.MethodPost, ts.URL+"/api/suggest", map[string]string{"taskSummary": "  Plan meeting "})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out suggest.Response
	decode(t, resp, &out)
	if out.SuggestedDescription != "Details for Plan meeting" {
		t.Fatalf("suggestion = %q", out.SuggestedDescription)
	}
}

func TestSuggestBackendError(t *testing.T) {
	sg := suggest.Func(func(context.Context, string) (string, error) {
		return "", errors.New("quota exceeded")
	})
	ts, _, _ := newTestServer(t, sg)
	resp := do(t, http.MethodPost, ts.URL+"/api/suggest", map[string]string{"taskSummary": "Plan"})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestMetricsAndHealth(t *testing.T) {
	ts, _, _ := newTestServer(t, nil)

	resp := do(t, http.MethodGet, ts.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}
	do(t, http.MethodGet, ts.URL+"/api/tasks/nope", nil)
	do(t, http.MethodPost, ts.URL+"/api/suggest", map[string]string{"taskSummary": "x"})

	resp = do(t, http.MethodGet, ts.URL+"/metrics", nil)
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	body := buf.String()
	for _, want := range []string{
		`taskday_http_requests_total{method="GET",route="/api/tasks/:id",status="404"} 1`,
		`taskday_http_requests_total{method="GET",route="/healthz",status="200"} 1`,
		`taskday_suggestions_total{outcome="failed"} 1`,
		"taskday_http_request_duration_seconds_bucket",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}
