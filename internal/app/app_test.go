package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/idilsaglam/taskday/internal/config"
	"github.com/idilsaglam/taskday/internal/model"
	"github.com/idilsaglam/taskday/internal/suggest"
	"github.com/idilsaglam/taskday/internal/testutil"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	// keep suggester setup off the network
	t.Setenv("TASKDAY_GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", filepath.Join(dir, "missing.json"))
	return &config.Config{
		DataDir: filepath.Join(dir, "data"),
		Dir:     filepath.Join(dir, "config"),
		Storage: config.StorageConfig{Backend: backend, Key: "tasks"},
	}
}

func TestOpenPersistsAcrossSessions(t *testing.T) {
	for _, backend := range []string{config.BackendFile, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t, backend)
			ctx := context.Background()
			due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

			first, err := Open(ctx, cfg)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			added, err := first.Store.Add(ctx, model.TaskData{Summary: "Pay rent", Description: "Transfer", DueDate: due})
			if err != nil {
				t.Fatal(err)
			}
			first.Close()

			second, err := Open(ctx, cfg)
			if err != nil {
				t.Fatal(err)
			}
			defer second.Close()
			got, ok := second.Store.Get(added.ID)
			if !ok || got.Summary != "Pay rent" || !got.DueDate.Equal(due) {
				t.Errorf("reloaded task = %+v, %v", got, ok)
			}
		})
	}
}

func TestNewWrapsSuggesterInGuard(t *testing.T) {
	cfg := testConfig(t, config.BackendFile)
	sg := suggest.Func(func(_ context.Context, s string) (string, error) { return "d:" + s, nil })

	a := New(context.Background(), cfg, testutil.NewMemSlot(), sg)
	if _, ok := a.Suggester.(*suggest.Guard); !ok {
		t.Errorf("Suggester = %T, want *suggest.Guard", a.Suggester)
	}
	got, err := a.Suggester.SuggestDescription(context.Background(), "x")
	if err != nil || got != "d:x" {
		t.Errorf("SuggestDescription() = %q, %v", got, err)
	}
}

func TestOpenSlotRejectsUnknownBackend(t *testing.T) {
	cfg := testConfig(t, "tape")
	if _, err := OpenSlot(context.Background(), cfg); err == nil {
		t.Error("expected error")
	}
}

func TestUnavailableSuggesterWithoutCredentials(t *testing.T) {
	t.Setenv("TASKDAY_GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", filepath.Join(t.TempDir(), "missing.json"))
	cfg := testConfig(t, config.BackendFile)

	sg := NewSuggester(context.Background(), cfg)
	if _, err := sg.SuggestDescription(context.Background(), "x"); !errors.Is(err, suggest.ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}
