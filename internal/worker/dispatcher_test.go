package worker

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/timmy/docmill/internal/domain"
)

func awaitJob(t *testing.T, d *Dispatcher, id string) JobState {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		state, ok := d.Job(id)
		if !ok {
			t.Fatalf("job %s not tracked", id)
		}
		if state.Status == JobStatusCompleted || state.Status == JobStatusFailed {
			return state
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish in time", id)
	return JobState{}
}

func TestDispatcherAttachmentJob(t *testing.T) {
	env := newTestEnv()
	d, err := NewDispatcher(env.worker, 2, nil)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	defer d.Close()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.md"), []byte("attachment body"), 0644); err != nil {
		t.Fatalf("write attachment: %v", err)
	}

	id, err := d.SubmitAttachment(AttachmentParams{
		Directory: dir,
		Folder:    "f",
		Filename:  "a.md",
		User:      "u1",
	})
	if err != nil {
		t.Fatalf("SubmitAttachment: %v", err)
	}

	state := awaitJob(t, d, id)
	if state.Status != JobStatusCompleted {
		t.Fatalf("status = %s, want completed (error: %s)", state.Status, state.Error)
	}
	if state.Kind != JobAttachment {
		t.Errorf("kind = %s, want attachment", state.Kind)
	}
	if state.Progress != 100 {
		t.Errorf("progress = %d, want 100", state.Progress)
	}
	result, ok := state.Result.(domain.AttachmentResult)
	if !ok {
		t.Fatalf("result type %T, want AttachmentResult", state.Result)
	}
	if !result.OK() {
		t.Errorf("unexpected attachment error: %q", result.Error)
	}
}

func TestDispatcherFailedJob(t *testing.T) {
	env := newTestEnv()
	d, err := NewDispatcher(env.worker, 1, nil)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	defer d.Close()

	id, err := d.SubmitRemote(RemoteParams{
		Config:    domain.RemoteConfig{},
		JobName:   "job",
		User:      "u1",
		Loader:    "unregistered",
		Directory: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("SubmitRemote: %v", err)
	}

	state := awaitJob(t, d, id)
	if state.Status != JobStatusFailed {
		t.Fatalf("status = %s, want failed", state.Status)
	}
	if state.Error == "" {
		t.Error("a failed job must carry its error message")
	}
}

func TestDispatcherSyncStats(t *testing.T) {
	env := newTestEnv()
	d, err := NewDispatcher(env.worker, 1, nil)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	defer d.Close()

	id, err := d.SubmitSync(domain.SyncDaily, t.TempDir())
	if err != nil {
		t.Fatalf("SubmitSync: %v", err)
	}

	state := awaitJob(t, d, id)
	if state.Status != JobStatusCompleted {
		t.Fatalf("status = %s, want completed (error: %s)", state.Status, state.Error)
	}
	stats, ok := SyncStatsOf(state)
	if !ok {
		t.Fatalf("result type %T, want SyncStats", state.Result)
	}
	if stats.TotalSyncCount != 0 {
		t.Errorf("expected an empty batch, got %+v", stats)
	}
}

func TestDispatcherUnknownJob(t *testing.T) {
	env := newTestEnv()
	d, err := NewDispatcher(env.worker, 1, nil)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	defer d.Close()

	if _, ok := d.Job("nope"); ok {
		t.Error("unknown job id must not resolve")
	}
}
