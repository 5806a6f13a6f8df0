package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/timmy/docmill/internal/domain"
	"github.com/timmy/docmill/internal/remote"
)

func TestRemoteIngestUpload(t *testing.T) {
	env := newTestEnv()
	config := domain.RemoteConfig{"urls": []string{"https://example.com/docs"}}

	base := t.TempDir()
	rec := &progressRecorder{}
	result, err := env.worker.RemoteIngest(context.Background(), RemoteParams{
		Config:    config,
		JobName:   "remote1",
		User:      "u1",
		Loader:    "mock",
		Directory: base,
	}, rec.progress())
	if err != nil {
		t.Fatalf("RemoteIngest: %v", err)
	}

	if env.sink.calls() != 1 {
		t.Fatalf("expected one sink store, got %d", env.sink.calls())
	}
	// The embedded set is the loader's documents, untouched by the chunk pass.
	docs := env.sink.docSets[0]
	if len(docs) != 2 || docs[0].Text != "first remote document" {
		t.Errorf("unexpected embedded documents: %v", docs)
	}
	if _, err := uuid.Parse(env.sink.indexIDs[0]); err != nil {
		t.Errorf("upload mode must mint a valid identifier, got %q", env.sink.indexIDs[0])
	}

	if len(env.upstream.uploads) != 1 {
		t.Fatalf("expected one upload, got %d", len(env.upstream.uploads))
	}
	payload := env.upstream.uploads[0]
	if payload.Kind != "mock" {
		t.Errorf("payload kind = %q, want loader tag", payload.Kind)
	}
	if payload.SyncFrequency != domain.SyncNever {
		t.Errorf("payload sync frequency = %q, want %q", payload.SyncFrequency, domain.SyncNever)
	}
	if payload.RemoteConfig == nil {
		t.Error("payload is missing the remote configuration")
	}
	if payload.Tokens != 6 {
		t.Errorf("payload tokens = %d, want 6", payload.Tokens)
	}

	if result.Limited {
		t.Error("limited flag must always be false")
	}
	if !rec.saw(1) || !rec.saw(100) {
		t.Errorf("expected progress checkpoints 1 and 100, got %v", rec.percents)
	}

	assertGone(t, workDir(base, "u1", "remote1"))
}

func TestRemoteIngestSyncReusesID(t *testing.T) {
	env := newTestEnv()
	docID := uuid.New().String()

	base := t.TempDir()
	_, err := env.worker.RemoteIngest(context.Background(), RemoteParams{
		Config:    domain.RemoteConfig{},
		JobName:   "resync",
		User:      "u1",
		Loader:    "mock",
		Directory: base,
		Mode:      ModeSync,
		DocID:     docID,
	}, nil)
	if err != nil {
		t.Fatalf("RemoteIngest: %v", err)
	}

	if env.sink.calls() != 1 || env.sink.indexIDs[0] != docID {
		t.Errorf("sync mode must reuse the supplied identifier, stored %v", env.sink.indexIDs)
	}
}

func TestRemoteIngestSyncInvalidID(t *testing.T) {
	testCases := []struct {
		name  string
		docID string
	}{
		{name: "missing", docID: ""},
		{name: "malformed", docID: "not-an-identifier"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv()
			base := t.TempDir()
			_, err := env.worker.RemoteIngest(context.Background(), RemoteParams{
				Config:    domain.RemoteConfig{},
				JobName:   "resync",
				User:      "u1",
				Loader:    "mock",
				Directory: base,
				Mode:      ModeSync,
				DocID:     tc.docID,
			}, nil)
			if !errors.Is(err, ErrInvalidSyncID) {
				t.Fatalf("expected ErrInvalidSyncID, got %v", err)
			}

			// Validation happens before any embedding work.
			if env.sink.calls() != 0 {
				t.Error("sink must not be reached with an invalid identifier")
			}
			if len(env.upstream.uploads) != 0 {
				t.Error("no completion payload may be submitted")
			}
			assertGone(t, workDir(base, "u1", "resync"))
		})
	}
}

func TestRemoteIngestUnknownLoader(t *testing.T) {
	env := newTestEnv()
	base := t.TempDir()
	_, err := env.worker.RemoteIngest(context.Background(), RemoteParams{
		Config:    domain.RemoteConfig{},
		JobName:   "job",
		User:      "u1",
		Loader:    "confluence",
		Directory: base,
	}, nil)
	if !errors.Is(err, remote.ErrUnknownLoader) {
		t.Fatalf("expected ErrUnknownLoader, got %v", err)
	}
	if env.sink.calls() != 0 {
		t.Error("sink must not be reached for an unknown loader tag")
	}
	assertGone(t, workDir(base, "u1", "job"))
}

func TestRemoteIngestLoaderFailure(t *testing.T) {
	env := newTestEnv()
	base := t.TempDir()
	_, err := env.worker.RemoteIngest(context.Background(), RemoteParams{
		Config:    domain.RemoteConfig{"fail": true},
		JobName:   "job",
		User:      "u1",
		Loader:    "mock",
		Directory: base,
	}, nil)
	if err == nil {
		t.Fatal("expected the loader failure to surface")
	}
	if env.sink.calls() != 0 {
		t.Error("sink must not be reached after a loader failure")
	}
	assertGone(t, workDir(base, "u1", "job"))
}
