package worker

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/timmy/docmill/internal/domain"
	"github.com/timmy/docmill/internal/remote"
)

// wordCounter keeps token counts deterministic and offline.
func wordCounter(text string) int {
	return len(strings.Fields(text))
}

type fakeUpstream struct {
	mu          sync.Mutex
	content     map[string][]byte // filename to downloaded bytes
	downloadErr error
	uploadErr   error
	downloads   []string
	uploads     []domain.IndexPayload
}

func (f *fakeUpstream) DownloadFile(ctx context.Context, jobName, filename, user, destPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.downloadErr != nil {
		return f.downloadErr
	}
	f.downloads = append(f.downloads, filename)
	data, ok := f.content[filename]
	if !ok {
		data = []byte("downloaded file content")
	}
	return os.WriteFile(destPath, data, 0644)
}

func (f *fakeUpstream) UploadIndex(ctx context.Context, workDir string, payload domain.IndexPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads = append(f.uploads, payload)
	return nil
}

type fakeSink struct {
	mu       sync.Mutex
	err      error
	indexIDs []string
	docSets  [][]domain.Document
	workDirs []string
}

func (f *fakeSink) Store(ctx context.Context, docs []domain.Document, workDir, indexID, user string, report func(percent int)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.indexIDs = append(f.indexIDs, indexID)
	f.docSets = append(f.docSets, docs)
	f.workDirs = append(f.workDirs, workDir)
	return nil
}

func (f *fakeSink) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.indexIDs)
}

type fakeSources struct {
	sources []domain.Source
	err     error
}

func (f *fakeSources) List(ctx context.Context) ([]domain.Source, error) {
	return f.sources, f.err
}

type fakeAttachments struct {
	mu      sync.Mutex
	err     error
	created []*domain.Attachment
}

func (f *fakeAttachments) Create(ctx context.Context, att *domain.Attachment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, att)
	return nil
}

// recordingLoader serves canned documents and fails on demand via the
// "fail" config key.
type recordingLoader struct {
	mu    sync.Mutex
	loads []domain.RemoteConfig
}

func (l *recordingLoader) Load(ctx context.Context, config domain.RemoteConfig) ([]domain.Document, error) {
	l.mu.Lock()
	l.loads = append(l.loads, config)
	l.mu.Unlock()
	if fail, ok := config["fail"].(bool); ok && fail {
		return nil, errors.New("remote source unreachable")
	}
	return []domain.Document{
		{Text: "first remote document", Metadata: domain.Metadata{"title": "one"}},
		{Text: "second remote document", Metadata: domain.Metadata{"title": "two"}},
	}, nil
}

func (l *recordingLoader) loadCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.loads)
}

type testEnv struct {
	worker      *Worker
	upstream    *fakeUpstream
	sink        *fakeSink
	sources     *fakeSources
	attachments *fakeAttachments
	loader      *recordingLoader
	registry    *remote.Registry
}

func newTestEnv() *testEnv {
	env := &testEnv{
		upstream:    &fakeUpstream{content: make(map[string][]byte)},
		sink:        &fakeSink{},
		sources:     &fakeSources{},
		attachments: &fakeAttachments{},
		loader:      &recordingLoader{},
		registry:    remote.NewRegistry(),
	}
	env.registry.Register("mock", func() remote.Loader { return env.loader })
	env.worker = New(Deps{
		Upstream:     env.upstream,
		Registry:     env.registry,
		Sink:         env.sink,
		Sources:      env.sources,
		Attachments:  env.attachments,
		TokenCounter: wordCounter,
	})
	return env
}

// progressRecorder collects reported percentages.
type progressRecorder struct {
	mu       sync.Mutex
	percents []int
}

func (r *progressRecorder) progress() Progress {
	return func(percent int) {
		r.mu.Lock()
		r.percents = append(r.percents, percent)
		r.mu.Unlock()
	}
}

func (r *progressRecorder) saw(percent int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.percents {
		if p == percent {
			return true
		}
	}
	return false
}

func zipBytes(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := f.Write(content); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func assertGone(t *testing.T, dir string) {
	t.Helper()
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("working directory %s should have been removed (err=%v)", dir, err)
	}
}
