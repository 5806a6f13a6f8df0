package remote

import (
	"context"
	"errors"
	"testing"

	"github.com/timmy/docmill/internal/domain"
)

type staticLoader struct{}

func (staticLoader) Load(ctx context.Context, config domain.RemoteConfig) ([]domain.Document, error) {
	return []domain.Document{{Text: "static"}}, nil
}

func TestRegistryBuiltins(t *testing.T) {
	r := NewRegistry()
	for _, tag := range []string{"url", "github"} {
		loader, err := r.Create(tag)
		if err != nil {
			t.Errorf("Create(%q): %v", tag, err)
		}
		if loader == nil {
			t.Errorf("Create(%q) returned nil loader", tag)
		}
	}
}

func TestRegistryUnknownTag(t *testing.T) {
	r := NewRegistry()
	_, err := r.Create("confluence")
	if err == nil {
		t.Fatal("expected an error for an unregistered tag")
	}
	if !errors.Is(err, ErrUnknownLoader) {
		t.Errorf("expected ErrUnknownLoader, got %v", err)
	}
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	r.Register("static", func() Loader { return staticLoader{} })

	loader, err := r.Create("static")
	if err != nil {
		t.Fatalf("Create(static): %v", err)
	}
	docs, err := loader.Load(context.Background(), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(docs) != 1 || docs[0].Text != "static" {
		t.Errorf("unexpected documents: %v", docs)
	}

	tags := r.Tags()
	found := false
	for _, tag := range tags {
		if tag == "static" {
			found = true
		}
	}
	if !found {
		t.Errorf("Tags() missing registered tag: %v", tags)
	}
}
