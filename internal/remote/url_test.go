package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/timmy/docmill/internal/domain"
)

func TestConfigURLs(t *testing.T) {
	testCases := []struct {
		name    string
		config  domain.RemoteConfig
		want    []string
		wantErr bool
	}{
		{
			name:   "urls list",
			config: domain.RemoteConfig{"urls": []string{"https://a", "https://b"}},
			want:   []string{"https://a", "https://b"},
		},
		{
			name:   "urls from decoded json",
			config: domain.RemoteConfig{"urls": []interface{}{"https://a"}},
			want:   []string{"https://a"},
		},
		{
			name:   "single url",
			config: domain.RemoteConfig{"url": "https://a"},
			want:   []string{"https://a"},
		},
		{
			name:    "missing",
			config:  domain.RemoteConfig{},
			wantErr: true,
		},
		{
			name:    "wrong type",
			config:  domain.RemoteConfig{"urls": 42},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := configURLs(tc.config)
			if (err != nil) != tc.wantErr {
				t.Fatalf("configURLs error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil {
				return
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("url %d = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestHTMLToText(t *testing.T) {
	html := `<html><head><script>alert("x")</script><style>body{}</style></head>
<body><h1>Title</h1><p>First &amp; second.</p></body></html>`

	text := htmlToText(html)

	if strings.Contains(text, "<") || strings.Contains(text, "alert") || strings.Contains(text, "body{}") {
		t.Errorf("markup or script survived: %q", text)
	}
	if !strings.Contains(text, "Title") || !strings.Contains(text, "First & second.") {
		t.Errorf("content lost: %q", text)
	}
}

func TestURLLoaderLoad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>page content</p></body></html>"))
	}))
	defer srv.Close()

	docs, err := NewURLLoader().Load(context.Background(), domain.RemoteConfig{"url": srv.URL})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if !strings.Contains(docs[0].Text, "page content") {
		t.Errorf("unexpected text: %q", docs[0].Text)
	}
	if docs[0].Metadata.Title() != srv.URL {
		t.Errorf("expected url as title, got %q", docs[0].Metadata.Title())
	}
}

func TestURLLoaderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewURLLoader().Load(context.Background(), domain.RemoteConfig{"url": srv.URL})
	if err == nil {
		t.Fatal("expected an error for a non-2xx response")
	}
}
