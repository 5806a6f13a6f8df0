package remote

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"

	gh "github.com/google/go-github/v80/github"
	"github.com/timmy/docmill/internal/domain"
)

// githubMaxFileSize skips blobs larger than this; bulk binary content does
// not belong in a text index.
const githubMaxFileSize = 1024 * 1024

// githubTextExts are the file extensions fetched from a repository tree.
var githubTextExts = map[string]bool{
	".md": true, ".rst": true, ".txt": true, ".mdx": true,
}

// GitHubLoader fetches documentation files from a GitHub repository.
// Configuration: {"repo": "owner/name", "branch": "...", "token": "..."};
// branch defaults to the repository default branch, token is optional for
// public repositories.
type GitHubLoader struct {
	newClient func(token string) *gh.Client
}

// NewGitHubLoader creates a GitHubLoader.
func NewGitHubLoader() *GitHubLoader {
	return &GitHubLoader{
		newClient: func(token string) *gh.Client {
			client := gh.NewClient(nil)
			if token != "" {
				client = client.WithAuthToken(token)
			}
			return client
		},
	}
}

func (l *GitHubLoader) Load(ctx context.Context, config domain.RemoteConfig) ([]domain.Document, error) {
	repoSpec, _ := config["repo"].(string)
	owner, name, ok := strings.Cut(repoSpec, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("github loader config requires repo as owner/name, got %q", repoSpec)
	}
	token, _ := config["token"].(string)
	branch, _ := config["branch"].(string)

	client := l.newClient(token)

	if branch == "" {
		repo, _, err := client.Repositories.Get(ctx, owner, name)
		if err != nil {
			return nil, fmt.Errorf("error resolving repository %s: %w", repoSpec, err)
		}
		branch = repo.GetDefaultBranch()
	}

	tree, _, err := client.Git.GetTree(ctx, owner, name, branch, true)
	if err != nil {
		return nil, fmt.Errorf("error fetching tree for %s@%s: %w", repoSpec, branch, err)
	}

	var docs []domain.Document
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}
		entryPath := entry.GetPath()
		if !githubTextExts[strings.ToLower(path.Ext(entryPath))] {
			continue
		}
		if entry.GetSize() > githubMaxFileSize {
			continue
		}

		blob, _, err := client.Git.GetBlob(ctx, owner, name, entry.GetSHA())
		if err != nil {
			return nil, fmt.Errorf("error fetching blob %s: %w", entryPath, err)
		}
		content := blob.GetContent()
		if blob.GetEncoding() == "base64" {
			decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(content, "\n", ""))
			if err != nil {
				return nil, fmt.Errorf("error decoding blob %s: %w", entryPath, err)
			}
			content = string(decoded)
		}

		docs = append(docs, domain.Document{
			Text: content,
			Metadata: domain.Metadata{
				"title":  path.Base(entryPath),
				"source": fmt.Sprintf("https://github.com/%s/%s/blob/%s/%s", owner, name, branch, entryPath),
			},
		})
	}

	return docs, nil
}
