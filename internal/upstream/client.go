// Package upstream is the client for the API that owns file custody and
// source lifecycle: the worker downloads uploaded files from it and submits
// completion payloads (plus index artifacts for file-backed stores) back.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/docmill/internal/domain"
)

const (
	downloadPath    = "/api/download"
	uploadIndexPath = "/api/upload_index"
)

// StoreKindLocal marks the file-backed vector store; upload-index requests
// then additionally stream the two index artifacts from the working directory.
const StoreKindLocal = "local"

// Client talks to the upstream API. A non-2xx response on either endpoint is
// a fatal transport error; there is no retry beyond the single attempt.
type Client struct {
	client    *resty.Client
	storeKind string
}

// Config holds upstream client configuration.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	StoreKind string
}

// NewClient creates an upstream API client.
func NewClient(cfg *Config) *Client {
	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &Client{
		client:    client,
		storeKind: cfg.StoreKind,
	}
}

// DownloadFile fetches the named uploaded file into destPath.
func (c *Client) DownloadFile(ctx context.Context, jobName, filename, user, destPath string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"name": jobName,
			"file": filename,
			"user": user,
		}).
		Get(downloadPath)
	if err != nil {
		return fmt.Errorf("error downloading file: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("error downloading file: status %s", resp.Status())
	}

	if err := os.WriteFile(destPath, resp.Body(), 0644); err != nil {
		return fmt.Errorf("error writing downloaded file: %w", err)
	}
	return nil
}

// UploadIndex submits the completion payload. When the configured store kind
// is file-backed, the two index artifacts are streamed from workDir alongside
// the form fields.
func (c *Client) UploadIndex(ctx context.Context, workDir string, payload domain.IndexPayload) error {
	req := c.client.R().
		SetContext(ctx).
		SetFormData(payloadForm(payload))

	if c.storeKind == StoreKindLocal {
		req.SetFile("file_index", filepath.Join(workDir, domain.IndexVectorsFile))
		req.SetFile("file_meta", filepath.Join(workDir, domain.IndexMetaFile))
	}

	resp, err := req.Post(uploadIndexPath)
	if err != nil {
		return fmt.Errorf("error uploading index: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("error uploading index: status %s", resp.Status())
	}
	return nil
}

func payloadForm(payload domain.IndexPayload) map[string]string {
	form := map[string]string{
		"name":      payload.Name,
		"user":      payload.User,
		"tokens":    strconv.Itoa(payload.Tokens),
		"retriever": payload.Retriever,
		"id":        payload.ID,
		"type":      payload.Kind,
	}
	if payload.File != "" {
		form["file"] = payload.File
	}
	if payload.RemoteConfig != nil {
		data, err := json.Marshal(payload.RemoteConfig)
		if err == nil {
			form["remote_data"] = string(data)
		}
	}
	if payload.SyncFrequency != "" {
		form["sync_frequency"] = payload.SyncFrequency
	}
	return form
}
