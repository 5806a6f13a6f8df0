package domain

// File-backed index artifact names, written into the job working directory by
// the local vector store and streamed to the upstream upload-index endpoint.
const (
	IndexVectorsFile = "index.vec"
	IndexMetaFile    = "index.meta"
)

// IndexPayload is the completion payload submitted to the upstream
// upload-index endpoint after a successful ingestion. Kind-specific extras
// (remote config, sync frequency) are set only by the remote flow.
type IndexPayload struct {
	Name          string       `json:"name"`
	File          string       `json:"file,omitempty"`
	User          string       `json:"user"`
	Tokens        int          `json:"tokens"`
	Retriever     string       `json:"retriever"`
	ID            string       `json:"id"`
	Kind          string       `json:"type"`
	RemoteConfig  RemoteConfig `json:"remote_data,omitempty"`
	SyncFrequency string       `json:"sync_frequency,omitempty"`
}

// IngestResult summarizes a completed local upload ingestion.
// Limited is reserved for future quota signaling and is always false.
type IngestResult struct {
	Directory string   `json:"directory"`
	Formats   []string `json:"formats"`
	JobName   string   `json:"name_job"`
	Filename  string   `json:"filename"`
	User      string   `json:"user"`
	Limited   bool     `json:"limited"`
}

// RemoteResult summarizes a completed remote ingestion.
type RemoteResult struct {
	Config  RemoteConfig `json:"urls"`
	JobName string       `json:"name_job"`
	User    string       `json:"user"`
	Limited bool         `json:"limited"`
}

// SyncStats aggregates the outcome of one scheduled re-sync batch.
type SyncStats struct {
	TotalSyncCount int `json:"total_sync_count"`
	SyncSuccess    int `json:"sync_success"`
	SyncFailure    int `json:"sync_failure"`
}

// AttachmentResult is the outcome of an attachment job. Attachment processing
// never raises to its caller: failures are reported through the Error field.
type AttachmentResult struct {
	AttachmentID string `json:"attachment_id,omitempty"`
	Filename     string `json:"filename,omitempty"`
	Folder       string `json:"folder,omitempty"`
	Path         string `json:"path,omitempty"`
	TokenCount   int    `json:"token_count,omitempty"`
	Error        string `json:"error,omitempty"`
}

// OK reports whether the attachment job succeeded.
func (r AttachmentResult) OK() bool {
	return r.Error == ""
}
