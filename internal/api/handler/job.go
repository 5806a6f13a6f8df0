package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/docmill/internal/domain"
	"github.com/timmy/docmill/internal/logger"
	"github.com/timmy/docmill/internal/worker"
)

// JobHandler submits jobs to the dispatcher and exposes their state.
type JobHandler struct {
	dispatcher *worker.Dispatcher
	logger     *logger.Logger
}

// NewJobHandler creates a new job handler.
func NewJobHandler(dispatcher *worker.Dispatcher, log *logger.Logger) *JobHandler {
	return &JobHandler{dispatcher: dispatcher, logger: log}
}

// IngestRequest represents a local upload ingestion request.
type IngestRequest struct {
	Directory string   `json:"directory"`
	Formats   []string `json:"formats"`
	JobName   string   `json:"name_job" binding:"required"`
	Filename  string   `json:"filename" binding:"required"`
	User      string   `json:"user" binding:"required"`
	Retriever string   `json:"retriever"`
}

// RemoteRequest represents a remote ingestion request.
type RemoteRequest struct {
	Config        domain.RemoteConfig `json:"source_data" binding:"required"`
	JobName       string              `json:"name_job" binding:"required"`
	User          string              `json:"user" binding:"required"`
	Loader        string              `json:"loader" binding:"required"`
	Directory     string              `json:"directory"`
	Retriever     string              `json:"retriever"`
	SyncFrequency string              `json:"sync_frequency"`
	Mode          string              `json:"operation_mode"`
	DocID         string              `json:"doc_id"`
}

// SyncRequest represents a sync batch request.
type SyncRequest struct {
	Frequency string `json:"frequency" binding:"required"`
	Directory string `json:"directory"`
}

// AttachmentRequest represents an attachment processing request.
type AttachmentRequest struct {
	Directory string `json:"directory" binding:"required"`
	Folder    string `json:"folder" binding:"required"`
	Filename  string `json:"filename" binding:"required"`
	User      string `json:"user" binding:"required"`
}

type submitResponse struct {
	JobID string `json:"job_id"`
}

// Ingest queues a local upload ingestion job.
func (h *JobHandler) Ingest(c *gin.Context) {
	var req IngestRequest
	if !h.bind(c, &req) {
		return
	}
	if req.Directory == "" {
		req.Directory = "temp"
	}

	id, err := h.dispatcher.SubmitIngest(worker.IngestParams{
		Directory: req.Directory,
		Formats:   req.Formats,
		JobName:   req.JobName,
		Filename:  req.Filename,
		User:      req.User,
		Retriever: req.Retriever,
	})
	h.submitted(c, id, err)
}

// Remote queues a remote ingestion job.
func (h *JobHandler) Remote(c *gin.Context) {
	var req RemoteRequest
	if !h.bind(c, &req) {
		return
	}

	id, err := h.dispatcher.SubmitRemote(worker.RemoteParams{
		Config:        req.Config,
		JobName:       req.JobName,
		User:          req.User,
		Loader:        req.Loader,
		Directory:     req.Directory,
		Retriever:     req.Retriever,
		SyncFrequency: req.SyncFrequency,
		Mode:          req.Mode,
		DocID:         req.DocID,
	})
	h.submitted(c, id, err)
}

// Sync queues a re-sync batch for one frequency.
func (h *JobHandler) Sync(c *gin.Context) {
	var req SyncRequest
	if !h.bind(c, &req) {
		return
	}
	if req.Directory == "" {
		req.Directory = "temp"
	}

	id, err := h.dispatcher.SubmitSync(req.Frequency, req.Directory)
	h.submitted(c, id, err)
}

// Attachment queues an attachment job.
func (h *JobHandler) Attachment(c *gin.Context) {
	var req AttachmentRequest
	if !h.bind(c, &req) {
		return
	}

	id, err := h.dispatcher.SubmitAttachment(worker.AttachmentParams{
		Directory: req.Directory,
		Folder:    req.Folder,
		Filename:  req.Filename,
		User:      req.User,
	})
	h.submitted(c, id, err)
}

// Job returns the state of one dispatched job.
func (h *JobHandler) Job(c *gin.Context) {
	state, ok := h.dispatcher.Job(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, state)
}

// Jobs returns the state of all tracked jobs.
func (h *JobHandler) Jobs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": h.dispatcher.Jobs()})
}

func (h *JobHandler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func (h *JobHandler) submitted(c *gin.Context, id string, err error) {
	if err != nil {
		h.logger.WithError(err).Error("Failed to submit job")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, submitResponse{JobID: id})
}
