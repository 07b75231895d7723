package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/htmlgateway/internal/gateway"
	"github.com/GriffinCanCode/htmlgateway/internal/infrastructure/logging"
	"github.com/GriffinCanCode/htmlgateway/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/htmlgateway/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/htmlgateway/internal/shared/id"
)

// Response bodies shared by several endpoints.
const (
	MsgInternalError = "Internal Server Error"
	MsgInvalidCount  = "Invalid number of files. Please provide a valid number."
	MsgInvalidBody   = `Invalid request body. Expected JSON {"keyword": "...", "replacement": "..."}.`
	MsgTaskNotFound  = "Task not found"
	MsgShuttingDown  = "Server is shutting down"
)

// Handlers serves the gateway over HTTP.
type Handlers struct {
	gateway *gateway.Gateway
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewHandlers creates the handler set. metrics may be nil.
func NewHandlers(gw *gateway.Gateway, logger *logging.Logger, metrics *monitoring.Metrics) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		gateway: gw,
		logger:  logger.Named("http"),
		metrics: metrics,
	}
}

// UpdateRequest is the body of PUT /update-html.
type UpdateRequest struct {
	Keyword     string `json:"keyword" binding:"required"`
	Replacement string `json:"replacement"`
	Mode        string `json:"mode"`
}

// internalError logs err server-side and sends the generic 500 body.
func (h *Handlers) internalError(c *gin.Context, msg string, err error) {
	_ = c.Error(err)
	h.logger.Error(msg,
		zap.String("request_id", tracing.RequestID(c.Request.Context())),
		zap.Error(err),
	)
	c.String(http.StatusInternalServerError, MsgInternalError)
}

// html writes data with a sniffed content type.
func html(c *gin.Context, data []byte) {
	c.Data(http.StatusOK, mimetype.Detect(data).String(), data)
}

// Root serves the index page
func (h *Handlers) Root(c *gin.Context) {
	data, err := h.gateway.IndexPage(c.Request.Context())
	if err != nil {
		h.internalError(c, "Error reading index page", err)
		return
	}
	html(c, data)
}

// CountImgTags reports the <img> count of every HTML file
func (h *Handlers) CountImgTags(c *gin.Context) {
	counts, err := h.gateway.CountImageTags(c.Request.Context())
	if err != nil {
		h.internalError(c, "Error counting img tags", err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// GenerateBasicHTML writes the basic page and sends it back
func (h *Handlers) GenerateBasicHTML(c *gin.Context) {
	data, err := h.gateway.GenerateBasicPage(c.Request.Context())
	if err != nil {
		h.internalError(c, "Error writing file", err)
		return
	}
	html(c, data)
}

// GenerateMultipleHTML writes numberOfFiles numbered pages
func (h *Handlers) GenerateMultipleHTML(c *gin.Context) {
	n, err := gateway.ParseFileCount(c.Query("numberOfFiles"))
	if err != nil {
		c.String(http.StatusBadRequest, MsgInvalidCount)
		return
	}

	if err := h.gateway.GeneratePages(c.Request.Context(), n); err != nil {
		h.internalError(c, "Error writing numbered pages", err)
		return
	}
	c.String(http.StatusOK, fmt.Sprintf("%d HTML files generated successfully!", n))
}

// UpdateHTML replaces a keyword in the about page
func (h *Handlers) UpdateHTML(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, MsgInvalidBody)
		return
	}

	var mode gateway.ReplaceMode
	if req.Mode != "" {
		parsed, err := gateway.ParseReplaceMode(req.Mode)
		if err != nil {
			c.String(http.StatusBadRequest, fmt.Sprintf("Invalid mode %q. Use \"pattern\" or \"literal\".", req.Mode))
			return
		}
		mode = parsed
	}

	err := h.gateway.UpdateByKeyword(c.Request.Context(), req.Keyword, req.Replacement, mode)
	switch {
	case errors.Is(err, gateway.ErrInvalidPattern):
		c.String(http.StatusBadRequest, "Invalid keyword pattern: "+err.Error())
	case err != nil:
		h.internalError(c, "Error updating file", err)
	default:
		c.String(http.StatusOK, "File updated successfully.")
	}
}

// DeleteHTML removes the obsolete page
func (h *Handlers) DeleteHTML(c *gin.Context) {
	name, err := h.gateway.DeleteObsolete(c.Request.Context())
	if err != nil {
		h.internalError(c, "Error deleting file", err)
		return
	}
	c.String(http.StatusOK, fmt.Sprintf("File %s deleted successfully.", name))
}

// RenameSingleFile renames the about page
func (h *Handlers) RenameSingleFile(c *gin.Context) {
	if err := h.gateway.RenameSingle(c.Request.Context()); err != nil {
		h.internalError(c, "Error renaming file", err)
		return
	}
	c.String(http.StatusOK, "File renamed successfully.")
}

// RenameMultipleFiles starts a bulk rename. The response does not wait for
// the renames unless ?wait=true is given; per-file failures are never
// reported here.
func (h *Handlers) RenameMultipleFiles(c *gin.Context) {
	task, err := h.gateway.RenameAll(c.Request.Context())
	switch {
	case errors.Is(err, gateway.ErrClosed):
		c.String(http.StatusServiceUnavailable, MsgShuttingDown)
		return
	case err != nil:
		h.internalError(c, "Error reading directory", err)
		return
	}
	c.Header("X-Task-ID", task.ID.String())

	if wait, _ := strconv.ParseBool(c.Query("wait")); wait {
		if err := task.Wait(c.Request.Context()); err != nil {
			// Client went away; the task keeps running
			h.logger.Warn("Stopped waiting for rename task",
				zap.String("task_id", task.ID.String()),
				zap.Error(err),
			)
			return
		}
	}
	c.String(http.StatusOK, "Files renamed successfully.")
}

// RenameTask reports the progress of a bulk rename
func (h *Handlers) RenameTask(c *gin.Context) {
	taskID, err := id.ParseTaskID(c.Param("id"))
	if err != nil {
		c.String(http.StatusNotFound, MsgTaskNotFound)
		return
	}
	task, ok := h.gateway.Task(taskID)
	if !ok {
		c.String(http.StatusNotFound, MsgTaskNotFound)
		return
	}
	c.JSON(http.StatusOK, task.Status())
}

// Health reports liveness and request counters
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if h.metrics != nil {
		body["uptime_seconds"] = int64(h.metrics.Uptime() / time.Second)
		body["stats"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, body)
}

// Register mounts every endpoint on r.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/count-img-tags", h.CountImgTags)
	r.GET("/generate-basic-html", h.GenerateBasicHTML)
	r.GET("/generate-multiple-html", h.GenerateMultipleHTML)
	r.PUT("/update-html", h.UpdateHTML)
	r.DELETE("/delete-html", h.DeleteHTML)
	r.PUT("/rename-single-file", h.RenameSingleFile)
	r.PUT("/rename-multiple-files", h.RenameMultipleFiles)
	r.GET("/rename-tasks/:id", h.RenameTask)

	r.GET("/health", h.Health)
	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}
}
