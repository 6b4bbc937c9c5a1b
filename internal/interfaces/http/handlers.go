package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Eshwar-Potnuru/Tashiro-Receipt-OCR-sub001/internal/draft"
	"github.com/Eshwar-Potnuru/Tashiro-Receipt-OCR-sub001/internal/export"
	"github.com/Eshwar-Potnuru/Tashiro-Receipt-OCR-sub001/internal/models"
	"github.com/Eshwar-Potnuru/Tashiro-Receipt-OCR-sub001/internal/ocr"
	"github.com/Eshwar-Potnuru/Tashiro-Receipt-OCR-sub001/internal/pipeline"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	processor  *pipeline.Processor
	drafts     *draft.Store
	ledger     *export.LedgerWriter
	renderer   *ocr.PageRenderer
	extractor  *ocr.VisionExtractor
	ocrTimeout time.Duration
	logger     *zap.Logger
}

// NewHandlers creates a new Handlers instance. The renderer and extractor
// may be nil when no OCR credentials are configured; the extract endpoint
// then reports 503.
func NewHandlers(
	processor *pipeline.Processor,
	drafts *draft.Store,
	ledger *export.LedgerWriter,
	renderer *ocr.PageRenderer,
	extractor *ocr.VisionExtractor,
	ocrTimeout time.Duration,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		processor:  processor,
		drafts:     drafts,
		ledger:     ledger,
		renderer:   renderer,
		extractor:  extractor,
		ocrTimeout: ocrTimeout,
		logger:     logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ProcessRequest carries extraction sources and optional line items for the
// pipeline.
type ProcessRequest struct {
	Sources   []models.RawExtraction `json:"sources" binding:"required"`
	LineItems []models.LineItem      `json:"line_items"`
}

// ExtractRequest points the vision producer at an uploaded receipt file.
type ExtractRequest struct {
	FilePath string `json:"file_path" binding:"required"`
}

// SendRequest is a bulk DRAFT to SENT transition.
type SendRequest struct {
	DraftIDs []string `json:"draft_ids" binding:"required"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// ProcessReceipt handles POST /api/receipts/process
func (h *Handlers) ProcessReceipt(c *gin.Context) {
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}
	if len(req.Sources) == 0 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "at least one extraction source is required"})
		return
	}

	result := h.processor.Process(req.Sources, req.LineItems)
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// ExtractReceipt handles POST /api/receipts/extract: renders an uploaded
// receipt file, runs the vision extractor, and processes the result.
func (h *Handlers) ExtractReceipt(c *gin.Context) {
	if h.renderer == nil || h.extractor == nil {
		c.JSON(http.StatusServiceUnavailable, Response{Success: false, Error: "OCR producer not configured"})
		return
	}

	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	pages, err := h.renderer.RenderPages(req.FilePath)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Error: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.ocrTimeout)
	defer cancel()

	extraction, err := h.extractor.Extract(ctx, pages)
	if err != nil {
		c.JSON(http.StatusBadGateway, Response{Success: false, Error: err.Error()})
		return
	}

	result := h.processor.Process([]models.RawExtraction{extraction}, nil)
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// CreateDraft handles POST /api/drafts
func (h *Handlers) CreateDraft(c *gin.Context) {
	var payload pipeline.ProcessedReceipt
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}

	d := &models.DraftReceipt{Payload: string(raw)}
	if err := h.drafts.Save(d); err != nil {
		h.logger.Error("Failed to save draft", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: d})
}

// ListDrafts handles GET /api/drafts?status=DRAFT|SENT
func (h *Handlers) ListDrafts(c *gin.Context) {
	drafts, err := h.drafts.List(c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: drafts})
}

// GetDraft handles GET /api/drafts/:id
func (h *Handlers) GetDraft(c *gin.Context) {
	d, err := h.drafts.Get(c.Param("id"))
	if errors.Is(err, draft.ErrDraftNotFound) {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: d})
}

// UpdateDraft handles PUT /api/drafts/:id — replaces the payload while the
// draft is still editable.
func (h *Handlers) UpdateDraft(c *gin.Context) {
	var payload pipeline.ProcessedReceipt
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}

	d := &models.DraftReceipt{ID: c.Param("id"), Payload: string(raw)}
	err = h.drafts.Save(d)
	switch {
	case errors.Is(err, draft.ErrDraftNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case errors.Is(err, draft.ErrDraftImmutable):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
	default:
		c.JSON(http.StatusOK, Response{Success: true, Data: d})
	}
}

// SendDrafts handles POST /api/drafts/send: bulk DRAFT to SENT transition
// with a ledger append per sent draft. Per-draft failures are reported
// without aborting the batch.
func (h *Handlers) SendDrafts(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	type sendOutcome struct {
		DraftID string `json:"draft_id"`
		Sent    bool   `json:"sent"`
		Error   string `json:"error,omitempty"`
	}

	outcomes := make([]sendOutcome, 0, len(req.DraftIDs))
	for _, id := range req.DraftIDs {
		d, err := h.drafts.Send(nil, id)
		if err != nil {
			outcomes = append(outcomes, sendOutcome{DraftID: id, Error: err.Error()})
			continue
		}

		var payload pipeline.ProcessedReceipt
		if err := json.Unmarshal([]byte(d.Payload), &payload); err != nil {
			outcomes = append(outcomes, sendOutcome{DraftID: id, Sent: true, Error: "sent but payload unreadable: " + err.Error()})
			continue
		}
		if err := h.ledger.Append(payload); err != nil {
			h.logger.Error("Ledger append failed", zap.String("draft_id", id), zap.Error(err))
			outcomes = append(outcomes, sendOutcome{DraftID: id, Sent: true, Error: "sent but ledger write failed: " + err.Error()})
			continue
		}
		outcomes = append(outcomes, sendOutcome{DraftID: id, Sent: true})
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: outcomes})
}
