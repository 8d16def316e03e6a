package handler

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pratyek/medical-amount-detection/internal/csvexport"
	"github.com/pratyek/medical-amount-detection/internal/domain"
	"github.com/pratyek/medical-amount-detection/internal/pipeline"
)

// AmountsHandler exposes the detection pipeline over HTTP.
type AmountsHandler struct {
	pipeline    *pipeline.Pipeline
	maxFileSize int64
}

// NewAmountsHandler creates a new AmountsHandler.
func NewAmountsHandler(p *pipeline.Pipeline, maxFileSize int64) *AmountsHandler {
	return &AmountsHandler{pipeline: p, maxFileSize: maxFileSize}
}

// ProcessTextRequest is the JSON body for text detection.
type ProcessTextRequest struct {
	Text    string                   `json:"text" binding:"required"`
	Options domain.ProcessingOptions `json:"options"`
}

// ProcessText handles POST /api/v1/amounts/text
func (h *AmountsHandler) ProcessText(c *gin.Context) {
	var req ProcessTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "text field is required")
		return
	}

	resp, err := h.pipeline.ProcessText(c.Request.Context(), req.Text, req.Options)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, resp)
}

// ProcessImage handles POST /api/v1/amounts/image
func (h *AmountsHandler) ProcessImage(c *gin.Context) {
	data, filename, ok := h.readUpload(c)
	if !ok {
		return
	}

	resp, err := h.pipeline.ProcessImage(c.Request.Context(), data, filename, optionsFromForm(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, resp)
}

// ExportText handles POST /api/v1/amounts/export, returning the detection
// result for a text document as a CSV download.
func (h *AmountsHandler) ExportText(c *gin.Context) {
	var req ProcessTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "text field is required")
		return
	}

	resp, err := h.pipeline.ProcessText(c.Request.Context(), req.Text, req.Options)
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	buf.Write(csvexport.BOM)
	w := csvexport.NewWriter(&buf)
	if err := w.WriteHeader(); err != nil {
		HandleError(c, err)
		return
	}
	if err := w.WriteResponse(resp); err != nil {
		HandleError(c, err)
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="amounts-`+resp.RequestID+`.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *AmountsHandler) readUpload(c *gin.Context) (data []byte, filename string, ok bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return nil, "", false
	}
	defer func() { _ = file.Close() }()

	if h.maxFileSize > 0 && header.Size > h.maxFileSize {
		RespondError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size")
		return nil, "", false
	}

	data, err = io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file")
		return nil, "", false
	}
	return data, header.Filename, true
}

// optionsFromForm reads processing options from multipart form fields.
func optionsFromForm(c *gin.Context) domain.ProcessingOptions {
	var opts domain.ProcessingOptions
	if v := c.PostForm("enable_ai"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.EnableAI = &b
		}
	}
	if v := c.PostForm("min_ocr_confidence"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			opts.MinOCRConfidence = f
		}
	}
	if v := c.PostForm("confidence_threshold"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			opts.ConfidenceThreshold = f
		}
	}
	opts.CurrencyHint = c.PostForm("currency_hint")
	return opts
}
