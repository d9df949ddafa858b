// Package handler provides HTTP handlers for the edge-rag service.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/edge-rag/internal/edgerag/biz"
	"github.com/kart-io/edge-rag/internal/edgerag/metrics"
	"github.com/kart-io/edge-rag/internal/model"
)

// Service is the business surface the handlers depend on.
type Service interface {
	Answer(ctx context.Context, query, subject string) (*model.PipelineResult, error)
	Retrieve(ctx context.Context, query string) ([]model.Candidate, error)
	InsertBatch(ctx context.Context, items []model.VectorItem) (int, error)
	SetFact(ctx context.Context, key, value string) (int, error)
	Ask(ctx context.Context, question string) (string, string, error)
}

// Handler handles HTTP requests for the edge-rag service.
type Handler struct {
	svc     Service
	metrics *metrics.Metrics
}

// New creates a new Handler.
func New(svc Service, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, metrics: m}
}

// ErrorResponse is the error payload for all endpoints.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RagRequest is the request body for POST /rag.
type RagRequest struct {
	Query   string `json:"query" binding:"required"`
	Subject string `json:"subject"`
}

// Rag runs the full answer pipeline.
func (h *Handler) Rag(c *gin.Context) {
	var req RagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "missing query parameter",
		})
		return
	}

	result, err := h.svc.Answer(c.Request.Context(), req.Query, req.Subject)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// RetrieveRequest is the request body for POST /retrieve.
type RetrieveRequest struct {
	Query string `json:"query" binding:"required"`
}

// RetrieveResponse is the response body for POST /retrieve.
type RetrieveResponse struct {
	Status string            `json:"status"`
	Data   []model.Candidate `json:"data"`
}

// Retrieve returns raw vector matches without generation.
func (h *Handler) Retrieve(c *gin.Context) {
	var req RetrieveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "missing query parameter",
		})
		return
	}

	candidates, err := h.svc.Retrieve(c.Request.Context(), req.Query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
		})
		return
	}

	if candidates == nil {
		candidates = []model.Candidate{}
	}
	c.JSON(http.StatusOK, RetrieveResponse{Status: "success", Data: candidates})
}

// InsertItem is one document in an insert batch.
type InsertItem struct {
	ID      string    `json:"id" binding:"required"`
	Values  []float32 `json:"values" binding:"required"`
	Text    string    `json:"text"`
	Subject string    `json:"subject"`
}

// InsertRequest is the request body for POST /insert.
type InsertRequest struct {
	Batch []InsertItem `json:"batch" binding:"required"`
}

// InsertResponse is the response body for ingestion endpoints.
type InsertResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

// Insert upserts a batch of caller-supplied vectors.
func (h *Handler) Insert(c *gin.Context) {
	var req InsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "missing batch parameter",
		})
		return
	}

	items := make([]model.VectorItem, len(req.Batch))
	for i, doc := range req.Batch {
		items[i] = model.VectorItem{
			ID:        doc.ID,
			Values:    doc.Values,
			Text:      doc.Text,
			Namespace: doc.Subject,
		}
	}

	count, err := h.svc.InsertBatch(c.Request.Context(), items)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, biz.ErrDimensionMismatch) {
			status = http.StatusBadRequest
		}
		c.JSON(status, ErrorResponse{
			Code:    status,
			Message: "failed to insert data: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, InsertResponse{Success: true, Count: count})
}

// SetRequest is the request body for POST /set.
type SetRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// Set embeds and stores a single site-info fact.
func (h *Handler) Set(c *gin.Context) {
	var req SetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "missing key or value parameter",
		})
		return
	}

	count, err := h.svc.SetFact(c.Request.Context(), req.Key, req.Value)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, InsertResponse{Success: true, Count: count})
}

// defaultAskQuestion keeps the QA route usable without parameters.
const defaultAskQuestion = "What is the square root of 9?"

// Ask answers a single question against the top vector match.
func (h *Handler) Ask(c *gin.Context) {
	question := c.Query("text")
	if question == "" {
		question = defaultAskQuestion
	}

	answer, modelUsed, err := h.svc.Ask(c.Request.Context(), question)
	if err != nil {
		c.String(http.StatusInternalServerError, "We were unable to generate output")
		return
	}

	c.Header("x-model-used", modelUsed)
	c.String(http.StatusOK, answer)
}

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Metrics returns a snapshot of the business counters.
func (h *Handler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}
