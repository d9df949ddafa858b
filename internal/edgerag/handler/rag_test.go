package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/edge-rag/internal/edgerag/biz"
	"github.com/kart-io/edge-rag/internal/edgerag/metrics"
	"github.com/kart-io/edge-rag/internal/model"
	"github.com/kart-io/edge-rag/pkg/utils/json"
)

type fakeService struct {
	answerResult *model.PipelineResult
	answerErr    error
	lastQuery    string
	lastSubject  string

	retrieveResult []model.Candidate
	retrieveErr    error

	insertCount int
	insertErr   error
	inserted    []model.VectorItem

	setCount int
	setErr   error

	askAnswer string
	askModel  string
	askErr    error
}

func (f *fakeService) Answer(_ context.Context, query, subject string) (*model.PipelineResult, error) {
	f.lastQuery, f.lastSubject = query, subject
	return f.answerResult, f.answerErr
}

func (f *fakeService) Retrieve(_ context.Context, _ string) ([]model.Candidate, error) {
	return f.retrieveResult, f.retrieveErr
}

func (f *fakeService) InsertBatch(_ context.Context, items []model.VectorItem) (int, error) {
	f.inserted = items
	return f.insertCount, f.insertErr
}

func (f *fakeService) SetFact(_ context.Context, _, _ string) (int, error) {
	return f.setCount, f.setErr
}

func (f *fakeService) Ask(_ context.Context, _ string) (string, string, error) {
	return f.askAnswer, f.askModel, f.askErr
}

func newTestRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(svc, metrics.New())

	r := gin.New()
	r.POST("/rag", h.Rag)
	r.POST("/retrieve", h.Retrieve)
	r.POST("/insert", h.Insert)
	r.POST("/set", h.Set)
	r.GET("/ask", h.Ask)
	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", h.Metrics)
	return r
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestRagSuccess(t *testing.T) {
	svc := &fakeService{answerResult: &model.PipelineResult{
		Answer:  "9am",
		Sources: []string{"topic: siteInfo, content: opens at 9am"},
	}}
	r := newTestRouter(svc)

	w := postJSON(r, "/rag", gin.H{"query": "opening hours", "subject": "siteInfo"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "opening hours", svc.lastQuery)
	assert.Equal(t, "siteInfo", svc.lastSubject)

	var got model.PipelineResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "9am", got.Answer)
	assert.Len(t, got.Sources, 1)
}

func TestRagMissingQuery(t *testing.T) {
	r := newTestRouter(&fakeService{})

	w := postJSON(r, "/rag", gin.H{"subject": "docs"})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "missing query parameter", resp.Message)
}

func TestRagUpstreamError(t *testing.T) {
	svc := &fakeService{answerErr: errors.New("generate request failed with status 503")}
	r := newTestRouter(svc)

	w := postJSON(r, "/rag", gin.H{"query": "q"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "status 503")
}

func TestRetrieveSuccess(t *testing.T) {
	svc := &fakeService{retrieveResult: []model.Candidate{
		{ID: "1", Namespace: "docs", Score: 0.8, Text: "t"},
	}}
	r := newTestRouter(svc)

	w := postJSON(r, "/retrieve", gin.H{"query": "q"})

	require.Equal(t, http.StatusOK, w.Code)

	var resp RetrieveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "1", resp.Data[0].ID)
}

func TestRetrieveEmptyResultIsEmptyArray(t *testing.T) {
	r := newTestRouter(&fakeService{})

	w := postJSON(r, "/retrieve", gin.H{"query": "q"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestInsertSuccess(t *testing.T) {
	svc := &fakeService{insertCount: 2}
	r := newTestRouter(svc)

	w := postJSON(r, "/insert", gin.H{"batch": []gin.H{
		{"id": "a", "values": []float32{1, 2, 3}, "text": "ta", "subject": "docs"},
		{"id": "b", "values": []float32{4, 5, 6}, "text": "tb", "subject": "docs"},
	}})

	require.Equal(t, http.StatusOK, w.Code)

	var resp InsertResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Count)

	require.Len(t, svc.inserted, 2)
	assert.Equal(t, "docs", svc.inserted[0].Namespace)
}

func TestInsertMissingBatch(t *testing.T) {
	r := newTestRouter(&fakeService{})

	w := postJSON(r, "/insert", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInsertDimensionMismatchIs400(t *testing.T) {
	svc := &fakeService{insertErr: fmt.Errorf("%w: item a has 2 values, index expects 3", biz.ErrDimensionMismatch)}
	r := newTestRouter(svc)

	w := postJSON(r, "/insert", gin.H{"batch": []gin.H{
		{"id": "a", "values": []float32{1, 2}},
	}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInsertStoreErrorIs500(t *testing.T) {
	svc := &fakeService{insertErr: errors.New("vector upsert failed: index down")}
	r := newTestRouter(svc)

	w := postJSON(r, "/insert", gin.H{"batch": []gin.H{
		{"id": "a", "values": []float32{1, 2, 3}},
	}})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSetSuccess(t *testing.T) {
	svc := &fakeService{setCount: 1}
	r := newTestRouter(svc)

	w := postJSON(r, "/set", gin.H{"key": "opening-hours", "value": "9am"})

	require.Equal(t, http.StatusOK, w.Code)

	var resp InsertResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Count)
}

func TestSetMissingValue(t *testing.T) {
	r := newTestRouter(&fakeService{})

	w := postJSON(r, "/set", gin.H{"key": "k"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAskSuccess(t *testing.T) {
	svc := &fakeService{askAnswer: "3", askModel: "ask-model"}
	r := newTestRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ask?text=square+root+of+9", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "3", w.Body.String())
	assert.Equal(t, "ask-model", w.Header().Get("x-model-used"))
}

func TestAskEmptyOutput(t *testing.T) {
	svc := &fakeService{askErr: biz.ErrEmptyAnswer}
	r := newTestRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ask", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "We were unable to generate output", w.Body.String())
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(&fakeService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestMetricsSnapshot(t *testing.T) {
	r := newTestRouter(&fakeService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"rag_requests"`)
}
