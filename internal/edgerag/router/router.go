// Package router registers the HTTP routes for the edge-rag service.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/edge-rag/internal/edgerag/handler"
)

// Register wires all routes onto the engine. rateLimit guards the
// generation routes only; retrieval and ingestion are admin-facing and
// stay ungated.
func Register(engine *gin.Engine, h *handler.Handler, rateLimit gin.HandlerFunc) {
	if rateLimit != nil {
		engine.POST("/rag", rateLimit, h.Rag)
		engine.GET("/ask", rateLimit, h.Ask)
	} else {
		engine.POST("/rag", h.Rag)
		engine.GET("/ask", h.Ask)
	}

	engine.POST("/retrieve", h.Retrieve)
	engine.POST("/insert", h.Insert)
	engine.POST("/set", h.Set)

	engine.GET("/healthz", h.Healthz)
	engine.GET("/metrics", h.Metrics)
}
