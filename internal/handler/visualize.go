package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"iipviz/internal/model"
	"iipviz/internal/service"
)

// Visualizer is the part of the service the HTTP layer needs
type Visualizer interface {
	Visualize(ctx context.Context, req *model.VisualizeRequest) (*model.VisualizationPayload, error)
	VisualizeStream(ctx context.Context, req *model.VisualizeRequest, callback service.EventCallback) (*model.VisualizationPayload, error)
	Provinces() *model.ProvincesResponse
}

// VisualizeHandler handles visualization HTTP requests
type VisualizeHandler struct {
	svc    Visualizer
	logger zerolog.Logger
}

// NewVisualizeHandler creates a new visualize handler
func NewVisualizeHandler(svc Visualizer, logger zerolog.Logger) *VisualizeHandler {
	return &VisualizeHandler{
		svc:    svc,
		logger: logger,
	}
}

// Visualize handles POST /api/v1/visualize.
// Pipeline errors are answered with 200 and an error payload; only a
// malformed body is a client error.
func (h *VisualizeHandler) Visualize(c *gin.Context) {
	var req model.VisualizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	payload, err := h.svc.Visualize(c.Request.Context(), &req)
	if err != nil {
		errPayload, known := service.ToErrorPayload(err)
		if !known {
			log := requestLogger(c, h.logger)
			log.Error().Err(err).Str("query", req.Query).Msg("Visualization failed")
			c.JSON(http.StatusInternalServerError, errPayload)
			return
		}
		c.JSON(http.StatusOK, errPayload)
		return
	}

	c.JSON(http.StatusOK, payload)
}

// VisualizeStream handles POST /api/v1/visualize/stream - SSE streaming visualization
func (h *VisualizeHandler) VisualizeStream(c *gin.Context) {
	var req model.VisualizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	// Create flusher for SSE
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	sendSSE(c, "start", map[string]any{"query": req.Query})
	flusher.Flush()

	payload, err := h.svc.VisualizeStream(c.Request.Context(), &req, func(event string, data any) error {
		if err := c.Request.Context().Err(); err != nil {
			return err
		}
		sendSSE(c, event, data)
		flusher.Flush()
		return nil
	})

	if err != nil {
		errPayload, known := service.ToErrorPayload(err)
		if !known {
			log := requestLogger(c, h.logger)
			log.Error().Err(err).Str("query", req.Query).Msg("Streaming visualization failed")
		}
		sendSSE(c, "error", errPayload)
		sendSSE(c, "done", nil)
		flusher.Flush()
		return
	}

	sendSSE(c, "result", payload)
	sendSSE(c, "done", nil)
	flusher.Flush()
}

// sendSSE sends a Server-Sent Event
func sendSSE(c *gin.Context, event string, data any) {
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			fmt.Fprintf(c.Writer, "event: error\ndata: {\"error\": \"JSON marshal failed\"}\n\n")
			return
		}
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, string(jsonData))
	} else {
		fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", event)
	}
}

// Provinces handles GET /api/v1/provinces
func (h *VisualizeHandler) Provinces(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Provinces())
}
