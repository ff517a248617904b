package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/airquality-advisor/internal/domain/airquality"
)

// Handler wires the HTTP transport to the air quality advisor.
type Handler struct {
	svc    airquality.Service
	logger *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(svc airquality.Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger.With("component", "http.handler"),
	}
}

// Conditions lists the selectable health conditions.
func (h *Handler) Conditions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"conditions": h.svc.Conditions()})
}

// Assess runs the location -> reading -> advice pipeline for one submission.
func (h *Handler) Assess(c *gin.Context) {
	var req airquality.AssessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	report, err := h.svc.Assess(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err, "assessment_failed"))
		return
	}

	c.JSON(http.StatusOK, report)
}

// Report returns an archived report by id.
func (h *Handler) Report(c *gin.Context) {
	report, err := h.svc.Report(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, domainError(err, "report_failed"))
		return
	}
	c.JSON(http.StatusOK, report)
}

// RecentAssessments returns the newest assessment history entries.
func (h *Handler) RecentAssessments(c *gin.Context) {
	records, err := h.svc.Recent(c.Request.Context(), queryLimit(c))
	if err != nil {
		abortWithError(c, domainError(err, "history_failed"))
		return
	}
	if records == nil {
		records = []airquality.AssessmentRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"assessments": records})
}

// TrendingLocations returns the most assessed locations.
func (h *Handler) TrendingLocations(c *gin.Context) {
	items, err := h.svc.Trending(c.Request.Context(), queryLimit(c))
	if err != nil {
		abortWithError(c, domainError(err, "history_failed"))
		return
	}
	if items == nil {
		items = []airquality.TrendingLocation{}
	}
	c.JSON(http.StatusOK, gin.H{"locations": items})
}

// Chat answers a free-text air quality question.
func (h *Handler) Chat(c *gin.Context) {
	var req airquality.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	reply, err := h.svc.Chat(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err, "chat_failed"))
		return
	}

	c.JSON(http.StatusOK, reply)
}

// ChatStream streams a chat answer using Server-Sent Events.
func (h *Handler) ChatStream(c *gin.Context) {
	var req airquality.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	stream, err := h.svc.StreamChat(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err, "chat_failed"))
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "stream_unsupported", "streaming not supported", nil))
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Status(http.StatusOK)

	for chunk := range stream {
		payload, err := json.Marshal(chunk)
		if err != nil {
			h.logger.Error("marshal chunk failed", "error", err)
			continue
		}
		c.Writer.Write([]byte("data: "))
		c.Writer.Write(payload)
		c.Writer.Write([]byte("\n\n"))
		flusher.Flush()
	}
}

func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return limit
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
