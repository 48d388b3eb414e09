package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	analyzer string
	async    bool
}

func NewHealthHandler(analyzer string, async bool) *HealthHandler {
	return &HealthHandler{analyzer: analyzer, async: async}
}

func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"analyzer": h.analyzer,
		"async":    h.async,
	})
}
