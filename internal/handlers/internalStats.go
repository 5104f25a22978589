package handlers

import (
	"net/http"

	"github.com/sol1corejz/gzip64-inspector/internal/logger"
	"github.com/sol1corejz/gzip64-inspector/internal/models"
	"go.uber.org/zap"
)

// HandleGetInternalStats возвращает число открытых вкладок и их владельцев.
func (h *Handlers) HandleGetInternalStats(w http.ResponseWriter, r *http.Request) {
	tabs, users, err := h.Store.Stats()
	if err != nil {
		logger.Log.Error("Failed to count stats", zap.Error(err))
		http.Error(w, "Failed to count stats", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, models.InternalStatsResponse{Tabs: tabs, Users: users})
}
