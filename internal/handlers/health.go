package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/nikhil/teamtasks/internal/logger"
	"github.com/nikhil/teamtasks/internal/response"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	DB  Pinger
	Log *logger.Logger
}

func NewHealthHandler(db Pinger, log *logger.Logger) *HealthHandler {
	return &HealthHandler{DB: db, Log: log}
}

// Health reports whether the database answers within two seconds.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.DB.Ping(ctx); err != nil {
		h.Log.WithContext(r.Context()).Error("Health check failed", "error", err)
		response.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
