package handlers

import (
	"context"
	"net/http"
	"time"

	"service-crm/internal/utils"
)

type healthResponse struct {
	Status string `json:"status"`
}

func (c *CRMHandlers) Hello(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, healthResponse{Status: "OK"})
}

func (c *CRMHandlers) DBPing(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := c.Store.DB.PingContext(ctx); err != nil {
		c.Log.Error("Database ping failed: %v", err)
		utils.RespondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	utils.RespondJSON(w, http.StatusOK, healthResponse{Status: "OK"})
}
