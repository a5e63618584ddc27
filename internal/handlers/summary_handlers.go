package handlers

import (
	"errors"
	"net/http"

	"service-crm/internal/daterange"
	"service-crm/internal/utils"
)

// GetSummary serves the dashboard report. The period defaults to today; an
// unknown period means all time.
func (c *CRMHandlers) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	period := q.Get("period")
	if period == "" {
		period = daterange.PeriodToday
	}

	window, err := daterange.Resolve(period, q.Get("startDate"), q.Get("endDate"), c.now(), c.location())
	if err != nil {
		if errors.Is(err, daterange.ErrInvalidRange) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		c.Log.Error("Failed to resolve summary window: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	report, err := c.Summary.Summarize(r.Context(), userID, window)
	if err != nil {
		c.Log.Error("Failed to build summary for user %d: %v", userID, err)
		utils.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	report.Filter.Period = period
	utils.RespondJSON(w, http.StatusOK, report)
}
