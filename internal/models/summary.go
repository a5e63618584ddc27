package models

import "time"

// Summary is the dashboard report for one owner and window.
type Summary struct {
	Metrics         Metrics          `json:"metrics"`
	Tasks           []TaskDigest     `json:"tasks"`
	Communications  []Communication  `json:"communications"`
	PreviousMetrics *PreviousMetrics `json:"previousMetrics"`
	Funnel          []FunnelStage    `json:"funnel"`
	Filter          SummaryFilter    `json:"filter"`
}

// Metrics are the headline numbers of the dashboard.
type Metrics struct {
	ProjectedRevenue Money `json:"projectedRevenue"`
	PendingTasks     int   `json:"pendingTasks"`
	ActiveClients    int   `json:"activeClients"`
	NewClients       int   `json:"newClients"`
}

// PreviousMetrics holds the comparison figures of the preceding window.
type PreviousMetrics struct {
	ProjectedRevenue Money `json:"projectedRevenue"`
}

// TaskDigest is a pending task as listed on the dashboard.
type TaskDigest struct {
	ID          int64      `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Status      string     `json:"status" db:"status"`
	DueDate     *time.Time `json:"due_date" db:"due_date"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	ContactName string     `json:"contact_name" db:"contact_name"`
}

// FunnelStage is one bucket of the pipeline funnel.
type FunnelStage struct {
	Stage string `json:"stage"`
	Value int    `json:"value"`
}

// SummaryFilter echoes the resolved window. End is the last instant inside it.
type SummaryFilter struct {
	Period string     `json:"period"`
	Start  *time.Time `json:"start"`
	End    *time.Time `json:"end"`
}
