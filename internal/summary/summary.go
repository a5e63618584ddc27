// Package summary builds the dashboard report: revenue, workload, client
// counts, recent activity and the pipeline funnel for one owner and window.
package summary

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"service-crm/internal/daterange"
	"service-crm/internal/models"
)

const (
	taskLimit          = 20
	communicationLimit = 10
)

type Aggregator struct {
	DB *sqlx.DB
}

func New(db *sqlx.DB) *Aggregator {
	return &Aggregator{DB: db}
}

// Summarize computes the report for ownerID. A nil window means all time,
// in which case PreviousMetrics is nil. The independent queries run
// concurrently; the first failure cancels the rest and fails the call.
func (a *Aggregator) Summarize(ctx context.Context, ownerID int64, window *daterange.Window) (models.Summary, error) {
	var (
		out      models.Summary
		previous *models.PreviousMetrics
	)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		v, err := a.projectedRevenue(ctx, ownerID, window)
		out.Metrics.ProjectedRevenue = v
		return err
	})
	g.Go(func() error {
		n, err := a.pendingTasks(ctx, ownerID, window)
		out.Metrics.PendingTasks = n
		return err
	})
	g.Go(func() error {
		n, err := a.activeClients(ctx, ownerID, window)
		out.Metrics.ActiveClients = n
		return err
	})
	g.Go(func() error {
		n, err := a.newClients(ctx, ownerID, window)
		out.Metrics.NewClients = n
		return err
	})
	g.Go(func() error {
		tasks, err := a.openTasks(ctx, ownerID, window)
		out.Tasks = tasks
		return err
	})
	g.Go(func() error {
		comms, err := a.recentCommunications(ctx, ownerID, window)
		out.Communications = comms
		return err
	})
	g.Go(func() error {
		funnel, err := a.funnel(ctx, ownerID, window)
		out.Funnel = funnel
		return err
	})
	if window != nil {
		g.Go(func() error {
			prev := window.Previous()
			v, err := a.projectedRevenue(ctx, ownerID, &prev)
			previous = &models.PreviousMetrics{ProjectedRevenue: v}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return models.Summary{}, err
	}
	out.PreviousMetrics = previous
	out.Filter = filterFor(window)
	return out, nil
}

func filterFor(window *daterange.Window) models.SummaryFilter {
	if window == nil {
		return models.SummaryFilter{}
	}
	start := window.Start
	end := window.LastInstant()
	return models.SummaryFilter{Start: &start, End: &end}
}

// query expands slice arguments and rebinds placeholders for the driver.
func (a *Aggregator) query(q string, args ...any) (string, []any, error) {
	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return "", nil, err
	}
	return a.DB.Rebind(q), args, nil
}

func (a *Aggregator) get(ctx context.Context, dest any, what, q string, args ...any) error {
	q, args, err := a.query(q, args...)
	if err != nil {
		return fmt.Errorf("build %s query: %w", what, err)
	}
	if err := a.DB.GetContext(ctx, dest, q, args...); err != nil {
		return fmt.Errorf("query %s: %w", what, err)
	}
	return nil
}

func (a *Aggregator) selectRows(ctx context.Context, dest any, what, q string, args ...any) error {
	q, args, err := a.query(q, args...)
	if err != nil {
		return fmt.Errorf("build %s query: %w", what, err)
	}
	if err := a.DB.SelectContext(ctx, dest, q, args...); err != nil {
		return fmt.Errorf("query %s: %w", what, err)
	}
	return nil
}

// within restricts col to the half-open window. Bounds are passed in UTC,
// the zone every timestamp is stored in.
func within(col string, window *daterange.Window) (string, []any) {
	if window == nil {
		return "", nil
	}
	return fmt.Sprintf(" AND %s >= ? AND %s < ?", col, col), []any{window.Start.UTC(), window.End.UTC()}
}

// dueWithin matches tasks due in the window, or undated tasks created in it.
func dueWithin(window *daterange.Window) (string, []any) {
	if window == nil {
		return "", nil
	}
	start, end := window.Start.UTC(), window.End.UTC()
	return ` AND ((t.due_date IS NOT NULL AND t.due_date >= ? AND t.due_date < ?)
		OR (t.due_date IS NULL AND t.created_at >= ? AND t.created_at < ?))`,
		[]any{start, end, start, end}
}

func (a *Aggregator) projectedRevenue(ctx context.Context, ownerID int64, window *daterange.Window) (models.Money, error) {
	clause, wargs := within("created_at", window)
	args := append([]any{ownerID, models.LostStages}, wargs...)
	var cents int64
	err := a.get(ctx, &cents, "projected revenue",
		`SELECT COALESCE(SUM(value_cents), 0) FROM leads WHERE user_id = ? AND stage NOT IN (?)`+clause, args...)
	return models.Money(cents), err
}

func (a *Aggregator) pendingTasks(ctx context.Context, ownerID int64, window *daterange.Window) (int, error) {
	clause, wargs := dueWithin(window)
	args := append([]any{ownerID, models.FinishedStatuses}, wargs...)
	var n int
	err := a.get(ctx, &n, "pending tasks",
		`SELECT COUNT(*) FROM tasks t WHERE t.user_id = ? AND t.status NOT IN (?)`+clause, args...)
	return n, err
}

func (a *Aggregator) activeClients(ctx context.Context, ownerID int64, window *daterange.Window) (int, error) {
	clause, wargs := within("created_at", window)
	args := append([]any{ownerID, models.LostStages}, wargs...)
	var n int
	err := a.get(ctx, &n, "active clients",
		`SELECT COUNT(DISTINCT contact_id) FROM leads
		WHERE user_id = ? AND contact_id IS NOT NULL AND stage NOT IN (?)`+clause, args...)
	return n, err
}

func (a *Aggregator) newClients(ctx context.Context, ownerID int64, window *daterange.Window) (int, error) {
	clause, wargs := within("created_at", window)
	args := append([]any{ownerID}, wargs...)
	var n int
	err := a.get(ctx, &n, "new clients", `SELECT COUNT(*) FROM contacts WHERE user_id = ?`+clause, args...)
	return n, err
}

func (a *Aggregator) openTasks(ctx context.Context, ownerID int64, window *daterange.Window) ([]models.TaskDigest, error) {
	clause, wargs := dueWithin(window)
	args := append([]any{ownerID, models.FinishedStatuses}, wargs...)
	args = append(args, taskLimit)
	tasks := []models.TaskDigest{}
	err := a.selectRows(ctx, &tasks, "open tasks",
		`SELECT t.id, t.title, t.status, t.due_date, t.created_at,
		TRIM(COALESCE(c.first_name, '') || ' ' || COALESCE(c.last_name, '')) AS contact_name
		FROM tasks t
		LEFT JOIN contacts c ON c.id = t.contact_id
		WHERE t.user_id = ? AND t.status NOT IN (?)`+clause+`
		ORDER BY COALESCE(t.due_date, t.created_at) ASC, t.id ASC
		LIMIT ?`, args...)
	return tasks, err
}

func (a *Aggregator) recentCommunications(ctx context.Context, ownerID int64, window *daterange.Window) ([]models.Communication, error) {
	clause, wargs := within("m.communication_date", window)
	args := append([]any{ownerID}, wargs...)
	args = append(args, communicationLimit)
	comms := []models.Communication{}
	err := a.selectRows(ctx, &comms, "recent communications",
		`SELECT m.id, m.user_id, m.channel, m.subject, m.summary, m.communication_date, m.contact_id,
		TRIM(COALESCE(c.first_name, '') || ' ' || COALESCE(c.last_name, '')) AS contact_name,
		m.created_at
		FROM communications m
		LEFT JOIN contacts c ON c.id = m.contact_id
		WHERE m.user_id = ?`+clause+`
		ORDER BY m.communication_date DESC, m.id DESC
		LIMIT ?`, args...)
	return comms, err
}

type stageCount struct {
	Stage string `db:"stage"`
	Count int    `db:"n"`
}

// funnel counts in-window deals per pipeline stage after stage aliasing.
// Deals whose stage is outside the pipeline fall in no bucket.
func (a *Aggregator) funnel(ctx context.Context, ownerID int64, window *daterange.Window) ([]models.FunnelStage, error) {
	clause, wargs := within("created_at", window)
	args := append([]any{ownerID}, wargs...)
	var rows []stageCount
	err := a.selectRows(ctx, &rows, "funnel",
		`SELECT stage, COUNT(*) AS n FROM leads WHERE user_id = ?`+clause+` GROUP BY stage`, args...)
	if err != nil {
		return nil, err
	}
	return buildFunnel(rows), nil
}

func buildFunnel(rows []stageCount) []models.FunnelStage {
	counts := make(map[string]int, len(models.StageOrder))
	for _, r := range rows {
		counts[models.NormalizeStage(r.Stage)] += r.Count
	}
	funnel := make([]models.FunnelStage, 0, len(models.StageOrder))
	for _, stage := range models.StageOrder {
		funnel = append(funnel, models.FunnelStage{Stage: stage, Value: counts[stage]})
	}
	return funnel
}
