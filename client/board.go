package client

import (
	"context"
	"errors"
	"sync"

	"service-crm/internal/models"
)

var ErrUnknownDeal = errors.New("deal is not on the board")

// Board is a local pipeline view that groups deals by stage.
type Board struct {
	client *Client

	mu    sync.RWMutex
	deals map[int64]*models.Lead
	order []int64
}

func NewBoard(c *Client) *Board {
	return &Board{client: c, deals: map[int64]*models.Lead{}}
}

// Load replaces the board contents with the server's leads.
func (b *Board) Load(ctx context.Context) error {
	leads, err := b.client.ListLeads(ctx)
	if err != nil {
		return err
	}
	deals := make(map[int64]*models.Lead, len(leads))
	order := make([]int64, 0, len(leads))
	for i := range leads {
		lead := leads[i]
		lead.Stage = models.NormalizeStage(lead.Stage)
		deals[lead.ID] = &lead
		order = append(order, lead.ID)
	}

	b.mu.Lock()
	b.deals, b.order = deals, order
	b.mu.Unlock()
	return nil
}

// Column returns the deals currently shown under stage, in server order.
func (b *Board) Column(stage string) []models.Lead {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := []models.Lead{}
	for _, id := range b.order {
		if d := b.deals[id]; d.Stage == stage {
			out = append(out, *d)
		}
	}
	return out
}

// Columns returns one column per pipeline stage.
func (b *Board) Columns() map[string][]models.Lead {
	out := make(map[string][]models.Lead, len(models.StageOrder))
	for _, stage := range models.StageOrder {
		out[stage] = b.Column(stage)
	}
	return out
}

// Stage returns the stage the board shows for a deal.
func (b *Board) Stage(id int64) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	d, ok := b.deals[id]
	if !ok {
		return "", false
	}
	return d.Stage, true
}

// MoveDeal shows the deal under stage right away, then confirms the move with
// the server. If the server refuses, the deal goes back to its previous stage
// and the server error is returned.
func (b *Board) MoveDeal(ctx context.Context, id int64, stage string) error {
	b.mu.Lock()
	d, ok := b.deals[id]
	if !ok {
		b.mu.Unlock()
		return ErrUnknownDeal
	}
	prev := d.Stage
	if prev == stage {
		b.mu.Unlock()
		return nil
	}
	d.Stage = stage
	b.mu.Unlock()

	updated, err := b.client.MoveLeadStage(ctx, id, stage)

	b.mu.Lock()
	defer b.mu.Unlock()
	current, ok := b.deals[id]
	if err != nil {
		// A later move or reload wins over the revert.
		if ok && current.Stage == stage {
			current.Stage = prev
		}
		return err
	}
	if ok {
		*current = updated
	}
	return nil
}

// ProjectedValue sums the value of every deal not in a lost stage, matching
// the projected revenue of the summary report.
func (b *Board) ProjectedValue() models.Money {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var total models.Money
	for _, d := range b.deals {
		if !models.IsLostStage(d.Stage) {
			total += d.Value
		}
	}
	return total
}
