package client_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"service-crm/client"
	"service-crm/internal/api/apitest"
	"service-crm/internal/models"
)

// stageSpy records what the board shows while a stage PATCH is in flight.
type stageSpy struct {
	next  http.RoundTripper
	board *client.Board
	id    int64
	seen  []string
}

func (s *stageSpy) RoundTrip(r *http.Request) (*http.Response, error) {
	if r.Method == http.MethodPatch && strings.HasSuffix(r.URL.Path, "/stage") {
		stage, _ := s.board.Stage(s.id)
		s.seen = append(s.seen, stage)
	}
	return s.next.RoundTrip(r)
}

func boardFixture(t *testing.T) (*client.Client, *client.Board, *stageSpy, models.Lead) {
	t.Helper()
	srv := apitest.NewServer(t, apitest.Options{})
	spy := &stageSpy{next: http.DefaultTransport}
	c := loggedIn(t, srv, "ana@example.com", client.WithHTTPClient(&http.Client{Transport: spy}))
	ctx := context.Background()

	contact, err := c.CreateContact(ctx, models.ContactPayload{FirstName: str("Diego")})
	if err != nil {
		t.Fatalf("create contact: %v", err)
	}
	lead, err := c.CreateLead(ctx, models.LeadPayload{Name: str("Website"), ContactID: models.NewRef(contact.ID)})
	if err != nil {
		t.Fatalf("create lead: %v", err)
	}

	b := client.NewBoard(c)
	if err := b.Load(ctx); err != nil {
		t.Fatalf("load board: %v", err)
	}
	spy.board, spy.id = b, lead.ID
	return c, b, spy, lead
}

func TestBoardMoveDeal(t *testing.T) {
	c, b, spy, lead := boardFixture(t)
	ctx := context.Background()

	if got := len(b.Column(models.StageIncoming)); got != 1 {
		t.Fatalf("incoming column has %d deals, want 1", got)
	}

	if err := b.MoveDeal(ctx, lead.ID, models.StageNegotiation); err != nil {
		t.Fatalf("move: %v", err)
	}
	if len(spy.seen) != 1 || spy.seen[0] != models.StageNegotiation {
		t.Errorf("stage during request = %v, want optimistic %q", spy.seen, models.StageNegotiation)
	}
	cols := b.Columns()
	if len(cols[models.StageIncoming]) != 0 || len(cols[models.StageNegotiation]) != 1 {
		t.Errorf("columns after move = %+v", cols)
	}

	stored, err := c.GetLead(ctx, lead.ID)
	if err != nil {
		t.Fatalf("get lead: %v", err)
	}
	if stored.Stage != models.StageNegotiation {
		t.Errorf("server stage = %q", stored.Stage)
	}
}

func TestBoardMoveDealRevertsOnFailure(t *testing.T) {
	_, b, spy, lead := boardFixture(t)

	err := b.MoveDeal(context.Background(), lead.ID, "Archivado")
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400", err)
	}
	if len(spy.seen) != 1 || spy.seen[0] != "Archivado" {
		t.Errorf("stage during request = %v", spy.seen)
	}
	if stage, _ := b.Stage(lead.ID); stage != models.StageIncoming {
		t.Errorf("stage after failed move = %q, want %q", stage, models.StageIncoming)
	}
}

func TestBoardMoveDealEdgeCases(t *testing.T) {
	_, b, spy, lead := boardFixture(t)
	ctx := context.Background()

	if err := b.MoveDeal(ctx, lead.ID+100, models.StageWon); !errors.Is(err, client.ErrUnknownDeal) {
		t.Errorf("unknown deal err = %v", err)
	}
	if err := b.MoveDeal(ctx, lead.ID, models.StageIncoming); err != nil {
		t.Errorf("same-stage move err = %v", err)
	}
	if len(spy.seen) != 0 {
		t.Errorf("no request expected, saw %v", spy.seen)
	}
}

func TestBoardProjectedValue(t *testing.T) {
	c, b, _, lead := boardFixture(t)
	ctx := context.Background()

	value := models.Money(25000)
	if _, err := c.UpdateLead(ctx, lead.ID, models.LeadPayload{
		Name:      str("Website"),
		Value:     &value,
		ContactID: models.NewRef(*lead.ContactID),
	}); err != nil {
		t.Fatalf("update lead: %v", err)
	}
	if err := b.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := b.ProjectedValue(); got != value {
		t.Fatalf("projected value = %s, want %s", got, value)
	}

	if err := b.MoveDeal(ctx, lead.ID, models.StageLost); err != nil {
		t.Fatalf("move: %v", err)
	}
	if got := b.ProjectedValue(); got != 0 {
		t.Errorf("projected value after losing the deal = %s, want 0", got)
	}
}
