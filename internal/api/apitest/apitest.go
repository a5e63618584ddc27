// Package apitest starts the full HTTP stack over an in-memory database for
// tests of the API and its clients.
package apitest

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"service-crm/internal/api"
	"service-crm/internal/auth"
	"service-crm/internal/database"
	"service-crm/internal/events"
	"service-crm/internal/handlers"
	"service-crm/internal/logger"
	"service-crm/internal/store"
	"service-crm/internal/summary"
	"service-crm/internal/tokenstore"
)

// Recorder is an events.Publisher that keeps every event.
type Recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *Recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Types returns the recorded event types in order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type Server struct {
	*httptest.Server
	Handlers *handlers.CRMHandlers
	Events   *Recorder
}

// Options tweak the server. Zero values give a UTC clock-less setup.
type Options struct {
	Loc *time.Location
	Now func() time.Time
}

// NewServer starts a server that is closed with the test.
func NewServer(t testing.TB, opts Options) *Server {
	t.Helper()
	dm, err := database.Open(context.Background(), database.Options{Driver: database.DriverSQLite, Path: ":memory:"}, nil)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	ts, err := tokenstore.NewBuntDBTokenStore(":memory:")
	if err != nil {
		t.Fatalf("open token store: %v", err)
	}

	st := store.New(dm.DB)
	if opts.Now != nil {
		st.WithClock(opts.Now)
	}
	rec := &Recorder{}
	h := &handlers.CRMHandlers{
		Store:      st,
		Summary:    summary.New(dm.DB),
		Tokens:     auth.NewTokenManager("test-secret", time.Hour),
		Hasher:     &auth.BcryptHasher{Cost: bcrypt.MinCost},
		TokenStore: ts,
		Events:     rec,
		Log:        logger.NewNop(),
		Loc:        opts.Loc,
		Now:        opts.Now,
		WebUiUrl:   "http://ui.test",
	}
	srv := httptest.NewServer(api.NewRouter(h, api.RouterOptions{
		CORSOrigins: []string{"*"},
		Revocations: ts,
	}))
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
		dm.Close()
	})
	return &Server{Server: srv, Handlers: h, Events: rec}
}
