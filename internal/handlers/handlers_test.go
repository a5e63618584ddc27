package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"service-crm/internal/logger"
	"service-crm/internal/models"
	"service-crm/internal/store"
)

func TestParseTimeField(t *testing.T) {
	lima := time.FixedZone("PET", -5*3600)
	str := func(s string) *string { return &s }

	tests := []struct {
		name    string
		raw     *string
		want    *time.Time
		wantErr bool
	}{
		{"absent", nil, nil, false},
		{"blank", str("  "), nil, false},
		{"rfc3339", str("2026-03-10T12:00:00Z"), ptrTime(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)), false},
		{"datetime-local", str("2026-03-10T09:30"), ptrTime(time.Date(2026, 3, 10, 9, 30, 0, 0, lima)), false},
		{"date only", str("2026-03-10"), ptrTime(time.Date(2026, 3, 10, 0, 0, 0, 0, lima)), false},
		{"garbage", str("tomorrow"), nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTimeField(tt.raw, lima, "dueDate")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			switch {
			case tt.want == nil && got != nil:
				t.Fatalf("expected nil, got %v", got)
			case tt.want != nil && (got == nil || !got.Equal(*tt.want)):
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestRespondStoreError(t *testing.T) {
	c := &CRMHandlers{Log: logger.NewNop()}
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", &store.ValidationError{Kind: store.ErrValidation, Message: "lead name is required"}, http.StatusBadRequest, "lead name is required"},
		{"reference", &store.ValidationError{Kind: store.ErrInvalidReference, Message: "associated lead does not exist"}, http.StatusBadRequest, "associated lead does not exist"},
		{"not found", fmt.Errorf("wrapped: %w", store.ErrNotFound), http.StatusNotFound, "Task not found"},
		{"duplicate email", store.ErrEmailTaken, http.StatusConflict, "Email already registered"},
		{"unexpected", errors.New("disk I/O error"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c.respondStoreError(rec, tt.err, "Task not found")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body struct {
				Error string `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != tt.wantMsg {
				t.Fatalf("error = %q, want %q", body.Error, tt.wantMsg)
			}
		})
	}
}

func TestLeadInputKeepsExplicitZero(t *testing.T) {
	var payload models.LeadPayload
	if err := json.Unmarshal([]byte(`{"name":"Free trial","value":0,"contactId":"5"}`), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Value == nil {
		t.Fatal("an explicit 0 must be distinguishable from an omitted value")
	}
	in := leadInput(payload)
	if in.Value != 0 || in.ContactID == nil || *in.ContactID != 5 {
		t.Fatalf("unexpected input %+v", in)
	}

	payload = models.LeadPayload{}
	if err := json.Unmarshal([]byte(`{"name":"No value","contactId":0}`), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Value != nil {
		t.Fatal("expected an omitted value to stay nil")
	}
	if in := leadInput(payload); in.ContactID != nil {
		t.Fatalf("expected contactId 0 to mean no contact, got %d", *in.ContactID)
	}
}

func TestRequireUserWithoutAuthContext(t *testing.T) {
	c := &CRMHandlers{Log: logger.NewNop()}
	rec := httptest.NewRecorder()
	c.ListContacts(rec, httptest.NewRequest(http.MethodGet, "/api/contacts", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}
