package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
)

func TestRespondJSONWritesPayloadAsIs(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, http.StatusCreated, map[string]int{"id": 3})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != `{"id":3}` {
		t.Fatalf("body = %s", body)
	}
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, http.StatusNotFound, "Contact not found")
	if body := strings.TrimSpace(rec.Body.String()); body != `{"error":"Contact not found"}` {
		t.Fatalf("body = %s", body)
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"name":"x"}`, false},
		{"empty", ``, true},
		{"malformed", `{"name":`, true},
		{"wrong type", `{"name":3}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst struct {
				Name string `json:"name"`
			}
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			err := DecodeJSON(httptest.NewRecorder(), r, &dst)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidBody) {
				t.Fatalf("expected ErrInvalidBody, got %v", err)
			}
		})
	}
}

func TestPathID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"12", 12, false},
		{"0", 0, true},
		{"-4", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			r := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": tt.raw})
			got, err := PathID(r)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Fatalf("PathID(%q) = %d, %v", tt.raw, got, err)
			}
		})
	}
}

func TestGenerateOIDCState(t *testing.T) {
	a, err := GenerateOIDCState()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, _ := GenerateOIDCState()
	if a == b || len(a) != 43 {
		t.Fatalf("unexpected states %q %q", a, b)
	}
}
