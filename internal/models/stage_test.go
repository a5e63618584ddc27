package models

import (
	"encoding/json"
	"testing"
)

func TestNormalizeStage(t *testing.T) {
	cases := map[string]string{
		"":             StageIncoming,
		"   ":          StageIncoming,
		"Conversación": StageContacted,
		"Negociación":  StageNegotiation,
		"Trato Ganado": StageWon,
		"Prospecto":    "Prospecto",
	}
	for in, want := range cases {
		if got := NormalizeStage(in); got != want {
			t.Fatalf("NormalizeStage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLostStages(t *testing.T) {
	if !IsLostStage("Trato Perdido") || !IsLostStage("Cerrado Perdido") {
		t.Fatalf("expected both lost labels to be lost")
	}
	if IsLostStage("Trato Ganado") {
		t.Fatalf("won deals are not lost")
	}
}

func TestRefDecoding(t *testing.T) {
	cases := []struct {
		body string
		want *int64
	}{
		{`{}`, nil},
		{`{"contactId":null}`, nil},
		{`{"contactId":""}`, nil},
		{`{"contactId":0}`, nil},
		{`{"contactId":7}`, ptr(7)},
		{`{"contactId":"12"}`, ptr(12)},
	}
	for _, c := range cases {
		var p CommunicationPayload
		if err := json.Unmarshal([]byte(c.body), &p); err != nil {
			t.Fatalf("%s: %v", c.body, err)
		}
		got := p.ContactID.Ptr()
		if (got == nil) != (c.want == nil) || (got != nil && *got != *c.want) {
			t.Fatalf("%s: got %v, want %v", c.body, got, c.want)
		}
	}

	var p CommunicationPayload
	if err := json.Unmarshal([]byte(`{"contactId":"abc"}`), &p); err == nil {
		t.Fatalf("expected non-numeric reference to fail")
	}
}

func ptr(v int64) *int64 { return &v }
