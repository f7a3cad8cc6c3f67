package changes

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"pet-marketplace/internal/domain/pets"
)

func TestDecode_ClassifiesRecords(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		typ    EventType
		wantID string
	}{
		{"insert lowercase", `{"eventType":"insert","table":"pets","new":{"id":"p1","name":"Rex"}}`, EventInsert, "p1"},
		{"update", `{"eventType":"UPDATE","new":{"id":"p2","name":"Milo"},"old":{"id":"p2"}}`, EventUpdate, "p2"},
		{"delete", `{"eventType":"DELETE","old":{"id":"p3"}}`, EventDelete, "p3"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev, err := Decode([]byte(tc.raw))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if ev.Type != tc.typ || ev.ID() != tc.wantID {
				t.Fatalf("got type=%s id=%s, want %s/%s", ev.Type, ev.ID(), tc.typ, tc.wantID)
			}
		})
	}
}

func TestDecode_RejectsMalformed(t *testing.T) {
	bad := []string{
		`not json`,
		`{"eventType":"TRUNCATE","new":{"id":"p1"}}`,
		`{"eventType":"INSERT"}`,
		`{"eventType":"DELETE","new":{"id":"p1"}}`,
		`{"eventType":"INSERT","new":{"name":"no id"}}`,
		`{"eventType":"INSERT","table":"orders","new":{"id":"o1"}}`,
	}
	for _, raw := range bad {
		if _, err := Decode([]byte(raw)); !errors.Is(err, ErrDecode) {
			t.Fatalf("expected ErrDecode for %s, got %v", raw, err)
		}
	}
}

func TestFromChange_RoundTripsThroughDecode(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p := pets.Pet{ID: "p9", OwnerUserID: "user-1", Name: "Rex", Species: pets.SpeciesDog, Version: 3}

	rec := FromChange(pets.Change{Kind: pets.ChangeInsert, New: &p}, now)
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	ev, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if ev.Type != EventInsert || ev.New.Name != "Rex" || ev.New.Version != 3 || ev.New.OwnerUserID != "user-1" {
		t.Fatalf("unexpected event %#v", ev.New)
	}
}
