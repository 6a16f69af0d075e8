package hubspot

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSearchEngagements_Chat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/crm/v3/objects/communications/search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("expected bearer auth, got %q", got)
		}

		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(req.FilterGroups) != 1 || len(req.FilterGroups[0].Filters) != 2 {
			t.Fatalf("unexpected filters: %+v", req.FilterGroups)
		}
		if f := req.FilterGroups[0].Filters[0]; f.PropertyName != "associations.contact" || f.Value != "1701" {
			t.Errorf("unexpected contact filter: %+v", f)
		}
		if f := req.FilterGroups[0].Filters[1]; f.Operator != "CONTAINS_TOKEN" || f.Value != "Cooby.co" {
			t.Errorf("unexpected body filter: %+v", f)
		}
		if req.Limit != 100 {
			t.Errorf("expected limit 100, got %d", req.Limit)
		}
		if len(req.Sorts) != 1 || req.Sorts[0].Direction != "DESCENDING" {
			t.Errorf("unexpected sorts: %+v", req.Sorts)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{
					"id": "c-1",
					"properties": map[string]string{
						"hs_communication_body": "Message text: oi",
						"hs_timestamp":          "1700000000000",
					},
				},
			},
		})
	}))
	defer server.Close()

	c := NewClient("test-token", 100, discardLogger())
	c.SetTestTransport(server.URL)

	got, err := c.SearchEngagements(context.Background(), "1701", ChannelChat)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 engagement, got %d", len(got))
	}
	if got[0].Channel != ChannelChat {
		t.Errorf("expected chat channel, got %q", got[0].Channel)
	}
	if got[0].Timestamp != "1700000000000" {
		t.Errorf("unexpected timestamp %q", got[0].Timestamp)
	}
	if got[0].Body != "Message text: oi" {
		t.Errorf("unexpected body %q", got[0].Body)
	}
}

func TestSearchEngagements_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewClient("test-token", 100, discardLogger())
	c.SetTestTransport(server.URL)

	_, err := c.SearchEngagements(context.Background(), "1701", ChannelCalls)
	if err == nil {
		t.Fatal("expected error")
	}
	var te *TransportError
	if !errors.As(err, &te) {
		t.Errorf("expected TransportError, got %T", err)
	}
}

func TestCreateNote_V3Association(t *testing.T) {
	var associated bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/crm/v3/objects/notes":
			var payload struct {
				Properties map[string]any `json:"properties"`
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Fatalf("failed to decode payload: %v", err)
			}
			if payload.Properties["hs_note_body"] != "<h3>note</h3>" {
				t.Errorf("unexpected note body: %v", payload.Properties["hs_note_body"])
			}
			if _, ok := payload.Properties["hs_timestamp"]; !ok {
				t.Error("expected hs_timestamp on note creation")
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "note-77"})
		case r.Method == http.MethodPut && r.URL.Path == "/crm/v3/objects/notes/note-77/associations/contacts/1701/note_to_contact":
			associated = true
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := NewClient("test-token", 100, discardLogger())
	c.SetTestTransport(server.URL)

	id, err := c.CreateNote(context.Background(), "1701", "<h3>note</h3>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "note-77" {
		t.Errorf("expected note-77, got %q", id)
	}
	if !associated {
		t.Error("expected v3 association call")
	}
}

func TestCreateNote_V4Fallback(t *testing.T) {
	var v4Called bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/crm/v3/objects/notes":
			json.NewEncoder(w).Encode(map[string]string{"id": "note-78"})
		case r.Method == http.MethodPut:
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPost && r.URL.Path == "/crm/v4/objects/notes/note-78/associations/contacts/1701":
			v4Called = true
			w.WriteHeader(http.StatusCreated)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	c := NewClient("test-token", 100, discardLogger())
	c.SetTestTransport(server.URL)

	id, err := c.CreateNote(context.Background(), "1701", "body")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "note-78" {
		t.Errorf("expected note-78, got %q", id)
	}
	if !v4Called {
		t.Error("expected v4 fallback association")
	}
}

func TestCreateNote_AssociationFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/crm/v3/objects/notes" {
			json.NewEncoder(w).Encode(map[string]string{"id": "note-79"})
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := NewClient("test-token", 100, discardLogger())
	c.SetTestTransport(server.URL)

	_, err := c.CreateNote(context.Background(), "1701", "body")
	if err == nil {
		t.Fatal("expected error")
	}
	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Errorf("expected PersistenceError, got %T", err)
	}
}
