package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.hubapi.com"

// coobyToken identifies WhatsApp messages synced by the Cooby integration.
// Communications without it are plain CRM emails/SMS and carry no chat signal.
const coobyToken = "Cooby.co"

type Client struct {
	token   string
	baseURL string
	limit   int
	client  *http.Client
	logger  *slog.Logger
	now     func() time.Time
}

func NewClient(token string, limit int, logger *slog.Logger) *Client {
	return &Client{
		token:   token,
		baseURL: defaultBaseURL,
		limit:   limit,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
		now:     time.Now,
	}
}

// SetBaseURL overrides the HubSpot API endpoint.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// SetTestTransport points the client at a test server.
func (c *Client) SetTestTransport(baseURL string) {
	c.SetBaseURL(baseURL)
}

type searchFilter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

type searchRequest struct {
	FilterGroups []struct {
		Filters []searchFilter `json:"filters"`
	} `json:"filterGroups"`
	Properties []string `json:"properties"`
	Limit      int      `json:"limit"`
	Sorts      []struct {
		PropertyName string `json:"propertyName"`
		Direction    string `json:"direction"`
	} `json:"sorts"`
}

type searchResponse struct {
	Results []struct {
		ID         string            `json:"id"`
		Properties map[string]string `json:"properties"`
	} `json:"results"`
}

// channelSearch describes how one channel maps onto the CRM search API.
type channelSearch struct {
	objectPath  string
	bodyProp    string
	properties  []string
	extraFilter *searchFilter
}

var channelSearches = map[Channel]channelSearch{
	ChannelChat: {
		objectPath: "/crm/v3/objects/communications/search",
		bodyProp:   PropCommunicationBody,
		properties: []string{PropCommunicationBody, PropTimestamp, "hs_communication_channel_type", "hs_direction"},
		extraFilter: &searchFilter{
			PropertyName: PropCommunicationBody,
			Operator:     "CONTAINS_TOKEN",
			Value:        coobyToken,
		},
	},
	ChannelCalls: {
		objectPath: "/crm/v3/objects/calls/search",
		bodyProp:   PropCallBody,
		properties: []string{PropCallSummary, PropCallSummaryLegacy, PropCallBody, PropTimestamp},
	},
	ChannelMeetings: {
		objectPath: "/crm/v3/objects/notes/search",
		bodyProp:   PropNoteBody,
		properties: []string{PropNoteBody, PropTimestamp},
	},
}

// SearchEngagements fetches the raw engagement records of one channel for
// a contact, newest first, capped at the configured limit. The caller
// re-sorts; fetch order is not relied on.
func (c *Client) SearchEngagements(ctx context.Context, contactID string, ch Channel) ([]Engagement, error) {
	search, ok := channelSearches[ch]
	if !ok {
		return nil, &TransportError{Op: "search", Err: fmt.Errorf("unknown channel %q", ch)}
	}

	var req searchRequest
	filters := []searchFilter{{
		PropertyName: "associations.contact",
		Operator:     "EQ",
		Value:        contactID,
	}}
	if search.extraFilter != nil {
		filters = append(filters, *search.extraFilter)
	}
	req.FilterGroups = []struct {
		Filters []searchFilter `json:"filters"`
	}{{Filters: filters}}
	req.Properties = search.properties
	req.Limit = c.limit
	req.Sorts = []struct {
		PropertyName string `json:"propertyName"`
		Direction    string `json:"direction"`
	}{{PropertyName: PropTimestamp, Direction: "DESCENDING"}}

	var resp searchResponse
	if err := c.post(ctx, search.objectPath, req, &resp); err != nil {
		return nil, &TransportError{Op: "search " + string(ch), Err: err}
	}

	engagements := make([]Engagement, 0, len(resp.Results))
	for _, r := range resp.Results {
		engagements = append(engagements, Engagement{
			ID:         r.ID,
			Channel:    ch,
			Timestamp:  r.Properties[PropTimestamp],
			Body:       r.Properties[search.bodyProp],
			Properties: r.Properties,
		})
	}

	c.logger.Debug("engagements fetched",
		"contact_id", contactID,
		"channel", string(ch),
		"count", len(engagements),
	)
	return engagements, nil
}

type createNoteResponse struct {
	ID string `json:"id"`
}

// CreateNote writes an HTML note and associates it to the contact.
// Association uses the v3 endpoint with a v4 fallback for portals where
// the labelled v3 route 404s.
func (c *Client) CreateNote(ctx context.Context, contactID, body string) (string, error) {
	payload := map[string]any{
		"properties": map[string]any{
			PropNoteBody:  body,
			PropTimestamp: c.now().UnixMilli(),
		},
	}

	var created createNoteResponse
	if err := c.post(ctx, "/crm/v3/objects/notes", payload, &created); err != nil {
		return "", &PersistenceError{Op: "create note", Err: err}
	}
	if created.ID == "" {
		return "", &PersistenceError{Op: "create note", Err: fmt.Errorf("no note id in response")}
	}

	assocPath := fmt.Sprintf("/crm/v3/objects/notes/%s/associations/contacts/%s/note_to_contact", created.ID, contactID)
	status, err := c.doEmpty(ctx, http.MethodPut, assocPath, nil)
	if err != nil {
		return "", &PersistenceError{Op: "associate note", Err: err}
	}
	if status == http.StatusNotFound {
		v4Path := fmt.Sprintf("/crm/v4/objects/notes/%s/associations/contacts/%s", created.ID, contactID)
		v4Body := map[string]any{
			"inputs": []map[string]any{
				{"types": []map[string]any{
					{"associationCategory": "HUBSPOT_DEFINED", "associationTypeId": 202},
				}},
			},
		}
		status, err = c.doEmpty(ctx, http.MethodPost, v4Path, v4Body)
		if err != nil {
			return "", &PersistenceError{Op: "associate note v4", Err: err}
		}
	}
	if status >= 300 {
		return "", &PersistenceError{Op: "associate note", Err: fmt.Errorf("status %d", status)}
	}

	c.logger.Info("note created", "contact_id", contactID, "note_id", created.ID)
	return created.ID, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("api error %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// doEmpty issues a request where only the status code matters. A 404 is
// returned to the caller rather than treated as an error so association
// fallbacks can branch on it.
func (c *Client) doEmpty(ctx context.Context, method, path string, payload any) (int, error) {
	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
