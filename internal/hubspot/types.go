package hubspot

// Channel is one category of CRM engagement treated as an independent
// signal source.
type Channel string

const (
	ChannelChat     Channel = "chat"
	ChannelCalls    Channel = "calls"
	ChannelMeetings Channel = "meetings"
)

// Channels lists every channel in the order transcripts are reported.
var Channels = []Channel{ChannelChat, ChannelCalls, ChannelMeetings}

// Engagement is one raw engagement record as returned by the CRM search
// API. Immutable once fetched.
type Engagement struct {
	ID         string
	Channel    Channel
	Timestamp  string // epoch milliseconds, string-encoded as HubSpot stores it
	Body       string
	Properties map[string]string
}

// Property names per object type.
const (
	PropCommunicationBody = "hs_communication_body"
	PropCallSummary       = "hs_call_summary"
	PropCallSummaryLegacy = "call_summary"
	PropCallBody          = "hs_call_body"
	PropNoteBody          = "hs_note_body"
	PropTimestamp         = "hs_timestamp"
)

// TransportError indicates a channel fetch failed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return "hubspot " + e.Op + ": " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// PersistenceError indicates a note write or contact association failed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return "hubspot " + e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }
