// Package extractor turns raw CRM engagement records into cleaned text
// units, one rule set per channel.
package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lastro-co/insights-agent/internal/hubspot"
	"github.com/lastro-co/insights-agent/internal/markup"
)

// chatMarker locates the payload of a Cooby-synced WhatsApp message.
// Communications without it carry no usable chat signal.
var chatMarker = regexp.MustCompile(`(?is)message text:\s*(.+?)(?:\n|$)`)

// meetingMarker identifies notes authored by the meeting-summarization
// integration. Other CRM notes are not meeting summaries of interest.
const meetingMarker = "fireflies.ai"

// Unit is the cleaned, non-empty content derived from one engagement.
type Unit struct {
	Timestamp string
	Text      string
}

type extractFunc func(rec hubspot.Engagement) string

var byChannel = map[hubspot.Channel]extractFunc{
	hubspot.ChannelChat:     extractChat,
	hubspot.ChannelCalls:    extractCall,
	hubspot.ChannelMeetings: extractMeeting,
}

// Extract turns one raw engagement into a cleaned unit. The second return
// is false when the record falls before the cutoff or carries no signal.
// Records whose timestamp does not parse are not cutoff-filtered.
func Extract(rec hubspot.Engagement, cutoff *int64) (Unit, bool) {
	if cutoff != nil {
		if ts, err := strconv.ParseInt(rec.Timestamp, 10, 64); err == nil && ts < *cutoff {
			return Unit{}, false
		}
	}

	fn, ok := byChannel[rec.Channel]
	if !ok {
		return Unit{}, false
	}

	text := strings.TrimSpace(fn(rec))
	if text == "" {
		return Unit{}, false
	}
	return Unit{Timestamp: rec.Timestamp, Text: text}, true
}

func extractChat(rec hubspot.Engagement) string {
	text := markup.StripTags(rec.Body)
	m := chatMarker.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// extractCall prefers the structured summary over the raw call body.
func extractCall(rec hubspot.Engagement) string {
	summary := rec.Properties[hubspot.PropCallSummary]
	if summary == "" {
		summary = rec.Properties[hubspot.PropCallSummaryLegacy]
	}
	if summary != "" {
		return markup.CleanSummary(summary)
	}
	return markup.StripTags(rec.Body)
}

func extractMeeting(rec hubspot.Engagement) string {
	text := markup.StripTags(rec.Body)
	if !strings.Contains(strings.ToLower(text), meetingMarker) {
		return ""
	}
	return text
}
