package processor

import (
	"strings"

	"github.com/lastro-co/insights-agent/internal/hubspot"
	"github.com/lastro-co/insights-agent/internal/insights"
)

// Failure reasons.
const (
	ReasonNoData = "NO_DATA"
	ReasonError  = "ERROR"

	// ReasonNoMessages is what this agent returned before calls and
	// meetings became channels. Kept exported so workflow automations
	// that still branch on it keep compiling against this package.
	ReasonNoMessages = "NO_MESSAGES"
)

// Request is the invocation boundary for one contact.
type Request struct {
	ContactID    string
	CreateNote   bool
	SinceEpochMs *int64
}

// ChannelStatus reports one channel's availability, scores and error.
// Scores are pointers: a channel that never produced an insight reports
// null, since zero is a valid score value.
type ChannelStatus struct {
	Available bool   `json:"available"`
	ScorePre  *int   `json:"scorePre"`
	ScorePos  *int   `json:"scorePos"`
	Label     string `json:"label,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Outcome is the terminal result of one invocation.
type Outcome struct {
	OK       bool                      `json:"ok"`
	Reason   string                    `json:"reason,omitempty"`
	Error    string                    `json:"error,omitempty"`
	Channels map[string]*ChannelStatus `json:"channels,omitempty"`
	General  *ChannelStatus            `json:"general,omitempty"`
	Notes    map[string]*string        `json:"notes,omitempty"`
}

// GeneralKey is the notes-map key for the aggregate insight.
const GeneralKey = "general"

// assembleOutcome folds the orchestration report, per-channel errors and
// written note ids into the final outcome. Partial progress is never
// discarded: the run fails outright only when no insight at all was
// produced.
func assembleOutcome(report *insights.Report, chErrs map[hubspot.Channel]error, aggErr error, noteIDs map[string]*string) *Outcome {
	out := &Outcome{Channels: make(map[string]*ChannelStatus, len(hubspot.Channels))}

	var errTexts []string
	produced := false

	for _, ch := range hubspot.Channels {
		slot := report.Channels[ch]
		status := &ChannelStatus{Available: slot.Available}

		if err := chErrs[ch]; err != nil {
			status.Error = err.Error()
			errTexts = append(errTexts, err.Error())
		} else if slot.Err != nil {
			status.Error = slot.Err.Error()
			errTexts = append(errTexts, slot.Err.Error())
		}

		if slot.Result != nil {
			produced = true
			status.ScorePre = intPtr(slot.Result.LeadScorePre)
			status.ScorePos = intPtr(slot.Result.LeadScorePos)
			status.Label = slot.Result.InteractionLabel
		}
		out.Channels[string(ch)] = status
	}

	if report.NoData {
		out.Reason = ReasonNoData
		if len(chErrs) == len(hubspot.Channels) {
			// Every fetch failed; "no data" would be misleading.
			out.Reason = ReasonError
			out.Error = strings.Join(errTexts, "; ")
		}
		return out
	}

	if report.Aggregate != nil {
		status := &ChannelStatus{Available: true}
		switch {
		case report.Aggregate.Err != nil:
			status.Error = report.Aggregate.Err.Error()
			errTexts = append(errTexts, report.Aggregate.Err.Error())
		case aggErr != nil:
			status.Error = aggErr.Error()
			errTexts = append(errTexts, aggErr.Error())
		}
		if report.Aggregate.Result != nil {
			produced = true
			status.ScorePre = intPtr(report.Aggregate.Result.LeadScorePre)
			status.ScorePos = intPtr(report.Aggregate.Result.LeadScorePos)
			status.Label = report.Aggregate.Result.InteractionLabel
		}
		out.General = status
	}

	if !produced {
		out.Reason = ReasonError
		out.Error = strings.Join(errTexts, "; ")
		return out
	}

	out.OK = true
	if len(noteIDs) > 0 {
		out.Notes = noteIDs
	}
	if len(errTexts) > 0 {
		out.Error = strings.Join(errTexts, "; ")
	}
	return out
}

func intPtr(v int) *int {
	return &v
}
