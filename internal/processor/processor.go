// Package processor drives one full insights invocation for a contact:
// fetch, extract, assemble, generate, render, write back.
package processor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lastro-co/insights-agent/internal/events"
	"github.com/lastro-co/insights-agent/internal/extractor"
	"github.com/lastro-co/insights-agent/internal/hubspot"
	"github.com/lastro-co/insights-agent/internal/insights"
	"github.com/lastro-co/insights-agent/internal/notes"
	"github.com/lastro-co/insights-agent/internal/slack"
	"github.com/lastro-co/insights-agent/internal/transcript"
)

// CRM is the collaborator surface the processor needs from HubSpot.
type CRM interface {
	SearchEngagements(ctx context.Context, contactID string, ch hubspot.Channel) ([]hubspot.Engagement, error)
	CreateNote(ctx context.Context, contactID, body string) (string, error)
}

var noteTitles = map[hubspot.Channel]string{
	hubspot.ChannelChat:     "🤖 Insights (Cooby/WhatsApp)",
	hubspot.ChannelCalls:    "🤖 Insights (Ligações)",
	hubspot.ChannelMeetings: "🤖 Insights (Reuniões)",
}

const aggregateTitle = "🤖 Insights (Geral)"

type Processor struct {
	crm    CRM
	orch   *insights.Orchestrator
	events *events.Publisher
	slack  *slack.Notifier
	logger *slog.Logger
}

// New wires the processor. The events publisher and slack notifier may be
// nil; the pipeline runs without them.
func New(crm CRM, orch *insights.Orchestrator, ev *events.Publisher, sl *slack.Notifier, logger *slog.Logger) *Processor {
	return &Processor{
		crm:    crm,
		orch:   orch,
		events: ev,
		slack:  sl,
		logger: logger,
	}
}

// Process runs one contact start-to-finish and assembles the outcome.
// Stage failures are collected per channel, never silently discarded:
// a fetch or generation failure on one channel leaves the others alone,
// and note ids already written are always reported.
func (p *Processor) Process(ctx context.Context, req Request) *Outcome {
	p.logger.Info("processing contact",
		"contact_id", req.ContactID,
		"create_note", req.CreateNote,
	)

	transcripts := make(map[hubspot.Channel]string, len(hubspot.Channels))
	chErrs := make(map[hubspot.Channel]error)

	for _, ch := range hubspot.Channels {
		engagements, err := p.crm.SearchEngagements(ctx, req.ContactID, ch)
		if err != nil {
			p.logger.Error("channel fetch failed", "channel", string(ch), "error", err)
			chErrs[ch] = err
			continue
		}

		var units []extractor.Unit
		for _, rec := range engagements {
			if u, ok := extractor.Extract(rec, req.SinceEpochMs); ok {
				units = append(units, u)
			}
		}
		transcripts[ch] = transcript.Assemble(ch, units)

		p.logger.Debug("channel transcript assembled",
			"channel", string(ch),
			"records", len(engagements),
			"units", len(units),
			"available", transcript.Available(transcripts[ch]),
		)
	}

	report := p.orch.Run(ctx, transcripts)
	if report.NoData {
		p.logger.Info("no data for contact", "contact_id", req.ContactID)
		return assembleOutcome(report, chErrs, nil, nil)
	}

	noteIDs := make(map[string]*string)
	for _, ch := range hubspot.Channels {
		slot := report.Channels[ch]
		if slot.Result == nil {
			continue
		}
		id, err := p.writeNote(ctx, req, noteTitles[ch], slot.Result)
		if err != nil {
			if chErrs[ch] == nil {
				chErrs[ch] = err
			}
			continue
		}
		noteIDs[string(ch)] = id
	}

	var aggErr error
	if report.Aggregate != nil && report.Aggregate.Result != nil {
		id, err := p.writeNote(ctx, req, aggregateTitle, report.Aggregate.Result)
		if err != nil {
			aggErr = err
		} else {
			noteIDs[GeneralKey] = id
		}
	}

	outcome := assembleOutcome(report, chErrs, aggErr, noteIDs)

	if outcome.OK {
		p.announce(ctx, req.ContactID, outcome)
	}
	return outcome
}

// writeNote renders and persists one insight note. A nil id with nil
// error means note creation was not requested.
func (p *Processor) writeNote(ctx context.Context, req Request, title string, result *insights.Result) (*string, error) {
	if !req.CreateNote {
		return nil, nil
	}

	id, err := p.crm.CreateNote(ctx, req.ContactID, notes.Render(title, result))
	if err != nil {
		p.logger.Error("note write failed",
			"contact_id", req.ContactID,
			"title", title,
			"error", err,
		)
		return nil, err
	}
	return &id, nil
}

// announce fans the finished outcome out to the optional surfaces.
// Failures here are logged, never propagated.
func (p *Processor) announce(ctx context.Context, contactID string, outcome *Outcome) {
	if p.events != nil {
		payload := map[string]any{
			"contact_id": contactID,
			"channels":   outcome.Channels,
			"notes":      outcome.Notes,
		}
		if outcome.General != nil {
			payload["general"] = outcome.General
		}
		if err := p.events.Publish(events.SubjectInsightsGenerated, payload); err != nil {
			p.logger.Error("failed to publish insights event", "error", err)
		}
	}

	if p.slack != nil {
		if err := p.slack.Notify(ctx, summaryText(contactID, outcome)); err != nil {
			p.logger.Error("failed to post slack notification", "error", err)
		}
	}
}

func summaryText(contactID string, outcome *Outcome) string {
	available := 0
	for _, status := range outcome.Channels {
		if status.Available {
			available++
		}
	}
	text := fmt.Sprintf("Novos insights para o contato %s (%d canais com sinal)", contactID, available)
	if outcome.General != nil && outcome.General.ScorePos != nil {
		text += fmt.Sprintf(" — lead score %d", *outcome.General.ScorePos)
	}
	return text
}
