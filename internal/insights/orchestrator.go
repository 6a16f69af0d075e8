package insights

import (
	"context"
	"log/slog"

	"github.com/lastro-co/insights-agent/internal/hubspot"
	"github.com/lastro-co/insights-agent/internal/transcript"
)

// ChannelInsight is one slot of an orchestration report: the channel's
// transcript, whether it carried signal, and the generation outcome.
type ChannelInsight struct {
	Transcript string
	Available  bool
	Result     *Result
	Err        error
}

// Report collects every stage result of one orchestration. One channel's
// generation failure never blocks another channel or the aggregate call;
// callers decide what partial success means.
type Report struct {
	Channels  map[hubspot.Channel]*ChannelInsight
	Aggregate *ChannelInsight
	NoData    bool
}

type Orchestrator struct {
	gen    Generator
	logger *slog.Logger
}

func NewOrchestrator(gen Generator, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{gen: gen, logger: logger}
}

// Run issues one single-source generation call per available channel plus
// exactly one aggregate call across all channels. When every channel is
// unavailable it short-circuits with NoData and issues no calls at all.
func (o *Orchestrator) Run(ctx context.Context, transcripts map[hubspot.Channel]string) *Report {
	report := &Report{Channels: make(map[hubspot.Channel]*ChannelInsight, len(hubspot.Channels))}

	anyAvailable := false
	for _, ch := range hubspot.Channels {
		text := transcripts[ch]
		slot := &ChannelInsight{
			Transcript: text,
			Available:  transcript.Available(text),
		}
		report.Channels[ch] = slot
		if slot.Available {
			anyAvailable = true
		}
	}

	if !anyAvailable {
		o.logger.Info("no channel transcripts available")
		report.NoData = true
		return report
	}

	for _, ch := range hubspot.Channels {
		slot := report.Channels[ch]
		if !slot.Available {
			continue
		}
		result, err := o.gen.Generate(ctx, map[hubspot.Channel]string{ch: slot.Transcript})
		if err != nil {
			o.logger.Error("channel generation failed", "channel", string(ch), "error", err)
			slot.Err = err
			continue
		}
		slot.Result = result
		o.logger.Info("channel insights generated",
			"channel", string(ch),
			"score_pre", result.LeadScorePre,
			"score_pos", result.LeadScorePos,
		)
	}

	// The aggregate call reconciles overlapping signals across channels;
	// unavailable channels are supplied as empty placeholders.
	combined := make(map[hubspot.Channel]string, len(hubspot.Channels))
	for _, ch := range hubspot.Channels {
		combined[ch] = report.Channels[ch].Transcript
	}
	report.Aggregate = &ChannelInsight{Available: true}
	result, err := o.gen.Generate(ctx, combined)
	if err != nil {
		o.logger.Error("aggregate generation failed", "error", err)
		report.Aggregate.Err = err
		return report
	}
	report.Aggregate.Result = result
	o.logger.Info("aggregate insights generated",
		"score_pre", result.LeadScorePre,
		"score_pos", result.LeadScorePos,
	)
	return report
}
