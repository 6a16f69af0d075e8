package insights

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/lastro-co/insights-agent/internal/hubspot"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeGenerator records every call and replays canned responses.
type fakeGenerator struct {
	calls   []map[hubspot.Channel]string
	results []*Result
	errs    []error
}

func (f *fakeGenerator) Generate(_ context.Context, transcripts map[hubspot.Channel]string) (*Result, error) {
	idx := len(f.calls)
	copied := make(map[hubspot.Channel]string, len(transcripts))
	for k, v := range transcripts {
		copied[k] = v
	}
	f.calls = append(f.calls, copied)

	var err error
	if idx < len(f.errs) {
		err = f.errs[idx]
	}
	if err != nil {
		return nil, err
	}
	if idx < len(f.results) {
		return f.results[idx], nil
	}
	return &Result{LeadScorePre: 50, LeadScorePos: 70}, nil
}

func TestRun_AllUnavailable(t *testing.T) {
	gen := &fakeGenerator{}
	o := NewOrchestrator(gen, discardLogger())

	report := o.Run(context.Background(), map[hubspot.Channel]string{})

	if !report.NoData {
		t.Error("expected NoData report")
	}
	if len(gen.calls) != 0 {
		t.Errorf("expected zero generation calls, got %d", len(gen.calls))
	}
	for ch, slot := range report.Channels {
		if slot.Available {
			t.Errorf("expected %s unavailable", ch)
		}
	}
}

func TestRun_SingleChannel(t *testing.T) {
	gen := &fakeGenerator{}
	o := NewOrchestrator(gen, discardLogger())

	report := o.Run(context.Background(), map[hubspot.Channel]string{
		hubspot.ChannelChat: "[1] oi, qual o preço?",
	})

	if report.NoData {
		t.Fatal("expected data")
	}
	if len(gen.calls) != 2 {
		t.Fatalf("expected exactly 2 generation calls, got %d", len(gen.calls))
	}

	// First call is chat-only.
	if len(gen.calls[0]) != 1 {
		t.Errorf("expected single-source call, got %+v", gen.calls[0])
	}
	if gen.calls[0][hubspot.ChannelChat] != "[1] oi, qual o preço?" {
		t.Errorf("unexpected chat transcript: %+v", gen.calls[0])
	}

	// Aggregate call carries all three channels with empty placeholders.
	agg := gen.calls[1]
	if len(agg) != 3 {
		t.Fatalf("expected aggregate call with 3 entries, got %+v", agg)
	}
	if agg[hubspot.ChannelCalls] != "" || agg[hubspot.ChannelMeetings] != "" {
		t.Errorf("expected empty placeholders for unavailable channels, got %+v", agg)
	}

	if report.Channels[hubspot.ChannelChat].Result == nil {
		t.Error("expected chat result")
	}
	if report.Channels[hubspot.ChannelCalls].Available {
		t.Error("expected calls unavailable")
	}
	if report.Aggregate == nil || report.Aggregate.Result == nil {
		t.Error("expected aggregate result")
	}
}

func TestRun_AllChannels(t *testing.T) {
	gen := &fakeGenerator{}
	o := NewOrchestrator(gen, discardLogger())

	report := o.Run(context.Background(), map[hubspot.Channel]string{
		hubspot.ChannelChat:     "chat text",
		hubspot.ChannelCalls:    "call text",
		hubspot.ChannelMeetings: "meeting text",
	})

	if len(gen.calls) != 4 {
		t.Fatalf("expected 4 generation calls (3 channels + aggregate), got %d", len(gen.calls))
	}
	for _, ch := range hubspot.Channels {
		if report.Channels[ch].Result == nil {
			t.Errorf("expected result for %s", ch)
		}
	}
}

func TestRun_ChannelFailureDoesNotBlockOthers(t *testing.T) {
	genErr := &GenerationError{Err: errors.New("model refused")}
	gen := &fakeGenerator{errs: []error{genErr, nil, nil}}
	o := NewOrchestrator(gen, discardLogger())

	report := o.Run(context.Background(), map[hubspot.Channel]string{
		hubspot.ChannelChat:  "chat text",
		hubspot.ChannelCalls: "call text",
	})

	if len(gen.calls) != 3 {
		t.Fatalf("expected 3 generation calls, got %d", len(gen.calls))
	}
	if report.Channels[hubspot.ChannelChat].Err == nil {
		t.Error("expected chat error recorded")
	}
	if report.Channels[hubspot.ChannelCalls].Result == nil {
		t.Error("expected calls result despite chat failure")
	}
	if report.Aggregate == nil || report.Aggregate.Result == nil {
		t.Error("expected aggregate result despite chat failure")
	}
}

func TestRun_WhitespaceTranscriptIsUnavailable(t *testing.T) {
	gen := &fakeGenerator{}
	o := NewOrchestrator(gen, discardLogger())

	report := o.Run(context.Background(), map[hubspot.Channel]string{
		hubspot.ChannelCalls: "   \n ",
	})

	if !report.NoData {
		t.Error("expected NoData for whitespace-only transcript")
	}
	if len(gen.calls) != 0 {
		t.Errorf("expected zero generation calls, got %d", len(gen.calls))
	}
}
