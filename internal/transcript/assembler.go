// Package transcript flattens a channel's extracted units into the single
// ordered string fed to insight generation.
package transcript

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lastro-co/insights-agent/internal/extractor"
	"github.com/lastro-co/insights-agent/internal/hubspot"
)

// Assemble orders a channel's units by timestamp and joins them into one
// transcript string. Chat units become "[ts] text" lines; call and
// meeting units become "[ts]\ntext" blocks separated by blank lines.
// No units produces the empty string, which is the sole definition of
// "channel unavailable" downstream.
//
// Ordering is lexical on the timestamp strings. HubSpot hs_timestamp
// values are fixed-width epoch-millisecond strings, so lexical and
// numeric order agree for real records.
func Assemble(ch hubspot.Channel, units []extractor.Unit) string {
	if len(units) == 0 {
		return ""
	}

	ordered := slices.Clone(units)
	slices.SortStableFunc(ordered, func(a, b extractor.Unit) int {
		return strings.Compare(a.Timestamp, b.Timestamp)
	})

	parts := make([]string, len(ordered))
	for i, u := range ordered {
		if ch == hubspot.ChannelChat {
			parts[i] = fmt.Sprintf("[%s] %s", u.Timestamp, u.Text)
		} else {
			parts[i] = fmt.Sprintf("[%s]\n%s", u.Timestamp, u.Text)
		}
	}

	sep := "\n\n"
	if ch == hubspot.ChannelChat {
		sep = "\n"
	}
	return strings.Join(parts, sep)
}

// Available reports whether a transcript carries any signal.
func Available(transcript string) bool {
	return strings.TrimSpace(transcript) != ""
}
