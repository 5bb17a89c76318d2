// Package compare reports per-channel differences between two images.
//
// It backs the cross-backend check of the unsharp CLI: a data-parallel
// result is compared with the sequential reference, and any channel that
// drifts by more than the tolerance is reported.
package compare

import (
	"fmt"
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/gogpu/unsharp"
)

// ChannelStats summarizes the absolute differences of one channel.
type ChannelStats struct {
	Channel    int
	MaxAbs     float64
	MeanAbs    float64
	Mismatched int
}

// Stats summarizes the absolute per-byte differences of two images.
type Stats struct {
	Samples    int
	MaxAbs     float64
	MeanAbs    float64
	StdDev     float64
	P99        float64
	Mismatched int
	Channels   []ChannelStats
}

// Images compares got against want byte by byte.
// Both images must share one layout.
func Images(got, want *unsharp.Image) (Stats, error) {
	if got == nil || want == nil {
		return Stats{}, fmt.Errorf("compare: nil image")
	}
	if !got.SameLayout(want) {
		return Stats{}, fmt.Errorf("compare: layout %dx%dx%d vs %dx%dx%d",
			got.Width(), got.Height(), got.Channels(),
			want.Width(), want.Height(), want.Channels())
	}

	channels := got.Channels()
	g, w := got.Data(), want.Data()

	all := make([]float64, len(g))
	perChannel := make([][]float64, channels)
	for c := range perChannel {
		perChannel[c] = make([]float64, 0, len(g)/channels)
	}
	for i := range g {
		d := float64(g[i]) - float64(w[i])
		if d < 0 {
			d = -d
		}
		all[i] = d
		perChannel[i%channels] = append(perChannel[i%channels], d)
	}

	s := Stats{Samples: len(all)}
	s.MaxAbs = floats.Max(all)
	s.MeanAbs, s.StdDev = stat.MeanStdDev(all, nil)
	s.Mismatched = floats.Count(nonZero, all)

	sorted := slices.Clone(all)
	slices.Sort(sorted)
	s.P99 = stat.Quantile(0.99, stat.Empirical, sorted, nil)

	s.Channels = make([]ChannelStats, channels)
	for c, diffs := range perChannel {
		s.Channels[c] = ChannelStats{
			Channel:    c,
			MaxAbs:     floats.Max(diffs),
			MeanAbs:    stat.Mean(diffs, nil),
			Mismatched: floats.Count(nonZero, diffs),
		}
	}
	return s, nil
}

func nonZero(v float64) bool { return v != 0 }

// Within reports whether no byte differs by more than tolerance.
func (s Stats) Within(tolerance float64) bool {
	return s.MaxAbs <= tolerance
}

// String formats the summary on one line per channel.
func (s Stats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "samples=%d max=%.0f mean=%.4f stddev=%.4f p99=%.0f mismatched=%d",
		s.Samples, s.MaxAbs, s.MeanAbs, s.StdDev, s.P99, s.Mismatched)
	for _, c := range s.Channels {
		fmt.Fprintf(&b, "\n  channel %d: max=%.0f mean=%.4f mismatched=%d",
			c.Channel, c.MaxAbs, c.MeanAbs, c.Mismatched)
	}
	return b.String()
}
