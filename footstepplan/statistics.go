package footstepplan

import (
	"time"

	"github.com/montanaflynn/stats"
	"github.com/samber/lo"
)

// Statistics summarizes the search of one request.
type Statistics struct {
	Iterations          int
	Expansions          int
	NodesInGraph        int
	ValidChildren       int
	Rejections          map[RejectionReason]int
	MedianIterationTime time.Duration
	MaxIterationTime    time.Duration
}

// TotalRejections returns the number of rejected children.
func (s Statistics) TotalRejections() int {
	return lo.Sum(lo.Values(s.Rejections))
}

// statisticsCollector accumulates per-iteration data on the planning goroutine.
type statisticsCollector struct {
	iterations    int
	validChildren int
	rejections    map[RejectionReason]int
	durations     stats.Float64Data
}

func newStatisticsCollector() *statisticsCollector {
	return &statisticsCollector{rejections: map[RejectionReason]int{}}
}

func (c *statisticsCollector) record(record *IterationRecord, took time.Duration) {
	c.iterations++
	c.validChildren += len(record.ValidChildren)
	for _, rejected := range record.InvalidChildren {
		c.rejections[rejected.Reason]++
	}
	c.durations = append(c.durations, float64(took))
}

// snapshot copies the collected data so it can be published.
func (c *statisticsCollector) snapshot(expansions, nodes int) Statistics {
	out := Statistics{
		Iterations:    c.iterations,
		Expansions:    expansions,
		NodesInGraph:  nodes,
		ValidChildren: c.validChildren,
		Rejections:    lo.Assign(c.rejections),
	}
	if median, err := stats.Median(c.durations); err == nil {
		out.MedianIterationTime = time.Duration(median)
	}
	if maxDuration, err := stats.Max(c.durations); err == nil {
		out.MaxIterationTime = time.Duration(maxDuration)
	}
	return out
}
