package bench

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreadStatsPercentiles(t *testing.T) {
	s := NewThreadStats()
	for i := 100; i >= 1; i-- {
		s.Record(time.Duration(i) * time.Millisecond)
	}
	s.Finalize()

	require.EqualValues(t, 100, s.Operations)
	assert.Equal(t, 1*time.Millisecond, s.Percentile(0))
	assert.Equal(t, 100*time.Millisecond, s.Percentile(1))
	assert.Equal(t, 50*time.Millisecond, s.Percentile(0.5))
	assert.Equal(t, 99*time.Millisecond, s.Percentile(0.99))
}

func TestThreadStatsAvgAndThroughput(t *testing.T) {
	s := NewThreadStats()
	s.Record(10 * time.Millisecond)
	s.Record(30 * time.Millisecond)

	assert.Equal(t, 20*time.Millisecond, s.AvgLatency())
	assert.InDelta(t, 1.0, s.Throughput(2*time.Second), 1e-9)
}

func TestThreadStatsEmpty(t *testing.T) {
	s := NewThreadStats()
	s.Finalize()

	assert.Equal(t, time.Duration(0), s.AvgLatency())
	assert.Equal(t, time.Duration(0), s.Percentile(0.99))
	assert.Equal(t, 0.0, s.Throughput(time.Second))
}

func TestResultsAggregation(t *testing.T) {
	r1 := NewThreadStats()
	r2 := NewThreadStats()
	w := NewThreadStats()
	for i := 1; i <= 10; i++ {
		r1.Record(time.Duration(i) * time.Millisecond)
		r2.Record(time.Duration(i*10) * time.Millisecond)
	}
	w.Record(5 * time.Millisecond)
	w.Failures = 2
	r1.Failures = 1

	results := &Results{
		Readers: []*ThreadStats{r1, r2},
		Writers: []*ThreadStats{w},
		Elapsed: 10 * time.Second,
	}

	assert.InDelta(t, 2.0, results.TotalReadThroughput(), 1e-9)
	assert.InDelta(t, 0.1, results.TotalWriteThroughput(), 1e-9)
	assert.EqualValues(t, 3, results.TotalFailures())

	// combined sample is 1..10 and 10..100 ms, 20 values
	assert.Equal(t, 1*time.Millisecond, results.CombinedReadPercentile(0))
	assert.Equal(t, 100*time.Millisecond, results.CombinedReadPercentile(1))

	// mean of both samples: (55 + 550) / 20
	assert.Equal(t, 30250*time.Microsecond, results.AvgReadLatency())
}
