// skl-load drives a timed read/write load against one skip list variant
// and reports throughput and read-latency percentiles.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	skiplist "github.com/b-hilprecht/atomic-skiplist"
	"github.com/b-hilprecht/atomic-skiplist/internal/bench"
)

func main() {
	variant := flag.String("variant", "atomic", "skip list variant: seq, atomic or mutex")
	readers := flag.Int("readers", 4, "number of reader goroutines")
	writers := flag.Int("writers", 1, "number of writer goroutines")
	duration := flag.Duration("duration", 10*time.Second, "how long to run the timed phase")
	keys := flag.Int("keys", 1_000_000, "key range [0, keys)")
	prefill := flag.Int("prefill", 100_000, "keys inserted before the timed phase")
	height := flag.Int("height", 22, "tower height")
	flag.Parse()

	idx, nodeSize, err := makeIndex(*variant, *height, *readers, *writers)
	if err != nil {
		log.Fatal(err)
	}

	log.WithFields(log.Fields{
		"variant":   *variant,
		"readers":   *readers,
		"writers":   *writers,
		"duration":  *duration,
		"keys":      *keys,
		"height":    *height,
		"node_size": nodeSize,
	}).Info("starting load test")

	seed := time.Now().UnixNano()
	prefillRng := rand.New(rand.NewSource(seed))
	for i := 0; i < *prefill; i++ {
		k := prefillRng.Intn(*keys)
		idx.Upsert(k, k)
	}

	results := run(idx, *readers, *writers, *duration, *keys, seed)
	report(results)
}

func makeIndex(variant string, height, readers, writers int) (skiplist.Index[int, int], uintptr, error) {
	less := func(a, b int) bool { return a < b }
	switch variant {
	case "seq":
		if readers+writers > 1 {
			return nil, 0, fmt.Errorf("variant seq supports a single thread, got %d readers and %d writers", readers, writers)
		}
		return skiplist.NewSkipList[int, int](height, less), skiplist.NodeSize[int, int](), nil
	case "atomic":
		if writers > 1 {
			return nil, 0, fmt.Errorf("variant atomic supports at most one writer, got %d", writers)
		}
		return skiplist.NewAtomicSkipList[int, int](height, less), skiplist.AtomicNodeSize[int, int](), nil
	case "mutex":
		return skiplist.NewMutexSkipList[int, int](height, less), skiplist.NodeSize[int, int](), nil
	default:
		return nil, 0, fmt.Errorf("unknown variant %q (want seq, atomic or mutex)", variant)
	}
}

func run(idx skiplist.Index[int, int], readers, writers int, duration time.Duration, keys int, seed int64) *bench.Results {
	results := &bench.Results{}
	var running atomic.Bool
	running.Store(true)

	start := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < writers; i++ {
		stats := bench.NewThreadStats()
		results.Writers = append(results.Writers, stats)
		wg.Add(1)
		go func(workerSeed int64) {
			defer wg.Done()
			r := rand.New(rand.NewSource(workerSeed))
			<-start
			for running.Load() {
				key := r.Intn(keys)
				value := r.Intn(keys)
				begin := time.Now()
				idx.Upsert(key, value)
				stats.Record(time.Since(begin))
			}
		}(seed + int64(i) + 1)
	}

	for i := 0; i < readers; i++ {
		stats := bench.NewThreadStats()
		results.Readers = append(results.Readers, stats)
		wg.Add(1)
		go func(workerSeed int64) {
			defer wg.Done()
			r := rand.New(rand.NewSource(workerSeed))
			<-start
			for running.Load() {
				key := r.Intn(keys)
				begin := time.Now()
				_, _ = idx.Find(key)
				stats.Record(time.Since(begin))
			}
		}(seed + int64(writers+i) + 1)
	}

	begin := time.Now()
	close(start)
	time.Sleep(duration)
	running.Store(false)
	wg.Wait()
	results.Elapsed = time.Since(begin)

	for _, s := range results.Writers {
		s.Finalize()
	}
	for _, s := range results.Readers {
		s.Finalize()
	}
	return results
}

func report(results *bench.Results) {
	log.WithFields(log.Fields{
		"read_ops_per_sec":  results.TotalReadThroughput(),
		"write_ops_per_sec": results.TotalWriteThroughput(),
		"elapsed":           results.Elapsed,
	}).Info("overall throughput")

	log.WithFields(log.Fields{
		"avg":   results.AvgReadLatency(),
		"p50":   results.CombinedReadPercentile(0.50),
		"p75":   results.CombinedReadPercentile(0.75),
		"p90":   results.CombinedReadPercentile(0.90),
		"p95":   results.CombinedReadPercentile(0.95),
		"p99":   results.CombinedReadPercentile(0.99),
		"p99.9": results.CombinedReadPercentile(0.999),
	}).Info("read latency")

	for i, s := range results.Readers {
		log.WithFields(log.Fields{
			"reader":      i,
			"ops_per_sec": s.Throughput(results.Elapsed),
			"p50":         s.Percentile(0.50),
			"p99":         s.Percentile(0.99),
		}).Info("per-reader stats")
	}
	for i, s := range results.Writers {
		log.WithFields(log.Fields{
			"writer":      i,
			"ops_per_sec": s.Throughput(results.Elapsed),
			"p50":         s.Percentile(0.50),
			"p99":         s.Percentile(0.99),
		}).Info("per-writer stats")
	}
}
