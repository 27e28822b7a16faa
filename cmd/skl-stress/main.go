// skl-stress checks concurrent correctness: writers insert disjoint
// shuffled key ranges with value == key while readers continuously sample
// and verify that every hit returns its key. The process exits non-zero
// if any validation fails.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	skiplist "github.com/b-hilprecht/atomic-skiplist"
	"github.com/b-hilprecht/atomic-skiplist/internal/bench"
)

func main() {
	variant := flag.String("variant", "atomic", "skip list variant: seq, atomic or mutex")
	readers := flag.Int("readers", 4, "number of reader goroutines")
	writers := flag.Int("writers", 1, "number of writer goroutines")
	keys := flag.Int("keys", 1_000_000, "keys 1..N inserted across writers")
	height := flag.Int("height", 22, "tower height")
	flag.Parse()

	idx, err := makeIndex(*variant, *height, *readers, *writers)
	if err != nil {
		log.Fatal(err)
	}

	log.WithFields(log.Fields{
		"variant": *variant,
		"readers": *readers,
		"writers": *writers,
		"keys":    *keys,
	}).Info("starting correctness test")

	results := run(idx, *readers, *writers, *keys)

	for i, s := range results.Writers {
		log.WithFields(log.Fields{
			"writer":   i,
			"writes":   s.Operations,
			"failures": s.Failures,
		}).Info("writer done")
	}
	for i, s := range results.Readers {
		log.WithFields(log.Fields{
			"reader":   i,
			"reads":    s.Operations,
			"failures": s.Failures,
		}).Info("reader done")
	}

	finalFailures := verifyFinal(idx, *keys)
	total := results.TotalFailures() + finalFailures
	if total > 0 {
		log.WithField("failures", total).Error("validation failures detected")
		os.Exit(1)
	}
	log.Info("no validation failures detected")
}

func makeIndex(variant string, height, readers, writers int) (skiplist.Index[int, int], error) {
	less := func(a, b int) bool { return a < b }
	switch variant {
	case "seq":
		if readers > 0 || writers > 1 {
			return nil, fmt.Errorf("variant seq supports a single thread, got %d readers and %d writers", readers, writers)
		}
		return skiplist.NewSkipList[int, int](height, less), nil
	case "atomic":
		if writers > 1 {
			return nil, fmt.Errorf("variant atomic supports at most one writer, got %d", writers)
		}
		return skiplist.NewAtomicSkipList[int, int](height, less), nil
	case "mutex":
		return skiplist.NewMutexSkipList[int, int](height, less), nil
	default:
		return nil, fmt.Errorf("unknown variant %q (want seq, atomic or mutex)", variant)
	}
}

// writerSequence returns the shuffled keys writer id owns: id+1, id+1+n,
// id+1+2n, ... up to max, so writers never contend on the same key.
func writerSequence(id, writers, max int, r *rand.Rand) []int {
	var seq []int
	for k := id + 1; k <= max; k += writers {
		seq = append(seq, k)
	}
	r.Shuffle(len(seq), func(i, j int) { seq[i], seq[j] = seq[j], seq[i] })
	return seq
}

func readerSequence(max int, r *rand.Rand) []int {
	seq := make([]int, max)
	for i := range seq {
		seq[i] = i + 1
	}
	r.Shuffle(len(seq), func(i, j int) { seq[i], seq[j] = seq[j], seq[i] })
	return seq
}

func run(idx skiplist.Index[int, int], readers, writers, keys int) *bench.Results {
	results := &bench.Results{}
	seed := time.Now().UnixNano()

	start := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < writers; i++ {
		stats := bench.NewThreadStats()
		results.Writers = append(results.Writers, stats)
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed + int64(id)))
			seq := writerSequence(id, writers, keys, r)
			<-start
			for i, key := range seq {
				idx.Upsert(key, key)
				stats.Operations++

				// The writer's own previous insert must already be
				// visible to it.
				if i > 0 {
					prev := seq[i-1]
					got, ok := idx.Find(prev)
					if !ok || got != prev {
						stats.Failures++
						log.WithFields(log.Fields{
							"writer":   id,
							"key":      prev,
							"expected": prev,
							"got":      got,
							"found":    ok,
						}).Error("writer validation failed")
					}
				}
			}
		}(i)
	}

	for i := 0; i < readers; i++ {
		stats := bench.NewThreadStats()
		results.Readers = append(results.Readers, stats)
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed + int64(writers+id)))
			seq := readerSequence(keys, r)
			<-start
			for _, key := range seq {
				got, ok := idx.Find(key)
				stats.Operations++

				// A hit must return its key; absence is fine while the
				// writers are still running.
				if ok && got != key {
					stats.Failures++
					log.WithFields(log.Fields{
						"reader":   id,
						"key":      key,
						"expected": key,
						"got":      got,
					}).Error("reader validation failed")
				}
			}
		}(i)
	}

	close(start)
	wg.Wait()
	return results
}

// verifyFinal checks that after every writer has finished, the index
// holds value i for every key i in [1, keys].
func verifyFinal(idx skiplist.Index[int, int], keys int) int64 {
	var failures int64
	for i := 1; i <= keys; i++ {
		got, ok := idx.Find(i)
		if !ok || got != i {
			failures++
			log.WithFields(log.Fields{
				"key":   i,
				"got":   got,
				"found": ok,
			}).Error("final verification failed")
		}
	}
	if got, want := idx.Len(), keys; got != want {
		failures++
		log.WithFields(log.Fields{"len": got, "want": want}).Error("length mismatch after completion")
	}
	return failures
}
