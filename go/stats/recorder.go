package stats

import (
	"encoding/json"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

type counters struct {
	cumElems int64
	cumRuns  int64
}

// StepRecord is written as one JSON line per completed step.
type StepRecord struct {
	Label     string  `json:"label"`
	Timestamp string  `json:"timestamp"`
	DurSec    float64 `json:"durSec"`

	CumElems int64 `json:"cumElems"`
	CumRuns  int64 `json:"cumRuns"`

	MeanElemsPerSec float64 `json:"meanElemsPerSec"`
	MeanRunsPerSec  float64 `json:"meanRunsPerSec"`

	Latency []LatencyStats `json:"latency"`
}

type LatencyStats struct {
	Kind   string  `json:"kind"`
	Count  int64   `json:"count"`
	P50Ns  int64   `json:"p50Ns"`
	P90Ns  int64   `json:"p90Ns"`
	P95Ns  int64   `json:"p95Ns"`
	P99Ns  int64   `json:"p99Ns"`
	MaxNs  int64   `json:"maxNs"`
	MeanNs float64 `json:"meanNs"`
}

// Recorder collects latencies of kernel runs and writes a StepRecord
// for every step.
type Recorder struct {
	mu  sync.Mutex
	out io.WriteCloser

	errMu sync.Mutex
	err   error

	cur   counters
	hists map[string]*hdrhistogram.Histogram

	prevTime time.Time
	prev     counters
	started  bool

	writeWG sync.WaitGroup
}

func NewRecorder(out io.WriteCloser) *Recorder {
	return &Recorder{out: out, hists: make(map[string]*hdrhistogram.Histogram)}
}

// StartRecording must be called before any other methods
// and cannot be called multiple times.
func (r *Recorder) StartRecording() {
	r.started = true
	r.prevTime = time.Now()
}

// must hold r.mu
func (r *Recorder) recordLatency(kind string, latency time.Duration) {
	hist, ok := r.hists[kind]
	if !ok {
		hist = hdrhistogram.New(1, 100_000_000_000, 2)
		r.hists[kind] = hist
	}
	hist.RecordValue(latency.Nanoseconds())
}

// RecordRun records one kernel run over numElems observations.
func (r *Recorder) RecordRun(numElems int, kind string, latency time.Duration) {
	if !r.started {
		panic("must call StartRecording before any other methods")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.cur.cumElems += int64(numElems)
	r.cur.cumRuns++
	r.recordLatency(kind, latency)
}

func (r *Recorder) DoneStep(label string) {
	if !r.started {
		panic("must call StartRecording before any other methods")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	elapsedSec := now.Sub(r.prevTime).Seconds()
	rec := &StepRecord{
		Label:     label,
		Timestamp: now.In(time.UTC).Format(time.RFC3339Nano),
		DurSec:    elapsedSec,

		CumElems: r.cur.cumElems,
		CumRuns:  r.cur.cumRuns,

		MeanElemsPerSec: float64(r.cur.cumElems-r.prev.cumElems) / elapsedSec,
		MeanRunsPerSec:  float64(r.cur.cumRuns-r.prev.cumRuns) / elapsedSec,
		Latency:         toLatencyStats(r.hists),
	}

	r.writeWG.Wait()
	r.writeWG.Add(1)
	go func() {
		err := writeJSONLine(r.out, rec)
		if err != nil {
			r.errMu.Lock()
			if r.err == nil {
				r.err = err
			}
			r.errMu.Unlock()
		}

		r.writeWG.Done()
	}()

	r.prevTime = now
	r.prev = r.cur
	for _, hist := range r.hists {
		hist.Reset()
	}
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writeWG.Wait()

	err := r.out.Close()
	r.errMu.Lock()
	if r.err != nil {
		err = r.err
	}
	r.errMu.Unlock()

	return err
}

func toLatencyStats(hists map[string]*hdrhistogram.Histogram) []LatencyStats {
	stats := make([]LatencyStats, 0, len(hists))
	for kind, hist := range hists {
		stats = append(stats, LatencyStats{
			Kind:   kind,
			Count:  hist.TotalCount(),
			P50Ns:  hist.ValueAtPercentile(50),
			P90Ns:  hist.ValueAtPercentile(90),
			P95Ns:  hist.ValueAtPercentile(95),
			P99Ns:  hist.ValueAtPercentile(99),
			MaxNs:  hist.Max(),
			MeanNs: hist.Mean(),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Kind < stats[j].Kind
	})
	return stats
}

func writeJSONLine(w io.Writer, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}
