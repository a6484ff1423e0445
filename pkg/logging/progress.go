package logging

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// ProgressTracker counts finished, failed and skipped files of a batch
// and estimates the time left. It is safe for concurrent use.
type ProgressTracker struct {
	total     int64
	completed atomic.Int64
	failed    atomic.Int64
	skipped   atomic.Int64
	rows      atomic.Int64
	startTime time.Time
	log       zerolog.Logger
	phase     string

	mu     sync.Mutex
	recent []time.Duration
}

const recentWindow = 10

// NewProgressTracker creates a tracker for total items.
func NewProgressTracker(phase string, total int64, log zerolog.Logger) *ProgressTracker {
	return &ProgressTracker{
		total:     total,
		startTime: time.Now(),
		log:       log,
		phase:     phase,
		recent:    make([]time.Duration, 0, recentWindow),
	}
}

// RecordCompletion records a finished item that took d and produced rows.
func (pt *ProgressTracker) RecordCompletion(d time.Duration, rows int64) {
	pt.completed.Add(1)
	pt.rows.Add(rows)

	pt.mu.Lock()
	if len(pt.recent) >= recentWindow {
		pt.recent = pt.recent[1:]
	}
	pt.recent = append(pt.recent, d)
	pt.mu.Unlock()
}

// RecordFailure records an item that ended with an error.
func (pt *ProgressTracker) RecordFailure() {
	pt.failed.Add(1)
}

// RecordSkip records an item that was not processed.
func (pt *ProgressTracker) RecordSkip() {
	pt.skipped.Add(1)
}

// Done returns the number of items no longer pending.
func (pt *ProgressTracker) Done() int64 {
	return pt.completed.Load() + pt.failed.Load() + pt.skipped.Load()
}

// Completed returns the number of successful items.
func (pt *ProgressTracker) Completed() int64 { return pt.completed.Load() }

// Failed returns the number of failed items.
func (pt *ProgressTracker) Failed() int64 { return pt.failed.Load() }

// Skipped returns the number of skipped items.
func (pt *ProgressTracker) Skipped() int64 { return pt.skipped.Load() }

// Rows returns the number of rows produced by completed items.
func (pt *ProgressTracker) Rows() int64 { return pt.rows.Load() }

// Total returns the number of items tracked.
func (pt *ProgressTracker) Total() int64 { return pt.total }

// Remaining returns the number of pending items.
func (pt *ProgressTracker) Remaining() int64 {
	return pt.total - pt.Done()
}

// ProgressPct returns the share of items done, 0 to 100.
func (pt *ProgressTracker) ProgressPct() float64 {
	if pt.total == 0 {
		return 100
	}
	return float64(pt.Done()) * 100 / float64(pt.total)
}

// ETA estimates the time left from the recent completion durations.
func (pt *ProgressTracker) ETA() time.Duration {
	completed := pt.completed.Load()
	remaining := pt.Remaining()
	if completed == 0 || remaining <= 0 {
		return 0
	}

	pt.mu.Lock()
	var sum time.Duration
	for _, d := range pt.recent {
		sum += d
	}
	n := len(pt.recent)
	pt.mu.Unlock()

	if n == 0 {
		return time.Since(pt.startTime) / time.Duration(completed) * time.Duration(remaining)
	}
	return sum / time.Duration(n) * time.Duration(remaining)
}

// Elapsed returns the time since the tracker was created.
func (pt *ProgressTracker) Elapsed() time.Duration {
	return time.Since(pt.startTime)
}

// LogProgress emits one progress line.
func (pt *ProgressTracker) LogProgress(msg string) {
	NewCompletionEvent(pt.log, "progress", pt.phase, pt.Elapsed()).
		ProgressFromTracker(pt).
		Log(msg)
}

// CompletionEvent builds a completion log line with consistent fields.
type CompletionEvent struct {
	log     zerolog.Logger
	event   string
	phase   string
	elapsed time.Duration
	fields  map[string]any
}

// NewCompletionEvent starts a completion event.
func NewCompletionEvent(log zerolog.Logger, event, phase string, elapsed time.Duration) *CompletionEvent {
	return &CompletionEvent{
		log:     log,
		event:   event,
		phase:   phase,
		elapsed: elapsed,
		fields:  make(map[string]any),
	}
}

// Str adds a string field.
func (ce *CompletionEvent) Str(key, val string) *CompletionEvent {
	ce.fields[key] = val
	return ce
}

// Int adds an int field.
func (ce *CompletionEvent) Int(key string, val int) *CompletionEvent {
	ce.fields[key] = val
	return ce
}

// Bytes adds a byte count, with a human-readable companion in pretty mode.
func (ce *CompletionEvent) Bytes(key string, n int64) *CompletionEvent {
	ce.fields[key] = n
	if IsPrettyMode() {
		ce.fields[key+"_h"] = HumanBytes(n)
	}
	return ce
}

// Count adds a count, with a human-readable companion in pretty mode.
func (ce *CompletionEvent) Count(key string, n int64) *CompletionEvent {
	ce.fields[key] = n
	if IsPrettyMode() {
		ce.fields[key+"_h"] = HumanCount(n)
	}
	return ce
}

// ProgressFromTracker adds the tracker's counters and ETA.
func (ce *CompletionEvent) ProgressFromTracker(pt *ProgressTracker) *CompletionEvent {
	ce.fields["completed"] = pt.Completed()
	ce.fields["failed"] = pt.Failed()
	ce.fields["skipped"] = pt.Skipped()
	ce.fields["total"] = pt.Total()
	ce.fields["progress_pct"] = pt.ProgressPct()
	ce.Count("rows", pt.Rows())
	if eta := pt.ETA(); eta > 0 {
		ce.fields["eta_ms"] = eta.Milliseconds()
		if IsPrettyMode() {
			ce.fields["eta_h"] = HumanDuration(eta)
		}
	}
	return ce
}

// Throughput adds bytes per second over the event's elapsed time.
func (ce *CompletionEvent) Throughput(n int64) *CompletionEvent {
	if ce.elapsed > 0 {
		bps := float64(n) / ce.elapsed.Seconds()
		ce.fields["throughput_bps"] = bps
		if IsPrettyMode() {
			ce.fields["throughput_h"] = HumanBytes(int64(bps)) + "/s"
		}
	}
	return ce
}

// RowRate adds rows per second over the event's elapsed time.
func (ce *CompletionEvent) RowRate(rows int64) *CompletionEvent {
	if ce.elapsed > 0 {
		ce.fields["rows_per_sec"] = float64(rows) / ce.elapsed.Seconds()
	}
	return ce
}

// Log emits the event at info level.
func (ce *CompletionEvent) Log(msg string) {
	ce.emit(ce.log.Info(), msg)
}

// LogDebug emits the event at debug level.
func (ce *CompletionEvent) LogDebug(msg string) {
	ce.emit(ce.log.Debug(), msg)
}

func (ce *CompletionEvent) emit(e *zerolog.Event, msg string) {
	e = e.Str("event", ce.event).
		Str("phase", ce.phase).
		Int64("duration_ms", ce.elapsed.Milliseconds())
	if IsPrettyMode() {
		e = e.Str("duration_h", HumanDuration(ce.elapsed))
	}
	for k, v := range ce.fields {
		e = e.Interface(k, v)
	}
	e.Msg(msg)
}

// PhaseComplete starts a phase completion event.
func PhaseComplete(log zerolog.Logger, phase string, elapsed time.Duration) *CompletionEvent {
	return NewCompletionEvent(log, "phase_completed", phase, elapsed)
}

// FileComplete starts a per-file completion event.
func FileComplete(log zerolog.Logger, phase string, elapsed time.Duration) *CompletionEvent {
	return NewCompletionEvent(log, "file_completed", phase, elapsed)
}

// BatchComplete starts a batch or transaction completion event.
func BatchComplete(log zerolog.Logger, phase string, elapsed time.Duration) *CompletionEvent {
	return NewCompletionEvent(log, "batch_completed", phase, elapsed)
}
