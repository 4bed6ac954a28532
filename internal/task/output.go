package task

import "sync"

// Record is one line of the output file: the id of the task that
// produced it and its opaque result payload (spec.md §3).
type Record struct {
	TaskID string `json:"taskId"`
	Result any    `json:"result"`
}

// OutputBuffer accumulates Records in memory for the duration of a run;
// the store flushes it to the append-only output-<timestamp>.json file.
// Access is synchronized because tasks running concurrently append
// from different goroutines, and the runner drains it from another.
type OutputBuffer struct {
	mu      sync.Mutex
	records []Record
}

// NewOutputBuffer returns an empty buffer.
func NewOutputBuffer() *OutputBuffer {
	return &OutputBuffer{}
}

// Append adds one record.
func (b *OutputBuffer) Append(taskID string, result any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, Record{TaskID: taskID, Result: result})
}

// Len reports how many records are currently buffered.
func (b *OutputBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}

// Drain returns a copy of the buffered records and clears the buffer, so
// the store can flush exactly what's returned without racing a
// concurrent Append.
func (b *OutputBuffer) Drain() []Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Record, len(b.records))
	copy(out, b.records)
	b.records = nil
	return out
}
