package gublas

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TraceEntry captures one BLAS invocation for offline inspection.
type TraceEntry struct {
	Routine    string    `json:"routine"`
	N          int       `json:"n"`
	Incx       int       `json:"incx"`
	Stridex    int       `json:"stridex,omitempty"`
	BatchCount int       `json:"batch_count"`
	Status     string    `json:"status"` // "ok" or the error text
	Timestamp  time.Time `json:"timestamp"`
}

// TraceLogger manages logging of BLAS invocations to file. Tracing is off
// by default; entry points record through it only while a session is open.
type TraceLogger struct {
	mu          sync.Mutex
	enabled     bool
	entries     []TraceEntry
	logDir      string
	sessionFile string
}

var globalTrace = &TraceLogger{
	logDir: "trace_logs",
}

// InitTraceLogger starts a new trace session, logging every BLAS invocation
// until StopTraceLogger is called.
func InitTraceLogger(sessionName string) error {
	globalTrace.mu.Lock()
	defer globalTrace.mu.Unlock()

	// Create log directory if it doesn't exist
	if err := os.MkdirAll(globalTrace.logDir, 0755); err != nil {
		return fmt.Errorf("failed to create trace directory: %w", err)
	}

	// Create session file name with timestamp
	timestamp := time.Now().Format("20060102_150405")
	globalTrace.sessionFile = filepath.Join(globalTrace.logDir,
		fmt.Sprintf("%s_%s.json", sessionName, timestamp))

	// Reset entries for new session
	globalTrace.entries = nil
	globalTrace.enabled = true

	// Write initial file
	return globalTrace.flush()
}

// StopTraceLogger ends the current trace session and returns the path of
// the session file.
func StopTraceLogger() string {
	globalTrace.mu.Lock()
	defer globalTrace.mu.Unlock()
	globalTrace.enabled = false
	return globalTrace.sessionFile
}

// traceCall records one invocation; cheap no-op while tracing is off.
func traceCall(routine string, n, incx, stridex, batchCount int, err error) {
	globalTrace.mu.Lock()
	defer globalTrace.mu.Unlock()
	if !globalTrace.enabled {
		return
	}

	status := "ok"
	if err != nil {
		status = err.Error()
	}
	globalTrace.entries = append(globalTrace.entries, TraceEntry{
		Routine:    routine,
		N:          n,
		Incx:       incx,
		Stridex:    stridex,
		BatchCount: batchCount,
		Status:     status,
		Timestamp:  time.Now(),
	})

	// Flush to disk immediately to avoid losing data on crash
	globalTrace.flush()
}

// flush writes entries to disk
func (tl *TraceLogger) flush() error {
	if tl.sessionFile == "" {
		return nil // Not initialized
	}

	data, err := json.MarshalIndent(tl.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal trace entries: %w", err)
	}

	return os.WriteFile(tl.sessionFile, data, 0644)
}
