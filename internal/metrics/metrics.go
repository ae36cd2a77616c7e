// Package metrics collects run counters for polling and downloading.
package metrics

import (
	"sync"
	"time"
)

// Metrics holds the watch-run counters. All methods are safe for
// concurrent use; story processors and the poll loop share one instance.
type Metrics struct {
	mu sync.Mutex

	startTime time.Time

	ticks       int64
	failedTicks int64

	storiesDispatched int64
	storiesFailed     int64

	downloadsAttempted int64
	downloadsSucceeded int64
	downloadsFailed    int64
	bytesWritten       int64
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	StartTime time.Time

	Ticks       int64
	FailedTicks int64

	StoriesDispatched int64
	StoriesFailed     int64

	DownloadsAttempted int64
	DownloadsSucceeded int64
	DownloadsFailed    int64
	BytesWritten       int64
}

// New creates a Metrics instance with the start time set to now.
func New() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordTick counts one poll tick; failed marks a tick abandoned before dispatch.
func (m *Metrics) RecordTick(failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ticks++
	if failed {
		m.failedTicks++
	}
}

// RecordDispatch counts one story handed to a processor.
func (m *Metrics) RecordDispatch() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.storiesDispatched++
}

// RecordStoryFailure counts a story aborted before completing its
// downloads, whatever the cause.
func (m *Metrics) RecordStoryFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.storiesFailed++
}

// RecordDownload counts one attempted download and its outcome.
func (m *Metrics) RecordDownload(size int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.downloadsAttempted++
	if err != nil {
		m.downloadsFailed++
		return
	}

	m.downloadsSucceeded++
	m.bytesWritten += int64(size)
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		StartTime:          m.startTime,
		Ticks:              m.ticks,
		FailedTicks:        m.failedTicks,
		StoriesDispatched:  m.storiesDispatched,
		StoriesFailed:      m.storiesFailed,
		DownloadsAttempted: m.downloadsAttempted,
		DownloadsSucceeded: m.downloadsSucceeded,
		DownloadsFailed:    m.downloadsFailed,
		BytesWritten:       m.bytesWritten,
	}
}
