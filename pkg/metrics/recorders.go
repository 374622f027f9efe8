package metrics

import (
	"strconv"
	"time"
)

// Upload outcomes.
const (
	UploadAccepted  = "accepted"
	UploadDuplicate = "duplicate"
	UploadRejected  = "rejected"
)

// Analysis outcomes.
const (
	AnalysisSuccess   = "success"
	AnalysisNoEntries = "no_entries"
	AnalysisFailed    = "failed"
)

// Job statuses.
const (
	JobDone   = "done"
	JobFailed = "failed"
)

// Store operation statuses.
const (
	StoreOK       = "ok"
	StoreNotFound = "not_found"
	StoreError    = "error"
)

// RecordUpload counts an upload by outcome.
func (m *Manager) RecordUpload(outcome string) {
	if m.enabled {
		m.uploads.WithLabelValues(outcome).Inc()
	}
}

// RecordEntriesParsed adds n parsed entries for platform.
func (m *Manager) RecordEntriesParsed(platform string, n int) {
	if m.enabled && n > 0 {
		m.entriesParsed.WithLabelValues(platform).Add(float64(n))
	}
}

// RecordRowsSkipped adds n malformed rows for platform.
func (m *Manager) RecordRowsSkipped(platform string, n int) {
	if m.enabled && n > 0 {
		m.rowsSkipped.WithLabelValues(platform).Add(float64(n))
	}
}

// RecordAnalysis counts a pipeline run by outcome.
func (m *Manager) RecordAnalysis(outcome string) {
	if m.enabled {
		m.analyses.WithLabelValues(outcome).Inc()
	}
}

// RecordPersona counts the primary persona of a finished analysis.
func (m *Manager) RecordPersona(persona string, hybrid bool) {
	if !m.enabled {
		return
	}
	m.personas.WithLabelValues(persona).Inc()
	if hybrid {
		m.hybridProfiles.Inc()
	}
}

func (m *Manager) RecordParseDuration(d time.Duration) {
	if m.enabled {
		m.parseDuration.Observe(ms(d))
	}
}

func (m *Manager) RecordPipelineDuration(d time.Duration) {
	if m.enabled {
		m.pipelineDuration.Observe(ms(d))
	}
}

// UpdateQueue sets the queue depth and capacity gauges.
func (m *Manager) UpdateQueue(depth, capacity int) {
	if !m.enabled {
		return
	}
	m.queueDepth.Set(float64(depth))
	m.queueCapacity.Set(float64(capacity))
}

func (m *Manager) RecordEnqueue() {
	if m.enabled {
		m.queueEnqueued.Inc()
	}
}

func (m *Manager) RecordDequeue() {
	if m.enabled {
		m.queueDequeued.Inc()
	}
}

func (m *Manager) RecordEnqueueRejected() {
	if m.enabled {
		m.queueRejected.Inc()
	}
}

func (m *Manager) UpdateWorkerCount(n int) {
	if m.enabled {
		m.workerCount.Set(float64(n))
	}
}

// WorkerBusy moves the busy gauge by delta (+1 on pickup, -1 on finish).
func (m *Manager) WorkerBusy(delta int) {
	if m.enabled {
		m.workerBusy.Add(float64(delta))
	}
}

// RecordJob counts a finished job and its duration.
func (m *Manager) RecordJob(status string, d time.Duration) {
	if !m.enabled {
		return
	}
	m.jobs.WithLabelValues(status).Inc()
	m.jobDuration.Observe(ms(d))
}

func (m *Manager) UpdateDedupeSize(n int) {
	if m.enabled {
		m.dedupeSize.Set(float64(n))
	}
}

func (m *Manager) UpdateStoredProfiles(n int64) {
	if m.enabled {
		m.storedCount.Set(float64(n))
	}
}

// RecordStoreOperation counts a store call and observes its latency.
func (m *Manager) RecordStoreOperation(operation, status string, d time.Duration) {
	if !m.enabled {
		return
	}
	m.storeOps.WithLabelValues(operation, status).Inc()
	m.storeLatency.WithLabelValues(operation).Observe(ms(d))
}

// RecordHTTPRequest counts a request and observes its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method string, status int, d time.Duration) {
	if !m.enabled {
		return
	}
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(endpoint, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, code).Observe(ms(d))
}

func (m *Manager) RecordError(component, errType string) {
	if m.enabled {
		m.errors.WithLabelValues(component, errType).Inc()
	}
}

func (m *Manager) UpdateSystemMemoryUsage(bytes uint64) {
	if m.enabled {
		m.systemMemoryUsage.Set(float64(bytes))
	}
}

func (m *Manager) UpdateSystemGoroutineCount(n int) {
	if m.enabled {
		m.systemGoroutineCount.Set(float64(n))
	}
}

func (m *Manager) RecordSystemGCPauseTime(d time.Duration) {
	if m.enabled {
		m.systemGCPauseTime.Observe(ms(d))
	}
}

// Package level recorders on the process wide manager.

func RecordUpload(outcome string)                { globalManager.RecordUpload(outcome) }
func RecordEntriesParsed(platform string, n int) { globalManager.RecordEntriesParsed(platform, n) }
func RecordRowsSkipped(platform string, n int)   { globalManager.RecordRowsSkipped(platform, n) }
func RecordAnalysis(outcome string)              { globalManager.RecordAnalysis(outcome) }
func RecordPersona(persona string, hybrid bool)  { globalManager.RecordPersona(persona, hybrid) }
func RecordParseDuration(d time.Duration)        { globalManager.RecordParseDuration(d) }
func RecordPipelineDuration(d time.Duration)     { globalManager.RecordPipelineDuration(d) }
func UpdateQueue(depth, capacity int)            { globalManager.UpdateQueue(depth, capacity) }
func RecordEnqueue()                             { globalManager.RecordEnqueue() }
func RecordDequeue()                             { globalManager.RecordDequeue() }
func RecordEnqueueRejected()                     { globalManager.RecordEnqueueRejected() }
func UpdateWorkerCount(n int)                    { globalManager.UpdateWorkerCount(n) }
func WorkerBusy(delta int)                       { globalManager.WorkerBusy(delta) }
func RecordJob(status string, d time.Duration)   { globalManager.RecordJob(status, d) }
func UpdateDedupeSize(n int)                     { globalManager.UpdateDedupeSize(n) }
func UpdateStoredProfiles(n int64)               { globalManager.UpdateStoredProfiles(n) }
func RecordError(component, errType string)      { globalManager.RecordError(component, errType) }
func UpdateSystemMemoryUsage(bytes uint64)       { globalManager.UpdateSystemMemoryUsage(bytes) }
func UpdateSystemGoroutineCount(n int)           { globalManager.UpdateSystemGoroutineCount(n) }
func RecordSystemGCPauseTime(d time.Duration)    { globalManager.RecordSystemGCPauseTime(d) }

func RecordStoreOperation(operation, status string, d time.Duration) {
	globalManager.RecordStoreOperation(operation, status, d)
}

func RecordHTTPRequest(endpoint, method string, status int, d time.Duration) {
	globalManager.RecordHTTPRequest(endpoint, method, status, d)
}
