package jsondata

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Both methods are called once per file, so saving a map records one save
// per entry.
type MetricsCollector interface {
	// RecordSave is called after each file is written.
	// bytes is the number of bytes written, err is nil if successful.
	RecordSave(kind Kind, bytes int64, duration time.Duration, err error)

	// RecordRead is called after each file is read.
	RecordRead(format Format, bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSave(Kind, int64, time.Duration, error)   {}
func (NoopMetricsCollector) RecordRead(Format, int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SaveCount      atomic.Int64
	SaveErrors     atomic.Int64
	SaveBytes      atomic.Int64
	SaveTotalNanos atomic.Int64
	ReadCount      atomic.Int64
	ReadErrors     atomic.Int64
	ReadBytes      atomic.Int64
	ReadTotalNanos atomic.Int64
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(_ Kind, bytes int64, duration time.Duration, err error) {
	b.SaveCount.Add(1)
	b.SaveTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SaveErrors.Add(1)
		return
	}
	b.SaveBytes.Add(bytes)
}

// RecordRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRead(_ Format, bytes int64, duration time.Duration, err error) {
	b.ReadCount.Add(1)
	b.ReadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ReadErrors.Add(1)
		return
	}
	b.ReadBytes.Add(bytes)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SaveCount:    b.SaveCount.Load(),
		SaveErrors:   b.SaveErrors.Load(),
		SaveBytes:    b.SaveBytes.Load(),
		SaveAvgNanos: avg(b.SaveTotalNanos.Load(), b.SaveCount.Load()),
		ReadCount:    b.ReadCount.Load(),
		ReadErrors:   b.ReadErrors.Load(),
		ReadBytes:    b.ReadBytes.Load(),
		ReadAvgNanos: avg(b.ReadTotalNanos.Load(), b.ReadCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SaveCount    int64
	SaveErrors   int64
	SaveBytes    int64
	SaveAvgNanos int64
	ReadCount    int64
	ReadErrors   int64
	ReadBytes    int64
	ReadAvgNanos int64
}
