// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package padlink

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Statistics tracks frame statistics and error rates.
// Safe for use by the link reader and status readers at the same time.
type Statistics struct {
	mu sync.Mutex
	StatisticsSnapshot
}

// StatisticsSnapshot is a point-in-time copy of the counters
type StatisticsSnapshot struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalFrames    uint64
	ValidFrames    uint64
	ChecksumErrors uint64
	FramingErrors  uint64
	BytesReceived  uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ErrorRate float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	s := &Statistics{}
	s.StartTime = now
	s.LastUpdateTime = now
	return s
}

// AddBytes records raw bytes read from the link
func (s *Statistics) AddBytes(n int) {
	s.mu.Lock()
	s.BytesReceived += uint64(n)
	s.mu.Unlock()
}

// Update records the outcome of one decoded or dropped frame
func (s *Statistics) Update(decodeErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.TotalFrames++
	switch {
	case decodeErr == nil:
		s.ValidFrames++
	case errors.Is(decodeErr, ErrChecksum):
		s.ChecksumErrors++
	default:
		s.FramingErrors++
	}
	s.LastUpdateTime = time.Now()
}

// Snapshot returns a copy of the counters with rates calculated
func (s *Statistics) Snapshot() StatisticsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.StatisticsSnapshot
	elapsed := time.Since(snap.StartTime).Seconds()
	if elapsed > 0 {
		snap.FrameRate = float64(snap.TotalFrames) / elapsed
		snap.ErrorRate = float64(snap.ChecksumErrors+snap.FramingErrors) / elapsed
	}
	return snap
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	snap := s.Snapshot()

	var validPercent, checksumPercent, framingPercent float64
	if snap.TotalFrames > 0 {
		validPercent = float64(snap.ValidFrames) * 100.0 / float64(snap.TotalFrames)
		checksumPercent = float64(snap.ChecksumErrors) * 100.0 / float64(snap.TotalFrames)
		framingPercent = float64(snap.FramingErrors) * 100.0 / float64(snap.TotalFrames)
	}

	elapsed := time.Since(snap.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Bytes Received:  %8d\n", snap.BytesReceived)
	result += fmt.Sprintf("Total Frames:    %8d\n", snap.TotalFrames)
	result += fmt.Sprintf("Valid Frames:    %8d (%.1f%%)\n", snap.ValidFrames, validPercent)
	if snap.ChecksumErrors > 0 {
		result += fmt.Sprintf("Checksum Errors: %8d (%.1f%%)\n", snap.ChecksumErrors, checksumPercent)
	}
	if snap.FramingErrors > 0 {
		result += fmt.Sprintf("Framing Errors:  %8d (%.1f%%)\n", snap.FramingErrors, framingPercent)
	}
	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", snap.FrameRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", snap.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.StatisticsSnapshot = StatisticsSnapshot{StartTime: now, LastUpdateTime: now}
}
