package logging

import (
	"strings"
	"time"
)

// ProgressSampler thins out ffmpeg progress events for the log. It emits on
// the first event of each (file, stage) pair, whenever the percentage enters
// a new bucket, and every heartbeat interval while the percentage is unknown.
type ProgressSampler struct {
	bucketSize float64
	heartbeat  time.Duration
	now        func() time.Time

	key        string
	lastBucket int
	lastEmit   time.Time
}

// NewProgressSampler returns a sampler with the given bucket width in
// percent (default 10) and a 30s heartbeat for unknown-length encodes.
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 10
	}
	return &ProgressSampler{
		bucketSize: bucketSize,
		heartbeat:  30 * time.Second,
		now:        time.Now,
		lastBucket: -1,
	}
}

// ShouldLog reports whether the event for source at stage should be logged.
// A negative percent means the duration is unknown.
func (s *ProgressSampler) ShouldLog(source, stage string, percent float64) bool {
	if s == nil {
		return true
	}
	now := s.now()
	key := strings.TrimSpace(source) + "\x00" + strings.TrimSpace(stage)
	if key != s.key {
		s.key = key
		s.lastBucket = -1
		s.lastEmit = now
		if percent >= 0 {
			s.lastBucket = s.bucket(percent)
		}
		return true
	}
	if percent < 0 {
		if now.Sub(s.lastEmit) >= s.heartbeat {
			s.lastEmit = now
			return true
		}
		return false
	}
	if bucket := s.bucket(percent); bucket > s.lastBucket {
		s.lastBucket = bucket
		s.lastEmit = now
		return true
	}
	return false
}

func (s *ProgressSampler) bucket(percent float64) int {
	if percent >= 100 {
		return int(100 / s.bucketSize)
	}
	return int(percent / s.bucketSize)
}

// Reset forgets the current file so the next event is always logged.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.key = ""
	s.lastBucket = -1
}
