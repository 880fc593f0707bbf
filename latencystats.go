/*
Copyright 2025 The nvvk Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package nvvk

import (
	"slices"

	"github.com/GhostKellz/nvvk/internal/container"
)

const latencyStatsWindow = 128

// LatencyStats keeps a fixed window of total-latency samples with a
// running sum. Average is O(1); percentile sorts the live window on
// demand. The zero value is ready to use.
type LatencyStats struct {
	ring *container.Ring[uint64]
	sum  uint64
}

func (s *LatencyStats) ensure() {
	if s.ring == nil {
		s.ring = container.NewRing[uint64](latencyStatsWindow)
	}
}

// Insert adds one total-latency sample, evicting the oldest once the
// window is full.
func (s *LatencyStats) Insert(latencyUs uint64) {
	s.ensure()
	evicted, wasFull := s.ring.Push(latencyUs)
	if wasFull {
		s.sum -= evicted
	}
	s.sum += latencyUs
}

func (s *LatencyStats) SampleCount() int {
	if s.ring == nil {
		return 0
	}
	return s.ring.Len()
}

// AverageUs is the arithmetic mean over the live window, 0 when empty.
func (s *LatencyStats) AverageUs() uint64 {
	n := s.SampleCount()
	if n == 0 {
		return 0
	}
	return s.sum / uint64(n)
}

func (s *LatencyStats) MinUs() uint64 {
	if s.SampleCount() == 0 {
		return 0
	}
	return slices.Min(s.ring.Data())
}

func (s *LatencyStats) MaxUs() uint64 {
	if s.SampleCount() == 0 {
		return 0
	}
	return slices.Max(s.ring.Data())
}

// P99Us is the approximate 99th percentile over the live window.
func (s *LatencyStats) P99Us() uint64 {
	n := s.SampleCount()
	if n == 0 {
		return 0
	}
	sorted := s.ring.Data()
	slices.Sort(sorted)
	return sorted[(n*99)/100]
}

func (s *LatencyStats) Reset() {
	if s.ring != nil {
		s.ring.Reset()
	}
	s.sum = 0
}
