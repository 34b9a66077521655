package audio

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// PlayCall records one call to MockSink.Play.
type PlayCall struct {
	Samples     []int16
	SampleRate  int
	Channels    int
	DeviceIndex int
	Started     time.Time
	Finished    time.Time
	Err         error
}

// MockSink implements Sink for testing purposes. It simulates playback
// without producing sound and records every call in order.
type MockSink struct {
	mu    sync.Mutex
	calls []PlayCall

	// Delay is the simulated playback time of every call.
	Delay time.Duration

	// FailWith, when set, decides the error returned for a call.
	FailWith func(call PlayCall) error

	// PanicWith, when set, decides whether a call panics and with what.
	PanicWith func(call PlayCall) any

	// OnPlay is invoked after a call completes.
	OnPlay func(call PlayCall)

	active atomic.Int32
	peak   atomic.Int32
}

// NewMockSink creates a mock sink with no delay.
func NewMockSink() *MockSink {
	return &MockSink{}
}

// Play implements Sink.
func (m *MockSink) Play(ctx context.Context, samples []int16, sampleRate, channels, deviceIndex int) error {
	n := m.active.Add(1)
	defer m.active.Add(-1)
	for {
		p := m.peak.Load()
		if n <= p || m.peak.CompareAndSwap(p, n) {
			break
		}
	}

	call := PlayCall{
		Samples:     append([]int16(nil), samples...),
		SampleRate:  sampleRate,
		Channels:    channels,
		DeviceIndex: deviceIndex,
		Started:     time.Now(),
	}

	if m.PanicWith != nil {
		if v := m.PanicWith(call); v != nil {
			m.record(call)
			panic(v)
		}
	}

	if err := validateFormat(samples, sampleRate, channels); err != nil {
		call.Err = err
	} else if m.FailWith != nil {
		call.Err = m.FailWith(call)
	}

	if call.Err == nil && m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			call.Err = ctx.Err()
		}
	}

	call.Finished = time.Now()
	m.record(call)

	if m.OnPlay != nil {
		m.OnPlay(call)
	}
	return call.Err
}

func (m *MockSink) record(call PlayCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

// Calls returns a copy of the recorded calls in order.
func (m *MockSink) Calls() []PlayCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PlayCall(nil), m.calls...)
}

// CallCount returns the number of recorded calls.
func (m *MockSink) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// PeakConcurrency returns the highest number of overlapping Play calls.
func (m *MockSink) PeakConcurrency() int {
	return int(m.peak.Load())
}

// WaitForCalls blocks until at least n calls were recorded or the timeout
// passes.
func (m *MockSink) WaitForCalls(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if m.CallCount() >= n {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return m.CallCount() >= n
}
