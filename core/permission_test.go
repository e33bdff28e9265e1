package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// stubPermissions replays a fixed sequence of query results; the last entry
// repeats once the sequence is exhausted.
type stubPermissions struct {
	mu      sync.Mutex
	states  []PermissionState
	queries int
	prompts int
}

func (p *stubPermissions) Query(context.Context) (PermissionState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	index := p.queries
	if index >= len(p.states) {
		index = len(p.states) - 1
	}
	p.queries++
	return p.states[index], nil
}

func (p *stubPermissions) Prompt(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts++
	return nil
}

func (p *stubPermissions) promptCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prompts
}

// pollClock fires interval waits instantly and exposes the poll deadline as a
// test-controlled channel.
type pollClock struct {
	timeout  time.Duration
	deadline chan time.Time
}

func (c *pollClock) Now() time.Time { return time.Time{} }

func (c *pollClock) After(d time.Duration) <-chan time.Time {
	if d == c.timeout {
		return c.deadline
	}
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

func TestStartProceedsWhenPermissionGranted(t *testing.T) {
	permissions := &stubPermissions{states: []PermissionState{PermissionGranted}}
	channel := newScriptedChannel("Paris", "42", "Yes")
	recorder := newTransitionRecorder()

	s := NewSession(
		WithSpeechToTextClient(channel),
		WithAudioOutput(&stubOutput{}),
		WithEvaluator(&stubEvaluator{feedback: map[string]string{}}),
		WithTokenIssuer(&stubTokenIssuer{}),
		WithPermissions(permissions),
	)

	if err := s.Start(context.Background(), threeQuestions(), "article",
		WithStateChangeCallback(recorder.record),
	); err != nil {
		t.Fatalf("expected start to succeed with granted permission, got %v", err)
	}
	recorder.awaitDone(t)

	if permissions.promptCount() != 0 {
		t.Fatalf("expected no prompt when permission is already granted")
	}
}

func TestStartFailsWhenPermissionDeniedUpFront(t *testing.T) {
	permissions := &stubPermissions{states: []PermissionState{PermissionDenied}}
	recorder := newTransitionRecorder()

	s := NewSession(
		WithSpeechToTextClient(newScriptedChannel()),
		WithAudioOutput(&stubOutput{}),
		WithPermissions(permissions),
	)

	err := s.Start(context.Background(), threeQuestions(), "article",
		WithStateChangeCallback(recorder.record),
	)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if len(recorder.states()) != 0 {
		t.Fatalf("expected no state change before the permission failure, got %v", recorder.states())
	}
}

func TestStartFailsWhenPermissionDeniedDuringPoll(t *testing.T) {
	permissions := &stubPermissions{states: []PermissionState{
		PermissionUndetermined, PermissionUndetermined, PermissionDenied,
	}}
	clock := &pollClock{timeout: time.Hour, deadline: make(chan time.Time)}
	recorder := newTransitionRecorder()

	s := NewSession(
		WithSpeechToTextClient(newScriptedChannel()),
		WithAudioOutput(&stubOutput{}),
		WithPermissions(permissions),
		WithClock(clock),
		WithPermissionPollInterval(500*time.Millisecond),
		WithPermissionTimeout(time.Hour),
	)

	err := s.Start(context.Background(), threeQuestions(), "article",
		WithStateChangeCallback(recorder.record),
	)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if permissions.promptCount() != 1 {
		t.Fatalf("expected the prompt flow to run once, got %d", permissions.promptCount())
	}
	if len(recorder.states()) != 0 {
		t.Fatalf("expected no question to be asked, got %v", recorder.states())
	}
}

func TestStartFailsWhenPermissionPollTimesOut(t *testing.T) {
	permissions := &stubPermissions{states: []PermissionState{PermissionUndetermined}}
	clock := &pollClock{timeout: time.Hour, deadline: make(chan time.Time, 1)}
	clock.deadline <- time.Time{}

	s := NewSession(
		WithSpeechToTextClient(newScriptedChannel()),
		WithAudioOutput(&stubOutput{}),
		WithPermissions(permissions),
		WithClock(clock),
		WithPermissionTimeout(time.Hour),
	)

	err := s.Start(context.Background(), threeQuestions(), "article")
	if !errors.Is(err, ErrPermissionTimeout) {
		t.Fatalf("expected ErrPermissionTimeout, got %v", err)
	}
}
