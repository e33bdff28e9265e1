package miniaudio

import (
	"testing"
	"time"
)

func expectMark(t *testing.T, fired chan string, want string) {
	t.Helper()
	select {
	case got := <-fired:
		if got != want {
			t.Fatalf("expected mark %q, got %q", want, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for mark %q", want)
	}
}

func expectNoMark(t *testing.T, fired chan string) {
	t.Helper()
	select {
	case got := <-fired:
		t.Fatalf("expected no mark to fire, got %q", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMarksFireOnceBufferedAudioIsConsumed(t *testing.T) {
	c := &playbackClient{}
	fired := make(chan string, 4)

	c.leftoverAudio = make([]byte, 100)
	c.Mark("after-first", func(name string) { fired <- name })
	c.leftoverAudio = append(c.leftoverAudio, make([]byte, 50)...)
	c.Mark("after-second", func(name string) { fired <- name })

	c.advanceMarks(60)
	expectNoMark(t, fired)

	c.advanceMarks(40)
	expectMark(t, fired, "after-first")

	c.advanceMarks(50)
	expectMark(t, fired, "after-second")
}

func TestMarkOnDrainedBufferFiresOnNextDeviceCallback(t *testing.T) {
	c := &playbackClient{}
	fired := make(chan string, 1)

	c.Mark("end", func(name string) { fired <- name })
	c.advanceMarks(0)

	expectMark(t, fired, "end")
}

func TestClearBufferDropsPendingMarks(t *testing.T) {
	c := &playbackClient{}
	fired := make(chan string, 1)

	c.leftoverAudio = make([]byte, 10)
	c.Mark("never", func(name string) { fired <- name })
	c.ClearBuffer()
	c.advanceMarks(10)

	expectNoMark(t, fired)
}
