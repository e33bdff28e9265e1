package session

import (
	"fmt"
	"log"
	"sync"

	"github.com/xujimc/read-me/core/audio"
)

// player is the playback facade used to handle optional output wiring. It
// turns the device's position-mark mechanism into a single awaitable done
// signal per payload. Playback failures resolve as done, never as errors.
type player struct {
	output AudioOutput

	mu  sync.Mutex
	seq int
}

func newPlayer(output AudioOutput) *player {
	return &player{output: output}
}

func (p *player) set(output AudioOutput) {
	if p != nil {
		p.output = output
	}
}

func (p *player) isConfigured() bool {
	return p != nil && p.output != nil
}

// Play buffers the payload and returns a channel closed once the device has
// consumed it. An unconfigured output or an empty payload resolves
// immediately.
func (p *player) Play(payload []byte) <-chan struct{} {
	done := make(chan struct{})
	if !p.isConfigured() || len(payload) == 0 {
		close(done)
		return done
	}

	p.mu.Lock()
	p.seq++
	mark := fmt.Sprintf("playback-end-%d", p.seq)
	p.mu.Unlock()

	if err := p.output.Resume(); err != nil {
		log.Println("Failed to start playback device, treating playback as done", "error", err)
		close(done)
		return done
	}
	if err := p.output.SendAudio(payload); err != nil {
		log.Println("Failed to buffer playback audio, treating playback as done", "error", err)
		close(done)
		return done
	}

	var once sync.Once
	if err := p.output.Mark(mark, func(string) {
		once.Do(func() { close(done) })
	}); err != nil {
		log.Println("Failed to set playback end mark, treating playback as done", "error", err)
		once.Do(func() { close(done) })
	}

	return done
}

func (p *player) Pause() {
	if !p.isConfigured() {
		return
	}

	if err := p.output.Pause(); err != nil {
		log.Println("Failed to pause playback device", "error", err)
	}
}

func (p *player) Resume() {
	if !p.isConfigured() {
		return
	}

	if err := p.output.Resume(); err != nil {
		log.Println("Failed to resume playback device", "error", err)
	}
}

// Stop halts the device and drops any buffered audio and pending marks.
// Callers awaiting a dropped mark are expected to be unblocked through their
// run context instead.
func (p *player) Stop() {
	if !p.isConfigured() {
		return
	}

	if err := p.output.Pause(); err != nil {
		log.Println("Failed to halt playback device", "error", err)
	}
	p.output.ClearBuffer()
}

func (p *player) encodingInfo() audio.EncodingInfo {
	if c, ok := p.output.(interface{ EncodingInfo() audio.EncodingInfo }); ok {
		return c.EncodingInfo()
	}
	return audio.GetDefaultEncodingInfo()
}
