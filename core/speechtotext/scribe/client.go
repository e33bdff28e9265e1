// Package scribe implements the realtime transcription channel: microphone
// capture streamed over a websocket with voice-activity-based commit.
package scribe

import (
	"context"
	"encoding/base64"
	"log"
	"os"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/xujimc/read-me/core/audio"
	"github.com/xujimc/read-me/core/speechtotext"
)

const defaultEndpoint = "wss://api.elevenlabs.io/v1/speech-to-text/realtime"

// AudioInput is the microphone capture client owned by the channel while it
// is open. At most one open channel may hold it at a time.
type AudioInput interface {
	EncodingInfo() audio.EncodingInfo
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
}

type TranscriptionClient struct {
	input    AudioInput
	endpoint string
	dialer   *websocket.Dialer

	mu     sync.Mutex
	active *listeningTurn
}

type ClientOption func(*TranscriptionClient)

func WithEndpoint(endpoint string) ClientOption {
	return func(c *TranscriptionClient) {
		c.endpoint = endpoint
	}
}

func WithDialer(dialer *websocket.Dialer) ClientOption {
	return func(c *TranscriptionClient) {
		c.dialer = dialer
	}
}

func NewTranscriptionClient(input AudioInput, opts ...ClientOption) *TranscriptionClient {
	client := &TranscriptionClient{
		input:    input,
		endpoint: defaultEndpoint,
		dialer:   websocket.DefaultDialer,
	}
	if endpoint, ok := os.LookupEnv("SCRIBE_REALTIME_URL"); ok {
		client.endpoint = endpoint
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Stop tears down the open capture/socket pair, if any. The pending end
// callback fires with an empty transcript unless a commit was observed first.
func (c *TranscriptionClient) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		c.active.teardown()
		c.active = nil
	}
	return nil
}

func (c *TranscriptionClient) Close(context.Context) error {
	return c.Stop()
}

// listeningTurn is one capture/socket pair. A turn commits at most once, and
// its end callback fires exactly once on every path after a successful open.
type listeningTurn struct {
	id      uuid.UUID
	conn    *websocket.Conn
	input   AudioInput
	options speechtotext.TranscriptionOptions

	cancelCapture context.CancelFunc

	connMu  sync.Mutex
	closed  atomic.Bool
	endOnce sync.Once
}

func (t *listeningTurn) sendAudio(buffer []byte) {
	if t.closed.Load() {
		return
	}

	if t.options.EncodingInfo.Format == audio.EncodingFloat32 {
		buffer = audio.Float32BytesToPCM16(buffer)
	}

	msg := audioChunkMessage{
		MessageType: messageInputAudioChunk,
		AudioBase64: base64.StdEncoding.EncodeToString(buffer),
	}

	t.connMu.Lock()
	defer t.connMu.Unlock()
	if t.conn == nil {
		return
	}
	if err := t.conn.WriteJSON(msg); err != nil {
		log.Println("Failed to write audio chunk to transcription socket", "error", err)
	}
}

// teardown releases the capture stream and the socket. Safe to call from any
// goroutine, any number of times.
func (t *listeningTurn) teardown() {
	if !t.closed.CompareAndSwap(false, true) {
		return
	}

	t.cancelCapture()
	if t.input != nil {
		if err := t.input.StopCapture(); err != nil {
			log.Println("Failed to stop microphone capture", "error", err)
		}
	}

	t.connMu.Lock()
	defer t.connMu.Unlock()
	if t.conn != nil {
		// End-of-stream marker: an empty chunk flagged as a commit request.
		_ = t.conn.WriteJSON(audioChunkMessage{MessageType: messageInputAudioChunk, Commit: true})
		_ = t.conn.Close()
	}
}

func (t *listeningTurn) finish(finalTranscript string) {
	t.endOnce.Do(func() {
		t.teardown()
		if t.options.EndCallback != nil {
			t.options.EndCallback(finalTranscript)
		}
	})
}
