package scribe

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/xujimc/read-me/core/audio"
	"github.com/xujimc/read-me/core/speechtotext"
)

const defaultModelID = "scribe_v2_realtime"

// Transcribe opens a capture/socket pair for one listening turn. If a turn is
// already open it is fully torn down first; only one pair may be active per
// client. After a successful open, either the end callback or a fatal error
// relayed through the error callback will eventually fire, exactly once.
func (c *TranscriptionClient) Transcribe(ctx context.Context, opts ...speechtotext.TranscriptionOption) error {
	options := speechtotext.NewTranscriptionOptions(opts...)
	if options.Token == "" {
		return fmt.Errorf("transcription token is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		c.active.teardown()
		c.active = nil
	}

	conn, err := c.connect(options)
	if err != nil {
		return fmt.Errorf("failed to open transcription socket: %w", err)
	}

	captureCtx, cancelCapture := context.WithCancel(ctx)
	turn := &listeningTurn{
		id:            uuid.New(),
		conn:          conn,
		input:         c.input,
		options:       options,
		cancelCapture: cancelCapture,
	}

	if c.input != nil {
		if err := c.input.StartCapture(captureCtx, turn.sendAudio); err != nil {
			turn.teardown()
			return fmt.Errorf("failed to start microphone capture: %w", err)
		}
	}

	c.active = turn
	go turn.readAndProcessMessages()

	return nil
}

func (c *TranscriptionClient) connect(options speechtotext.TranscriptionOptions) (conn *websocket.Conn, err error) {
	listenURL, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid transcription endpoint: %w", err)
	}

	queryParams := listenURL.Query()
	queryParams.Set("model_id", defaultModelID)
	queryParams.Set("audio_format", wireFormat(options.EncodingInfo))
	queryParams.Set("language_code", options.Language)
	queryParams.Set("commit_strategy", "vad")
	queryParams.Set("vad_silence_threshold_secs",
		strconv.FormatFloat(options.SilenceThreshold.Seconds(), 'f', -1, 64))
	queryParams.Set("vad_threshold", strconv.FormatFloat(options.ActivityThreshold, 'f', -1, 64))
	queryParams.Set("token", options.Token)
	listenURL.RawQuery = queryParams.Encode()

	conn, _, err = c.dialer.Dial(listenURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to transcription service: %w", err)
	}

	return conn, nil
}

// wireFormat maps the capture encoding to the service's audio_format value.
// Float captures are converted to 16-bit PCM before they hit the wire.
func wireFormat(encoding audio.EncodingInfo) string {
	sampleRate := encoding.SampleRate
	if sampleRate <= 0 {
		sampleRate = audio.DefaultSampleRate
	}
	return "pcm_" + strconv.Itoa(sampleRate)
}

func (t *listeningTurn) readAndProcessMessages() {
	// The socket closing for any reason without a prior commit still ends the
	// turn with an empty transcript.
	defer t.finish("")

	for {
		msgType, msg, err := t.conn.ReadMessage()
		if err != nil {
			if !t.closed.Load() && err.Error() != "websocket: close 1000 (normal)" {
				log.Println("Failed to read transcription socket message", "error", err)
			}
			return
		}
		if msgType == websocket.BinaryMessage {
			continue
		}
		if committed := t.processMessage(msg); committed {
			return
		}
	}
}

// processMessage handles one inbound message and reports whether it committed
// the turn. After a commit no further messages are processed.
func (t *listeningTurn) processMessage(msg []byte) bool {
	var parsedMsg inboundMessage
	if err := json.Unmarshal(msg, &parsedMsg); err != nil {
		log.Println("Failed to unmarshal transcription message", "error", err)
		return false
	}

	switch parsedMsg.MessageType {
	case messageSessionStarted:
		// Informational only.

	case messagePartialTranscript:
		if t.options.PartialTranscriptionCallback != nil {
			t.options.PartialTranscriptionCallback(parsedMsg.Text)
		}

	case messageCommittedTranscript, messageCommittedTranscriptWithTimestamps:
		if t.options.TranscriptionCallback != nil {
			t.options.TranscriptionCallback(parsedMsg.Text)
		}
		t.teardown()
		t.finish(parsedMsg.Text)
		return true

	case messageError:
		if t.options.ErrorCallback != nil {
			t.options.ErrorCallback(&ServerError{Message: serverErrorMessage(parsedMsg)})
		}

	default:
		log.Println("Unknown transcription message type", parsedMsg.MessageType)
	}

	return false
}

func serverErrorMessage(msg inboundMessage) string {
	if msg.Error != "" {
		return msg.Error
	}
	if msg.Message != "" {
		return msg.Message
	}
	return "unknown transcription error"
}
