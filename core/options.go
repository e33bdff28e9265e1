package session

import (
	"context"
	"time"

	"github.com/xujimc/read-me/core/events"
	"github.com/xujimc/read-me/core/speechtotext"
	"github.com/xujimc/read-me/internal/retry"
	"github.com/xujimc/read-me/quizapi"
)

type SessionOption func(*Session)

// SpeechToText is the transcription channel contract. Transcribe opens one
// listening turn; Stop tears down the open capture/socket pair.
type SpeechToText interface {
	Transcribe(ctx context.Context, opts ...speechtotext.TranscriptionOption) error
	Stop() error
}

func WithSpeechToTextClient(client SpeechToText) SessionOption {
	return func(s *Session) {
		s.stt.set(client)
	}
}

// AudioOutput is the playback device contract: a byte buffer drained by the
// device, with position marks for completion signalling.
type AudioOutput interface {
	SendAudio(audio []byte) error
	ClearBuffer()
	Mark(mark string, callback func(string)) error
	Pause() error
	Resume() error
}

func WithAudioOutput(client AudioOutput) SessionOption {
	return func(s *Session) {
		s.player.set(client)
	}
}

// SpeechSynthesizer renders text to playable audio. Used for questions
// without pre-rendered audio and for the feedback narration.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

func WithSynthesizer(client SpeechSynthesizer) SessionOption {
	return func(s *Session) {
		s.synthesizer = client
	}
}

// AnswerEvaluator judges the collected answers in a single round trip,
// returning raw feedback text keyed by question text.
type AnswerEvaluator interface {
	Evaluate(ctx context.Context, articleText string, answers []quizapi.Answer) (map[string]string, error)
}

func WithEvaluator(client AnswerEvaluator) SessionOption {
	return func(s *Session) {
		s.evaluator = client
	}
}

// TokenIssuer provides single-use transcription tokens, fetched fresh for
// every listening turn.
type TokenIssuer interface {
	IssueToken(ctx context.Context) (string, error)
}

func WithTokenIssuer(client TokenIssuer) SessionOption {
	return func(s *Session) {
		s.tokens = client
	}
}

func WithPermissions(client MicrophonePermissions) SessionOption {
	return func(s *Session) {
		s.permissions = client
	}
}

// WithClock injects the time source used by the permission poll loop.
func WithClock(clock retry.Clock) SessionOption {
	return func(s *Session) {
		s.clock = clock
	}
}

// WithSilenceThreshold sets how long the transcription channel waits in
// silence before committing an answer.
func WithSilenceThreshold(threshold time.Duration) SessionOption {
	return func(s *Session) {
		s.silenceThreshold = threshold
	}
}

func WithPermissionPollInterval(interval time.Duration) SessionOption {
	return func(s *Session) {
		s.permissionPollInterval = interval
	}
}

func WithPermissionTimeout(timeout time.Duration) SessionOption {
	return func(s *Session) {
		s.permissionTimeout = timeout
	}
}

// StartOptions carries the per-run callbacks supplied to Start.
type StartOptions struct {
	onStateChange func(state events.State, data events.StateData)
	onTranscript  func(transcript string, interim bool, questionIndex int)
}

type StartOption func(*StartOptions)

// WithStateChangeCallback registers a callback invoked synchronously on every
// state transition.
func WithStateChangeCallback(callback func(state events.State, data events.StateData)) StartOption {
	return func(o *StartOptions) {
		o.onStateChange = callback
	}
}

// WithTranscriptCallback registers a callback for answer transcripts, both
// provisional and committed.
func WithTranscriptCallback(callback func(transcript string, interim bool, questionIndex int)) StartOption {
	return func(o *StartOptions) {
		o.onTranscript = callback
	}
}
