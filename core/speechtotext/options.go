// Package speechtotext defines the transcription-channel contract shared by
// the session orchestrator and concrete streaming clients.
package speechtotext

import (
	"time"

	"github.com/xujimc/read-me/core/audio"
)

const (
	DefaultSilenceThreshold  = 2 * time.Second
	DefaultActivityThreshold = 0.5
	DefaultLanguage          = "en"
)

type TranscriptionOptions struct {
	// Token is the single-use authorization token for this listening turn.
	Token string
	// SilenceThreshold is how long the service waits in silence before
	// committing the turn.
	SilenceThreshold time.Duration
	// ActivityThreshold tunes voice-activity-detection sensitivity.
	ActivityThreshold float64
	Language          string

	// PartialTranscriptionCallback receives provisional transcripts that may
	// be superseded by later ones.
	PartialTranscriptionCallback func(transcript string)
	// TranscriptionCallback receives the committed transcript, at most once.
	TranscriptionCallback func(transcript string)
	// EndCallback fires exactly once per successful open: with the committed
	// transcript, or with an empty string if the stream ended without one.
	EndCallback func(finalTranscript string)
	// ErrorCallback receives server-reported errors. It does not imply the
	// channel closed; the caller decides whether the error is fatal.
	ErrorCallback func(err error)

	EncodingInfo audio.EncodingInfo
}

func NewTranscriptionOptions(opts ...TranscriptionOption) TranscriptionOptions {
	options := TranscriptionOptions{
		SilenceThreshold:  DefaultSilenceThreshold,
		ActivityThreshold: DefaultActivityThreshold,
		Language:          DefaultLanguage,
		EncodingInfo:      audio.GetDefaultEncodingInfo(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

type TranscriptionOption func(*TranscriptionOptions)

func WithToken(token string) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.Token = token
	}
}

func WithSilenceThreshold(threshold time.Duration) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.SilenceThreshold = threshold
	}
}

func WithActivityThreshold(threshold float64) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.ActivityThreshold = threshold
	}
}

func WithLanguage(language string) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.Language = language
	}
}

func WithPartialTranscriptionCallback(callback func(transcript string)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.PartialTranscriptionCallback = callback
	}
}

func WithTranscriptionCallback(callback func(transcript string)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.TranscriptionCallback = callback
	}
}

func WithEndCallback(callback func(finalTranscript string)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.EndCallback = callback
	}
}

func WithErrorCallback(callback func(err error)) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.ErrorCallback = callback
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		o.EncodingInfo = encodingInfo
	}
}
