package session

import "github.com/xujimc/read-me/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newCallbackEventEmitter(opts StartOptions) eventEmitter {
	return func(event events.Event) {
		switch typedEvent := event.(type) {
		case events.StateChanged:
			if opts.onStateChange != nil {
				opts.onStateChange(typedEvent.State, typedEvent.Data)
			}
		case events.AnswerTranscriptPartial:
			if opts.onTranscript != nil {
				opts.onTranscript(typedEvent.Transcript, true, typedEvent.QuestionIndex)
			}
		case events.AnswerTranscriptCommitted:
			if opts.onTranscript != nil {
				opts.onTranscript(typedEvent.Transcript, false, typedEvent.QuestionIndex)
			}
		}
	}
}
