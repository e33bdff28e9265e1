package events

import "testing"

func TestStateChangedCarriesKindAndData(t *testing.T) {
	event := NewStateChanged(StateListeningAnswer, StateData{
		QuestionIndex:  1,
		QuestionNumber: 2,
		TotalQuestions: 3,
		Question:       "What is six times seven?",
	})

	if event.Kind() != KindSessionStateChanged {
		t.Fatalf("expected session state kind, got %q", event.Kind())
	}
	if event.Timestamp().IsZero() {
		t.Fatalf("expected a timestamp on the event")
	}
	if event.State != StateListeningAnswer {
		t.Fatalf("expected listening state, got %q", event.State)
	}
	if event.Data.QuestionNumber != 2 || event.Data.TotalQuestions != 3 {
		t.Fatalf("expected question data to be carried, got %+v", event.Data)
	}
}

func TestAnswerTranscriptEventsKeepQuestionIndex(t *testing.T) {
	partial := NewAnswerTranscriptPartial(2, "pari")
	if partial.Kind() != KindAnswerTranscriptPartial || partial.QuestionIndex != 2 {
		t.Fatalf("unexpected partial event: %+v", partial)
	}

	committed := NewAnswerTranscriptCommitted(2, "Paris")
	if committed.Kind() != KindAnswerTranscriptCommitted || committed.Transcript != "Paris" {
		t.Fatalf("unexpected committed event: %+v", committed)
	}
}
