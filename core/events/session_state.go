package events

import "github.com/xujimc/read-me/core/feedback"

const (
	// KindSessionStateChanged identifies a session state transition.
	KindSessionStateChanged Kind = "session.state_changed"
)

// State is the session orchestrator's lifecycle state.
type State string

const (
	StateIdle            State = "idle"
	StateAskingQuestion  State = "asking_question"
	StateListeningAnswer State = "listening_answer"
	StateSubmitting      State = "submitting"
	StateReadingFeedback State = "reading_feedback"
	StateDone            State = "done"
	StatePaused          State = "paused"
)

// StateData carries the context of a state transition. Which fields are
// populated depends on the state: question fields accompany asking_question
// and listening_answer, results accompany done.
type StateData struct {
	// QuestionIndex is the zero-based index of the current question.
	QuestionIndex int
	// QuestionNumber is the one-based display number of the current question.
	QuestionNumber int
	TotalQuestions int
	Question       string

	// Answers holds the committed answers gathered so far, one per question
	// asked. Only populated on done.
	Answers []string
	// Feedback holds per-question evaluation results. Only populated on done
	// after a successful submission.
	Feedback []feedback.Result
	// Score is the classification tally. Only populated on done after a
	// successful submission.
	Score *feedback.Score

	// Err is set when the session ends because of a failure.
	Err error
}

// StateChanged reports a session state transition.
type StateChanged struct {
	Base
	State State
	Data  StateData
}

// NewStateChanged creates a session state transition event.
func NewStateChanged(state State, data StateData) StateChanged {
	return StateChanged{Base: NewBase(KindSessionStateChanged), State: state, Data: data}
}
