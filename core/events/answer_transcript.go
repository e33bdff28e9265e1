package events

const (
	// KindAnswerTranscriptPartial identifies a provisional answer transcript.
	KindAnswerTranscriptPartial Kind = "user_answer.transcript_partial"
	// KindAnswerTranscriptCommitted identifies the committed answer transcript.
	KindAnswerTranscriptCommitted Kind = "user_answer.transcript_committed"
)

// AnswerTranscriptPartial carries a provisional transcript of the answer in
// progress. Later partials supersede earlier ones.
type AnswerTranscriptPartial struct {
	Base
	QuestionIndex int
	Transcript    string
}

// NewAnswerTranscriptPartial creates a partial answer transcript event.
func NewAnswerTranscriptPartial(questionIndex int, transcript string) AnswerTranscriptPartial {
	return AnswerTranscriptPartial{
		Base:          NewBase(KindAnswerTranscriptPartial),
		QuestionIndex: questionIndex,
		Transcript:    transcript,
	}
}

// AnswerTranscriptCommitted carries the final transcript of one answer.
type AnswerTranscriptCommitted struct {
	Base
	QuestionIndex int
	Transcript    string
}

// NewAnswerTranscriptCommitted creates a committed answer transcript event.
func NewAnswerTranscriptCommitted(questionIndex int, transcript string) AnswerTranscriptCommitted {
	return AnswerTranscriptCommitted{
		Base:          NewBase(KindAnswerTranscriptCommitted),
		QuestionIndex: questionIndex,
		Transcript:    transcript,
	}
}
