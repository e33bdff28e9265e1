// Package session implements the voice comprehension-quiz session: a
// finite-state orchestrator that speaks questions, listens for spoken answers
// through a realtime transcription channel, submits them for evaluation, and
// narrates the resulting feedback.
package session

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/xujimc/read-me/core/audio"
	"github.com/xujimc/read-me/core/events"
	"github.com/xujimc/read-me/core/feedback"
	"github.com/xujimc/read-me/core/speechtotext"
	"github.com/xujimc/read-me/internal/retry"
	"github.com/xujimc/read-me/internal/utils"
	"github.com/xujimc/read-me/quizapi"
	"go.opentelemetry.io/otel/codes"
)

// Question is one prompt of the quiz, in presentation order. Audio is an
// optional pre-rendered payload; questions without one are synthesized on
// demand when asked.
type Question struct {
	Text  string
	Audio []byte
}

// Session drives one quiz run at a time. A Session owns at most one open
// transcription channel and at most one playing audio payload; the caller
// interacts only through Start, Pause, Resume, and Stop.
type Session struct {
	id uuid.UUID

	stt    *speechToText
	player *player

	synthesizer SpeechSynthesizer
	evaluator   AnswerEvaluator
	tokens      TokenIssuer
	permissions MicrophonePermissions
	clock       retry.Clock

	silenceThreshold       time.Duration
	permissionPollInterval time.Duration
	permissionTimeout      time.Duration

	mu          sync.Mutex
	state       events.State
	resumeState events.State
	// resumeGate is non-nil while paused; Resume and Stop close it to release
	// the run loop.
	resumeGate  chan struct{}
	running     bool
	cancelRun   context.CancelFunc
	emitEvent   eventEmitter
	questions   []Question
	articleText string
	index       int
	answers     []string
	feedback    []feedback.Result
}

func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		id:                     uuid.New(),
		stt:                    newSpeechToText(nil),
		player:                 newPlayer(nil),
		clock:                  retry.SystemClock(),
		silenceThreshold:       speechtotext.DefaultSilenceThreshold,
		permissionPollInterval: 500 * time.Millisecond,
		permissionTimeout:      time.Minute,
		state:                  events.StateIdle,
		emitEvent:              noopEventEmitter,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

// Start validates capability and permission synchronously, then runs the
// question loop in the background. Exactly one terminal Done transition is
// reported per successful Start, unless Stop intervenes.
func (s *Session) Start(ctx context.Context, questions []Question, articleText string, opts ...StartOption) error {
	if len(questions) == 0 {
		return fmt.Errorf("at least one question is required")
	}
	if !s.stt.isConfigured() {
		return ErrCapabilityUnavailable
	}

	options := StartOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrSessionActive
	}
	s.mu.Unlock()

	if err := s.ensurePermission(ctx); err != nil {
		return err
	}

	runCtx, cancelRun := context.WithCancel(ctx)

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		cancelRun()
		return ErrSessionActive
	}
	s.running = true
	s.cancelRun = cancelRun
	s.state = events.StateIdle
	s.resumeGate = nil
	s.questions = slices.Clone(questions)
	s.articleText = articleText
	s.index = 0
	s.answers = make([]string, len(questions))
	s.feedback = nil
	s.emitEvent = newCallbackEventEmitter(options)
	s.mu.Unlock()

	go s.run(runCtx)

	return nil
}

func (s *Session) run(ctx context.Context) {
	for index := 0; index < len(s.questionList()); index++ {
		s.mu.Lock()
		s.index = index
		s.mu.Unlock()

		if !s.askQuestion(ctx, index) {
			return
		}
		if !s.listenLoop(ctx, index) {
			return
		}
	}

	s.submitAnswers(ctx)
}

// askQuestion plays the question prompt and the start-of-listening cue, then
// transitions to listening. Returns false when the run should end.
func (s *Session) askQuestion(ctx context.Context, index int) bool {
	if !s.setState(ctx, events.StateAskingQuestion, s.questionData(index)) {
		return false
	}

	s.mu.Lock()
	question := s.questions[index]
	s.mu.Unlock()

	payload := question.Audio
	if len(payload) == 0 && s.synthesizer != nil {
		synthesized, err := s.synthesizer.Synthesize(ctx, question.Text)
		if err != nil {
			log.Println("Failed to synthesize question audio", "error", err)
		} else {
			payload = synthesized
		}
	}

	if !s.awaitPlayback(ctx, payload) {
		return false
	}
	if !s.awaitResume(ctx) {
		return false
	}
	if !s.awaitPlayback(ctx, audio.CueTone(s.player.encodingInfo())) {
		return false
	}

	return s.setState(ctx, events.StateListeningAnswer, s.questionData(index))
}

type listenOutcome int

const (
	// listenAnswered covers both a committed transcript and the degraded
	// empty-answer paths; the session advances either way.
	listenAnswered listenOutcome = iota
	// listenInterrupted means pause or cancellation tore the channel down;
	// nothing is stored and the same question is listened for again.
	listenInterrupted
	listenFatal
)

// listenLoop listens for one question's answer, re-listening after every
// pause/resume cycle, and stores the committed answer.
func (s *Session) listenLoop(ctx context.Context, index int) bool {
	for {
		if !s.awaitResume(ctx) {
			return false
		}

		answer, outcome, err := s.listenForAnswer(ctx, index)
		switch outcome {
		case listenFatal:
			s.finish(s.doneData(err))
			return false
		case listenInterrupted:
			if ctx.Err() != nil {
				return false
			}
			continue
		}

		s.mu.Lock()
		s.answers[index] = answer
		s.mu.Unlock()
		s.emit(events.NewAnswerTranscriptCommitted(index, answer))

		return true
	}
}

// listenForAnswer opens a fresh transcription channel for one question. A
// token fetch failure records an empty answer; the session must not stall
// because one question's transcription infrastructure is unavailable.
func (s *Session) listenForAnswer(ctx context.Context, index int) (string, listenOutcome, error) {
	token, err := s.fetchToken(ctx)
	if err != nil {
		log.Println("Failed to fetch transcription token, recording an empty answer", "error", err)
		return "", listenAnswered, nil
	}

	type listenResult struct {
		final string
		err   error
	}
	results := make(chan listenResult, 2)

	var partialMu sync.Mutex
	partial := ""

	err = s.stt.Transcribe(ctx,
		speechtotext.WithToken(token),
		speechtotext.WithSilenceThreshold(s.silenceThreshold),
		speechtotext.WithEncodingInfo(s.player.encodingInfo()),
		speechtotext.WithPartialTranscriptionCallback(func(transcript string) {
			partialMu.Lock()
			partial = transcript
			partialMu.Unlock()
			s.emit(events.NewAnswerTranscriptPartial(index, transcript))
		}),
		speechtotext.WithEndCallback(func(finalTranscript string) {
			results <- listenResult{final: finalTranscript}
		}),
		speechtotext.WithErrorCallback(func(err error) {
			if isAuthorizationError(err) {
				results <- listenResult{err: err}
				return
			}
			log.Println("Transcription channel reported a recoverable error", "error", err)
		}),
	)
	if err != nil {
		if isAuthorizationError(err) {
			return "", listenFatal, fmt.Errorf("failed to open transcription channel: %w", err)
		}
		log.Println("Failed to open transcription channel, recording an empty answer", "error", err)
		return "", listenAnswered, nil
	}

	select {
	case result := <-results:
		if result.err != nil {
			if err := s.stt.Stop(); err != nil {
				log.Println("Failed to close transcription channel", "error", err)
			}
			return "", listenFatal, fmt.Errorf("transcription channel rejected the session: %w", result.err)
		}

		if s.currentState() == events.StatePaused {
			return "", listenInterrupted, nil
		}

		answer := strings.TrimSpace(result.final)
		if answer == "" {
			partialMu.Lock()
			answer = strings.TrimSpace(partial)
			partialMu.Unlock()
		}
		return answer, listenAnswered, nil

	case <-ctx.Done():
		return "", listenInterrupted, ctx.Err()
	}
}

func (s *Session) fetchToken(ctx context.Context) (string, error) {
	if s.tokens == nil {
		return "", fmt.Errorf("no transcription token issuer configured")
	}

	ctx, span := tracer.Start(ctx, "session.fetchToken")
	defer span.End()

	token, err := s.tokens.IssueToken(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token fetch failed")
		return "", err
	}

	return token, nil
}

// submitAnswers sends the full question set and collected answers for
// evaluation in a single round trip. Failure ends the run with the error and
// the collected answers; there is no automatic retry.
func (s *Session) submitAnswers(ctx context.Context) {
	if !s.setState(ctx, events.StateSubmitting, events.StateData{TotalQuestions: len(s.questionList())}) {
		return
	}

	s.mu.Lock()
	answers := make([]quizapi.Answer, len(s.questions))
	for i, question := range s.questions {
		answers[i] = quizapi.Answer{Question: question.Text, Answer: s.answers[i]}
	}
	articleText := s.articleText
	s.mu.Unlock()

	if s.evaluator == nil {
		s.finish(s.doneData(fmt.Errorf("no answer evaluator configured")))
		return
	}

	spanCtx, span := tracer.Start(ctx, "session.submitAnswers")
	feedbackByQuestion, err := s.evaluator.Evaluate(spanCtx, articleText, answers)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission failed")
		span.End()
		if ctx.Err() != nil {
			return
		}
		s.finish(s.doneData(fmt.Errorf("failed to submit answers: %w", err)))
		return
	}
	span.End()

	s.mu.Lock()
	results := make([]feedback.Result, len(s.questions))
	for i, question := range s.questions {
		results[i] = feedback.Parse(feedbackByQuestion[question.Text])
	}
	s.feedback = results
	s.mu.Unlock()

	s.readFeedback(ctx, results)
}

// readFeedback narrates the score and per-question recap, then ends the run.
func (s *Session) readFeedback(ctx context.Context, results []feedback.Result) {
	score := feedback.Tally(results)
	if !s.setState(ctx, events.StateReadingFeedback, events.StateData{TotalQuestions: score.Total, Score: &score}) {
		return
	}

	if s.synthesizer != nil {
		narrationAudio, err := s.synthesizer.Synthesize(ctx, narration(results, score))
		if err != nil {
			log.Println("Failed to synthesize feedback narration", "error", err)
		} else if !s.awaitPlayback(ctx, narrationAudio) {
			return
		}
	}

	if !s.awaitResume(ctx) {
		return
	}
	s.finish(s.doneData(nil))
}

// Pause suspends the session: in-flight audio is paused in place, an open
// transcription channel is torn down (listening cannot be paused mid-stream).
// No-op unless the session is in an interruptible state.
func (s *Session) Pause() {
	s.mu.Lock()
	if !s.running || s.state == events.StatePaused ||
		s.state == events.StateIdle || s.state == events.StateDone {
		s.mu.Unlock()
		return
	}
	interrupted := s.state
	s.resumeState = interrupted
	s.state = events.StatePaused
	s.resumeGate = make(chan struct{})
	data := s.progressData()
	s.mu.Unlock()

	s.emit(events.NewStateChanged(events.StatePaused, data))

	if interrupted == events.StateListeningAnswer {
		if err := s.stt.Stop(); err != nil {
			log.Println("Failed to close transcription channel on pause", "error", err)
		}
	} else {
		s.player.Pause()
	}
}

// Resume restores the state recorded by Pause. A paused listening phase is
// re-entered from scratch for the same question, discarding any provisional
// transcript captured before the pause; other states resume playback in
// place.
func (s *Session) Resume() {
	s.mu.Lock()
	if s.state != events.StatePaused {
		s.mu.Unlock()
		return
	}
	restored := s.resumeState
	s.state = restored
	gate := s.resumeGate
	s.resumeGate = nil
	data := s.progressData()
	s.mu.Unlock()

	if restored != events.StateListeningAnswer {
		s.player.Resume()
	}
	s.emit(events.NewStateChanged(restored, data))
	if gate != nil {
		close(gate)
	}
}

// Stop unconditionally halts playback, closes any open channel, and forces
// the session to Idle. Safe to call from any state.
func (s *Session) Stop() {
	s.mu.Lock()
	cancelRun := s.cancelRun
	s.cancelRun = nil
	gate := s.resumeGate
	s.resumeGate = nil
	wasIdle := s.state == events.StateIdle && !s.running
	s.running = false
	s.state = events.StateIdle
	s.mu.Unlock()

	if cancelRun != nil {
		cancelRun()
	}
	if gate != nil {
		close(gate)
	}
	if err := s.stt.Stop(); err != nil {
		log.Println("Failed to close transcription channel on stop", "error", err)
	}
	s.player.Stop()

	if !wasIdle {
		s.emit(events.NewStateChanged(events.StateIdle, events.StateData{}))
	}
}

// Close stops the session and releases the speech-to-text client.
func (s *Session) Close(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "session.close")
	defer span.End()

	s.Stop()
	if err := s.stt.Close(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to close speech-to-text client")
		return err
	}

	return nil
}

// Progress is a point-in-time copy of the session's visible state.
type Progress struct {
	State          events.State
	QuestionIndex  int
	TotalQuestions int
	Answers        []string
	Feedback       []feedback.Result
}

// Snapshot returns a deep copy of the session's progress, safe to hold after
// the session moves on.
func (s *Session) Snapshot() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()

	progress := Progress{
		State:          s.state,
		QuestionIndex:  s.index,
		TotalQuestions: len(s.questions),
	}
	copier.Copy(&progress.Answers, s.answers)
	copier.Copy(&progress.Feedback, s.feedback)
	return progress
}

// State reports the current machine state.
func (s *Session) State() events.State {
	return s.currentState()
}

func (s *Session) currentState() events.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) questionList() []Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questions
}

// setState waits out any pause, then transitions and emits. Returns false
// when the run has been stopped.
func (s *Session) setState(ctx context.Context, state events.State, data events.StateData) bool {
	if !s.awaitResume(ctx) {
		return false
	}

	s.mu.Lock()
	if !s.running || s.state == events.StatePaused {
		s.mu.Unlock()
		return false
	}
	s.state = state
	emit := s.emitEvent
	s.mu.Unlock()

	emit(events.NewStateChanged(state, data))
	return true
}

// finish reports the terminal Done transition and releases the run.
func (s *Session) finish(data events.StateData) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.state = events.StateDone
	s.running = false
	if s.cancelRun != nil {
		defer s.cancelRun()
		s.cancelRun = nil
	}
	emit := s.emitEvent
	s.mu.Unlock()

	emit(events.NewStateChanged(events.StateDone, data))
}

// awaitResume blocks while the session is paused. Returns false when the run
// context is cancelled.
func (s *Session) awaitResume(ctx context.Context) bool {
	s.mu.Lock()
	gate := s.resumeGate
	s.mu.Unlock()

	if gate == nil {
		return ctx.Err() == nil
	}

	select {
	case <-gate:
		return ctx.Err() == nil
	case <-ctx.Done():
		return false
	}
}

// awaitPlayback plays the payload and waits for the device to consume it.
// Returns false when the run context is cancelled first.
func (s *Session) awaitPlayback(ctx context.Context, payload []byte) bool {
	select {
	case <-s.player.Play(payload):
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Session) emit(event events.Event) {
	s.mu.Lock()
	emit := s.emitEvent
	s.mu.Unlock()
	if emit != nil {
		emit(event)
	}
}

func (s *Session) questionData(index int) events.StateData {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := events.StateData{
		QuestionIndex:  index,
		QuestionNumber: index + 1,
		TotalQuestions: len(s.questions),
	}
	if index < len(s.questions) {
		data.Question = s.questions[index].Text
	}
	return data
}

// progressData builds state data for pause/resume transitions. Callers must
// hold the session mutex.
func (s *Session) progressData() events.StateData {
	data := events.StateData{
		QuestionIndex:  s.index,
		QuestionNumber: s.index + 1,
		TotalQuestions: len(s.questions),
	}
	if s.index < len(s.questions) {
		data.Question = s.questions[s.index].Text
	}
	return data
}

// doneData assembles the terminal payload: collected answers always, feedback
// and score only after a successful submission.
func (s *Session) doneData(err error) events.StateData {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := events.StateData{
		TotalQuestions: len(s.questions),
		Answers:        slices.Clone(s.answers),
		Err:            err,
	}
	if s.feedback != nil {
		data.Feedback = slices.Clone(s.feedback)
		data.Score = utils.Ptr(feedback.Tally(s.feedback))
	}
	return data
}
