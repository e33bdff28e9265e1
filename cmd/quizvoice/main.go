// quizvoice runs a voice comprehension quiz in the terminal: it fetches
// questions for an article from the quiz backend, speaks them, listens for
// spoken answers, and shows live transcripts and the final score.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	session "github.com/xujimc/read-me/core"
	"github.com/xujimc/read-me/core/audio/miniaudio"
	"github.com/xujimc/read-me/core/audio/portaudio"
	"github.com/xujimc/read-me/core/events"
	"github.com/xujimc/read-me/core/speechtotext/scribe"
	"github.com/xujimc/read-me/internal/retry"
	"github.com/xujimc/read-me/quizapi"
)

const captureBufferSize = 480

func main() {
	backendURL := flag.String("backend", "http://localhost:8000", "quiz backend base URL")
	articlePath := flag.String("article", "", "path to the article text file (defaults to stdin)")
	inputBackend := flag.String("input", "miniaudio", "microphone backend: miniaudio or portaudio")
	silence := flag.Duration("silence", 2*time.Second, "silence duration that commits an answer")
	flag.Parse()

	if err := run(*backendURL, *articlePath, *inputBackend, *silence); err != nil {
		log.Fatalln(err)
	}
}

func run(backendURL, articlePath, inputBackend string, silence time.Duration) error {
	ctx := context.Background()

	articleText, err := readArticle(articlePath)
	if err != nil {
		return err
	}

	api := quizapi.NewClient(quizapi.WithBaseURL(backendURL))

	var generated []quizapi.Question
	err = retry.Do(ctx, 5, 2*time.Second, nil, func(ctx context.Context) error {
		var err error
		generated, err = api.GenerateQuestions(ctx, articleText)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to fetch questions: %w", err)
	}
	if len(generated) == 0 {
		return fmt.Errorf("the backend returned no questions for this article")
	}

	audioClient, err := miniaudio.NewClient()
	if err != nil {
		return fmt.Errorf("failed to initialize the audio device: %w", err)
	}
	defer audioClient.Close()

	var input scribe.AudioInput = audioClient
	if inputBackend == "portaudio" {
		portaudioClient, err := portaudio.NewClient(captureBufferSize)
		if err != nil {
			return fmt.Errorf("failed to initialize the PortAudio capture device: %w", err)
		}
		defer portaudioClient.Close()
		input = portaudioClient
	}

	quiz := session.NewSession(
		session.WithSpeechToTextClient(scribe.NewTranscriptionClient(input)),
		session.WithAudioOutput(audioClient),
		session.WithSynthesizer(api),
		session.WithEvaluator(api),
		session.WithTokenIssuer(api),
		session.WithSilenceThreshold(silence),
	)
	defer quiz.Close(ctx)

	questions := make([]session.Question, len(generated))
	for i, question := range generated {
		questions[i] = session.Question{Text: question.Text, Audio: question.Audio}
	}

	program := tea.NewProgram(newModel(quiz, len(questions)), tea.WithAltScreen())

	err = quiz.Start(ctx, questions, articleText,
		session.WithStateChangeCallback(func(state events.State, data events.StateData) {
			program.Send(stateMsg{state: state, data: data})
		}),
		session.WithTranscriptCallback(func(transcript string, interim bool, questionIndex int) {
			program.Send(transcriptMsg{transcript: transcript, interim: interim})
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to start the session: %w", err)
	}

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}

	return nil
}

func readArticle(path string) (string, error) {
	if path == "" {
		text, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read the article from stdin: %w", err)
		}
		return string(text), nil
	}

	text, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read the article file: %w", err)
	}
	return string(text), nil
}
