// Package quizapi is the HTTP client for the quiz backend: question
// generation, speech synthesis, answer evaluation, and transcription tokens.
package quizapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultBaseURL = "http://localhost:8000"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(opts ...ClientOption) *Client {
	client := &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   60 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Question is one generated comprehension question, optionally with
// pre-synthesized speech audio.
type Question struct {
	Text  string
	Audio []byte
}

// GenerateQuestions asks the backend to generate comprehension questions for
// an article. Pre-synthesized audio is attached where the backend provides
// it; questions without audio fall back to Synthesize at ask time.
func (c *Client) GenerateQuestions(ctx context.Context, articleText string) ([]Question, error) {
	request := struct {
		ArticleText string `json:"article_text"`
	}{ArticleText: articleText}

	var response struct {
		Questions      []string `json:"questions"`
		QuestionAudios []string `json:"question_audios"`
	}
	if err := c.postJSON(ctx, "/articles", request, &response); err != nil {
		return nil, fmt.Errorf("failed to generate questions: %w", err)
	}

	questions := make([]Question, 0, len(response.Questions))
	for i, text := range response.Questions {
		question := Question{Text: text}
		if i < len(response.QuestionAudios) && response.QuestionAudios[i] != "" {
			audio, err := base64.StdEncoding.DecodeString(response.QuestionAudios[i])
			if err != nil {
				return nil, fmt.Errorf("failed to decode audio for question %d: %w", i+1, err)
			}
			question.Audio = audio
		}
		questions = append(questions, question)
	}

	return questions, nil
}

// Synthesize converts text to speech audio in the playback encoding.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	request := struct {
		Text string `json:"text"`
	}{Text: text}

	var response struct {
		Audio string `json:"audio"`
	}
	if err := c.postJSON(ctx, "/tts", request, &response); err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}

	audio, err := base64.StdEncoding.DecodeString(response.Audio)
	if err != nil {
		return nil, fmt.Errorf("failed to decode synthesized audio: %w", err)
	}

	return audio, nil
}

// Answer pairs a question with the transcript the user gave for it. An empty
// transcript means the question went unanswered.
type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Evaluate submits the gathered answers for evaluation. The result maps each
// question's text to its raw feedback, parseable by the feedback package.
func (c *Client) Evaluate(ctx context.Context, articleText string, answers []Answer) (map[string]string, error) {
	request := struct {
		ArticleText string   `json:"article_text"`
		Answers     []Answer `json:"answers"`
	}{ArticleText: articleText, Answers: answers}

	var response struct {
		Feedback map[string]string `json:"feedback"`
	}
	if err := c.postJSON(ctx, "/feedback", request, &response); err != nil {
		return nil, fmt.Errorf("failed to evaluate answers: %w", err)
	}

	return response.Feedback, nil
}

// IssueToken fetches a fresh single-use transcription token. Tokens are not
// reusable across listening turns.
func (c *Client) IssueToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stt-token", nil)
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}

	var response struct {
		Token string `json:"token"`
	}
	if err := c.do(req, &response); err != nil {
		return "", fmt.Errorf("failed to fetch transcription token: %w", err)
	}
	if response.Token == "" {
		return "", fmt.Errorf("transcription token response was empty")
	}

	return response.Token, nil
}

func (c *Client) postJSON(ctx context.Context, path string, request any, response any) error {
	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, response)
}

func (c *Client) do(req *http.Request, response any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("backend returned %s: %s", resp.Status, bytes.TrimSpace(snippet))
	}

	if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
