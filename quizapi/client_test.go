package quizapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateQuestionsDecodesAudio(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/articles" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var request struct {
			ArticleText string `json:"article_text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if request.ArticleText != "An article about tides." {
			t.Errorf("unexpected article text: %q", request.ArticleText)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"questions": []string{"What causes tides?", "Name one tidal pattern."},
			"question_audios": []string{
				base64.StdEncoding.EncodeToString([]byte("pcm-one")),
				"",
			},
		})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	questions, err := client.GenerateQuestions(context.Background(), "An article about tides.")
	if err != nil {
		t.Fatalf("expected questions, got %v", err)
	}

	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if questions[0].Text != "What causes tides?" {
		t.Fatalf("unexpected first question: %q", questions[0].Text)
	}
	if string(questions[0].Audio) != "pcm-one" {
		t.Fatalf("expected decoded audio for first question, got %q", questions[0].Audio)
	}
	if questions[1].Audio != nil {
		t.Fatalf("expected no audio for second question, got %d bytes", len(questions[1].Audio))
	}
}

func TestSynthesizeDecodesAudio(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tts" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"audio": base64.StdEncoding.EncodeToString([]byte("narration-pcm")),
		})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	audio, err := client.Synthesize(context.Background(), "You got 2 out of 3 questions correct.")
	if err != nil {
		t.Fatalf("expected audio, got %v", err)
	}
	if string(audio) != "narration-pcm" {
		t.Fatalf("expected decoded audio, got %q", audio)
	}
}

func TestEvaluateSubmitsAnswersAndReturnsFeedback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/feedback" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var request struct {
			ArticleText string   `json:"article_text"`
			Answers     []Answer `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if len(request.Answers) != 2 || request.Answers[1].Answer != "" {
			t.Errorf("expected unanswered question to submit empty answer, got %+v", request.Answers)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"feedback": map[string]string{
				"What causes tides?": "Correctness: Correct\nExplanation: Gravity of the moon.",
			},
		})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	feedback, err := client.Evaluate(context.Background(), "article", []Answer{
		{Question: "What causes tides?", Answer: "The moon's gravity."},
		{Question: "Name one tidal pattern.", Answer: ""},
	})
	if err != nil {
		t.Fatalf("expected feedback, got %v", err)
	}
	if !strings.Contains(feedback["What causes tides?"], "Correctness: Correct") {
		t.Fatalf("unexpected feedback payload: %v", feedback)
	}
}

func TestIssueTokenRejectsEmptyToken(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/stt-token" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		calls++
		if calls == 1 {
			json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"token": ""})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	token, err := client.IssueToken(context.Background())
	if err != nil {
		t.Fatalf("expected token, got %v", err)
	}
	if token != "tok-1" {
		t.Fatalf("unexpected token: %q", token)
	}

	if _, err := client.IssueToken(context.Background()); err == nil {
		t.Fatalf("expected empty token to be rejected")
	}
}

func TestBackendErrorIncludesStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "article too short", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.GenerateQuestions(context.Background(), "x")
	if err == nil {
		t.Fatalf("expected backend error")
	}
	if !strings.Contains(err.Error(), "422") || !strings.Contains(err.Error(), "article too short") {
		t.Fatalf("expected status and body in error, got %v", err)
	}
}
