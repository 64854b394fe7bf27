package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mabel-app/mabel-backend/pkg/config"
)

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		var payload ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		})
	}))
}

func testClient(baseURL string) *OpenAIClient {
	return NewOpenAIClient(&config.AIConfig{
		APIKey:    "test-key",
		BaseURL:   baseURL,
		TextModel: "gpt-4o",
	})
}

func TestGenerateQuestionsParsesArray(t *testing.T) {
	ts := chatServer(t, `["What is your earliest memory?", "Who shaped you most?", "Describe a vivid day."]`)
	defer ts.Close()

	client := testClient(ts.URL)
	questions, err := client.GenerateQuestions(context.Background(), QuestionRequest{
		Topic: "childhood", IntervieweeName: "Ruth", BirthYear: 1958, Generation: "Baby Boomer", Count: 3,
	})
	if err != nil {
		t.Fatalf("GenerateQuestions failed: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}
	if questions[0].Text != "What is your earliest memory?" || questions[0].Order != 1 {
		t.Errorf("unexpected first question %+v", questions[0])
	}
}

func TestGenerateQuestionsToleratesFencedOutput(t *testing.T) {
	ts := chatServer(t, "Here you go:\n```json\n[\"One?\", \"Two?\", \"Three?\", \"Four?\"]\n```")
	defer ts.Close()

	client := testClient(ts.URL)
	questions, err := client.GenerateQuestions(context.Background(), QuestionRequest{Topic: "family", Count: 3})
	if err != nil {
		t.Fatalf("GenerateQuestions failed: %v", err)
	}
	// Surplus questions are truncated to the requested count
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}
}

func TestGenerateChapterTrimsContent(t *testing.T) {
	ts := chatServer(t, "\n\n  The kitchen always smelled of bread.  \n")
	defer ts.Close()

	client := testClient(ts.URL)
	chapter, err := client.GenerateChapter(context.Background(), ChapterRequest{
		Topic: "Early Years", IntervieweeName: "Ruth", BirthYear: 1958,
		Person: "first", Tone: "warm", Style: "conversational",
		Answers: []QuestionAnswer{{Question: "Q", Answer: "A"}},
	})
	if err != nil {
		t.Fatalf("GenerateChapter failed: %v", err)
	}
	if chapter != "The kitchen always smelled of bread." {
		t.Errorf("unexpected chapter %q", chapter)
	}
}

func TestChatErrorMapping(t *testing.T) {
	cases := []struct {
		status int
		want   string
	}{
		{http.StatusUnauthorized, "rejected api key"},
		{http.StatusTooManyRequests, "rate limit exceeded"},
		{http.StatusPaymentRequired, "quota exhausted"},
		{http.StatusGatewayTimeout, "timeout"},
		{http.StatusInternalServerError, "status 500"},
	}

	for _, tc := range cases {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
		}))

		client := testClient(ts.URL)
		_, err := client.GenerateQuestions(context.Background(), QuestionRequest{Topic: "x", Count: 1})
		ts.Close()

		if err == nil {
			t.Fatalf("status %d: expected an error", tc.status)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("status %d: error %q does not mention %q", tc.status, err, tc.want)
		}
	}
}

func TestGenerateImageDecodesBase64(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/generations" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var payload ImageRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if payload.ResponseFormat != "b64_json" {
			t.Errorf("expected b64_json response format, got %q", payload.ResponseFormat)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]string{{"b64_json": base64.StdEncoding.EncodeToString(raw)}},
		})
	}))
	defer ts.Close()

	client := testClient(ts.URL)
	img, err := client.GenerateImage(context.Background(), "a farmhouse at dusk")
	if err != nil {
		t.Fatalf("GenerateImage failed: %v", err)
	}
	if string(img.Data) != string(raw) {
		t.Error("decoded bytes do not match the source image")
	}
	if img.ContentType != "image/png" {
		t.Errorf("unexpected content type %s", img.ContentType)
	}
}

func TestParseQuestionArrayRejectsGarbage(t *testing.T) {
	if _, err := parseQuestionArray("sorry, I can't do that", 5); err == nil {
		t.Error("expected an error for output without a JSON array")
	}
	if _, err := parseQuestionArray("[]", 5); err == nil {
		t.Error("expected an error for an empty array")
	}
}
