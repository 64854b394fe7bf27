package ai

import (
	"bytes"
	"context"
	"image/png"
	"testing"
)

func TestMockQuestionsDeterministic(t *testing.T) {
	m := &MockGateway{}
	ctx := context.Background()

	req := QuestionRequest{Topic: "childhood", IntervieweeName: "Ruth", BirthYear: 1958, Count: 15}

	first, err := m.GenerateQuestions(ctx, req)
	if err != nil {
		t.Fatalf("GenerateQuestions failed: %v", err)
	}
	second, err := m.GenerateQuestions(ctx, req)
	if err != nil {
		t.Fatalf("GenerateQuestions failed: %v", err)
	}

	if len(first) != 15 {
		t.Fatalf("expected 15 questions, got %d", len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("question %d differs between identical requests", i)
		}
		if first[i].Order != i+1 {
			t.Errorf("question %d has order %d", i, first[i].Order)
		}
	}
}

func TestMockQuestionsEmbedTopic(t *testing.T) {
	m := &MockGateway{}

	questions, err := m.GenerateQuestions(context.Background(), QuestionRequest{Topic: "childhood", Count: 5})
	if err != nil {
		t.Fatalf("GenerateQuestions failed: %v", err)
	}
	for i, q := range questions {
		if !bytes.Contains([]byte(q.Text), []byte("childhood")) {
			t.Errorf("question %d does not mention the topic: %q", i, q.Text)
		}
	}
}

func TestMockFollowUpsReferenceTopic(t *testing.T) {
	m := &MockGateway{}

	followUps, err := m.GenerateFollowUpQuestions(context.Background(), QuestionRequest{
		Topic: "the farm",
		Answered: []QuestionAnswer{
			{Question: "Where did you grow up?", Answer: "On a farm outside town."},
		},
	})
	if err != nil {
		t.Fatalf("GenerateFollowUpQuestions failed: %v", err)
	}
	if len(followUps) == 0 {
		t.Fatal("expected follow-up questions")
	}
	for i, q := range followUps {
		if !bytes.Contains([]byte(q.Text), []byte("the farm")) {
			t.Errorf("follow-up %d does not reference the topic: %q", i, q.Text)
		}
	}
}

func TestMockChapterIsPureFunctionOfRequest(t *testing.T) {
	m := &MockGateway{}
	ctx := context.Background()

	req := ChapterRequest{
		Topic:           "Early Years",
		IntervieweeName: "Ruth",
		BirthYear:       1958,
		Person:          "first",
		Tone:            "warm",
		Style:           "conversational",
		Answers: []QuestionAnswer{
			{Question: "What is your earliest memory?", Answer: "The smell of bread in my mother's kitchen."},
			{Question: "Who shaped you?", Answer: "My grandfather, without a doubt."},
		},
	}

	first, err := m.GenerateChapter(ctx, req)
	if err != nil {
		t.Fatalf("GenerateChapter failed: %v", err)
	}
	second, _ := m.GenerateChapter(ctx, req)
	if first != second {
		t.Error("identical requests should generate identical chapters")
	}
	if !bytes.Contains([]byte(first), []byte("The smell of bread")) {
		t.Error("chapter should weave in the answers")
	}
	if !bytes.Contains([]byte(first), []byte("Ruth")) {
		t.Error("chapter should name the interviewee")
	}

	// Feedback changes the output
	req.Feedback = "More about the kitchen."
	revised, _ := m.GenerateChapter(ctx, req)
	if revised == first {
		t.Error("feedback should alter the generated chapter")
	}
}

func TestMockImageIsValidPNG(t *testing.T) {
	m := &MockGateway{}

	img, err := m.GenerateImage(context.Background(), "a watercolor farmhouse")
	if err != nil {
		t.Fatalf("GenerateImage failed: %v", err)
	}
	if img.ContentType != "image/png" {
		t.Errorf("unexpected content type %s", img.ContentType)
	}

	decoded, err := png.Decode(bytes.NewReader(img.Data))
	if err != nil {
		t.Fatalf("generated image is not a decodable PNG: %v", err)
	}
	bounds := decoded.Bounds()
	if bounds.Dx() != 1 || bounds.Dy() != 1 {
		t.Errorf("expected 1x1 image, got %dx%d", bounds.Dx(), bounds.Dy())
	}

	other, _ := m.GenerateImage(context.Background(), "a city street at night")
	if bytes.Equal(img.Data, other.Data) {
		t.Error("different prompts should produce different image bytes")
	}
}

func TestMockTranscriptKeyedToURL(t *testing.T) {
	m := &MockGateway{}
	ctx := context.Background()

	a, err := m.TranscribeAudio(ctx, "http://store.local/audio/a.webm")
	if err != nil {
		t.Fatalf("TranscribeAudio failed: %v", err)
	}
	if a.Text == "" || a.Confidence != 0.95 {
		t.Errorf("unexpected transcript %+v", a)
	}

	b, _ := m.TranscribeAudio(ctx, "http://store.local/audio/b.webm")
	if a.Text == b.Text {
		t.Error("different audio URLs should produce different transcripts")
	}

	again, _ := m.TranscribeAudio(ctx, "http://store.local/audio/a.webm")
	if a.Text != again.Text {
		t.Error("the same audio URL should transcribe identically")
	}
}
