package ai

import "context"

// GeneratedQuestion is a single interview question produced by a provider
type GeneratedQuestion struct {
	Text  string `json:"text"`
	Order int    `json:"order"`
}

// QuestionAnswer pairs an interview question with the interviewee's response
type QuestionAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// QuestionRequest describes the material a question generator works from
type QuestionRequest struct {
	Topic           string
	IntervieweeName string
	BirthYear       int
	Generation      string
	Count           int
	// Answered holds previously answered pairs when asking for follow-ups
	Answered []QuestionAnswer
}

// ChapterRequest describes the material a chapter generator works from
type ChapterRequest struct {
	Topic           string
	IntervieweeName string
	BirthYear       int
	Person          string
	Tone            string
	Style           string
	Answers         []QuestionAnswer
	// Feedback carries the user's regeneration notes, empty on first generation
	Feedback string
}

// GeneratedImage holds illustration bytes returned by an image provider
type GeneratedImage struct {
	Data        []byte
	ContentType string
}

// TranscriptionResult is the outcome of transcribing one audio answer
type TranscriptionResult struct {
	Text       string
	Confidence float64
	DurationMS int
}

// TextGateway generates interview questions and memoir chapters
type TextGateway interface {
	GenerateQuestions(ctx context.Context, req QuestionRequest) ([]GeneratedQuestion, error)
	GenerateFollowUpQuestions(ctx context.Context, req QuestionRequest) ([]GeneratedQuestion, error)
	GenerateChapter(ctx context.Context, req ChapterRequest) (string, error)
}

// ImageGateway generates chapter illustrations
type ImageGateway interface {
	GenerateImage(ctx context.Context, prompt string) (*GeneratedImage, error)
}

// Transcriber converts a stored audio answer into text
type Transcriber interface {
	TranscribeAudio(ctx context.Context, audioURL string) (*TranscriptionResult, error)
}

// Gateway bundles every provider capability the application needs
type Gateway interface {
	TextGateway
	ImageGateway
}
