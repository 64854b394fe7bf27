package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mabel-app/mabel-backend/pkg/config"
)

// OpenAIClient is a minimal client for OpenAI-compatible chat and image APIs
type OpenAIClient struct {
	apiKey      string
	baseURL     string
	textModel   string
	imageModel  string
	temperature float64
	client      *http.Client
}

// NewOpenAIClient creates a client using values from the provided config.
// Pass a nil config to fall back to environment variables.
func NewOpenAIClient(cfg *config.AIConfig) *OpenAIClient {
	var apiKey string
	if cfg != nil {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		apiKey = os.Getenv("AI_API_KEY")
	}

	var base string
	if cfg != nil && cfg.BaseURL != "" {
		base = cfg.BaseURL
	} else {
		base = os.Getenv("AI_BASE_URL")
		if base == "" {
			base = "https://api.openai.com/v1"
		}
	}

	textModel := "gpt-4o"
	imageModel := "dall-e-3"
	temperature := 0.7
	if cfg != nil {
		if cfg.TextModel != "" {
			textModel = cfg.TextModel
		}
		if cfg.ImageModel != "" {
			imageModel = cfg.ImageModel
		}
		if cfg.Temperature > 0 {
			temperature = cfg.Temperature
		}
	}

	return &OpenAIClient{
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(base, "/"),
		textModel:   textModel,
		imageModel:  imageModel,
		temperature: temperature,
		client:      &http.Client{Timeout: 120 * time.Second},
	}
}

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model       string      `json:"model,omitempty"`
	Messages    interface{} `json:"messages,omitempty"`
	Temperature float64     `json:"temperature,omitempty"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ImageRequest is the shape for image generation requests
type ImageRequest struct {
	Model          string `json:"model,omitempty"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n,omitempty"`
	Size           string `json:"size,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
}

// ImageResponse is a minimal response shape for image generation
type ImageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
}

// chat sends a chat completion request and returns the assistant content
func (c *OpenAIClient) chat(ctx context.Context, prompt string, maxTokens int) (string, error) {
	reqBody := ChatRequest{
		Model:       c.textModel,
		Messages:    []map[string]string{{"role": "user", "content": prompt}},
		Temperature: c.temperature,
		MaxTokens:   maxTokens,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", statusError(resp.StatusCode)
	}

	var cr ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", err
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("empty response from provider")
	}
	return cr.Choices[0].Message.Content, nil
}

// statusError maps common provider status codes to descriptive errors.
// The messages match what errors.ClassifyProviderError looks for.
func statusError(code int) error {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("provider rejected api key (status %d)", code)
	case http.StatusTooManyRequests:
		return fmt.Errorf("provider rate limit exceeded (status %d)", code)
	case http.StatusPaymentRequired:
		return fmt.Errorf("provider quota exhausted (status %d)", code)
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return fmt.Errorf("provider request timeout (status %d)", code)
	default:
		return fmt.Errorf("provider returned status %d", code)
	}
}

// GenerateQuestions asks the model for interview questions as a JSON array
func (c *OpenAIClient) GenerateQuestions(ctx context.Context, req QuestionRequest) ([]GeneratedQuestion, error) {
	prompt := fmt.Sprintf(
		"You are helping build a memoir. Write %d warm, open-ended interview questions "+
			"about the topic %q for %s, born in %d (%s generation). "+
			"Questions should invite storytelling, not yes/no answers. "+
			"Return ONLY a JSON array of strings.",
		req.Count, req.Topic, req.IntervieweeName, req.BirthYear, req.Generation,
	)

	content, err := c.chat(ctx, prompt, 2000)
	if err != nil {
		return nil, err
	}

	return parseQuestionArray(content, req.Count)
}

// GenerateFollowUpQuestions asks the model for deeper questions grounded on prior answers
func (c *OpenAIClient) GenerateFollowUpQuestions(ctx context.Context, req QuestionRequest) ([]GeneratedQuestion, error) {
	var sb strings.Builder
	for _, qa := range req.Answered {
		sb.WriteString(fmt.Sprintf("Q: %s\nA: %s\n\n", qa.Question, qa.Answer))
	}

	prompt := fmt.Sprintf(
		"You are helping build a memoir about the topic %q. The interviewee %s has already answered:\n\n%s"+
			"Write %d follow-up questions that dig deeper into the most interesting details above. "+
			"Return ONLY a JSON array of strings.",
		req.Topic, req.IntervieweeName, sb.String(), req.Count,
	)

	content, err := c.chat(ctx, prompt, 2000)
	if err != nil {
		return nil, err
	}

	return parseQuestionArray(content, req.Count)
}

// GenerateChapter asks the model for a complete memoir chapter
func (c *OpenAIClient) GenerateChapter(ctx context.Context, req ChapterRequest) (string, error) {
	var sb strings.Builder
	for _, qa := range req.Answers {
		sb.WriteString(fmt.Sprintf("Q: %s\nA: %s\n\n", qa.Question, qa.Answer))
	}

	feedback := ""
	if req.Feedback != "" {
		feedback = fmt.Sprintf("The reader gave this feedback on the previous draft, address it: %s\n\n", req.Feedback)
	}

	prompt := fmt.Sprintf(
		"Write a memoir chapter about the topic %q for %s, born in %d. "+
			"Use %s person narration, a %s tone, and a %s style. "+
			"Base the chapter entirely on this interview material:\n\n%s%s"+
			"Return only the chapter text, no preamble.",
		req.Topic, req.IntervieweeName, req.BirthYear,
		req.Person, req.Tone, req.Style, sb.String(), feedback,
	)

	content, err := c.chat(ctx, prompt, 8000)
	if err != nil {
		return "", err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("empty chapter from provider")
	}
	return content, nil
}

// GenerateImage generates an illustration and returns the raw image bytes
func (c *OpenAIClient) GenerateImage(ctx context.Context, prompt string) (*GeneratedImage, error) {
	reqBody := ImageRequest{
		Model:          c.imageModel,
		Prompt:         prompt,
		N:              1,
		Size:           "1024x1024",
		ResponseFormat: "b64_json",
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/images/generations"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, statusError(resp.StatusCode)
	}

	var ir ImageResponse
	if err := json.NewDecoder(resp.Body).Decode(&ir); err != nil {
		return nil, err
	}
	if len(ir.Data) == 0 || ir.Data[0].B64JSON == "" {
		return nil, fmt.Errorf("empty image response from provider")
	}

	data, err := base64.StdEncoding.DecodeString(ir.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}

	return &GeneratedImage{Data: data, ContentType: "image/png"}, nil
}

// parseQuestionArray extracts a JSON array of strings from model output.
// Tolerates fenced code blocks and surrounding prose.
func parseQuestionArray(content string, want int) ([]GeneratedQuestion, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON array in provider response")
	}

	var texts []string
	if err := json.Unmarshal([]byte(content[start:end+1]), &texts); err != nil {
		return nil, fmt.Errorf("failed to parse question array: %w", err)
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("provider returned no questions")
	}
	if want > 0 && len(texts) > want {
		texts = texts[:want]
	}

	questions := make([]GeneratedQuestion, 0, len(texts))
	for i, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		questions = append(questions, GeneratedQuestion{Text: t, Order: i + 1})
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("provider returned no usable questions")
	}
	return questions, nil
}
