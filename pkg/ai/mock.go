package ai

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"hash/fnv"
	"time"
)

// MockGateway is a deterministic provider used when no API key is configured.
// It delays in proportion to input size so dev flows feel realistic, and it
// never fails.
type MockGateway struct {
	// DelayPerByte controls simulated latency. Zero disables delays (tests).
	DelayPerByte time.Duration
}

// NewMockGateway creates a mock gateway with realistic dev-mode latency
func NewMockGateway() *MockGateway {
	return &MockGateway{DelayPerByte: 50 * time.Microsecond}
}

var questionTemplates = []string{
	"What is your earliest memory connected to %s?",
	"Who shaped the way you think about %s, and how?",
	"Describe a day involving %s that you still remember vividly.",
	"What did %s mean to your family when you were growing up?",
	"How did your feelings about %s change over the years?",
	"What would you want your grandchildren to know about %s?",
	"Tell me about a time %s surprised you.",
	"What sounds, smells, or places do you associate with %s?",
	"Was there a moment when %s became important to you?",
	"What do you miss most about the era of %s?",
	"If you could relive one moment involving %s, which would it be?",
	"What lesson did %s teach you that still holds today?",
	"How was %s different for your generation than for young people now?",
	"Who do you wish you could talk to about %s one more time?",
	"What story about %s have you never told anyone?",
}

var followUpTemplates = []string{
	"You mentioned %s earlier. What happened next?",
	"Going back to %s, how did the people around you react?",
	"What detail about %s stands out most when you close your eyes?",
	"How did %s change what you believed at the time?",
	"If you had to explain %s to someone who wasn't there, where would you start?",
}

func (m *MockGateway) delay(ctx context.Context, inputBytes int) {
	if m.DelayPerByte <= 0 {
		return
	}
	d := time.Duration(inputBytes) * m.DelayPerByte
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// GenerateQuestions returns templated questions, rotated by a topic hash so
// different topics get different orderings
func (m *MockGateway) GenerateQuestions(ctx context.Context, req QuestionRequest) ([]GeneratedQuestion, error) {
	m.delay(ctx, len(req.Topic)*20)

	count := req.Count
	if count <= 0 {
		count = 15
	}

	h := fnv.New32a()
	h.Write([]byte(req.Topic))
	offset := int(h.Sum32()) % len(questionTemplates)
	if offset < 0 {
		offset = -offset
	}

	questions := make([]GeneratedQuestion, 0, count)
	for i := 0; i < count; i++ {
		tmpl := questionTemplates[(offset+i)%len(questionTemplates)]
		questions = append(questions, GeneratedQuestion{
			Text:  fmt.Sprintf(tmpl, req.Topic),
			Order: i + 1,
		})
	}
	return questions, nil
}

// GenerateFollowUpQuestions returns templated follow-ups referencing the topic
func (m *MockGateway) GenerateFollowUpQuestions(ctx context.Context, req QuestionRequest) ([]GeneratedQuestion, error) {
	size := len(req.Topic)
	for _, qa := range req.Answered {
		size += len(qa.Answer)
	}
	m.delay(ctx, size)

	count := req.Count
	if count <= 0 || count > len(followUpTemplates) {
		count = len(followUpTemplates)
	}

	questions := make([]GeneratedQuestion, 0, count)
	for i := 0; i < count; i++ {
		questions = append(questions, GeneratedQuestion{
			Text:  fmt.Sprintf(followUpTemplates[i], req.Topic),
			Order: i + 1,
		})
	}
	return questions, nil
}

// GenerateChapter weaves the answers into a simple narrative. Output is a
// pure function of the request, so regeneration with the same settings and
// answers produces identical text.
func (m *MockGateway) GenerateChapter(ctx context.Context, req ChapterRequest) (string, error) {
	size := 0
	for _, qa := range req.Answers {
		size += len(qa.Answer)
	}
	m.delay(ctx, size)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n\n", req.Topic)
	fmt.Fprintf(&buf, "When %s, born in %d, looks back on %s, the memories arrive in no particular order.\n\n",
		req.IntervieweeName, req.BirthYear, req.Topic)

	for _, qa := range req.Answers {
		if qa.Answer == "" {
			continue
		}
		fmt.Fprintf(&buf, "%s\n\n", qa.Answer)
	}

	if req.Feedback != "" {
		fmt.Fprintf(&buf, "Revisited with this in mind: %s\n\n", req.Feedback)
	}

	fmt.Fprintf(&buf, "Told in the %s person, with a %s tone and a %s style, this chapter belongs to %s.\n",
		req.Person, req.Tone, req.Style, req.IntervieweeName)

	return buf.String(), nil
}

// GenerateImage returns a deterministic 1x1 gray PNG. The pixel shade is
// derived from the prompt so different prompts produce different bytes.
func (m *MockGateway) GenerateImage(ctx context.Context, prompt string) (*GeneratedImage, error) {
	m.delay(ctx, len(prompt)*50)

	h := fnv.New32a()
	h.Write([]byte(prompt))
	shade := byte(h.Sum32() % 256)

	return &GeneratedImage{
		Data:        tinyPNG(shade),
		ContentType: "image/png",
	}, nil
}

// TranscribeAudio returns canned transcript text keyed to the audio URL
func (m *MockGateway) TranscribeAudio(ctx context.Context, audioURL string) (*TranscriptionResult, error) {
	m.delay(ctx, len(audioURL)*100)

	h := fnv.New32a()
	h.Write([]byte(audioURL))

	return &TranscriptionResult{
		Text:       fmt.Sprintf("Well, let me think back. It was a long time ago, but I remember it like yesterday. (mock transcript %08x)", h.Sum32()),
		Confidence: 0.95,
		DurationMS: 30000,
	}, nil
}

// tinyPNG builds a valid single-pixel grayscale PNG
func tinyPNG(shade byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	writeChunk := func(typ string, data []byte) {
		var length [4]byte
		binary.BigEndian.PutUint32(length[:], uint32(len(data)))
		buf.Write(length[:])
		buf.WriteString(typ)
		buf.Write(data)
		crc := crc32.NewIEEE()
		crc.Write([]byte(typ))
		crc.Write(data)
		var sum [4]byte
		binary.BigEndian.PutUint32(sum[:], crc.Sum32())
		buf.Write(sum[:])
	}

	// IHDR: 1x1, 8-bit grayscale
	ihdr := []byte{0, 0, 0, 1, 0, 0, 0, 1, 8, 0, 0, 0, 0}
	writeChunk("IHDR", ihdr)

	// IDAT: one scanline, filter byte + pixel
	var raw bytes.Buffer
	zw := zlib.NewWriter(&raw)
	zw.Write([]byte{0, shade})
	zw.Close()
	writeChunk("IDAT", raw.Bytes())

	writeChunk("IEND", nil)
	return buf.Bytes()
}
