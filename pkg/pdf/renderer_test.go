package pdf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"testing"
)

func chapterDoc() ChapterDocument {
	return ChapterDocument{
		ProjectTitle:    "Grandma Ruth's Story",
		ModuleTitle:     "Early Years",
		ModuleNumber:    1,
		IntervieweeName: "Ruth",
		Content:         "The kitchen always smelled of bread.\n\nWe lived on a farm outside town, and everyone pitched in.",
		Version:         1,
	}
}

func TestRenderChapterProducesPDF(t *testing.T) {
	data, err := NewRenderer().RenderChapter(chapterDoc())
	if err != nil {
		t.Fatalf("RenderChapter failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("output does not start with a PDF header")
	}
	if len(data) < 500 {
		t.Errorf("suspiciously small PDF (%d bytes)", len(data))
	}
}

func TestRenderChapterWithIllustration(t *testing.T) {
	plain, err := NewRenderer().RenderChapter(chapterDoc())
	if err != nil {
		t.Fatalf("RenderChapter failed: %v", err)
	}

	doc := chapterDoc()
	doc.Illustration = onePixelPNG(t)
	doc.IllustrationType = "png"

	illustrated, err := NewRenderer().RenderChapter(doc)
	if err != nil {
		t.Fatalf("RenderChapter with illustration failed: %v", err)
	}
	if len(illustrated) <= len(plain) {
		t.Errorf("illustrated PDF (%d bytes) should be larger than plain (%d bytes)", len(illustrated), len(plain))
	}
}

func TestRenderChapterDropsBadIllustration(t *testing.T) {
	doc := chapterDoc()
	doc.Illustration = []byte("not an image at all")
	doc.IllustrationType = "png"

	data, err := NewRenderer().RenderChapter(doc)
	if err != nil {
		t.Fatalf("bad illustration bytes should not fail the export: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("output does not start with a PDF header")
	}
}

func TestRenderMemoir(t *testing.T) {
	first := chapterDoc()
	second := chapterDoc()
	second.ModuleTitle = "School Days"
	second.ModuleNumber = 2

	memoir, err := NewRenderer().RenderMemoir(MemoirDocument{
		ProjectTitle:    "Grandma Ruth's Story",
		IntervieweeName: "Ruth",
		Chapters:        []ChapterDocument{first, second},
	})
	if err != nil {
		t.Fatalf("RenderMemoir failed: %v", err)
	}
	if !bytes.HasPrefix(memoir, []byte("%PDF")) {
		t.Error("output does not start with a PDF header")
	}

	single, err := NewRenderer().RenderChapter(first)
	if err != nil {
		t.Fatalf("RenderChapter failed: %v", err)
	}
	if len(memoir) <= len(single) {
		t.Errorf("memoir (%d bytes) should be larger than one chapter (%d bytes)", len(memoir), len(single))
	}
}

func TestRenderMemoirRequiresChapters(t *testing.T) {
	if _, err := NewRenderer().RenderMemoir(MemoirDocument{ProjectTitle: "Empty"}); err == nil {
		t.Error("expected an error for a memoir without chapters")
	}
}

// onePixelPNG builds a minimal valid grayscale PNG
func onePixelPNG(t *testing.T) []byte {
	t.Helper()
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

	writeChunk("IHDR", []byte{0, 0, 0, 1, 0, 0, 0, 1, 8, 0, 0, 0, 0})

	var raw bytes.Buffer
	zw := zlib.NewWriter(&raw)
	zw.Write([]byte{0, 128})
	zw.Close()
	writeChunk("IDAT", raw.Bytes())

	writeChunk("IEND", nil)
	return buf.Bytes()
}
