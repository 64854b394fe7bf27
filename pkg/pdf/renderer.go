package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// ChapterDocument is the material for a single-chapter PDF
type ChapterDocument struct {
	ProjectTitle    string
	ModuleTitle     string
	ModuleNumber    int
	IntervieweeName string
	Content         string
	Version         int
	// Illustration holds raw image bytes; nil skips the image page
	Illustration     []byte
	IllustrationType string // "png" or "jpg"
}

// MemoirDocument is the material for a full-memoir PDF
type MemoirDocument struct {
	ProjectTitle    string
	IntervieweeName string
	Chapters        []ChapterDocument
}

// Renderer produces PDF bytes from chapter documents
type Renderer struct{}

// NewRenderer constructs a PDF renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

const (
	pageMargin = 20.0
	bodySize   = 12.0
	titleSize  = 24.0
	headerSize = 18.0
)

// RenderChapter renders one chapter as a standalone PDF
func (r *Renderer) RenderChapter(doc ChapterDocument) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)

	r.writeChapter(pdf, doc, true)

	return output(pdf)
}

// RenderMemoir renders the full memoir: a title page followed by every
// chapter in module order
func (r *Renderer) RenderMemoir(doc MemoirDocument) ([]byte, error) {
	if len(doc.Chapters) == 0 {
		return nil, fmt.Errorf("memoir has no chapters")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)

	// Title page
	pdf.AddPage()
	pdf.SetFont("Times", "B", titleSize+6)
	pdf.Ln(80)
	pdf.MultiCell(0, 12, doc.ProjectTitle, "", "C", false)
	pdf.Ln(10)
	pdf.SetFont("Times", "I", headerSize)
	pdf.MultiCell(0, 10, fmt.Sprintf("The memories of %s", doc.IntervieweeName), "", "C", false)
	pdf.Ln(20)
	pdf.SetFont("Times", "", bodySize)
	pdf.MultiCell(0, 8, time.Now().Format("January 2006"), "", "C", false)

	for _, chapter := range doc.Chapters {
		r.writeChapter(pdf, chapter, false)
	}

	return output(pdf)
}

// writeChapter writes one chapter's pages into the document
func (r *Renderer) writeChapter(pdf *fpdf.Fpdf, doc ChapterDocument, standalone bool) {
	pdf.AddPage()

	if standalone && doc.ProjectTitle != "" {
		pdf.SetFont("Times", "I", bodySize)
		pdf.CellFormat(0, 8, doc.ProjectTitle, "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	pdf.SetFont("Times", "B", titleSize)
	heading := doc.ModuleTitle
	if doc.ModuleNumber > 0 {
		heading = fmt.Sprintf("Chapter %d: %s", doc.ModuleNumber, doc.ModuleTitle)
	}
	pdf.MultiCell(0, 10, heading, "", "L", false)
	pdf.Ln(6)

	if len(doc.Illustration) > 0 {
		r.writeIllustration(pdf, doc)
	}

	pdf.SetFont("Times", "", bodySize)
	for _, para := range strings.Split(doc.Content, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		pdf.MultiCell(0, 6, para, "", "L", false)
		pdf.Ln(4)
	}
}

// writeIllustration embeds the chapter image, scaled to the content width
func (r *Renderer) writeIllustration(pdf *fpdf.Fpdf, doc ChapterDocument) {
	imgType := strings.ToUpper(doc.IllustrationType)
	if imgType == "" {
		imgType = "PNG"
	}

	name := fmt.Sprintf("illustration-%d-%d", doc.ModuleNumber, doc.Version)
	opts := fpdf.ImageOptions{ImageType: imgType, ReadDpi: true}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(doc.Illustration))
	if pdf.Err() {
		// Bad image bytes should not sink the whole export
		pdf.ClearError()
		return
	}

	pageW, _ := pdf.GetPageSize()
	width := pageW - 2*pageMargin
	pdf.ImageOptions(name, pageMargin, pdf.GetY(), width, 0, true, opts, 0, "")
	pdf.Ln(8)
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
