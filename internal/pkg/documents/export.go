package documents

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/yigit/majlis/internal/app/models"
)

// Labels are the translated strings printed on an exported question sheet
type Labels struct {
	MCQsFor string
	Answer  string
}

func (l Labels) withDefaults() Labels {
	if l.MCQsFor == "" {
		l.MCQsFor = "MCQs for"
	}
	if l.Answer == "" {
		l.Answer = "Answer"
	}
	return l
}

func heading(labels Labels, topic string) string {
	return fmt.Sprintf("%s: %s", labels.MCQsFor, topic)
}

// WritePDF renders the questions as an A4 PDF.
// Core fonts cover cp1252 only; characters outside it are replaced.
func WritePDF(w io.Writer, mcqs []models.MCQ, topic string, labels Labels) error {
	labels = labels.withDefaults()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(heading(labels, topic), true)
	doc.SetMargins(15, 20, 15)
	doc.SetAutoPageBreak(true, 20)
	doc.AddPage()
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFont("Helvetica", "B", 18)
	doc.MultiCell(0, 9, tr(heading(labels, topic)), "", "L", false)
	doc.Ln(4)

	for i, q := range mcqs {
		doc.SetFont("Helvetica", "", 12)
		doc.MultiCell(0, 6, tr(fmt.Sprintf("%d. %s", i+1, q.Question)), "", "L", false)
		for _, opt := range q.Options {
			doc.MultiCell(0, 6, tr("   "+opt), "", "L", false)
		}
		doc.SetFont("Helvetica", "B", 12)
		doc.MultiCell(0, 6, tr(fmt.Sprintf("   %s: %s", labels.Answer, q.Answer)), "", "L", false)
		doc.Ln(6)
	}

	if err := doc.Error(); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	if err := doc.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}
