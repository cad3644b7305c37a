package documents

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/yigit/majlis/internal/app/models"
)

const (
	docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/numbering.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"/>
</Types>`

	docxRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

	docxDocumentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering" Target="numbering.xml"/>
</Relationships>`

	wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`
)

// MIME type of the exported Word document
const ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// WriteDOCX renders the questions as a Word document.
// Each question restarts a lower-letter list for its options.
func WriteDOCX(w io.Writer, mcqs []models.MCQ, topic string, labels Labels) error {
	labels = labels.withDefaults()

	var body bytes.Buffer
	paragraph(&body, "", run(heading(labels, topic), true, 32))
	for i, q := range mcqs {
		paragraph(&body, "", run(fmt.Sprintf("%d. %s", i+1, q.Question), true, 24))
		for _, opt := range q.Options {
			paragraph(&body, fmt.Sprintf(`<w:numPr><w:ilvl w:val="0"/><w:numId w:val="%d"/></w:numPr>`, i+1), run(opt, false, 0))
		}
		paragraph(&body, "", run(labels.Answer+": ", true, 0)+run(q.Answer, false, 0))
		paragraph(&body, "", "")
	}

	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document ` + wordNS + `><w:body>` + body.String() + `</w:body></w:document>`

	zw := zip.NewWriter(w)
	parts := []struct {
		name, content string
	}{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRootRels},
		{"word/_rels/document.xml.rels", docxDocumentRels},
		{"word/document.xml", document},
		{"word/numbering.xml", numbering(len(mcqs))},
	}
	for _, part := range parts {
		f, err := zw.Create(part.name)
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", part.name, err)
		}
		if _, err := io.WriteString(f, part.content); err != nil {
			return fmt.Errorf("failed to write %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish document: %w", err)
	}
	return nil
}

func paragraph(buf *bytes.Buffer, props, runs string) {
	buf.WriteString("<w:p>")
	if props != "" {
		buf.WriteString("<w:pPr>" + props + "</w:pPr>")
	}
	buf.WriteString(runs)
	buf.WriteString("</w:p>")
}

// run builds a text run; size is in half-points, 0 keeps the default
func run(text string, bold bool, size int) string {
	var props string
	if bold {
		props += "<w:b/>"
	}
	if size > 0 {
		props += fmt.Sprintf(`<w:sz w:val="%d"/>`, size)
	}
	if props != "" {
		props = "<w:rPr>" + props + "</w:rPr>"
	}
	return "<w:r>" + props + `<w:t xml:space="preserve">` + escape(text) + "</w:t></w:r>"
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func numbering(questions int) string {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:numbering ` + wordNS + `>`)
	buf.WriteString(`<w:abstractNum w:abstractNumId="0"><w:lvl w:ilvl="0"><w:start w:val="1"/>` +
		`<w:numFmt w:val="lowerLetter"/><w:lvlText w:val="%1."/><w:lvlJc w:val="left"/>` +
		`<w:pPr><w:ind w:left="720" w:hanging="360"/></w:pPr></w:lvl></w:abstractNum>`)
	for i := 1; i <= questions; i++ {
		fmt.Fprintf(&buf, `<w:num w:numId="%d"><w:abstractNumId w:val="0"/>`+
			`<w:lvlOverride w:ilvl="0"><w:startOverride w:val="1"/></w:lvlOverride></w:num>`, i)
	}
	buf.WriteString(`</w:numbering>`)
	return buf.String()
}
