package ingest

import (
	"bytes"
	"fmt"
	"strings"
)

// buildTestPDF assembles a minimal PDF, one entry of lines per page. A "|" in
// a line starts a new row 20pt lower; rows are not separated in the plain
// text. A page whose uri is non-empty carries a link annotation over its
// second row, or its only row.
func buildTestPDF(lines, uris []string) []byte {
	n := len(lines)
	// 1 catalog, 2 pages, 3 font, then page/content pairs.
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}
	kids := make([]string, 0, n)
	for i, line := range lines {
		pageNum := 4 + 2*i
		kids = append(kids, fmt.Sprintf("%d 0 R", pageNum))
		rows := strings.Split(line, "|")
		annots := ""
		if i < len(uris) && uris[i] != "" {
			y := 712
			if len(rows) > 1 {
				y -= 20
			}
			annots = fmt.Sprintf(" /Annots [<< /Type /Annot /Subtype /Link /Rect [70 %d 400 %d] /A << /S /URI /URI (%s) >> >>]", y-5, y+8, uris[i])
		}
		objs = append(objs, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R%s >>",
			pageNum+1, annots))
		stream := fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", strings.Join(rows, ") Tj 0 -20 Td ("))
		objs = append(objs, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}
	objs[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}
