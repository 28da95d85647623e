package ingest

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"pdf2tsv/internal/core/document"
	"pdf2tsv/internal/core/links"
	s3client "pdf2tsv/pkg/s3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ledongthuc/pdf"
)

// FetchToLocalTemp downloads local or S3 file to a temporary path and returns a cleanup function.
func FetchToLocalTemp(ctx context.Context, filePath string) (string, func(), error) {
	tmp, err := os.CreateTemp("", "ingest-*.pdf")
	if err != nil {
		return "", func() {}, err
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }
	fail := func(err error) (string, func(), error) {
		tmp.Close()
		cleanup()
		return "", func() {}, err
	}

	var body io.ReadCloser
	if strings.HasPrefix(filePath, "s3://") {
		u, err := url.Parse(filePath)
		if err != nil {
			return fail(err)
		}
		cli, err := s3client.GetClient()
		if err != nil {
			return fail(err)
		}
		out, err := cli.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(u.Host),
			Key:    aws.String(strings.TrimPrefix(u.Path, "/")),
		})
		if err != nil {
			return fail(err)
		}
		body = out.Body
	} else {
		abs := filePath
		if !filepath.IsAbs(abs) {
			// allow relative stored paths
			cwd, _ := os.Getwd()
			abs = filepath.Join(cwd, filePath)
		}
		src, err := os.Open(abs)
		if err != nil {
			return fail(err)
		}
		body = src
	}
	defer body.Close()

	if _, err := io.Copy(tmp, body); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", func() {}, err
	}
	return tmp.Name(), cleanup, nil
}

// PDFSource reads pages, link annotations and glyph positions with ledongthuc/pdf.
type PDFSource struct {
	reader *pdf.Reader
	closer io.Closer
	// pageKeys holds the printed dictionary of each page, used to resolve
	// destination page references to indices.
	pageKeys []string
}

var _ document.PageSource = (*PDFSource)(nil)

// OpenPDF opens a PDF on disk. The caller must Close the source.
func OpenPDF(path string) (src *PDFSource, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: open %s: %v", document.ErrExtraction, path, r)
		}
	}()
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", document.ErrExtraction, path, err)
	}
	return &PDFSource{reader: reader, closer: f}, nil
}

// NewPDFSource reads a PDF from memory or any other random-access reader.
func NewPDFSource(r io.ReaderAt, size int64) (src *PDFSource, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", document.ErrExtraction, rec)
		}
	}()
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", document.ErrExtraction, err)
	}
	return &PDFSource{reader: reader}, nil
}

func (s *PDFSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func (s *PDFSource) PageCount() int { return s.reader.NumPage() }

// Page extracts page n. The parser panics on some malformed input; those
// panics are returned as errors.
func (s *PDFSource) Page(ctx context.Context, n int) (page document.Page, err error) {
	if err := ctx.Err(); err != nil {
		return document.Page{}, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: %v", n, r)
		}
	}()

	p := s.reader.Page(n)
	if p.V.IsNull() {
		return document.Page{}, fmt.Errorf("page %d: missing page object", n)
	}
	fonts := make(map[string]*pdf.Font)
	for _, name := range p.Fonts() {
		f := p.Font(name)
		fonts[name] = &f
	}
	text, err := p.GetPlainText(fonts)
	if err != nil {
		return document.Page{}, fmt.Errorf("page %d: %w", n, err)
	}

	page = document.Page{Number: n, Text: text}
	page.RawLinks = s.rawLinks(p)
	if len(page.RawLinks) > 0 {
		glyphs := p.Content().Text
		page.Lookup = links.TextLookupFunc(func(r links.Rect) string {
			return textInRect(glyphs, r)
		})
	}
	return page, nil
}

func (s *PDFSource) rawLinks(p pdf.Page) []links.RawLink {
	annots := p.V.Key("Annots")
	var out []links.RawLink
	for i := 0; i < annots.Len(); i++ {
		a := annots.Index(i)
		if a.Key("Subtype").Name() != "Link" {
			continue
		}
		raw := links.RawLink{Kind: links.RawUnknown, Rect: rectOf(a.Key("Rect"))}
		action := a.Key("A")
		switch action.Key("S").Name() {
		case "URI":
			raw.Kind = links.RawURI
			raw.URI = action.Key("URI").RawString()
		case "Named":
			raw.Kind = links.RawNamed
			raw.Name = action.Key("N").Name()
		case "GoTo":
			s.resolveDest(action.Key("D"), &raw)
		default:
			if action.IsNull() {
				s.resolveDest(a.Key("Dest"), &raw)
			}
		}
		out = append(out, raw)
	}
	return out
}

// resolveDest fills raw from an explicit destination array or a named
// destination. Unresolvable page references leave raw as RawUnknown.
func (s *PDFSource) resolveDest(dest pdf.Value, raw *links.RawLink) {
	switch dest.Kind() {
	case pdf.Array:
		target := dest.Index(0)
		if target.Kind() == pdf.Integer {
			raw.Kind = links.RawGoTo
			raw.DestPage = int(target.Int64())
			return
		}
		if idx := s.pageIndex(target); idx >= 0 {
			raw.Kind = links.RawGoTo
			raw.DestPage = idx
		}
	case pdf.Name:
		raw.Kind = links.RawNamed
		raw.Name = dest.Name()
	case pdf.String:
		raw.Kind = links.RawNamed
		raw.Name = dest.RawString()
	}
}

// pageIndex returns the 0-based index of the page dictionary v, or -1.
func (s *PDFSource) pageIndex(v pdf.Value) int {
	if v.Kind() != pdf.Dict {
		return -1
	}
	if s.pageKeys == nil {
		s.pageKeys = make([]string, s.reader.NumPage())
		for i := range s.pageKeys {
			s.pageKeys[i] = s.reader.Page(i + 1).V.String()
		}
	}
	key := v.String()
	for i, k := range s.pageKeys {
		if k == key {
			return i
		}
	}
	return -1
}

func rectOf(v pdf.Value) links.Rect {
	if v.Len() < 4 {
		return links.Rect{}
	}
	return links.Rect{
		X0: v.Index(0).Float64(),
		Y0: v.Index(1).Float64(),
		X1: v.Index(2).Float64(),
		Y1: v.Index(3).Float64(),
	}.Normalized()
}

// textInRect joins the glyphs whose origin lies inside r, in content order.
func textInRect(glyphs []pdf.Text, r links.Rect) string {
	var b strings.Builder
	for _, g := range glyphs {
		if r.Contains(g.X, g.Y) {
			b.WriteString(g.S)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
