package document

import (
	"context"
	"errors"
	"fmt"

	"pdf2tsv/internal/core/links"
)

// ErrExtraction wraps every failure of a PageSource. A run that hits it is
// aborted and produces no chunks.
var ErrExtraction = errors.New("document: extraction failed")

// Page is one page of input as produced by a PageSource.
type Page struct {
	// Number is 1-based.
	Number   int
	Text     string
	RawLinks []links.RawLink
	// Lookup resolves link rectangles to anchor text; may be nil.
	Lookup links.TextLookup
}

// PageSource yields the pages of one document in order.
type PageSource interface {
	PageCount() int
	// Page returns page n, 1 <= n <= PageCount().
	Page(ctx context.Context, n int) (Page, error)
}

// Pages is an in-memory PageSource.
type Pages []Page

func (p Pages) PageCount() int { return len(p) }

func (p Pages) Page(_ context.Context, n int) (Page, error) {
	if n < 1 || n > len(p) {
		return Page{}, fmt.Errorf("page %d out of range [1, %d]", n, len(p))
	}
	page := p[n-1]
	if page.Number == 0 {
		page.Number = n
	}
	return page, nil
}
