package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"pdf-processing-pipeline/internal/domain"
	"pdf-processing-pipeline/internal/domain/ports/adapter"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfcpumodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var _ adapter.PageExtractor = (*LocalExtractor)(nil)

// LocalExtractor extracts plain text per page without any network
// dependency. pdfcpu validates the document structure first; the text
// itself comes from the ledongthuc/pdf content-stream reader.
type LocalExtractor struct {
	conf *pdfcpumodel.Configuration
}

func NewLocalExtractor() *LocalExtractor {
	return &LocalExtractor{conf: pdfcpumodel.NewDefaultConfiguration()}
}

func (e *LocalExtractor) Extract(ctx context.Context, data []byte) (pages []string, err error) {
	if len(data) == 0 {
		return nil, domain.NewExtractionError(domain.ReasonCorruptOrUnreadable, errors.New("empty input"))
	}
	if err := api.Validate(bytes.NewReader(data), e.conf); err != nil {
		return nil, domain.NewExtractionError(domain.ReasonCorruptOrUnreadable, err)
	}

	// The reader panics on some malformed cross-reference tables that
	// slip past validation; treat that the same as a parse error.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = domain.NewExtractionError(domain.ReasonCorruptOrUnreadable, fmt.Errorf("pdf reader panic: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, domain.NewExtractionError(domain.ReasonCorruptOrUnreadable, err)
	}

	total := reader.NumPage()
	if total == 0 {
		return nil, domain.NewExtractionError(domain.ReasonCorruptOrUnreadable, errors.New("document has no pages"))
	}

	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, domain.NewExtractionError(domain.ReasonCorruptOrUnreadable,
				fmt.Errorf("page %d: %w", i, err))
		}
		pages = append(pages, strings.TrimSpace(text))
	}
	return pages, nil
}
