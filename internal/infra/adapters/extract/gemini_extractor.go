package extract

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"

	"pdf-processing-pipeline/internal/domain"
	"pdf-processing-pipeline/internal/domain/ports/adapter"
)

var _ adapter.PageExtractor = (*GeminiExtractor)(nil)

// pageBreakMarker is the delimiter the model is instructed to place
// between pages so the reply maps back onto the per-page shape.
const pageBreakMarker = "=== PAGE BREAK ==="

const extractPrompt = `Parse the attached PDF document and translate its content into markdown format.

Text: parse all text content directly into markdown text.
Lists: parse all lists into markdown lists, maintaining the original structure.
Tables: parse all tables into markdown tables.
Images: replace each image with a short descriptive text.
Headers and footers: ignore page numbers and repeated header/footer noise.

Output the markdown for each page in document order. Between the output of
consecutive pages, emit a line containing exactly:
` + pageBreakMarker + `
Do not add any preamble or closing remarks.`

// GeminiExtractor sends the raw document to Gemini and maps the
// markdown reply back into one string per page.
type GeminiExtractor struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGeminiExtractor(client *genai.Client, model string, timeout time.Duration) *GeminiExtractor {
	return &GeminiExtractor{client: client, model: model, timeout: timeout}
}

func (g *GeminiExtractor) Extract(ctx context.Context, data []byte) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: extractPrompt},
			{InlineData: &genai.Blob{MIMEType: "application/pdf", Data: data}},
		},
	}}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		// Transport, timeout and auth failures are all upstream
		// availability problems and stay retryable.
		return nil, domain.NewExtractionError(domain.ReasonUpstreamUnavailable, err)
	}

	text := ""
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil && len(resp.Candidates[0].Content.Parts) > 0 {
		if t := resp.Candidates[0].Content.Parts[0].Text; t != "" {
			text = t
		}
	}

	pages, err := splitPages(text)
	if err != nil {
		return nil, domain.NewExtractionError(domain.ReasonUpstreamFormat, err)
	}
	return pages, nil
}

// splitPages maps a page-delimited model reply onto the per-page
// sequence shape. A reply with no delimiter is a one-page document;
// an empty or refused reply is a format error and never retried.
func splitPages(text string) ([]string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, errors.New("model returned empty output")
	}

	segments := strings.Split(trimmed, pageBreakMarker)
	pages := make([]string, 0, len(segments))
	nonEmpty := false
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg != "" {
			nonEmpty = true
		}
		pages = append(pages, seg)
	}
	if !nonEmpty {
		return nil, errors.New("model returned only page delimiters")
	}
	return pages, nil
}
