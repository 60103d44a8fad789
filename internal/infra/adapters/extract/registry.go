package extract

import (
	"pdf-processing-pipeline/internal/domain/model"
	"pdf-processing-pipeline/internal/domain/ports/adapter"
)

// Registry maps every recognized parser type to its implementation.
// The mapping is the closed set of extraction strategies: a new parser
// type ships only together with an explicit entry here.
type Registry map[model.ParserType]adapter.PageExtractor

func NewRegistry(local, gemini adapter.PageExtractor) Registry {
	return Registry{
		model.ParserPyPDF:  local,
		model.ParserGemini: gemini,
	}
}

func (r Registry) Lookup(parser model.ParserType) (adapter.PageExtractor, bool) {
	e, ok := r[parser]
	return e, ok
}
