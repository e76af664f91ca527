// Package parser holds the base embedded by document parsers.
package parser

import (
	"fjacquet/fatura-csv/internal/logging"
)

// BaseParser carries the logger shared by parser implementations. Embed it:
//
//	type Engine struct {
//		parser.BaseParser
//		// engine-specific fields
//	}
type BaseParser struct {
	logger logging.Logger
}

// NewBaseParser returns a BaseParser. A nil logger is replaced by an info-level logrus
// adapter.
func NewBaseParser(logger logging.Logger) BaseParser {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return BaseParser{logger: logger}
}

// GetLogger returns the current logger.
func (b *BaseParser) GetLogger() logging.Logger {
	return b.logger
}
