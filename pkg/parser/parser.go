// Package parser turns rendered cricket match pages into structured records.
//
// Every entry point takes a complete HTML snapshot and returns records or a
// classified error; nothing here performs I/O or keeps state between calls.
package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
)

// Logger is the reporting surface a Parser writes diagnostics to
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Parser extracts commentary, metadata and rosters from match pages
type Parser struct {
	log Logger
}

// New returns a Parser reporting to log; a nil log discards diagnostics
func New(log Logger) *Parser {
	if log == nil {
		log = nopLogger{}
	}
	return &Parser{log: log}
}

func parseDocument(htmlContent string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, errors.Wrap(err, "parse html")
	}
	return doc, nil
}
