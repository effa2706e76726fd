package meta

import (
	"errors"
	"strings"
	"unicode/utf8"

	"gitlab.com/testsys2pcms.net/internal/domain"
)

// Parse converts a raw testsys export into a ParsedResult.
// Any bad line aborts the whole parse and no result is returned.
func Parse(data []byte, encodingName string) (*domain.ParsedResult, error) {
	text, err := Decode(Section(data), encodingName)
	if err != nil {
		return nil, err
	}
	return ParseText(text)
}

// ParseText parses an already decoded metadata section.
func ParseText(text string) (*domain.ParsedResult, error) {
	result := &domain.ParsedResult{
		Problems: []domain.Problem{},
		Sessions: []domain.Session{},
		Runs:     []domain.Run{},
	}
	for i, raw := range splitLines(text) {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		action, err := ParseLine(raw)
		if err != nil {
			var le *LineError
			if errors.As(err, &le) {
				le.Number = i + 1
			}
			return nil, err
		}
		switch a := action.(type) {
		case ContestAction:
			result.Contest = a.Title
		case ProblemAction:
			result.Problems = append(result.Problems, a.Problem)
		case SessionAction:
			result.Sessions = append(result.Sessions, a.Session)
		case RunAction:
			result.Runs = append(result.Runs, a.Run)
		case InertAction:
		}
	}
	return result, nil
}

// splitLines breaks text on every line boundary, keeping empty lines so
// that line numbers in errors match the source.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var lines []string
	start := 0
	for i, r := range text {
		if isLineBreak(r) {
			lines = append(lines, text[start:i])
			start = i + utf8.RuneLen(r)
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
