package meta

import (
	"gitlab.com/testsys2pcms.net/internal/domain"
	"gitlab.com/testsys2pcms.net/internal/static/errs"
)

const (
	keywordSeparator = " "
	fieldSeparator   = ","
	quote            = `"`
)

// Action is one decoded metadata line. The set of implementations is closed.
type Action interface {
	isAction()
}

// ContestAction names the contest (@contest).
type ContestAction struct {
	Title string
}

// ProblemAction declares a problem (@p).
type ProblemAction struct {
	Problem domain.Problem
}

// SessionAction declares a party (@t).
type SessionAction struct {
	Session domain.Session
}

// RunAction records a submission (@s).
type RunAction struct {
	Run domain.Run
}

// InertAction is a known keyword that carries nothing we keep.
type InertAction struct {
	Keyword string
}

func (ContestAction) isAction() {}
func (ProblemAction) isAction() {}
func (SessionAction) isAction() {}
func (RunAction) isAction()     {}
func (InertAction) isAction()   {}

// inertKeywords are echoed by testsys but have no record of their own.
var inertKeywords = map[string]struct{}{
	"@startat":     {},
	"@contlen":     {},
	"@now":         {},
	"@state":       {},
	"@freeze":      {},
	"@problems":    {},
	"@teams":       {},
	"@submissions": {},
	"@comment":     {},
}

// IsInert reports whether keyword is accepted and ignored.
func IsInert(keyword string) bool {
	_, ok := inertKeywords[keyword]
	return ok
}

type builder func(l Line) (Action, error)

var builders = map[string]builder{
	"@contest": buildContest,
	"@p":       buildProblem,
	"@t":       buildSession,
	"@s":       buildRun,
}

// ParseLine decodes a single non-blank metadata line.
func ParseLine(text string) (Action, error) {
	l := NewLine(text)
	keyword, l, err := l.Field(keywordSeparator, "")
	if err != nil {
		return nil, err
	}
	if build, ok := builders[keyword]; ok {
		return build(l)
	}
	if IsInert(keyword) {
		return InertAction{Keyword: keyword}, nil
	}
	return nil, &LineError{Err: errs.ErrUnknownAction, Line: l.Text(), Reason: keyword}
}

// fields reads one value per quoting rule, in order.
func fields(l Line, quoting ...string) ([]string, error) {
	values := make([]string, 0, len(quoting))
	for _, q := range quoting {
		var (
			v   string
			err error
		)
		v, l, err = l.Field(fieldSeparator, q)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// @contest "St. Petersburg State University Championship, Sunday, May 12, 2024"
func buildContest(l Line) (Action, error) {
	v, err := fields(l, quote)
	if err != nil {
		return nil, err
	}
	return ContestAction{Title: v[0]}, nil
}

// @p L,"Sweets",20,0
func buildProblem(l Line) (Action, error) {
	v, err := fields(l, "", quote)
	if err != nil {
		return nil, err
	}
	return ProblemAction{Problem: domain.Problem{Letter: v[0], Name: v[1]}}, nil
}

// @t 01,0,1,"Team name"
func buildSession(l Line) (Action, error) {
	v, err := fields(l, "", "", "", quote)
	if err != nil {
		return nil, err
	}
	// v[1] and v[2] are flags with no meaning downstream.
	return SessionAction{Session: domain.Session{ID: v[0], Name: v[3]}}, nil
}

// @s 39,C,1,422,WA,5
func buildRun(l Line) (Action, error) {
	v, err := fields(l, "", "", "", "", "", "")
	if err != nil {
		return nil, err
	}
	return RunAction{Run: domain.Run{
		PartyID:       v[0],
		ProblemLetter: v[1],
		Attempt:       v[2],
		Time:          v[3],
		Outcome:       v[4],
		Test:          v[5],
	}}, nil
}
