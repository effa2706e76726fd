package pcms

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gitlab.com/testsys2pcms.net/internal/config"
	"gitlab.com/testsys2pcms.net/internal/core/ports/primary"
	"gitlab.com/testsys2pcms.net/internal/core/ports/secondary"
	"gitlab.com/testsys2pcms.net/internal/domain"
	"gitlab.com/testsys2pcms.net/internal/static/errs"
)

var _ secondary.Emitter = (*Emitter)(nil)

const (
	outcomeAccepted  = "OK"
	outcomeFrozen    = "FZ"
	outcomeUndefined = "UD"
)

// Document is one rendered XML file
type Document struct {
	Path string
	Body []byte
}

// Emitter writes the PCMS2 challenge, contest, sessions, parties and runs files
type Emitter struct {
	cfg    *config.ContestConfig
	logger primary.Logger
}

func NewEmitter(cfg *config.ContestConfig, logger primary.Logger) *Emitter {
	return &Emitter{
		cfg:    cfg,
		logger: logger,
	}
}

// Emit renders every document and writes them to disk.
// Nothing is written if any document fails to render.
func (e *Emitter) Emit(ctx context.Context, result *domain.ParsedResult) error {
	docs, err := e.Render(result)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeFile(doc.Path, doc.Body); err != nil {
			e.logger.Error("Failed to write document", "path", doc.Path, "error", err)
			return fmt.Errorf("failed to write %s: %w", doc.Path, err)
		}
		e.logger.Debug("Document written", "path", doc.Path, "bytes", len(doc.Body))
	}
	return nil
}

// Render builds all documents in memory
func (e *Emitter) Render(result *domain.ParsedResult) ([]Document, error) {
	problemIDs, err := e.problemIDs(result)
	if err != nil {
		return nil, err
	}

	items := []struct {
		path string
		doc  interface{}
	}{
		{e.cfg.ChallengeXML, e.challenge(result, problemIDs)},
		{e.cfg.ContestXML, e.contest(result)},
		{e.cfg.SessionsXML, e.sessions(result)},
		{e.cfg.PartiesXML, e.parties(result)},
		{e.cfg.RunsXML, e.runs(result, problemIDs)},
	}

	docs := make([]Document, 0, len(items))
	for _, item := range items {
		body, err := marshal(item.doc)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", item.path, err)
		}
		docs = append(docs, Document{Path: item.path, Body: body})
	}
	return docs, nil
}

// problemIDs resolves every letter that appears in problems or runs
func (e *Emitter) problemIDs(result *domain.ParsedResult) (map[string]string, error) {
	ids := make(map[string]string, len(result.Problems))
	resolve := func(letter string) error {
		if _, ok := ids[letter]; ok {
			return nil
		}
		id, ok := e.cfg.ProblemID(letter)
		if !ok {
			return fmt.Errorf("%w: unknown problem %q", errs.ErrConfigurationMismatch, letter)
		}
		ids[letter] = id
		return nil
	}
	for _, p := range result.Problems {
		if err := resolve(p.Letter); err != nil {
			return nil, err
		}
	}
	for _, r := range result.Runs {
		if err := resolve(r.ProblemLetter); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (e *Emitter) challenge(result *domain.ParsedResult, problemIDs map[string]string) challengeDoc {
	doc := challengeDoc{
		ID:           e.cfg.ChallengeID,
		Name:         result.Contest,
		ScoringModel: e.cfg.ScoringModel,
		XmlaiProcess: XmlaiProcess,
	}
	for _, p := range result.Problems {
		doc.Problems = append(doc.Problems, problemRef{
			Alias:     p.Letter,
			ProblemID: problemIDs[p.Letter],
			Name:      p.Name,
		})
	}
	return doc
}

func (e *Emitter) contest(result *domain.ParsedResult) contestDoc {
	doc := contestDoc{
		ID:           e.cfg.ChallengeID,
		ChallengeID:  e.cfg.ChallengeID,
		ClockID:      e.cfg.ClockID,
		Name:         result.Contest,
		XmlaiProcess: XmlaiProcess,
	}
	for _, s := range result.Sessions {
		doc.Sessions = append(doc.Sessions, sessionRef{ID: s.ID})
	}
	return doc
}

func (e *Emitter) sessions(result *domain.ParsedResult) sessionsDoc {
	doc := sessionsDoc{
		ID:           e.cfg.SessionsID(),
		PartyID:      e.cfg.SessionsID(),
		ChallengeID:  e.cfg.ChallengeID,
		ClockID:      e.cfg.ClockID,
		XmlaiProcess: XmlaiProcess,
	}
	for _, s := range result.Sessions {
		doc.Sessions = append(doc.Sessions, sessionRef{ID: s.ID})
	}
	return doc
}

func (e *Emitter) parties(result *domain.ParsedResult) partiesDoc {
	doc := partiesDoc{
		ID:           e.cfg.PartiesID(),
		XmlaiProcess: XmlaiProcess,
	}
	for _, s := range result.Sessions {
		doc.Parties = append(doc.Parties, party{ID: s.ID, Name: s.Name})
	}
	return doc
}

// runs numbers every run by its position in the whole sequence, not per session
func (e *Emitter) runs(result *domain.ParsedResult, problemIDs map[string]string) runsDoc {
	doc := runsDoc{}
	for no, r := range result.Runs {
		sessionID := e.cfg.SessionsPrefix + r.PartyID
		doc.Runs = append(doc.Runs, run{
			ID:        sessionID + "." + strconv.Itoa(no+1),
			SessionID: sessionID,
			ProblemID: problemIDs[r.ProblemLetter],
			Time:      r.Time + "s",
			Accepted:  accepted(r.Outcome),
			Outcome:   outcome(r.Outcome),
		})
	}
	return doc
}

func accepted(code string) string {
	if code == outcomeAccepted {
		return "yes"
	}
	return "no"
}

// outcome maps testsys verdicts onto the PCMS2 vocabulary
func outcome(code string) string {
	if code == outcomeFrozen {
		return outcomeUndefined
	}
	return code
}

func marshal(doc interface{}) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	return append(out, '\n'), nil
}

// writeFile replaces path atomically via a temporary file in the same directory
func writeFile(path string, body []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
