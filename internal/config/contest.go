package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gitlab.com/testsys2pcms.net/internal/static/errs"
)

const problemKeyPrefix = "PROBLEM_"

// ContestConfig describes one testsys contest and how it maps onto PCMS2
type ContestConfig struct {
	URL          string
	Filename     string
	MetaEncoding string
	ChallengeID  string
	ScoringModel string
	ClockID      string

	ProblemsPrefix string
	SessionsPrefix string
	PartiesPrefix  string

	ChallengeXML string
	ContestXML   string
	SessionsXML  string
	PartiesXML   string
	RunsXML      string

	// Problems maps a problem letter to its PCMS2 problem id (without prefix)
	Problems map[string]string
}

func NewContestConfig() *ContestConfig {
	challengeID := os.Getenv("CHALLENGE_ID")
	sourceURL := normalizeURL(os.Getenv("CONTEST_URL"))
	xmlsPrefix := os.Getenv("XMLS_PREFIX")

	return &ContestConfig{
		URL:            sourceURL,
		Filename:       getEnv("CONTEST_FILENAME", extractFilename(sourceURL)),
		MetaEncoding:   getEnv("META_ENCODING", "utf8"),
		ChallengeID:    challengeID,
		ScoringModel:   getEnv("SCORING_MODEL", "%icpc"),
		ClockID:        getEnv("CLOCK_ID", challengeID),
		ProblemsPrefix: getEnv("PROBLEMS_PREFIX", challengeID+"."),
		SessionsPrefix: getEnv("SESSIONS_PREFIX", challengeID+"."),
		PartiesPrefix:  getEnv("PARTIES_PREFIX", challengeID+"."),
		ChallengeXML:   getEnv("CHALLENGE_XML", xmlsPrefix+"challenge.xml"),
		ContestXML:     getEnv("CONTEST_XML", xmlsPrefix+"contest.xml"),
		SessionsXML:    getEnv("SESSIONS_XML", xmlsPrefix+"sessions.xml"),
		PartiesXML:     getEnv("PARTIES_XML", xmlsPrefix+"parties.xml"),
		RunsXML:        getEnv("RUNS_XML", xmlsPrefix+"runs.xml"),
		Problems:       problemsFromEnv(os.Environ()),
	}
}

// Validate reports the first missing required setting
func (c *ContestConfig) Validate() error {
	switch {
	case c.URL == "":
		return fmt.Errorf("%w: CONTEST_URL is required", errs.ErrInvalidConfig)
	case c.ChallengeID == "":
		return fmt.Errorf("%w: CHALLENGE_ID is required", errs.ErrInvalidConfig)
	case len(c.Problems) == 0:
		return fmt.Errorf("%w: at least one %s<letter> entry is required", errs.ErrInvalidConfig, problemKeyPrefix)
	}
	return nil
}

// ProblemID returns the prefixed PCMS2 problem id for a letter
func (c *ContestConfig) ProblemID(letter string) (string, bool) {
	id, ok := c.Problems[letter]
	if !ok {
		return "", false
	}
	return c.ProblemsPrefix + id, true
}

// SessionsID is the sessions prefix without its trailing separator
func (c *ContestConfig) SessionsID() string {
	return trimLast(c.SessionsPrefix)
}

// PartiesID is the parties prefix without its trailing separator
func (c *ContestConfig) PartiesID() string {
	return trimLast(c.PartiesPrefix)
}

func problemsFromEnv(environ []string) map[string]string {
	problems := make(map[string]string)
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, problemKeyPrefix) {
			continue
		}
		letter := strings.TrimPrefix(key, problemKeyPrefix)
		if letter == "" || value == "" {
			continue
		}
		problems[letter] = value
	}
	return problems
}

// normalizeURL turns a bare local path into a file:// URL
func normalizeURL(raw string) string {
	if raw == "" || strings.Contains(raw, "//") {
		return raw
	}
	abs, err := filepath.Abs(raw)
	if err != nil {
		abs = raw
	}
	abs = filepath.ToSlash(abs)
	if !strings.HasPrefix(abs, "/") {
		abs = "/" + abs
	}
	return "file://" + abs
}

func extractFilename(raw string) string {
	path := raw
	if u, err := url.Parse(raw); err == nil {
		path = u.Path
	}
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// trimLast drops the final character, not the final byte
func trimLast(s string) string {
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}
