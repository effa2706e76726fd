package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"gitlab.com/testsys2pcms.net/internal/static/errs"
)

func TestContestConfigDefaults(t *testing.T) {
	t.Setenv("CONTEST_URL", "http://example.org/results/dump.dat")
	t.Setenv("CHALLENGE_ID", "spb2024")
	t.Setenv("PROBLEM_A", "aplusb")
	t.Setenv("PROBLEM_L", "sweets")

	c := NewContestConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if c.Filename != "dump.dat" {
		t.Errorf("filename %q", c.Filename)
	}
	if c.MetaEncoding != "utf8" || c.ScoringModel != "%icpc" || c.ClockID != "spb2024" {
		t.Errorf("defaults %+v", c)
	}
	if c.SessionsID() != "spb2024" || c.PartiesID() != "spb2024" {
		t.Errorf("ids %q %q", c.SessionsID(), c.PartiesID())
	}
	if id, ok := c.ProblemID("L"); !ok || id != "spb2024.sweets" {
		t.Errorf("problem id %q %v", id, ok)
	}
	if _, ok := c.ProblemID("Z"); ok {
		t.Errorf("unmapped letter resolved")
	}
	if c.RunsXML != "runs.xml" {
		t.Errorf("runs xml %q", c.RunsXML)
	}
}

func TestContestConfigXmlsPrefix(t *testing.T) {
	t.Setenv("CONTEST_URL", "http://example.org/a")
	t.Setenv("CHALLENGE_ID", "c")
	t.Setenv("XMLS_PREFIX", "out/")
	t.Setenv("RUNS_XML", "custom-runs.xml")

	c := NewContestConfig()
	if c.ChallengeXML != "out/challenge.xml" || c.RunsXML != "custom-runs.xml" {
		t.Fatalf("xml paths %q %q", c.ChallengeXML, c.RunsXML)
	}
}

func TestContestConfigLocalPath(t *testing.T) {
	t.Setenv("CONTEST_URL", "dump.dat")
	c := NewContestConfig()
	if !strings.HasPrefix(c.URL, "file:///") || !strings.HasSuffix(c.URL, "/dump.dat") {
		t.Fatalf("url %q", c.URL)
	}
	if c.Filename != "dump.dat" {
		t.Fatalf("filename %q", c.Filename)
	}
}

func TestContestConfigValidate(t *testing.T) {
	c := &ContestConfig{URL: "file:///x"}
	if err := c.Validate(); !errors.Is(err, errs.ErrInvalidConfig) {
		t.Fatalf("expected invalid config, got %v", err)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "test")
	content := "CHALLENGE_ID=fromfile\nPROBLEM_B=bee\n"
	if err := os.WriteFile(name+".env", []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CHALLENGE_ID", "")
	os.Unsetenv("CHALLENGE_ID")
	t.Setenv("PROBLEM_B", "")
	os.Unsetenv("PROBLEM_B")

	if err := Load(name); err != nil {
		t.Fatalf("load: %v", err)
	}
	c := NewContestConfig()
	if c.ChallengeID != "fromfile" || c.Problems["B"] != "bee" {
		t.Fatalf("config %+v", c)
	}
}

func TestScheduleDefaults(t *testing.T) {
	t.Setenv("SCHEDULE_CONVERT_INTERVAL_SEC", "-1")
	if got := NewScheduleSvcCfg().ConvertInterval.Seconds(); got != 60 {
		t.Fatalf("interval %v", got)
	}
}

func TestPrefixIDsTrimOneCharacter(t *testing.T) {
	c := &ContestConfig{SessionsPrefix: "финал№", PartiesPrefix: "spb."}
	if got := c.SessionsID(); got != "финал" || !utf8.ValidString(got) {
		t.Errorf("sessions id %q", got)
	}
	if got := c.PartiesID(); got != "spb" {
		t.Errorf("parties id %q", got)
	}
	if got := (&ContestConfig{}).SessionsID(); got != "" {
		t.Errorf("empty prefix id %q", got)
	}
}
