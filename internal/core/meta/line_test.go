package meta

import (
	"errors"
	"testing"

	"gitlab.com/testsys2pcms.net/internal/static/errs"
)

func collect(t *testing.T, text, separators, quotes string, n int) []string {
	t.Helper()
	l := NewLine(text)
	var out []string
	for i := 0; i < n; i++ {
		var (
			v   string
			err error
		)
		v, l, err = l.Next(separators, quotes)
		if err != nil {
			t.Fatalf("next #%d of %q: %v", i, text, err)
		}
		out = append(out, v)
	}
	return out
}

func TestNextUnquoted(t *testing.T) {
	got := collect(t, "39,C,1,422,WA,5", ",", "", 6)
	want := []string{"39", "C", "1", "422", "WA", "5"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("field %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNextQuotedKeepsSeparators(t *testing.T) {
	got := collect(t, `L,"Конфеты, the Sweet",20,0`, ",", `"`, 2)
	if got[0] != "L" || got[1] != "Конфеты, the Sweet" {
		t.Fatalf("got %q", got)
	}
}

func TestNextSkipsSeparatorRuns(t *testing.T) {
	got := collect(t, "a,,,b", ",", "", 2)
	if got[0] != "a" || got[1] != "b" {
		t.Fatalf("got %q", got)
	}
}

func TestNextJoinsAdjacentQuotedSegments(t *testing.T) {
	got := collect(t, `"a""b",c`, ",", `"`, 2)
	if got[0] != "ab" || got[1] != "c" {
		t.Fatalf("got %q", got)
	}
}

func TestNextNoEscapeInterpretation(t *testing.T) {
	got := collect(t, `"a\nb"`, ",", `"`, 1)
	if got[0] != `a\nb` {
		t.Fatalf("got %q", got[0])
	}
}

func TestNextAtEnd(t *testing.T) {
	l := NewLine("x")
	_, l, _ = l.Next(",", "")
	v, after, err := l.Next(",", `"`)
	if err != nil || v != "" || after != l {
		t.Fatalf("at end: %q %v %v", v, after, err)
	}
}

func TestNextDoesNotMutateReceiver(t *testing.T) {
	l := NewLine("a,b")
	first, _, _ := l.Next(",", "")
	again, _, _ := l.Next(",", "")
	if first != "a" || again != "a" {
		t.Fatalf("receiver moved: %q %q", first, again)
	}
}

func TestNextUnbalancedQuotes(t *testing.T) {
	l := NewLine(`"Unterminated,20,0`)
	_, _, err := l.Next(",", `"`)
	if !errors.Is(err, errs.ErrMalformedLine) {
		t.Fatalf("expected malformed line, got %v", err)
	}
	var le *LineError
	if !errors.As(err, &le) || le.Line != `"Unterminated,20,0` {
		t.Fatalf("line text not reported: %v", err)
	}
}

func TestFieldTooFew(t *testing.T) {
	l := NewLine("")
	if _, _, err := l.Field(",", ""); !errors.Is(err, errs.ErrMalformedLine) {
		t.Fatalf("expected malformed line, got %v", err)
	}
}

func TestNewLineTrims(t *testing.T) {
	l := NewLine("  \t@p A,\"x\"  \r")
	if l.Text() != `@p A,"x"` {
		t.Fatalf("got %q", l.Text())
	}
}

func TestNextLeavesReceiverUntouched(t *testing.T) {
	l := NewLine(`  @p A,"Apples",20,0  `)
	keyword, rest, err := l.Next(" ", "")
	if err != nil {
		t.Fatal(err)
	}
	if keyword != "@p" || rest.Rest() != `A,"Apples",20,0` {
		t.Fatalf("keyword %q rest %q", keyword, rest.Rest())
	}
	if l.Rest() != `@p A,"Apples",20,0` {
		t.Fatalf("receiver advanced to %q", l.Rest())
	}

	_, rest, err = rest.Next(",", `"`)
	if err != nil {
		t.Fatal(err)
	}
	_, rest, err = rest.Next(",", `"`)
	if err != nil {
		t.Fatal(err)
	}
	if rest.Rest() != "20,0" {
		t.Fatalf("rest after name %q", rest.Rest())
	}
}
