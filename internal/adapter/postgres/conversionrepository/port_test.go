package conversionrepository

import (
	"errors"
	"reflect"
	"testing"

	"gitlab.com/testsys2pcms.net/internal/domain"
)

func TestRowMapping(t *testing.T) {
	c := domain.NewConversion("file:///dump.dat")
	c.Digest = "abc"
	c.Attach(&domain.ParsedResult{
		Contest:  "Cup",
		Problems: []domain.Problem{{Letter: "A", Name: "Apples"}},
		Sessions: []domain.Session{{ID: "01", Name: "Team"}},
		Runs:     []domain.Run{{PartyID: "01", ProblemLetter: "A", Attempt: "1", Time: "10", Outcome: "OK", Test: "0"}},
	})
	c.Complete(domain.ConversionStatusCompleted, nil)

	row, err := toRow(c)
	if err != nil {
		t.Fatalf("toRow: %v", err)
	}
	if !row.CompletedAt.Valid || row.Status != "COMPLETED" || len(row.Result) == 0 {
		t.Fatalf("row %+v", row)
	}

	back, err := fromRow(row)
	if err != nil {
		t.Fatalf("fromRow: %v", err)
	}
	if !reflect.DeepEqual(back.Result, c.Result) || back.Runs != 1 || back.Contest != "Cup" {
		t.Fatalf("back %+v", back)
	}
	if !back.CompletedAt.Equal(*c.CompletedAt) {
		t.Fatalf("completed at %v != %v", back.CompletedAt, c.CompletedAt)
	}
}

func TestRowMappingFailed(t *testing.T) {
	c := domain.NewConversion("file:///dump.dat")
	c.Complete(domain.ConversionStatusFailed, errors.New("unknown action"))

	row, err := toRow(c)
	if err != nil {
		t.Fatal(err)
	}
	if row.Result != nil || row.Error != "unknown action" {
		t.Fatalf("row %+v", row)
	}
	back, err := fromRow(row)
	if err != nil {
		t.Fatal(err)
	}
	if back.Result != nil || back.Status != domain.ConversionStatusFailed {
		t.Fatalf("back %+v", back)
	}
}
