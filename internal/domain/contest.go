package domain

// Problem is a problem declared by an `@p` line
type Problem struct {
	Letter string `json:"letter"`
	Name   string `json:"name"`
}

// Session is a competing party declared by an `@t` line
type Session struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Run is one submission attempt declared by an `@s` line.
// Time is kept as the raw token; it carries no unit.
type Run struct {
	PartyID       string `json:"partyId"`
	ProblemLetter string `json:"problemLetter"`
	Attempt       string `json:"attempt"`
	Time          string `json:"time"`
	Outcome       string `json:"outcome"`
	Test          string `json:"test"`
}

// ParsedResult is everything extracted from one testsys export.
// All slices keep the order in which the records appeared.
type ParsedResult struct {
	Contest  string    `json:"contest"`
	Problems []Problem `json:"problems"`
	Sessions []Session `json:"sessions"`
	Runs     []Run     `json:"runs"`
}
