package pcms

import "encoding/xml"

const XmlaiProcess = "http://neerc.ifmo.ru/develop/pcms2/xmlai/default-rules.xml"

type challengeDoc struct {
	XMLName      xml.Name     `xml:"challenge"`
	ID           string       `xml:"id,attr"`
	Name         string       `xml:"name,attr"`
	ScoringModel string       `xml:"scoring-model,attr"`
	XmlaiProcess string       `xml:"xmlai-process,attr"`
	Problems     []problemRef `xml:"problem-ref"`
}

type problemRef struct {
	Alias     string `xml:"alias,attr"`
	ProblemID string `xml:"problem-id,attr"`
	Name      string `xml:"name,attr"`
}

type contestDoc struct {
	XMLName      xml.Name     `xml:"contest"`
	ID           string       `xml:"id,attr"`
	ChallengeID  string       `xml:"challenge-id,attr"`
	ClockID      string       `xml:"clock-id,attr"`
	Name         string       `xml:"name,attr"`
	XmlaiProcess string       `xml:"xmlai-process,attr"`
	Sessions     []sessionRef `xml:"session-ref"`
}

type sessionRef struct {
	ID string `xml:"id,attr"`
}

type sessionsDoc struct {
	XMLName      xml.Name     `xml:"sessions"`
	ID           string       `xml:"id,attr"`
	PartyID      string       `xml:"party-id,attr"`
	ChallengeID  string       `xml:"challenge-id,attr"`
	ClockID      string       `xml:"clock-id,attr"`
	XmlaiProcess string       `xml:"xmlai-process,attr"`
	Sessions     []sessionRef `xml:"session"`
}

type partiesDoc struct {
	XMLName      xml.Name `xml:"parties"`
	ID           string   `xml:"id,attr"`
	XmlaiProcess string   `xml:"xmlai-process,attr"`
	Parties      []party  `xml:"party"`
}

type party struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

type runsDoc struct {
	XMLName xml.Name `xml:"runs"`
	Runs    []run    `xml:"run"`
}

type run struct {
	ID        string `xml:"id,attr"`
	SessionID string `xml:"session-id,attr"`
	ProblemID string `xml:"problem-id,attr"`
	Time      string `xml:"time,attr"`
	Accepted  string `xml:"accepted,attr"`
	Outcome   string `xml:"outcome,attr"`
}
