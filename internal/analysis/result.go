package analysis

// Issue is one identified risk point in the reviewed contract.
type Issue struct {
	ID            int      `json:"id"`
	Severity      string   `json:"severity"`
	Title         string   `json:"title"`
	ClauseText    string   `json:"clauseText"`
	LawReference  string   `json:"lawReference"`
	PlainLanguage []string `json:"plainLanguage"`
	Problem       string   `json:"problem"`
	WhatToDo      []string `json:"whatToDo"`
	Alternative   string   `json:"alternative"`
}

// RiskReport is the first stage's output: overall assessment plus issues.
type RiskReport struct {
	ContractType string  `json:"contractType"`
	Jurisdiction string  `json:"jurisdiction"`
	OverallRisk  string  `json:"overallRisk"`
	RiskScore    int     `json:"riskScore"`
	Summary      string  `json:"summary"`
	Issues       []Issue `json:"issues"`
}

// EmailDraft is the negotiation-email stage's output.
type EmailDraft struct {
	Strategy string `json:"strategy"`
	Email    string `json:"email"`
}

// TalkTrack is an opening line plus core persuasion points.
type TalkTrack struct {
	Opening string   `json:"opening"`
	Reasons []string `json:"reasons"`
}

// Styles holds three alternative negotiation postures.
type Styles struct {
	Aggressive   string `json:"aggressive"`
	Consultative string `json:"consultative"`
	Compromise   string `json:"compromise"`
}

// Scripts is the multi-style negotiation stage's output.
type Scripts struct {
	TalkTrack TalkTrack `json:"talkTrack"`
	Styles    Styles    `json:"styles"`
}

// RevisionNote explains one change in the revised contract.
type RevisionNote struct {
	ClauseRef string `json:"clauseRef"`
	Change    string `json:"change"`
}

// Revision is the full-revision stage's output.
type Revision struct {
	RevisedContract string         `json:"revisedContract"`
	RevisionNotes   []RevisionNote `json:"revisionNotes"`
	RevisionSummary string         `json:"revisionSummary"`
}

// Negotiation groups the email and script outputs under one result key.
type Negotiation struct {
	Strategy  string    `json:"strategy"`
	Email     string    `json:"email"`
	TalkTrack TalkTrack `json:"talkTrack"`
	Styles    Styles    `json:"styles"`
}

// Result is the merged outcome of all stages. RiskReport fields are flattened
// at the top level to match the polled wire format.
type Result struct {
	RiskReport
	Negotiation     Negotiation    `json:"negotiation"`
	RevisedContract string         `json:"revisedContract"`
	RevisionNotes   []RevisionNote `json:"revisionNotes"`
	RevisionSummary string         `json:"revisionSummary"`
}
