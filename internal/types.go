package internal

type RecordSource string

const (
	SourceCSV       RecordSource = "csv"
	SourceXLSX      RecordSource = "xlsx"
	SourceHTMLTable RecordSource = "html_table"
	SourceTimetable RecordSource = "timetable"
	SourcePDF       RecordSource = "pdf"
	SourceEmail     RecordSource = "email"
)

// RawRecord is one scraped row. Email is only set when the input layout
// already carries one; Course may be empty for rows that only introduce a
// person.
type RawRecord struct {
	LineNo int
	Source RecordSource
	Origin string
	Name   string
	Email  string
	Course string
}

type NormalizedName struct {
	Tokens  []string `json:"tokens"`
	First   string   `json:"first"`
	Last    string   `json:"last"`
	Display string   `json:"display"`
}

type DirectoryCandidate struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
	First       string `json:"first,omitempty"`
	Last        string `json:"last,omitempty"`
}

type CanonicalKey struct {
	Name  string
	Email string
}

type Contact struct {
	Key     CanonicalKey
	Courses []string
}

type OutputRow struct {
	Name   string
	Email  string
	Course string
}

type MatchStatus string

type MatchReason string

const (
	MatchOK        MatchStatus = "OK"
	MatchNoEmail   MatchStatus = "NO_EMAIL"
	MatchAmbiguous MatchStatus = "AMBIGUOUS"
	MatchNotFound  MatchStatus = "NOT_FOUND"
	MatchPredicted MatchStatus = "PREDICTED"

	ReasonExact     MatchReason = "EXACT"
	ReasonSurname   MatchReason = "SURNAME"
	ReasonLocalPart MatchReason = "LOCAL_PART"
	ReasonSole      MatchReason = "SOLE"
	ReasonScan      MatchReason = "SCAN"
	ReasonPattern   MatchReason = "PATTERN"
	ReasonNone      MatchReason = "NONE"
)

type MatchResult struct {
	Status     MatchStatus         `json:"status"`
	Reason     MatchReason         `json:"reason"`
	Email      string              `json:"email"`
	Score      float64             `json:"score"`
	Candidate  *DirectoryCandidate `json:"candidate"`
	Candidates int                 `json:"candidates"`
}

// Resolution is one line of the review report: what happened to a name
// that needed an email.
type Resolution struct {
	Query           string
	Display         string
	Status          MatchStatus
	Reason          MatchReason
	Email           string
	Candidates      int
	Chosen          string
	Alternative     string
	AlternativeDist int
	LookupError     string
}

type DraftMessage struct {
	To      string
	ToName  string
	Subject string
	// Text is the rendered plain body; Raw is the full MIME message.
	Text string
	Raw  []byte
}
