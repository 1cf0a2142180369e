package entities

import (
	"fmt"
	"strings"
	"time"
)

// Phase is the lifecycle status of an article. Values are the persisted
// status labels.
type Phase string

const (
	PhaseDurationVotingOpen Phase = "Debate Duration voting opened"
	PhaseDebateOngoing      Phase = "Debate ongoing"
	PhaseFinalVotingOpen    Phase = "Voting opened"
	PhaseApproved           Phase = "Approved"
	PhaseRejected           Phase = "Rejected"
	PhaseIgnored            Phase = "Ignored"
)

func (p Phase) Valid() bool {
	return p.rank() >= 0
}

// Terminal reports whether the article has been resolved.
func (p Phase) Terminal() bool {
	return p == PhaseApproved || p == PhaseRejected || p == PhaseIgnored
}

// AcceptsVotes reports whether some vote kind is open in this phase.
func (p Phase) AcceptsVotes() bool {
	return p == PhaseDurationVotingOpen || p == PhaseFinalVotingOpen
}

// Precedes reports whether next lies strictly after p in the lifecycle.
// Terminal phases share a rank and never precede each other.
func (p Phase) Precedes(next Phase) bool {
	from, to := p.rank(), next.rank()
	return from >= 0 && to >= 0 && from < to
}

func (p Phase) rank() int {
	switch p {
	case PhaseDurationVotingOpen:
		return 0
	case PhaseDebateOngoing:
		return 1
	case PhaseFinalVotingOpen:
		return 2
	case PhaseApproved, PhaseRejected, PhaseIgnored:
		return 3
	default:
		return -1
	}
}

// NonTerminalPhases are the phases a lifecycle sweep has to look at.
var NonTerminalPhases = []Phase{
	PhaseDurationVotingOpen,
	PhaseDebateOngoing,
	PhaseFinalVotingOpen,
}

type ArticleType string

const (
	// ArticleTypeConstitutional is the primary category; approved articles
	// receive a sequential official number.
	ArticleTypeConstitutional ArticleType = "constitutional"
	ArticleTypeLaw            ArticleType = "law"
)

func ParseArticleType(raw string) (ArticleType, bool) {
	switch ArticleType(strings.ToLower(strings.TrimSpace(raw))) {
	case ArticleTypeConstitutional:
		return ArticleTypeConstitutional, true
	case ArticleTypeLaw:
		return ArticleTypeLaw, true
	default:
		return "", false
	}
}

type Article struct {
	ArticleID      string
	Type           ArticleType
	Title          string
	AuthorID       string
	Phase          Phase
	PhaseEnteredAt time.Time
	// VotedDuration is empty until the duration vote closes.
	VotedDuration  DurationValue
	OfficialNumber int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Designation is the public name of an approved constitutional article, for
// example "Article IV of the constitution". It is empty for anything else.
func (a Article) Designation() string {
	if a.Type != ArticleTypeConstitutional || a.OfficialNumber <= 0 {
		return ""
	}
	return FormatDesignation(a.OfficialNumber)
}

func FormatDesignation(number int) string {
	return fmt.Sprintf("Article %s of the constitution", RomanNumeral(number))
}

var romanNumerals = []struct {
	value   int
	numeral string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// RomanNumeral renders positive integers; zero and negatives yield "".
func RomanNumeral(number int) string {
	var b strings.Builder
	for _, item := range romanNumerals {
		for number >= item.value {
			b.WriteString(item.numeral)
			number -= item.value
		}
	}
	return b.String()
}
