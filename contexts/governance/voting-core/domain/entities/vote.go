package entities

import (
	"strings"
	"time"
)

// VoteKind identifies which ballot a vote belongs to. The string values are
// persisted and fed into the voter identity hash, so they must not change.
type VoteKind string

const (
	VoteKindDuration VoteKind = "Debate_Duration_voting"
	VoteKindApproval VoteKind = "Voting_opened"
)

// ParseVoteKind accepts the persisted names and the short aliases used by the
// HTTP API and CLI.
func ParseVoteKind(raw string) (VoteKind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case strings.ToLower(string(VoteKindDuration)), "duration", "debate_duration":
		return VoteKindDuration, true
	case strings.ToLower(string(VoteKindApproval)), "approval", "approve_reject", "final":
		return VoteKindApproval, true
	default:
		return "", false
	}
}

func (k VoteKind) Valid() bool {
	return k == VoteKindDuration || k == VoteKindApproval
}

// Alias is the short name used on the wire.
func (k VoteKind) Alias() string {
	switch k {
	case VoteKindDuration:
		return "duration"
	case VoteKindApproval:
		return "approval"
	default:
		return ""
	}
}

// OpenPhase returns the only phase in which votes of this kind are accepted.
func (k VoteKind) OpenPhase() Phase {
	switch k {
	case VoteKindDuration:
		return PhaseDurationVotingOpen
	case VoteKindApproval:
		return PhaseFinalVotingOpen
	default:
		return ""
	}
}

// Candidates lists the closed enumeration of legal values for the kind in
// protocol order.
func (k VoteKind) Candidates() []string {
	switch k {
	case VoteKindDuration:
		items := make([]string, 0, len(Durations))
		for _, value := range Durations {
			items = append(items, string(value))
		}
		return items
	case VoteKindApproval:
		items := make([]string, 0, len(Approvals))
		for _, value := range Approvals {
			items = append(items, string(value))
		}
		return items
	default:
		return nil
	}
}

func (k VoteKind) IsLegalValue(value string) bool {
	switch k {
	case VoteKindDuration:
		return DurationValue(value).Valid()
	case VoteKindApproval:
		return ApprovalValue(value).Valid()
	default:
		return false
	}
}

// DurationValue is one of the six debate durations. The labels are protocol
// constants: digests committed by clients are computed over them verbatim,
// including the irregular pluralisation.
type DurationValue string

const (
	DurationOneMonth    DurationValue = "One Month"
	DurationTwoMonths   DurationValue = "Two Months"
	DurationThreeMonths DurationValue = "Three Months"
	DurationFourMonths  DurationValue = "Four Month"
	DurationFiveMonths  DurationValue = "Five Month"
	DurationSixMonths   DurationValue = "Six Month"
)

// Durations is ordered shortest to longest.
var Durations = [DurationCount]DurationValue{
	DurationOneMonth,
	DurationTwoMonths,
	DurationThreeMonths,
	DurationFourMonths,
	DurationFiveMonths,
	DurationSixMonths,
}

const DurationCount = 6

// ParseDuration matches a label case-insensitively and returns the canonical
// protocol spelling.
func ParseDuration(raw string) (DurationValue, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, value := range Durations {
		if strings.EqualFold(trimmed, string(value)) {
			return value, true
		}
	}
	return "", false
}

func (d DurationValue) Valid() bool {
	return d.Index() >= 0
}

// Index is the position in Durations, or -1.
func (d DurationValue) Index() int {
	for i, value := range Durations {
		if value == d {
			return i
		}
	}
	return -1
}

// Months is 1..6 for valid values and 0 otherwise.
func (d DurationValue) Months() int {
	return d.Index() + 1
}

// Period is the length of the debate phase selected by this value.
func (d DurationValue) Period() time.Duration {
	months := d.Months()
	if months == 0 {
		return 0
	}
	return time.Duration(months*DaysPerDebateMonth) * 24 * time.Hour
}

type ApprovalValue string

const (
	ApprovalApprove ApprovalValue = "approve"
	ApprovalReject  ApprovalValue = "reject"
)

var Approvals = [2]ApprovalValue{ApprovalApprove, ApprovalReject}

func ParseApproval(raw string) (ApprovalValue, bool) {
	switch ApprovalValue(strings.ToLower(strings.TrimSpace(raw))) {
	case ApprovalApprove:
		return ApprovalApprove, true
	case ApprovalReject:
		return ApprovalReject, true
	default:
		return "", false
	}
}

func (a ApprovalValue) Valid() bool {
	return a == ApprovalApprove || a == ApprovalReject
}

// VoteRecord is the single stored vote per (article, user, kind). Digest is
// the client commitment and is opaque to the server.
type VoteRecord struct {
	VoteID    string
	ArticleID string
	UserID    string
	Kind      VoteKind
	Digest    string
	VoterHash string
	VotedAt   time.Time
}

// DurationTally holds one counter per duration, indexed like Durations.
// FirstVoteAt is set by the first duration vote and is not touched by changes.
type DurationTally struct {
	ArticleID   string
	Counts      [DurationCount]int
	Leading     DurationValue
	FirstVoteAt time.Time
	UpdatedAt   time.Time
}

func (t DurationTally) Count(value DurationValue) int {
	idx := value.Index()
	if idx < 0 {
		return 0
	}
	return t.Counts[idx]
}

func (t DurationTally) Total() int {
	total := 0
	for _, count := range t.Counts {
		total += count
	}
	return total
}

// LeadingDuration scans from the longest duration down and only lets a
// shorter value take the lead with a strictly higher count, so ties resolve to
// the longer duration. An empty tally yields One Month.
func (t DurationTally) LeadingDuration() DurationValue {
	leader := DurationOneMonth
	best := 0
	for i := DurationCount - 1; i >= 0; i-- {
		if t.Counts[i] > best {
			best = t.Counts[i]
			leader = Durations[i]
		}
	}
	return leader
}

type ApprovalTally struct {
	ArticleID string
	Approve   int
	Reject    int
	UpdatedAt time.Time
}

func (t ApprovalTally) Total() int {
	return t.Approve + t.Reject
}

func (t ApprovalTally) Count(value ApprovalValue) int {
	switch value {
	case ApprovalApprove:
		return t.Approve
	case ApprovalReject:
		return t.Reject
	default:
		return 0
	}
}

// Outcome maps the final tally to a terminal phase. Nobody voting means
// Ignored; a tie rejects.
func (t ApprovalTally) Outcome() Phase {
	if t.Total() == 0 {
		return PhaseIgnored
	}
	if t.Approve > t.Reject {
		return PhaseApproved
	}
	return PhaseRejected
}
