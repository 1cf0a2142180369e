package entities

import "time"

const (
	// DurationVoteWindow runs from the first duration vote, not from the
	// moment the article was opened.
	DurationVoteWindow = 7 * 24 * time.Hour
	FinalVoteWindow    = 14 * 24 * time.Hour
	DaysPerDebateMonth = 30
	// UrgencyWindow marks voting articles whose deadline is close.
	UrgencyWindow = 3 * 24 * time.Hour
)

// Deadline returns when the given phase closes. The duration-vote phase has
// no deadline until its first vote; the debate phase has none without a
// winning duration; terminal phases never close.
func Deadline(phase Phase, phaseEnteredAt time.Time, firstDurationVoteAt time.Time, winning DurationValue) (time.Time, bool) {
	switch phase {
	case PhaseDurationVotingOpen:
		if firstDurationVoteAt.IsZero() {
			return time.Time{}, false
		}
		return firstDurationVoteAt.Add(DurationVoteWindow).UTC(), true
	case PhaseDebateOngoing:
		if !winning.Valid() || phaseEnteredAt.IsZero() {
			return time.Time{}, false
		}
		return phaseEnteredAt.Add(winning.Period()).UTC(), true
	case PhaseFinalVotingOpen:
		if phaseEnteredAt.IsZero() {
			return time.Time{}, false
		}
		return phaseEnteredAt.Add(FinalVoteWindow).UTC(), true
	default:
		return time.Time{}, false
	}
}

// LifecycleSnapshot is everything the state machine reads about one article.
type LifecycleSnapshot struct {
	Article             Article
	FirstDurationVoteAt time.Time
	Durations           DurationTally
	Approvals           ApprovalTally
	// MaxOfficialNumber is the highest number among approved constitutional
	// articles, 0 when there are none.
	MaxOfficialNumber int
}

func (s LifecycleSnapshot) Deadline() (time.Time, bool) {
	return Deadline(s.Article.Phase, s.Article.PhaseEnteredAt, s.FirstDurationVoteAt, s.Article.VotedDuration)
}

// Decision is the outcome of evaluating a snapshot at a point in time.
type Decision struct {
	Ready           bool
	From            Phase
	To              Phase
	EnteredAt       time.Time
	WinningDuration DurationValue
	OfficialNumber  int
}

// Evaluate is the single source of truth for lifecycle transitions. It is
// pure so that the sweep, lazy readers and the storage transaction re-check
// all reach the same answer for the same snapshot and clock.
func Evaluate(snapshot LifecycleSnapshot, now time.Time) Decision {
	article := snapshot.Article
	decision := Decision{From: article.Phase}

	deadline, ok := snapshot.Deadline()
	if !ok || now.Before(deadline) {
		return decision
	}

	decision.Ready = true
	decision.EnteredAt = now.UTC()
	decision.WinningDuration = article.VotedDuration

	switch article.Phase {
	case PhaseDurationVotingOpen:
		decision.To = PhaseDebateOngoing
		decision.WinningDuration = snapshot.Durations.LeadingDuration()
	case PhaseDebateOngoing:
		decision.To = PhaseFinalVotingOpen
	case PhaseFinalVotingOpen:
		decision.To = snapshot.Approvals.Outcome()
		if decision.To == PhaseApproved && article.Type == ArticleTypeConstitutional {
			decision.OfficialNumber = snapshot.MaxOfficialNumber + 1
		}
	default:
		return Decision{From: article.Phase}
	}
	return decision
}

// Apply returns the article as it looks after the decision is persisted.
func (d Decision) Apply(article Article) Article {
	if !d.Ready {
		return article
	}
	article.Phase = d.To
	article.PhaseEnteredAt = d.EnteredAt
	article.UpdatedAt = d.EnteredAt
	if d.WinningDuration.Valid() {
		article.VotedDuration = d.WinningDuration
	}
	if d.OfficialNumber > 0 {
		article.OfficialNumber = d.OfficialNumber
	}
	return article
}
