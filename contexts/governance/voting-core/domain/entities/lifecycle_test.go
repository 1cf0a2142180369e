package entities

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func durationSnapshot(firstVote time.Time, counts [DurationCount]int) LifecycleSnapshot {
	return LifecycleSnapshot{
		Article: Article{
			ArticleID:      "article-1",
			Type:           ArticleTypeConstitutional,
			Phase:          PhaseDurationVotingOpen,
			PhaseEnteredAt: epoch.Add(-48 * time.Hour),
		},
		FirstDurationVoteAt: firstVote,
		Durations:           DurationTally{Counts: counts},
	}
}

func TestDurationPhaseWaitsForFirstVote(t *testing.T) {
	snapshot := durationSnapshot(time.Time{}, [DurationCount]int{})
	if _, ok := snapshot.Deadline(); ok {
		t.Fatalf("no deadline expected before the first duration vote")
	}
	if Evaluate(snapshot, epoch.Add(365*24*time.Hour)).Ready {
		t.Fatalf("article without duration votes must never time out")
	}
}

func TestDurationPhaseBoundary(t *testing.T) {
	snapshot := durationSnapshot(epoch, [DurationCount]int{0, 1, 0, 0, 0, 1})

	early := Evaluate(snapshot, epoch.Add(6*24*time.Hour+23*time.Hour))
	if early.Ready {
		t.Fatalf("transition must not fire at 6d23h")
	}

	decision := Evaluate(snapshot, epoch.Add(DurationVoteWindow))
	if !decision.Ready || decision.To != PhaseDebateOngoing {
		t.Fatalf("expected transition to debate at 7d, got %+v", decision)
	}
	if decision.WinningDuration != DurationSixMonths {
		t.Fatalf("expected tie to resolve to Six Month, got %q", decision.WinningDuration)
	}

	article := decision.Apply(snapshot.Article)
	if article.Phase != PhaseDebateOngoing || article.VotedDuration != DurationSixMonths {
		t.Fatalf("unexpected applied article: %+v", article)
	}
	if !article.PhaseEnteredAt.Equal(epoch.Add(DurationVoteWindow)) {
		t.Fatalf("phase entry time should be the evaluation time")
	}
}

func TestDebatePhaseUsesWinningDuration(t *testing.T) {
	snapshot := LifecycleSnapshot{Article: Article{
		Phase:          PhaseDebateOngoing,
		PhaseEnteredAt: epoch,
		VotedDuration:  DurationTwoMonths,
	}}
	deadline, ok := snapshot.Deadline()
	if !ok || !deadline.Equal(epoch.Add(60*24*time.Hour)) {
		t.Fatalf("expected 60 day debate, got %v ok=%v", deadline, ok)
	}
	if Evaluate(snapshot, deadline.Add(-time.Second)).Ready {
		t.Fatalf("debate must not end early")
	}
	decision := Evaluate(snapshot, deadline)
	if decision.To != PhaseFinalVotingOpen || decision.WinningDuration != DurationTwoMonths {
		t.Fatalf("unexpected decision %+v", decision)
	}
}

func TestFinalVoteOutcomes(t *testing.T) {
	base := LifecycleSnapshot{
		Article: Article{
			Type:           ArticleTypeConstitutional,
			Phase:          PhaseFinalVotingOpen,
			PhaseEnteredAt: epoch,
		},
		MaxOfficialNumber: 3,
	}
	at := epoch.Add(FinalVoteWindow)

	approved := base
	approved.Approvals = ApprovalTally{Approve: 5, Reject: 2}
	decision := Evaluate(approved, at)
	if decision.To != PhaseApproved || decision.OfficialNumber != 4 {
		t.Fatalf("expected approval numbered 4, got %+v", decision)
	}
	if got := decision.Apply(approved.Article).Designation(); got != "Article IV of the constitution" {
		t.Fatalf("unexpected designation %q", got)
	}

	tied := base
	tied.Approvals = ApprovalTally{Approve: 2, Reject: 2}
	if decision := Evaluate(tied, at); decision.To != PhaseRejected || decision.OfficialNumber != 0 {
		t.Fatalf("expected tie to reject without number, got %+v", decision)
	}

	if decision := Evaluate(base, at); decision.To != PhaseIgnored {
		t.Fatalf("expected ignored with no votes, got %+v", decision)
	}

	law := approved
	law.Article.Type = ArticleTypeLaw
	if decision := Evaluate(law, at); decision.To != PhaseApproved || decision.OfficialNumber != 0 {
		t.Fatalf("laws are approved without an official number, got %+v", decision)
	}
}

func TestTerminalPhasesNeverTransition(t *testing.T) {
	for _, phase := range []Phase{PhaseApproved, PhaseRejected, PhaseIgnored} {
		snapshot := LifecycleSnapshot{Article: Article{Phase: phase, PhaseEnteredAt: epoch}}
		if Evaluate(snapshot, epoch.Add(10*365*24*time.Hour)).Ready {
			t.Fatalf("terminal phase %q must not transition", phase)
		}
	}
	if PhaseApproved.Precedes(PhaseRejected) || !PhaseDurationVotingOpen.Precedes(PhaseFinalVotingOpen) {
		t.Fatalf("unexpected phase ordering")
	}
}
