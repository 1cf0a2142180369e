package entities

import "testing"

func TestLeadingDurationPrefersLongerOnTie(t *testing.T) {
	cases := []struct {
		name   string
		counts [DurationCount]int
		want   DurationValue
	}{
		{name: "empty tally", counts: [DurationCount]int{}, want: DurationOneMonth},
		{name: "single winner", counts: [DurationCount]int{0, 0, 5, 1, 0, 0}, want: DurationThreeMonths},
		{name: "two-way tie", counts: [DurationCount]int{3, 0, 0, 3, 0, 0}, want: DurationFourMonths},
		{name: "all tied", counts: [DurationCount]int{2, 2, 2, 2, 2, 2}, want: DurationSixMonths},
		{name: "shorter strictly ahead", counts: [DurationCount]int{4, 0, 0, 0, 0, 3}, want: DurationOneMonth},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DurationTally{Counts: tc.counts}.LeadingDuration()
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestApprovalOutcome(t *testing.T) {
	cases := []struct {
		tally ApprovalTally
		want  Phase
	}{
		{ApprovalTally{}, PhaseIgnored},
		{ApprovalTally{Approve: 3, Reject: 2}, PhaseApproved},
		{ApprovalTally{Approve: 2, Reject: 2}, PhaseRejected},
		{ApprovalTally{Approve: 0, Reject: 1}, PhaseRejected},
	}
	for _, tc := range cases {
		if got := tc.tally.Outcome(); got != tc.want {
			t.Fatalf("tally %+v: expected %q, got %q", tc.tally, tc.want, got)
		}
	}
}

func TestVoteKindParsingAndValues(t *testing.T) {
	kind, ok := ParseVoteKind("duration")
	if !ok || kind != VoteKindDuration {
		t.Fatalf("expected duration kind, got %q ok=%v", kind, ok)
	}
	kind, ok = ParseVoteKind("Voting_opened")
	if !ok || kind != VoteKindApproval {
		t.Fatalf("expected approval kind, got %q ok=%v", kind, ok)
	}
	if _, ok := ParseVoteKind("ranked"); ok {
		t.Fatalf("unexpected kind accepted")
	}
	if len(VoteKindDuration.Candidates()) != 6 || len(VoteKindApproval.Candidates()) != 2 {
		t.Fatalf("unexpected candidate sizes")
	}
	if !VoteKindDuration.IsLegalValue("Four Month") || VoteKindDuration.IsLegalValue("Four Months") {
		t.Fatalf("duration labels must match the protocol spelling exactly")
	}
	if VoteKindApproval.IsLegalValue("Approve") {
		t.Fatalf("approval values are lowercase")
	}
	if VoteKindDuration.OpenPhase() != PhaseDurationVotingOpen || VoteKindApproval.OpenPhase() != PhaseFinalVotingOpen {
		t.Fatalf("unexpected open phases")
	}
}

func TestDurationPeriod(t *testing.T) {
	if got := DurationOneMonth.Period().Hours(); got != 30*24 {
		t.Fatalf("expected 720h, got %v", got)
	}
	if got := DurationSixMonths.Period().Hours(); got != 180*24 {
		t.Fatalf("expected 4320h, got %v", got)
	}
	if DurationValue("Seven Month").Period() != 0 {
		t.Fatalf("invalid duration must have no period")
	}
	parsed, ok := ParseDuration("two months")
	if !ok || parsed != DurationTwoMonths {
		t.Fatalf("expected case-insensitive parse, got %q", parsed)
	}
}
