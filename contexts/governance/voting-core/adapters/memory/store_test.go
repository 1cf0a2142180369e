package memory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"agora/contexts/governance/voting-core/domain/entities"
	"agora/contexts/governance/voting-core/ports"
)

var at = time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

func brokenEvent() ports.EventEnvelope {
	return ports.EventEnvelope{
		EventID:   "evt-1",
		EventType: "vote.cast",
		Data:      json.RawMessage(`{not json`),
	}
}

func openArticle(phase entities.Phase) entities.Article {
	return entities.Article{ArticleID: "a1", Type: entities.ArticleTypeLaw, Phase: phase, PhaseEnteredAt: at}
}

func TestApplyFirstVoteLeavesNoPartialWrite(t *testing.T) {
	store := NewStore([]entities.Article{openArticle(entities.PhaseDurationVotingOpen)})
	ctx := context.Background()

	_, err := store.ApplyFirstVote(ctx, ports.FirstVote{
		Record: entities.VoteRecord{VoteID: "v1", ArticleID: "a1", UserID: "u1", Kind: entities.VoteKindDuration, Digest: "d1", VotedAt: at},
		Value:  string(entities.DurationTwoMonths),
		Event:  brokenEvent(),
	})
	if err == nil {
		t.Fatalf("expected the outbox encode error")
	}
	if _, found, _ := store.GetVoteRecord(ctx, "a1", "u1", entities.VoteKindDuration); found {
		t.Fatalf("record must not be stored")
	}
	tally, _ := store.GetDurationTally(ctx, "a1")
	if tally.Total() != 0 || !tally.FirstVoteAt.IsZero() {
		t.Fatalf("tally must be untouched, got %+v", tally)
	}
	if store.PendingOutboxCount() != 0 {
		t.Fatalf("outbox must be empty")
	}
}

func TestApplyVoteChangeLeavesNoPartialWrite(t *testing.T) {
	store := NewStore([]entities.Article{openArticle(entities.PhaseFinalVotingOpen)})
	ctx := context.Background()

	record := entities.VoteRecord{VoteID: "v1", ArticleID: "a1", UserID: "u1", Kind: entities.VoteKindApproval, Digest: "d1", VotedAt: at}
	if _, err := store.ApplyFirstVote(ctx, ports.FirstVote{Record: record, Value: string(entities.ApprovalApprove)}); err != nil {
		t.Fatalf("first vote: %v", err)
	}

	_, err := store.ApplyVoteChange(ctx, ports.VoteChange{
		ArticleID:      "a1",
		UserID:         "u1",
		Kind:           entities.VoteKindApproval,
		OldValue:       string(entities.ApprovalApprove),
		NewValue:       string(entities.ApprovalReject),
		ExpectedDigest: "d1",
		NewDigest:      "d2",
		VotedAt:        at.Add(time.Hour),
		Event:          brokenEvent(),
	})
	if err == nil {
		t.Fatalf("expected the outbox encode error")
	}
	stored, _, _ := store.GetVoteRecord(ctx, "a1", "u1", entities.VoteKindApproval)
	if stored.Digest != "d1" {
		t.Fatalf("record must keep its digest, got %q", stored.Digest)
	}
	tally, _ := store.GetApprovalTally(ctx, "a1")
	if tally.Approve != 1 || tally.Reject != 0 {
		t.Fatalf("tally must be untouched, got %+v", tally)
	}
}

func TestFirstVoteTimeSurvivesChanges(t *testing.T) {
	store := NewStore([]entities.Article{openArticle(entities.PhaseDurationVotingOpen)})
	ctx := context.Background()

	record := entities.VoteRecord{VoteID: "v1", ArticleID: "a1", UserID: "u1", Kind: entities.VoteKindDuration, Digest: "d1", VotedAt: at}
	if _, err := store.ApplyFirstVote(ctx, ports.FirstVote{Record: record, Value: string(entities.DurationOneMonth)}); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if _, err := store.ApplyVoteChange(ctx, ports.VoteChange{
		ArticleID:      "a1",
		UserID:         "u1",
		Kind:           entities.VoteKindDuration,
		OldValue:       string(entities.DurationOneMonth),
		NewValue:       string(entities.DurationSixMonths),
		ExpectedDigest: "d1",
		NewDigest:      "d2",
		VotedAt:        at.Add(48 * time.Hour),
	}); err != nil {
		t.Fatalf("change: %v", err)
	}
	snapshot, err := store.LoadSnapshot(ctx, "a1")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !snapshot.FirstDurationVoteAt.Equal(at) {
		t.Fatalf("expected first vote at %v, got %v", at, snapshot.FirstDurationVoteAt)
	}
}

func TestListArticlesByPhaseCursor(t *testing.T) {
	store := NewStore(nil)
	for i, id := range []string{"c", "a", "b"} {
		store.SetArticle(entities.Article{ArticleID: id, Phase: entities.PhaseDebateOngoing, PhaseEnteredAt: at.Add(time.Duration(i%2) * time.Hour)})
	}
	phases := []entities.Phase{entities.PhaseDebateOngoing}

	first, err := store.ListArticlesByPhase(context.Background(), phases, ports.ArticleCursor{}, 2)
	if err != nil || len(first) != 2 || first[0].ArticleID != "b" || first[1].ArticleID != "c" {
		t.Fatalf("unexpected first page %+v err=%v", first, err)
	}
	rest, err := store.ListArticlesByPhase(context.Background(), phases, ports.CursorAfter(first[1]), 2)
	if err != nil || len(rest) != 1 || rest[0].ArticleID != "a" {
		t.Fatalf("unexpected second page %+v err=%v", rest, err)
	}
}
