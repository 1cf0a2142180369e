package postgresadapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"agora/contexts/governance/voting-core/domain/entities"
	domainerrors "agora/contexts/governance/voting-core/domain/errors"
	"agora/contexts/governance/voting-core/ports"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// openRepository runs against the database named by POSTGRES_DSN and skips
// otherwise.
func openRepository(t *testing.T) *Repository {
	t.Helper()
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	repo := NewRepository(db, nil)
	if err := repo.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repo
}

func createArticle(t *testing.T, repo *Repository, articleType entities.ArticleType, phase entities.Phase, entered time.Time) string {
	t.Helper()
	id := "it-" + uuid.NewString()
	err := repo.CreateArticle(context.Background(), entities.Article{
		ArticleID:      id,
		Type:           articleType,
		Title:          "Integration " + id,
		AuthorID:       "author-1",
		Phase:          phase,
		PhaseEnteredAt: entered,
		CreatedAt:      entered,
		UpdatedAt:      entered,
	})
	if err != nil {
		t.Fatalf("create article: %v", err)
	}
	t.Cleanup(func() {
		for _, model := range []any{&voteRecordModel{}, &durationTallyModel{}, &approvalTallyModel{}} {
			repo.db.Where("article_id = ?", id).Delete(model)
		}
		repo.db.Where("id = ?", id).Delete(&articleModel{})
	})
	return id
}

func firstVote(articleID string, userID string, kind entities.VoteKind, value string, at time.Time) ports.FirstVote {
	return ports.FirstVote{
		Record: entities.VoteRecord{
			VoteID:    uuid.NewString(),
			ArticleID: articleID,
			UserID:    userID,
			Kind:      kind,
			Digest:    "digest-" + userID + "-" + value,
			VoterHash: "hash-" + userID,
			VotedAt:   at,
		},
		Value: value,
	}
}

func evaluateAt(now time.Time) ports.TransitionDecider {
	return func(snapshot entities.LifecycleSnapshot) (entities.Decision, ports.EventEnvelope, error) {
		return entities.Evaluate(snapshot, now), ports.EventEnvelope{}, nil
	}
}

func TestRepositoryConcurrentFirstVotesConserveTotals(t *testing.T) {
	repo := openRepository(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	articleID := createArticle(t, repo, entities.ArticleTypeLaw, entities.PhaseDurationVotingOpen, base)

	const voters = 30
	var wg sync.WaitGroup
	errs := make(chan error, voters)
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			value := string(entities.Durations[i%entities.DurationCount])
			if _, err := repo.ApplyFirstVote(ctx, firstVote(articleID, fmt.Sprintf("u%02d", i), entities.VoteKindDuration, value, base)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("first vote: %v", err)
	}

	tally, err := repo.GetDurationTally(ctx, articleID)
	if err != nil {
		t.Fatalf("tally: %v", err)
	}
	if tally.Total() != voters {
		t.Fatalf("expected %d votes, got %v", voters, tally.Counts)
	}
	for _, value := range entities.Durations {
		if tally.Count(value) != voters/entities.DurationCount {
			t.Fatalf("uneven count for %s: %v", value, tally.Counts)
		}
	}
	if tally.Leading != entities.DurationSixMonths {
		t.Fatalf("expected a full tie to lead with Six Months, got %q", tally.Leading)
	}

	_, err = repo.ApplyFirstVote(ctx, firstVote(articleID, "u00", entities.VoteKindDuration, string(entities.DurationOneMonth), base))
	if !errors.Is(err, domainerrors.ErrVoteConflict) {
		t.Fatalf("expected ErrVoteConflict for a duplicate first vote, got %v", err)
	}
	_, err = repo.ApplyFirstVote(ctx, firstVote(articleID, "u99", entities.VoteKindApproval, string(entities.ApprovalApprove), base))
	if !errors.Is(err, domainerrors.ErrPhaseClosed) {
		t.Fatalf("expected ErrPhaseClosed for an approval vote, got %v", err)
	}
}

func TestRepositoryVoteChangeKeepsFirstVoteTime(t *testing.T) {
	repo := openRepository(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	articleID := createArticle(t, repo, entities.ArticleTypeLaw, entities.PhaseDurationVotingOpen, base)

	vote := firstVote(articleID, "u1", entities.VoteKindDuration, string(entities.DurationTwoMonths), base)
	if _, err := repo.ApplyFirstVote(ctx, vote); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	change := ports.VoteChange{
		ArticleID:      articleID,
		UserID:         "u1",
		Kind:           entities.VoteKindDuration,
		OldValue:       string(entities.DurationTwoMonths),
		NewValue:       string(entities.DurationThreeMonths),
		ExpectedDigest: vote.Record.Digest,
		NewDigest:      "digest-u1-three",
		VoterHash:      "hash-u1",
		VotedAt:        base.Add(6 * 24 * time.Hour),
	}
	updated, err := repo.ApplyVoteChange(ctx, change)
	if err != nil {
		t.Fatalf("change: %v", err)
	}
	if updated.Digest != "digest-u1-three" || updated.VoteID != vote.Record.VoteID {
		t.Fatalf("unexpected record after change %+v", updated)
	}

	tally, _ := repo.GetDurationTally(ctx, articleID)
	if tally.Count(entities.DurationTwoMonths) != 0 || tally.Count(entities.DurationThreeMonths) != 1 {
		t.Fatalf("counters not swapped: %v", tally.Counts)
	}
	first, found, err := repo.FirstDurationVoteAt(ctx, articleID)
	if err != nil || !found || !first.Equal(base) {
		t.Fatalf("expected first vote at %v, got %v found=%v err=%v", base, first, found, err)
	}

	if _, err := repo.ApplyVoteChange(ctx, change); !errors.Is(err, domainerrors.ErrVoteConflict) {
		t.Fatalf("expected ErrVoteConflict for a stale digest, got %v", err)
	}
	tally, _ = repo.GetDurationTally(ctx, articleID)
	if tally.Total() != 1 {
		t.Fatalf("stale change must not move counters: %v", tally.Counts)
	}

	decision, err := repo.TransitionArticle(ctx, articleID, evaluateAt(base.Add(entities.DurationVoteWindow)))
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if !decision.Ready || decision.To != entities.PhaseDebateOngoing || decision.WinningDuration != entities.DurationThreeMonths {
		t.Fatalf("expected transition at first vote + window, got %+v", decision)
	}
}

func TestRepositoryTransitionAppliesOnce(t *testing.T) {
	repo := openRepository(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	articleID := createArticle(t, repo, entities.ArticleTypeLaw, entities.PhaseFinalVotingOpen, now.Add(-entities.FinalVoteWindow-time.Hour))
	if _, err := repo.ApplyFirstVote(ctx, firstVote(articleID, "u1", entities.VoteKindApproval, string(entities.ApprovalApprove), now.Add(-48*time.Hour))); err != nil {
		t.Fatalf("vote: %v", err)
	}

	const workers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	applied := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decision, err := repo.TransitionArticle(ctx, articleID, evaluateAt(now))
			if err != nil {
				t.Errorf("transition: %v", err)
				return
			}
			if decision.Ready {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if applied != 1 {
		t.Fatalf("expected exactly one applied transition, got %d", applied)
	}

	article, err := repo.GetArticle(ctx, articleID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if article.Phase != entities.PhaseApproved {
		t.Fatalf("expected approved, got %q", article.Phase)
	}
	if _, err := repo.ApplyFirstVote(ctx, firstVote(articleID, "u2", entities.VoteKindApproval, string(entities.ApprovalReject), now)); !errors.Is(err, domainerrors.ErrPhaseClosed) {
		t.Fatalf("expected ErrPhaseClosed after resolution, got %v", err)
	}
}

func TestRepositoryOfficialNumberConflict(t *testing.T) {
	repo := openRepository(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	entered := now.Add(-entities.FinalVoteWindow - time.Hour)
	first := createArticle(t, repo, entities.ArticleTypeConstitutional, entities.PhaseFinalVotingOpen, entered)
	second := createArticle(t, repo, entities.ArticleTypeConstitutional, entities.PhaseFinalVotingOpen, entered)
	for _, id := range []string{first, second} {
		if _, err := repo.ApplyFirstVote(ctx, firstVote(id, "u1", entities.VoteKindApproval, string(entities.ApprovalApprove), entered)); err != nil {
			t.Fatalf("vote: %v", err)
		}
	}

	won, err := repo.TransitionArticle(ctx, first, evaluateAt(now))
	if err != nil || !won.Ready || won.OfficialNumber == 0 {
		t.Fatalf("expected first article numbered, got %+v err=%v", won, err)
	}

	stale := func(snapshot entities.LifecycleSnapshot) (entities.Decision, ports.EventEnvelope, error) {
		decision := entities.Evaluate(snapshot, now)
		decision.OfficialNumber = won.OfficialNumber
		return decision, ports.EventEnvelope{}, nil
	}
	if _, err := repo.TransitionArticle(ctx, second, stale); !errors.Is(err, domainerrors.ErrNumberingConflict) {
		t.Fatalf("expected ErrNumberingConflict, got %v", err)
	}
	article, _ := repo.GetArticle(ctx, second)
	if article.Phase != entities.PhaseFinalVotingOpen || article.OfficialNumber != 0 {
		t.Fatalf("conflicting transition must roll back, got %+v", article)
	}

	retried, err := repo.TransitionArticle(ctx, second, evaluateAt(now))
	if err != nil || retried.OfficialNumber != won.OfficialNumber+1 {
		t.Fatalf("expected next number on retry, got %+v err=%v", retried, err)
	}
}
