package postgresadapter

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"agora/contexts/governance/voting-core/domain/entities"
	domainerrors "agora/contexts/governance/voting-core/domain/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestArticleModelKeepsOptionalColumnsNull(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	row := articleModelFromEntity(entities.Article{
		ArticleID: " a1 ",
		Type:      entities.ArticleTypeLaw,
		Title:     "Transit",
		AuthorID:  "author-1",
		Phase:     entities.PhaseDurationVotingOpen,
		CreatedAt: created,
	})
	if row.ID != "a1" || row.VotedDebateDuration != nil || row.OfficialArticleNumber != nil {
		t.Fatalf("unexpected row %+v", row)
	}
	if !row.StatusChangedAt.Equal(created) || !row.UpdatedAt.Equal(created) {
		t.Fatalf("expected timestamps to default to created_at, got %+v", row)
	}
}

func TestArticleModelRoundTripsResolution(t *testing.T) {
	entered := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	article := entities.Article{
		ArticleID:      "a1",
		Type:           entities.ArticleTypeConstitutional,
		Title:          "Right to assemble",
		AuthorID:       "author-1",
		Phase:          entities.PhaseApproved,
		PhaseEnteredAt: entered,
		VotedDuration:  entities.DurationThreeMonths,
		OfficialNumber: 12,
		CreatedAt:      entered,
		UpdatedAt:      entered,
	}
	got := articleModelFromEntity(article).toEntity()
	if got != article {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, article)
	}
	if got.Designation() != "Article XII of the constitution" {
		t.Fatalf("unexpected designation %q", got.Designation())
	}
}

func TestDurationTallyModelFollowsDurationOrder(t *testing.T) {
	tally := durationTallyModel{ArticleID: "a1", OneMonth: 1, ThreeMonths: 4, SixMonths: 4}.toEntity()
	if tally.Count(entities.DurationOneMonth) != 1 || tally.Count(entities.DurationThreeMonths) != 4 {
		t.Fatalf("counts out of order: %v", tally.Counts)
	}
	if tally.LeadingDuration() != entities.DurationSixMonths {
		t.Fatalf("expected tie to resolve to the longer duration, got %q", tally.LeadingDuration())
	}
}

func TestCounterColumn(t *testing.T) {
	for i, value := range entities.Durations {
		column, err := counterColumn(entities.VoteKindDuration, string(value))
		if err != nil || column != durationColumns[i] {
			t.Fatalf("%s: got %q err=%v", value, column, err)
		}
	}
	if column, _ := counterColumn(entities.VoteKindApproval, "reject"); column != "nb_reject" {
		t.Fatalf("expected nb_reject, got %q", column)
	}
	if _, err := counterColumn(entities.VoteKindApproval, "One Month"); !errors.Is(err, domainerrors.ErrInvalidVoteInput) {
		t.Fatalf("expected ErrInvalidVoteInput, got %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	if !isUniqueViolation(wrapped) {
		t.Fatalf("expected wrapped 23505 to be a unique violation")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "40001"}) || isUniqueViolation(errors.New("boom")) {
		t.Fatalf("only 23505 is a unique violation")
	}
}

func TestSystemClockMicrosecondPrecision(t *testing.T) {
	now := SystemClock{}.Now()
	if now.Location() != time.UTC || now.Nanosecond()%1000 != 0 {
		t.Fatalf("expected UTC microsecond time, got %v", now)
	}
}
