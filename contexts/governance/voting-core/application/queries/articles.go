package queries

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	application "agora/contexts/governance/voting-core/application"
	"agora/contexts/governance/voting-core/domain/entities"
	domainerrors "agora/contexts/governance/voting-core/domain/errors"
	"agora/contexts/governance/voting-core/ports"
)

const (
	urgentLimit    = 10
	urgentPageSize = 500
)

// ArticleStatus is the read model behind countdowns and result pages.
type ArticleStatus struct {
	Article     entities.Article
	Deadline    time.Time
	HasDeadline bool
	Remaining   time.Duration
	Durations   entities.DurationTally
	Approvals   entities.ApprovalTally
}

type UrgentArticle struct {
	Article   entities.Article
	Deadline  time.Time
	Remaining time.Duration
}

type ArticleQueryUseCase struct {
	Articles  ports.ArticleRepository
	Votes     ports.VoteLedger
	Lifecycle ports.LifecycleRepository
	Clock     ports.Clock
	Logger    *slog.Logger
}

func (uc ArticleQueryUseCase) ArticleStatus(ctx context.Context, articleID string) (ArticleStatus, error) {
	articleID = strings.TrimSpace(articleID)
	if articleID == "" {
		return ArticleStatus{}, domainerrors.ErrInvalidArticleInput
	}
	snapshot, err := uc.Lifecycle.LoadSnapshot(ctx, articleID)
	if err != nil {
		return ArticleStatus{}, err
	}
	status := ArticleStatus{
		Article:   snapshot.Article,
		Durations: snapshot.Durations,
		Approvals: snapshot.Approvals,
	}
	if deadline, ok := snapshot.Deadline(); ok {
		status.Deadline = deadline
		status.HasDeadline = true
		status.Remaining = remaining(deadline, uc.now())
	}
	return status, nil
}

func (uc ArticleQueryUseCase) Tallies(ctx context.Context, articleID string) (entities.DurationTally, entities.ApprovalTally, error) {
	articleID = strings.TrimSpace(articleID)
	if _, err := uc.Articles.GetArticle(ctx, articleID); err != nil {
		return entities.DurationTally{}, entities.ApprovalTally{}, err
	}
	durations, err := uc.Votes.GetDurationTally(ctx, articleID)
	if err != nil {
		return entities.DurationTally{}, entities.ApprovalTally{}, err
	}
	approvals, err := uc.Votes.GetApprovalTally(ctx, articleID)
	if err != nil {
		return entities.DurationTally{}, entities.ApprovalTally{}, err
	}
	return durations, approvals, nil
}

// MyVote returns the caller's stored record so the client can verify it
// locally. Only the digest leaves the server, never a plaintext value.
func (uc ArticleQueryUseCase) MyVote(
	ctx context.Context,
	articleID string,
	userID string,
	kind entities.VoteKind,
) (entities.VoteRecord, bool, error) {
	articleID = strings.TrimSpace(articleID)
	userID = strings.TrimSpace(userID)
	if articleID == "" || userID == "" || !kind.Valid() {
		return entities.VoteRecord{}, false, domainerrors.ErrInvalidVoteInput
	}
	return uc.Votes.GetVoteRecord(ctx, articleID, userID, kind)
}

// UrgentArticles lists voting articles that close within the urgency window,
// most urgent first. Articles already past their deadline are left to the
// lifecycle sweep.
func (uc ArticleQueryUseCase) UrgentArticles(ctx context.Context) ([]UrgentArticle, error) {
	logger := application.ResolveLogger(uc.Logger)
	now := uc.now()
	phases := []entities.Phase{entities.PhaseDurationVotingOpen, entities.PhaseFinalVotingOpen}

	var articles []entities.Article
	var cursor ports.ArticleCursor
	for {
		page, err := uc.Articles.ListArticlesByPhase(ctx, phases, cursor, urgentPageSize)
		if err != nil {
			return nil, err
		}
		articles = append(articles, page...)
		if len(page) < urgentPageSize {
			break
		}
		cursor = ports.CursorAfter(page[len(page)-1])
	}

	items := make([]UrgentArticle, 0, urgentLimit)
	for _, article := range articles {
		var firstVoteAt time.Time
		if article.Phase == entities.PhaseDurationVotingOpen {
			at, found, err := uc.Votes.FirstDurationVoteAt(ctx, article.ArticleID)
			if err != nil {
				return nil, err
			}
			if !found {
				continue
			}
			firstVoteAt = at
		}
		deadline, ok := entities.Deadline(article.Phase, article.PhaseEnteredAt, firstVoteAt, article.VotedDuration)
		if !ok {
			continue
		}
		left := deadline.Sub(now)
		if left <= 0 || left > entities.UrgencyWindow {
			continue
		}
		items = append(items, UrgentArticle{Article: article, Deadline: deadline, Remaining: left})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Deadline.Before(items[j].Deadline)
	})
	if len(items) > urgentLimit {
		items = items[:urgentLimit]
	}
	logger.Debug("urgent articles computed",
		"event", "voting_urgent_articles_computed",
		"module", "governance/voting-core",
		"layer", "application",
		"scanned", len(articles),
		"urgent", len(items),
	)
	return items, nil
}

func (uc ArticleQueryUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}

func remaining(deadline time.Time, now time.Time) time.Duration {
	if left := deadline.Sub(now); left > 0 {
		return left
	}
	return 0
}
