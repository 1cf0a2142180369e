package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "agora/contexts/governance/voting-core/application"
	"agora/contexts/governance/voting-core/domain/entities"
	domainerrors "agora/contexts/governance/voting-core/domain/errors"
	"agora/contexts/governance/voting-core/ports"
)

const maxNumberingAttempts = 3

// LifecycleResult reports what an evaluation did. When Transitioned is false
// Phase is the current phase and Deadline, if known, is when it closes.
type LifecycleResult struct {
	ArticleID       string
	Transitioned    bool
	FromPhase       entities.Phase
	Phase           entities.Phase
	Outcome         entities.Phase
	WinningDuration entities.DurationValue
	OfficialNumber  int
	Designation     string
	Deadline        time.Time
	HasDeadline     bool
}

// LifecycleUseCase is the only path that advances articles. The sweeper and
// lazy readers both go through EvaluateLifecycle.
type LifecycleUseCase struct {
	Lifecycle ports.LifecycleRepository
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// EvaluateLifecycle applies at most one transition. It is safe to call any
// number of times concurrently: only the first caller past a deadline writes,
// the rest observe the advanced phase and return without transitioning.
func (uc LifecycleUseCase) EvaluateLifecycle(ctx context.Context, articleID string) (LifecycleResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	articleID = strings.TrimSpace(articleID)
	if articleID == "" {
		return LifecycleResult{}, domainerrors.ErrInvalidArticleInput
	}
	now := uc.now()

	snapshot, err := uc.Lifecycle.LoadSnapshot(ctx, articleID)
	if err != nil {
		return LifecycleResult{}, err
	}
	if decision := entities.Evaluate(snapshot, now); !decision.Ready {
		return notReadyResult(snapshot), nil
	}

	var applied entities.Decision
	for attempt := 1; attempt <= maxNumberingAttempts; attempt++ {
		applied, err = uc.Lifecycle.TransitionArticle(ctx, articleID, uc.decider(ctx, articleID, now))
		if err == nil {
			break
		}
		if !errors.Is(err, domainerrors.ErrNumberingConflict) || attempt == maxNumberingAttempts {
			logger.Error("lifecycle transition failed",
				"event", "voting_lifecycle_transition_failed",
				"module", "governance/voting-core",
				"layer", "application",
				"article_id", articleID,
				"attempt", attempt,
				"error", err.Error(),
			)
			return LifecycleResult{}, err
		}
		logger.Warn("official number taken concurrently, retrying",
			"event", "voting_lifecycle_numbering_retry",
			"module", "governance/voting-core",
			"layer", "application",
			"article_id", articleID,
			"attempt", attempt,
		)
	}

	if !applied.Ready {
		logger.Info("lifecycle already advanced by a concurrent trigger",
			"event", "voting_lifecycle_transition_noop",
			"module", "governance/voting-core",
			"layer", "application",
			"article_id", articleID,
			"phase", string(applied.From),
		)
		current, err := uc.Lifecycle.LoadSnapshot(ctx, articleID)
		if err != nil {
			return LifecycleResult{}, err
		}
		return notReadyResult(current), nil
	}

	result := LifecycleResult{
		ArticleID:       articleID,
		Transitioned:    true,
		FromPhase:       applied.From,
		Phase:           applied.To,
		WinningDuration: applied.WinningDuration,
		OfficialNumber:  applied.OfficialNumber,
	}
	if applied.To.Terminal() {
		result.Outcome = applied.To
	}
	if applied.OfficialNumber > 0 {
		result.Designation = entities.FormatDesignation(applied.OfficialNumber)
	}
	if deadline, ok := entities.Deadline(applied.To, applied.EnteredAt, time.Time{}, applied.WinningDuration); ok {
		result.Deadline, result.HasDeadline = deadline, true
	}
	logger.Info("lifecycle transitioned",
		"event", "voting_lifecycle_transitioned",
		"module", "governance/voting-core",
		"layer", "application",
		"article_id", articleID,
		"from_phase", string(applied.From),
		"to_phase", string(applied.To),
		"winning_duration", string(applied.WinningDuration),
		"official_number", applied.OfficialNumber,
	)
	return result, nil
}

func (uc LifecycleUseCase) decider(ctx context.Context, articleID string, now time.Time) ports.TransitionDecider {
	return func(snapshot entities.LifecycleSnapshot) (entities.Decision, ports.EventEnvelope, error) {
		decision := entities.Evaluate(snapshot, now)
		if !decision.Ready {
			return decision, ports.EventEnvelope{}, nil
		}
		eventID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.Decision{}, ports.EventEnvelope{}, err
		}
		data := map[string]any{
			"article_id":   articleID,
			"article_type": string(snapshot.Article.Type),
			"from_phase":   string(decision.From),
			"to_phase":     string(decision.To),
			"entered_at":   decision.EnteredAt,
		}
		if decision.WinningDuration.Valid() {
			data["winning_duration"] = string(decision.WinningDuration)
		}
		if decision.To.Terminal() {
			data["approve_count"] = snapshot.Approvals.Approve
			data["reject_count"] = snapshot.Approvals.Reject
		}
		if decision.OfficialNumber > 0 {
			data["official_number"] = decision.OfficialNumber
			data["designation"] = entities.FormatDesignation(decision.OfficialNumber)
		}
		event, err := newVotingEnvelope(eventID, "article.phase_changed", articleID, now, data)
		if err != nil {
			return entities.Decision{}, ports.EventEnvelope{}, err
		}
		return decision, event, nil
	}
}

func notReadyResult(snapshot entities.LifecycleSnapshot) LifecycleResult {
	result := LifecycleResult{
		ArticleID:       snapshot.Article.ArticleID,
		FromPhase:       snapshot.Article.Phase,
		Phase:           snapshot.Article.Phase,
		WinningDuration: snapshot.Article.VotedDuration,
		OfficialNumber:  snapshot.Article.OfficialNumber,
		Designation:     snapshot.Article.Designation(),
	}
	if snapshot.Article.Phase.Terminal() {
		result.Outcome = snapshot.Article.Phase
	}
	if deadline, ok := snapshot.Deadline(); ok {
		result.Deadline, result.HasDeadline = deadline, true
	}
	return result
}

func (uc LifecycleUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}
