package workers

import (
	"context"
	"log/slog"
	"sync/atomic"

	application "agora/contexts/governance/voting-core/application"
	"agora/contexts/governance/voting-core/application/commands"
	"agora/contexts/governance/voting-core/domain/entities"
	"agora/contexts/governance/voting-core/ports"

	"golang.org/x/sync/errgroup"
)

// LifecycleSweeper periodically evaluates every unresolved article. It holds
// no locks of its own; concurrent sweeps and lazy readers are reconciled by
// the storage layer.
type LifecycleSweeper struct {
	Articles    ports.ArticleRepository
	Lifecycle   commands.LifecycleUseCase
	Concurrency int
	BatchSize   int
	Logger      *slog.Logger
}

type SweepReport struct {
	Scanned      int
	Transitioned int
	Failed       int
}

// RunOnce evaluates every non-terminal article, BatchSize rows per page. A
// failure on one article is logged and counted without stopping the others;
// only a failure to list articles is returned.
func (s LifecycleSweeper) RunOnce(ctx context.Context) (SweepReport, error) {
	logger := application.ResolveLogger(s.Logger)
	limit := s.BatchSize
	if limit <= 0 {
		limit = 500
	}
	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	var report SweepReport
	var cursor ports.ArticleCursor
	for {
		articles, err := s.Articles.ListArticlesByPhase(ctx, entities.NonTerminalPhases, cursor, limit)
		if err != nil {
			logger.Error("lifecycle sweep list failed",
				"event", "voting_lifecycle_sweep_list_failed",
				"module", "governance/voting-core",
				"layer", "worker",
				"scanned", report.Scanned,
				"error", err.Error(),
			)
			return report, err
		}
		page := s.evaluatePage(ctx, logger, articles, concurrency)
		report.Scanned += page.Scanned
		report.Transitioned += page.Transitioned
		report.Failed += page.Failed
		if len(articles) < limit || ctx.Err() != nil {
			break
		}
		cursor = ports.CursorAfter(articles[len(articles)-1])
	}

	logger.Info("lifecycle sweep completed",
		"event", "voting_lifecycle_sweep_completed",
		"module", "governance/voting-core",
		"layer", "worker",
		"scanned", report.Scanned,
		"transitioned", report.Transitioned,
		"failed", report.Failed,
	)
	return report, ctx.Err()
}

func (s LifecycleSweeper) evaluatePage(
	ctx context.Context,
	logger *slog.Logger,
	articles []entities.Article,
	concurrency int,
) SweepReport {
	var transitioned, failed atomic.Int64
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)
	for _, article := range articles {
		articleID := article.ArticleID
		group.Go(func() error {
			result, err := s.Lifecycle.EvaluateLifecycle(groupCtx, articleID)
			if err != nil {
				failed.Add(1)
				logger.Error("lifecycle sweep evaluation failed",
					"event", "voting_lifecycle_sweep_article_failed",
					"module", "governance/voting-core",
					"layer", "worker",
					"article_id", articleID,
					"error", err.Error(),
				)
				return nil
			}
			if result.Transitioned {
				transitioned.Add(1)
			}
			return nil
		})
	}
	_ = group.Wait()
	return SweepReport{
		Scanned:      len(articles),
		Transitioned: int(transitioned.Load()),
		Failed:       int(failed.Load()),
	}
}
