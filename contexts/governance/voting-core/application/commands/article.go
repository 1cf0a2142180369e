package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "agora/contexts/governance/voting-core/application"
	"agora/contexts/governance/voting-core/domain/entities"
	domainerrors "agora/contexts/governance/voting-core/domain/errors"
	"agora/contexts/governance/voting-core/ports"
)

type RegisterArticleCommand struct {
	ArticleID string
	Type      string
	Title     string
	AuthorID  string
}

// ArticleUseCase registers articles into the voting lifecycle. Drafting and
// editing live outside this module; it only needs the identity, category and
// author.
type ArticleUseCase struct {
	Articles ports.ArticleRepository
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func (uc ArticleUseCase) RegisterArticle(ctx context.Context, cmd RegisterArticleCommand) (entities.Article, error) {
	logger := application.ResolveLogger(uc.Logger)
	articleType, ok := entities.ParseArticleType(cmd.Type)
	if !ok || strings.TrimSpace(cmd.AuthorID) == "" || strings.TrimSpace(cmd.Title) == "" {
		logger.Warn("article registration validation failed",
			"event", "voting_article_register_validation_failed",
			"module", "governance/voting-core",
			"layer", "application",
			"author_id", strings.TrimSpace(cmd.AuthorID),
			"article_type", strings.TrimSpace(cmd.Type),
		)
		return entities.Article{}, domainerrors.ErrInvalidArticleInput
	}

	articleID := strings.TrimSpace(cmd.ArticleID)
	if articleID == "" {
		generated, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.Article{}, err
		}
		articleID = generated
	}

	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	article := entities.Article{
		ArticleID:      articleID,
		Type:           articleType,
		Title:          strings.TrimSpace(cmd.Title),
		AuthorID:       strings.TrimSpace(cmd.AuthorID),
		Phase:          entities.PhaseDurationVotingOpen,
		PhaseEnteredAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.Articles.CreateArticle(ctx, article); err != nil {
		return entities.Article{}, err
	}
	logger.Info("article registered",
		"event", "voting_article_registered",
		"module", "governance/voting-core",
		"layer", "application",
		"article_id", article.ArticleID,
		"article_type", string(article.Type),
	)
	return article, nil
}
