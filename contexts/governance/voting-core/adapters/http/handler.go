package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"agora/contexts/governance/voting-core/application"
	"agora/contexts/governance/voting-core/application/commands"
	"agora/contexts/governance/voting-core/application/queries"
	"agora/contexts/governance/voting-core/domain/entities"
	domainerrors "agora/contexts/governance/voting-core/domain/errors"
	httptransport "agora/contexts/governance/voting-core/transport/http"
)

type Handler struct {
	Articles  commands.ArticleUseCase
	Votes     commands.VoteUseCase
	Lifecycle commands.LifecycleUseCase
	Queries   queries.ArticleQueryUseCase
	Logger    *slog.Logger
}

// RegisterArticleHandler godoc
// @Summary Register an article
// @Description Creates an article in the duration voting phase.
// @Tags voting-core
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Author id"
// @Param request body httptransport.RegisterArticleRequest true "Article"
// @Success 201 {object} httptransport.ArticleResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/articles [post]
func (h Handler) RegisterArticleHandler(
	ctx context.Context,
	authorID string,
	req httptransport.RegisterArticleRequest,
) (httptransport.ArticleResponse, error) {
	article, err := h.Articles.RegisterArticle(ctx, commands.RegisterArticleCommand{
		ArticleID: req.ArticleID,
		Type:      req.Type,
		Title:     req.Title,
		AuthorID:  authorID,
	})
	if err != nil {
		h.logFailure("register_article", err)
		return httptransport.ArticleResponse{}, err
	}
	return mapArticle(article), nil
}

// GetArticleHandler godoc
// @Summary Get article status
// @Description Returns the article, its phase and the current phase deadline.
// @Tags voting-core
// @Produce json
// @Param article_id path string true "Article id"
// @Success 200 {object} httptransport.ArticleResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/articles/{article_id} [get]
func (h Handler) GetArticleHandler(ctx context.Context, articleID string) (httptransport.ArticleResponse, error) {
	status, err := h.Queries.ArticleStatus(ctx, articleID)
	if err != nil {
		return httptransport.ArticleResponse{}, err
	}
	resp := mapArticle(status.Article)
	if status.HasDeadline {
		deadline := status.Deadline
		resp.Deadline = &deadline
		resp.RemainingSeconds = int64(status.Remaining / time.Second)
	}
	return resp, nil
}

// CastVoteHandler godoc
// @Summary Cast or change a vote
// @Description Stores a client-computed commitment digest. The passphrase never leaves the client.
// @Tags voting-core
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Voter id"
// @Param article_id path string true "Article id"
// @Param request body httptransport.CastVoteRequest true "Vote"
// @Success 200 {object} httptransport.CastVoteResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/articles/{article_id}/votes [post]
func (h Handler) CastVoteHandler(
	ctx context.Context,
	articleID string,
	userID string,
	req httptransport.CastVoteRequest,
) (httptransport.CastVoteResponse, error) {
	kind, ok := entities.ParseVoteKind(req.Kind)
	if !ok {
		return httptransport.CastVoteResponse{}, domainerrors.ErrInvalidVoteInput
	}
	result, err := h.Votes.CastOrChangeVote(ctx, commands.CastVoteCommand{
		ArticleID:     articleID,
		UserID:        userID,
		Kind:          kind,
		NewValue:      req.Value,
		NewDigest:     req.Digest,
		PreviousValue: req.PreviousValue,
	})
	if err != nil {
		h.logFailure("cast_vote", err)
		return httptransport.CastVoteResponse{}, err
	}
	return httptransport.CastVoteResponse{
		VoteID:    result.Record.VoteID,
		ArticleID: result.Record.ArticleID,
		Kind:      kind.Alias(),
		Outcome:   string(result.Outcome),
		VotedAt:   result.Record.VotedAt,
	}, nil
}

// MyVoteHandler godoc
// @Summary Get my stored vote record
// @Description Returns the caller's commitment digest so the client can verify it locally.
// @Tags voting-core
// @Produce json
// @Param X-User-Id header string true "Voter id"
// @Param article_id path string true "Article id"
// @Param kind query string true "Vote kind: duration or approval"
// @Success 200 {object} httptransport.VoteRecordResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/articles/{article_id}/votes/mine [get]
func (h Handler) MyVoteHandler(
	ctx context.Context,
	articleID string,
	userID string,
	rawKind string,
) (httptransport.VoteRecordResponse, error) {
	kind, ok := entities.ParseVoteKind(rawKind)
	if !ok {
		return httptransport.VoteRecordResponse{}, domainerrors.ErrInvalidVoteInput
	}
	record, found, err := h.Queries.MyVote(ctx, articleID, userID, kind)
	if err != nil {
		return httptransport.VoteRecordResponse{}, err
	}
	if !found {
		return httptransport.VoteRecordResponse{}, domainerrors.ErrVoteNotFound
	}
	return httptransport.VoteRecordResponse{
		VoteID:    record.VoteID,
		ArticleID: record.ArticleID,
		UserID:    record.UserID,
		Kind:      record.Kind.Alias(),
		Digest:    record.Digest,
		VotedAt:   record.VotedAt,
	}, nil
}

// TalliesHandler godoc
// @Summary Get vote tallies
// @Tags voting-core
// @Produce json
// @Param article_id path string true "Article id"
// @Success 200 {object} httptransport.TalliesResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/articles/{article_id}/tallies [get]
func (h Handler) TalliesHandler(ctx context.Context, articleID string) (httptransport.TalliesResponse, error) {
	durations, approvals, err := h.Queries.Tallies(ctx, articleID)
	if err != nil {
		return httptransport.TalliesResponse{}, err
	}
	counts := make([]httptransport.DurationCount, 0, entities.DurationCount)
	for _, value := range entities.Durations {
		counts = append(counts, httptransport.DurationCount{
			Value: string(value),
			Count: durations.Count(value),
		})
	}
	leading := ""
	if durations.Total() > 0 {
		leading = string(durations.LeadingDuration())
	}
	return httptransport.TalliesResponse{
		ArticleID: articleID,
		Duration: httptransport.DurationTallyResponse{
			Counts:  counts,
			Leading: leading,
			Total:   durations.Total(),
		},
		Approval: httptransport.ApprovalTallyResponse{
			Approve: approvals.Approve,
			Reject:  approvals.Reject,
			Total:   approvals.Total(),
		},
	}, nil
}

// EvaluateLifecycleHandler godoc
// @Summary Evaluate the article lifecycle
// @Description Applies the phase transition when its deadline has passed and returns the current deadline. Also backs GET /v1/articles/{article_id}/deadline.
// @Tags voting-core
// @Produce json
// @Param article_id path string true "Article id"
// @Success 200 {object} httptransport.LifecycleResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/articles/{article_id}/lifecycle/evaluate [post]
func (h Handler) EvaluateLifecycleHandler(ctx context.Context, articleID string) (httptransport.LifecycleResponse, error) {
	result, err := h.Lifecycle.EvaluateLifecycle(ctx, articleID)
	if err != nil {
		h.logFailure("evaluate_lifecycle", err)
		return httptransport.LifecycleResponse{}, err
	}
	resp := httptransport.LifecycleResponse{
		ArticleID:             result.ArticleID,
		Transitioned:          result.Transitioned,
		FromPhase:             string(result.FromPhase),
		Phase:                 string(result.Phase),
		Outcome:               string(result.Outcome),
		WinningDuration:       string(result.WinningDuration),
		OfficialArticleNumber: result.OfficialNumber,
		Designation:           result.Designation,
	}
	if result.HasDeadline {
		deadline := result.Deadline
		resp.Deadline = &deadline
	}
	return resp, nil
}

// UrgentArticlesHandler godoc
// @Summary List urgent articles
// @Description Articles whose voting closes within three days, soonest first.
// @Tags voting-core
// @Produce json
// @Success 200 {object} httptransport.UrgentArticlesResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/articles/urgent [get]
func (h Handler) UrgentArticlesHandler(ctx context.Context) (httptransport.UrgentArticlesResponse, error) {
	items, err := h.Queries.UrgentArticles(ctx)
	if err != nil {
		h.logFailure("urgent_articles", err)
		return httptransport.UrgentArticlesResponse{}, err
	}
	resp := httptransport.UrgentArticlesResponse{
		Items: make([]httptransport.UrgentArticleItem, 0, len(items)),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, httptransport.UrgentArticleItem{
			ArticleID:        item.Article.ArticleID,
			Title:            item.Article.Title,
			Type:             string(item.Article.Type),
			Phase:            string(item.Article.Phase),
			Deadline:         item.Deadline,
			RemainingSeconds: int64(item.Remaining / time.Second),
		})
	}
	return resp, nil
}

func (h Handler) logFailure(operation string, err error) {
	application.ResolveLogger(h.Logger).Warn("voting request failed",
		"event", "http_"+operation+"_failed",
		"module", "governance/voting-core",
		"layer", "transport",
		"error", err.Error(),
	)
}

func mapArticle(article entities.Article) httptransport.ArticleResponse {
	return httptransport.ArticleResponse{
		ArticleID:             article.ArticleID,
		Type:                  string(article.Type),
		Title:                 article.Title,
		AuthorID:              article.AuthorID,
		Phase:                 string(article.Phase),
		PhaseEnteredAt:        article.PhaseEnteredAt,
		VotedDebateDuration:   string(article.VotedDuration),
		OfficialArticleNumber: article.OfficialNumber,
		Designation:           article.Designation(),
	}
}
