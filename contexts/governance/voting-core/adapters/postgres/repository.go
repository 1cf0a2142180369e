package postgresadapter

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"agora/contexts/governance/voting-core/domain/entities"
	domainerrors "agora/contexts/governance/voting-core/domain/errors"
	"agora/contexts/governance/voting-core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// durationColumns follows entities.Durations order.
var durationColumns = [entities.DurationCount]string{
	"votecount_one_month",
	"votecount_two_months",
	"votecount_three_months",
	"votecount_four_months",
	"votecount_five_months",
	"votecount_six_months",
}

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates or updates the voting tables.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(
		&articleModel{},
		&voteRecordModel{},
		&durationTallyModel{},
		&approvalTallyModel{},
		&outboxModel{},
	); err != nil {
		return r.logError("voting_repo_migrate_failed", err)
	}
	// Tallies created before first_vote_at existed take the earliest stored
	// vote time.
	if err := r.db.WithContext(ctx).Exec(`
		UPDATE debate_duration_voting_opened_result AS t
		SET first_vote_at = (
			SELECT MIN(h.votedate) FROM voting_history AS h
			WHERE h.article_id = t.article_id AND h.typevote = ?
		)
		WHERE t.first_vote_at IS NULL`, string(entities.VoteKindDuration)).Error; err != nil {
		return r.logError("voting_repo_migrate_failed", err)
	}
	return nil
}

func (r *Repository) CreateArticle(ctx context.Context, article entities.Article) error {
	row := articleModelFromEntity(article)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrArticleExists
		}
		return r.logError("voting_repo_create_article_failed", err, "article_id", row.ID)
	}
	return nil
}

func (r *Repository) GetArticle(ctx context.Context, articleID string) (entities.Article, error) {
	var row articleModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(articleID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Article{}, domainerrors.ErrArticleNotFound
		}
		return entities.Article{}, r.logError("voting_repo_get_article_failed", err, "article_id", strings.TrimSpace(articleID))
	}
	return row.toEntity(), nil
}

func (r *Repository) ListArticlesByPhase(
	ctx context.Context,
	phases []entities.Phase,
	after ports.ArticleCursor,
	limit int,
) ([]entities.Article, error) {
	if len(phases) == 0 {
		return nil, nil
	}
	statuses := make([]string, 0, len(phases))
	for _, phase := range phases {
		statuses = append(statuses, string(phase))
	}
	tx := r.db.WithContext(ctx).
		Where("status IN ?", statuses)
	if !after.IsZero() {
		tx = tx.Where("(status_changed_at, id) > (?, ?)", after.PhaseEnteredAt.UTC(), after.ArticleID)
	}
	tx = tx.Order("status_changed_at ASC").
		Order("id ASC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	var rows []articleModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, r.logError("voting_repo_list_articles_failed", err, "limit", limit)
	}
	items := make([]entities.Article, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetVoteRecord(
	ctx context.Context,
	articleID string,
	userID string,
	kind entities.VoteKind,
) (entities.VoteRecord, bool, error) {
	var row voteRecordModel
	err := r.db.WithContext(ctx).
		Where("article_id = ?", strings.TrimSpace(articleID)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Where("typevote = ?", string(kind)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VoteRecord{}, false, nil
		}
		return entities.VoteRecord{}, false, r.logError("voting_repo_get_vote_record_failed", err,
			"article_id", strings.TrimSpace(articleID),
			"user_id", strings.TrimSpace(userID),
			"vote_kind", string(kind),
		)
	}
	return row.toEntity(), true, nil
}

// ApplyFirstVote inserts the record before touching counters so that a
// duplicate insert aborts the transaction with no increment applied.
func (r *Repository) ApplyFirstVote(ctx context.Context, vote ports.FirstVote) (entities.VoteRecord, error) {
	record := vote.Record
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockArticleForVote(tx, record.ArticleID, record.Kind); err != nil {
			return err
		}

		row := voteRecordModelFromEntity(record)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrVoteConflict
			}
			return err
		}

		if err := ensureTallyRow(tx, record.ArticleID, record.Kind, record.VotedAt); err != nil {
			return err
		}
		column, err := counterColumn(record.Kind, vote.Value)
		if err != nil {
			return err
		}
		update := tx.Model(tallyModelFor(record.Kind)).
			Where("article_id = ?", record.ArticleID).
			Updates(map[string]any{
				column:       gorm.Expr(column + " + 1"),
				"updated_at": record.VotedAt.UTC(),
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return domainerrors.ErrVoteConflict
		}
		if record.Kind == entities.VoteKindDuration {
			if err := refreshLeadingDuration(tx, record.ArticleID); err != nil {
				return err
			}
		}
		return appendOutboxTx(tx, vote.Event)
	})
	if err != nil {
		return entities.VoteRecord{}, r.mapVoteError("voting_repo_apply_first_vote_failed", err,
			"article_id", record.ArticleID,
			"user_id", record.UserID,
			"vote_kind", string(record.Kind),
		)
	}
	return record, nil
}

// ApplyVoteChange moves the voter between counters with one UPDATE so no
// reader can observe the voter counted twice or not at all.
func (r *Repository) ApplyVoteChange(ctx context.Context, change ports.VoteChange) (entities.VoteRecord, error) {
	var updated voteRecordModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockArticleForVote(tx, change.ArticleID, change.Kind); err != nil {
			return err
		}

		result := tx.Model(&voteRecordModel{}).
			Where("article_id = ?", change.ArticleID).
			Where("user_id = ?", change.UserID).
			Where("typevote = ?", string(change.Kind)).
			Where("votevalue = ?", change.ExpectedDigest).
			Updates(map[string]any{
				"votevalue": change.NewDigest,
				"voter_id":  change.VoterHash,
				"votedate":  change.VotedAt.UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrVoteConflict
		}

		oldColumn, err := counterColumn(change.Kind, change.OldValue)
		if err != nil {
			return err
		}
		newColumn, err := counterColumn(change.Kind, change.NewValue)
		if err != nil {
			return err
		}
		swap := tx.Model(tallyModelFor(change.Kind)).
			Where("article_id = ?", change.ArticleID).
			Where(oldColumn+" > 0").
			Updates(map[string]any{
				oldColumn:    gorm.Expr(oldColumn + " - 1"),
				newColumn:    gorm.Expr(newColumn + " + 1"),
				"updated_at": change.VotedAt.UTC(),
			})
		if swap.Error != nil {
			return swap.Error
		}
		if swap.RowsAffected == 0 {
			return domainerrors.ErrVoteConflict
		}
		if change.Kind == entities.VoteKindDuration {
			if err := refreshLeadingDuration(tx, change.ArticleID); err != nil {
				return err
			}
		}
		if err := tx.
			Where("article_id = ?", change.ArticleID).
			Where("user_id = ?", change.UserID).
			Where("typevote = ?", string(change.Kind)).
			First(&updated).Error; err != nil {
			return err
		}
		return appendOutboxTx(tx, change.Event)
	})
	if err != nil {
		return entities.VoteRecord{}, r.mapVoteError("voting_repo_apply_vote_change_failed", err,
			"article_id", change.ArticleID,
			"user_id", change.UserID,
			"vote_kind", string(change.Kind),
		)
	}
	return updated.toEntity(), nil
}

func (r *Repository) GetDurationTally(ctx context.Context, articleID string) (entities.DurationTally, error) {
	tally, err := loadDurationTally(r.db.WithContext(ctx), strings.TrimSpace(articleID))
	if err != nil {
		return entities.DurationTally{}, r.logError("voting_repo_get_duration_tally_failed", err,
			"article_id", strings.TrimSpace(articleID),
		)
	}
	return tally, nil
}

func (r *Repository) GetApprovalTally(ctx context.Context, articleID string) (entities.ApprovalTally, error) {
	tally, err := loadApprovalTally(r.db.WithContext(ctx), strings.TrimSpace(articleID))
	if err != nil {
		return entities.ApprovalTally{}, r.logError("voting_repo_get_approval_tally_failed", err,
			"article_id", strings.TrimSpace(articleID),
		)
	}
	return tally, nil
}

func (r *Repository) FirstDurationVoteAt(ctx context.Context, articleID string) (time.Time, bool, error) {
	first, err := firstDurationVoteAt(r.db.WithContext(ctx), strings.TrimSpace(articleID))
	if err != nil {
		return time.Time{}, false, r.logError("voting_repo_first_duration_vote_failed", err,
			"article_id", strings.TrimSpace(articleID),
		)
	}
	return first, !first.IsZero(), nil
}

func (r *Repository) LoadSnapshot(ctx context.Context, articleID string) (entities.LifecycleSnapshot, error) {
	var row articleModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(articleID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.LifecycleSnapshot{}, domainerrors.ErrArticleNotFound
		}
		return entities.LifecycleSnapshot{}, r.logError("voting_repo_load_snapshot_failed", err,
			"article_id", strings.TrimSpace(articleID),
		)
	}
	snapshot, err := buildSnapshot(r.db.WithContext(ctx), row)
	if err != nil {
		return entities.LifecycleSnapshot{}, r.logError("voting_repo_load_snapshot_failed", err,
			"article_id", strings.TrimSpace(articleID),
		)
	}
	return snapshot, nil
}

// TransitionArticle serialises transitions on the article row. Votes hold a
// share lock on the same row, so a transition waits for in-flight votes and
// later votes see the new phase.
func (r *Repository) TransitionArticle(
	ctx context.Context,
	articleID string,
	decide ports.TransitionDecider,
) (entities.Decision, error) {
	articleID = strings.TrimSpace(articleID)
	var applied entities.Decision
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row articleModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", articleID).
			First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrArticleNotFound
			}
			return err
		}
		snapshot, err := buildSnapshot(tx, row)
		if err != nil {
			return err
		}
		decision, event, err := decide(snapshot)
		if err != nil {
			return err
		}
		applied = entities.Decision{From: snapshot.Article.Phase}
		if !decision.Ready || decision.From != snapshot.Article.Phase || !decision.From.Precedes(decision.To) {
			return nil
		}

		updates := map[string]any{
			"status":            string(decision.To),
			"status_changed_at": decision.EnteredAt.UTC(),
			"updated_at":        decision.EnteredAt.UTC(),
		}
		if decision.WinningDuration.Valid() {
			updates["voted_debate_duration"] = string(decision.WinningDuration)
		}
		if decision.OfficialNumber > 0 {
			updates["official_article_number"] = decision.OfficialNumber
		}
		result := tx.Model(&articleModel{}).
			Where("id = ?", articleID).
			Where("status = ?", string(decision.From)).
			Updates(updates)
		if result.Error != nil {
			if isUniqueViolation(result.Error) {
				return domainerrors.ErrNumberingConflict
			}
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		if decision.From == entities.PhaseDurationVotingOpen {
			if err := tx.Model(&durationTallyModel{}).
				Where("article_id = ?", articleID).
				Update("leading_duration", string(decision.WinningDuration)).Error; err != nil {
				return err
			}
		}
		if err := appendOutboxTx(tx, event); err != nil {
			return err
		}
		applied = decision
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrArticleNotFound) || errors.Is(err, domainerrors.ErrNumberingConflict) {
			return entities.Decision{}, err
		}
		return entities.Decision{}, r.logError("voting_repo_transition_article_failed", err, "article_id", articleID)
	}
	return applied, nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("voting_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("voting_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

// mapVoteError passes business rejections through and wraps everything else
// as a storage failure.
func (r *Repository) mapVoteError(event string, err error, attrs ...any) error {
	switch {
	case errors.Is(err, domainerrors.ErrPhaseClosed),
		errors.Is(err, domainerrors.ErrVoteConflict),
		errors.Is(err, domainerrors.ErrArticleNotFound),
		errors.Is(err, domainerrors.ErrInvalidVoteInput):
		return err
	default:
		return r.logError(event, err, attrs...)
	}
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "governance/voting-core",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("voting repository operation failed", fields...)
	return fmt.Errorf("%w: %w", domainerrors.ErrStorageFailure, err)
}

// lockArticleForVote takes a share lock so concurrent voters do not block
// each other but a transition cannot slip in between the phase check and the
// counter update.
func lockArticleForVote(tx *gorm.DB, articleID string, kind entities.VoteKind) error {
	var row articleModel
	if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
		Select("id", "status").
		Where("id = ?", articleID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrArticleNotFound
		}
		return err
	}
	if entities.Phase(row.Status) != kind.OpenPhase() {
		return domainerrors.ErrPhaseClosed
	}
	return nil
}

// ensureTallyRow creates the tally on the first vote of its kind. A duration
// tally records that vote's time as the start of the voting window.
func ensureTallyRow(tx *gorm.DB, articleID string, kind entities.VoteKind, at time.Time) error {
	var row any
	switch kind {
	case entities.VoteKindDuration:
		first := at.UTC()
		row = &durationTallyModel{
			ArticleID:       articleID,
			LeadingDuration: string(entities.DurationOneMonth),
			FirstVoteAt:     &first,
			UpdatedAt:       first,
		}
	case entities.VoteKindApproval:
		row = &approvalTallyModel{ArticleID: articleID, UpdatedAt: at.UTC()}
	default:
		return domainerrors.ErrInvalidVoteInput
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "article_id"}},
		DoNothing: true,
	}).Create(row).Error
}

func refreshLeadingDuration(tx *gorm.DB, articleID string) error {
	tally, err := loadDurationTally(tx, articleID)
	if err != nil {
		return err
	}
	return tx.Model(&durationTallyModel{}).
		Where("article_id = ?", articleID).
		Update("leading_duration", string(tally.LeadingDuration())).Error
}

func counterColumn(kind entities.VoteKind, value string) (string, error) {
	switch kind {
	case entities.VoteKindDuration:
		idx := entities.DurationValue(value).Index()
		if idx < 0 {
			return "", domainerrors.ErrInvalidVoteInput
		}
		return durationColumns[idx], nil
	case entities.VoteKindApproval:
		switch entities.ApprovalValue(value) {
		case entities.ApprovalApprove:
			return "nb_approve", nil
		case entities.ApprovalReject:
			return "nb_reject", nil
		}
	}
	return "", domainerrors.ErrInvalidVoteInput
}

func tallyModelFor(kind entities.VoteKind) any {
	if kind == entities.VoteKindDuration {
		return &durationTallyModel{}
	}
	return &approvalTallyModel{}
}

func loadDurationTally(db *gorm.DB, articleID string) (entities.DurationTally, error) {
	var row durationTallyModel
	err := db.Where("article_id = ?", articleID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.DurationTally{ArticleID: articleID}, nil
		}
		return entities.DurationTally{}, err
	}
	return row.toEntity(), nil
}

func loadApprovalTally(db *gorm.DB, articleID string) (entities.ApprovalTally, error) {
	var row approvalTallyModel
	err := db.Where("article_id = ?", articleID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ApprovalTally{ArticleID: articleID}, nil
		}
		return entities.ApprovalTally{}, err
	}
	return row.toEntity(), nil
}

func firstDurationVoteAt(db *gorm.DB, articleID string) (time.Time, error) {
	var first sql.NullTime
	if err := db.Model(&durationTallyModel{}).
		Select("first_vote_at").
		Where("article_id = ?", articleID).
		Scan(&first).Error; err != nil {
		return time.Time{}, err
	}
	if !first.Valid {
		return time.Time{}, nil
	}
	return first.Time.UTC(), nil
}

func maxOfficialNumber(db *gorm.DB) (int, error) {
	var highest sql.NullInt64
	if err := db.Model(&articleModel{}).
		Select("MAX(official_article_number)").
		Where("type = ?", string(entities.ArticleTypeConstitutional)).
		Where("status = ?", string(entities.PhaseApproved)).
		Scan(&highest).Error; err != nil {
		return 0, err
	}
	if !highest.Valid {
		return 0, nil
	}
	return int(highest.Int64), nil
}

func buildSnapshot(db *gorm.DB, row articleModel) (entities.LifecycleSnapshot, error) {
	snapshot := entities.LifecycleSnapshot{Article: row.toEntity()}
	var err error
	if snapshot.FirstDurationVoteAt, err = firstDurationVoteAt(db, row.ID); err != nil {
		return entities.LifecycleSnapshot{}, err
	}
	if snapshot.Durations, err = loadDurationTally(db, row.ID); err != nil {
		return entities.LifecycleSnapshot{}, err
	}
	if snapshot.Approvals, err = loadApprovalTally(db, row.ID); err != nil {
		return entities.LifecycleSnapshot{}, err
	}
	if snapshot.Article.Phase == entities.PhaseFinalVotingOpen &&
		snapshot.Article.Type == entities.ArticleTypeConstitutional {
		if snapshot.MaxOfficialNumber, err = maxOfficialNumber(db); err != nil {
			return entities.LifecycleSnapshot{}, err
		}
	}
	return snapshot, nil
}

func appendOutboxTx(tx *gorm.DB, envelope ports.EventEnvelope) error {
	if strings.TrimSpace(envelope.EventType) == "" {
		return nil
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return create.Error
	}
	if create.RowsAffected > 0 {
		return nil
	}

	var existing outboxModel
	if err := tx.Select("payload").
		Where("outbox_id = ?", row.OutboxID).
		First(&existing).Error; err != nil {
		return err
	}
	if !bytes.Equal(existing.Payload, row.Payload) {
		return domainerrors.ErrConflict
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.ArticleRepository = (*Repository)(nil)
var _ ports.VoteLedger = (*Repository)(nil)
var _ ports.LifecycleRepository = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
