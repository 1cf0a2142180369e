package postgresadapter

import (
	"strings"
	"time"

	"agora/contexts/governance/voting-core/domain/entities"
)

type articleModel struct {
	ID                    string    `gorm:"column:id;primaryKey"`
	Type                  string    `gorm:"column:type;not null;index:idx_articles_type_status,priority:1"`
	Title                 string    `gorm:"column:title;not null"`
	AuthorID              string    `gorm:"column:author_id;not null"`
	Status                string    `gorm:"column:status;not null;index:idx_articles_type_status,priority:2;index:idx_articles_status_changed,priority:1"`
	StatusChangedAt       time.Time `gorm:"column:status_changed_at;not null;index:idx_articles_status_changed,priority:2"`
	VotedDebateDuration   *string   `gorm:"column:voted_debate_duration"`
	OfficialArticleNumber *int      `gorm:"column:official_article_number;uniqueIndex:idx_articles_official_number"`
	CreatedAt             time.Time `gorm:"column:created_at;not null"`
	UpdatedAt             time.Time `gorm:"column:updated_at;not null"`
}

func (articleModel) TableName() string {
	return "articles"
}

func articleModelFromEntity(article entities.Article) articleModel {
	row := articleModel{
		ID:              strings.TrimSpace(article.ArticleID),
		Type:            string(article.Type),
		Title:           strings.TrimSpace(article.Title),
		AuthorID:        strings.TrimSpace(article.AuthorID),
		Status:          string(article.Phase),
		StatusChangedAt: article.PhaseEnteredAt.UTC(),
		CreatedAt:       article.CreatedAt.UTC(),
		UpdatedAt:       article.UpdatedAt.UTC(),
	}
	if article.VotedDuration.Valid() {
		duration := string(article.VotedDuration)
		row.VotedDebateDuration = &duration
	}
	if article.OfficialNumber > 0 {
		number := article.OfficialNumber
		row.OfficialArticleNumber = &number
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	if row.StatusChangedAt.IsZero() {
		row.StatusChangedAt = row.CreatedAt
	}
	return row
}

func (m articleModel) toEntity() entities.Article {
	article := entities.Article{
		ArticleID:      m.ID,
		Type:           entities.ArticleType(m.Type),
		Title:          m.Title,
		AuthorID:       m.AuthorID,
		Phase:          entities.Phase(m.Status),
		PhaseEnteredAt: m.StatusChangedAt.UTC(),
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
	if m.VotedDebateDuration != nil {
		article.VotedDuration = entities.DurationValue(*m.VotedDebateDuration)
	}
	if m.OfficialArticleNumber != nil {
		article.OfficialNumber = *m.OfficialArticleNumber
	}
	return article
}

// voteRecordModel keeps the historical column names: votevalue holds the
// commitment digest and voter_id the voter identity hash.
type voteRecordModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	ArticleID string    `gorm:"column:article_id;not null;uniqueIndex:idx_voting_history_identity,priority:1;index:idx_voting_history_first_vote,priority:1"`
	UserID    string    `gorm:"column:user_id;not null;uniqueIndex:idx_voting_history_identity,priority:2"`
	TypeVote  string    `gorm:"column:typevote;not null;uniqueIndex:idx_voting_history_identity,priority:3;index:idx_voting_history_first_vote,priority:2"`
	VoteValue string    `gorm:"column:votevalue;not null"`
	VoterID   string    `gorm:"column:voter_id;not null"`
	VoteDate  time.Time `gorm:"column:votedate;not null;index:idx_voting_history_first_vote,priority:3"`
}

func (voteRecordModel) TableName() string {
	return "voting_history"
}

func voteRecordModelFromEntity(record entities.VoteRecord) voteRecordModel {
	row := voteRecordModel{
		ID:        strings.TrimSpace(record.VoteID),
		ArticleID: strings.TrimSpace(record.ArticleID),
		UserID:    strings.TrimSpace(record.UserID),
		TypeVote:  string(record.Kind),
		VoteValue: strings.TrimSpace(record.Digest),
		VoterID:   strings.TrimSpace(record.VoterHash),
		VoteDate:  record.VotedAt.UTC(),
	}
	if row.VoteDate.IsZero() {
		row.VoteDate = time.Now().UTC()
	}
	return row
}

func (m voteRecordModel) toEntity() entities.VoteRecord {
	return entities.VoteRecord{
		VoteID:    m.ID,
		ArticleID: m.ArticleID,
		UserID:    m.UserID,
		Kind:      entities.VoteKind(m.TypeVote),
		Digest:    m.VoteValue,
		VoterHash: m.VoterID,
		VotedAt:   m.VoteDate.UTC(),
	}
}

type durationTallyModel struct {
	ArticleID       string     `gorm:"column:article_id;primaryKey"`
	OneMonth        int        `gorm:"column:votecount_one_month;not null;default:0;check:chk_votecount_one_month,votecount_one_month >= 0"`
	TwoMonths       int        `gorm:"column:votecount_two_months;not null;default:0;check:chk_votecount_two_months,votecount_two_months >= 0"`
	ThreeMonths     int        `gorm:"column:votecount_three_months;not null;default:0;check:chk_votecount_three_months,votecount_three_months >= 0"`
	FourMonths      int        `gorm:"column:votecount_four_months;not null;default:0;check:chk_votecount_four_months,votecount_four_months >= 0"`
	FiveMonths      int        `gorm:"column:votecount_five_months;not null;default:0;check:chk_votecount_five_months,votecount_five_months >= 0"`
	SixMonths       int        `gorm:"column:votecount_six_months;not null;default:0;check:chk_votecount_six_months,votecount_six_months >= 0"`
	LeadingDuration string     `gorm:"column:leading_duration;not null"`
	FirstVoteAt     *time.Time `gorm:"column:first_vote_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;not null"`
}

func (durationTallyModel) TableName() string {
	return "debate_duration_voting_opened_result"
}

func (m durationTallyModel) toEntity() entities.DurationTally {
	tally := entities.DurationTally{
		ArticleID: m.ArticleID,
		Counts: [entities.DurationCount]int{
			m.OneMonth,
			m.TwoMonths,
			m.ThreeMonths,
			m.FourMonths,
			m.FiveMonths,
			m.SixMonths,
		},
		Leading:   entities.DurationValue(m.LeadingDuration),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
	if m.FirstVoteAt != nil {
		tally.FirstVoteAt = m.FirstVoteAt.UTC()
	}
	return tally
}

type approvalTallyModel struct {
	ArticleID string    `gorm:"column:article_id;primaryKey"`
	Approve   int       `gorm:"column:nb_approve;not null;default:0;check:chk_nb_approve,nb_approve >= 0"`
	Reject    int       `gorm:"column:nb_reject;not null;default:0;check:chk_nb_reject,nb_reject >= 0"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (approvalTallyModel) TableName() string {
	return "voting_opened_result"
}

func (m approvalTallyModel) toEntity() entities.ApprovalTally {
	return entities.ApprovalTally{
		ArticleID: m.ArticleID,
		Approve:   m.Approve,
		Reject:    m.Reject,
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type;not null"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload;not null"`
	Status       string     `gorm:"column:status;not null;index:idx_voting_outbox_pending,priority:1"`
	CreatedAt    time.Time  `gorm:"column:created_at;not null;index:idx_voting_outbox_pending,priority:2"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "voting_outbox"
}
