package ports

import (
	"context"
	"time"

	contractsv1 "agora/contracts/gen/events/v1"
	"agora/contexts/governance/voting-core/domain/entities"
)

type EventEnvelope = contractsv1.Envelope

type ArticleRepository interface {
	CreateArticle(ctx context.Context, article entities.Article) error
	GetArticle(ctx context.Context, articleID string) (entities.Article, error)
	// ListArticlesByPhase pages through articles ordered by (PhaseEnteredAt,
	// ArticleID), returning up to limit rows strictly after the cursor.
	ListArticlesByPhase(ctx context.Context, phases []entities.Phase, after ArticleCursor, limit int) ([]entities.Article, error)
}

// ArticleCursor is a keyset position. The zero value starts from the beginning.
type ArticleCursor struct {
	PhaseEnteredAt time.Time
	ArticleID      string
}

func (c ArticleCursor) IsZero() bool {
	return c.ArticleID == "" && c.PhaseEnteredAt.IsZero()
}

// CursorAfter positions a cursor on the given article.
func CursorAfter(article entities.Article) ArticleCursor {
	return ArticleCursor{PhaseEnteredAt: article.PhaseEnteredAt.UTC(), ArticleID: article.ArticleID}
}

// Before reports whether the cursor sorts before the article.
func (c ArticleCursor) Before(article entities.Article) bool {
	entered := article.PhaseEnteredAt.UTC()
	if !c.PhaseEnteredAt.Equal(entered) {
		return c.PhaseEnteredAt.Before(entered)
	}
	return c.ArticleID < article.ArticleID
}

// FirstVote is a brand new vote record together with the counter it adds to.
type FirstVote struct {
	Record entities.VoteRecord
	Value  string
	Event  EventEnvelope
}

// VoteRecordReader is implemented by storage on the server and by the API
// client on the voter's machine, where verification actually happens.
type VoteRecordReader interface {
	GetVoteRecord(ctx context.Context, articleID string, userID string, kind entities.VoteKind) (entities.VoteRecord, bool, error)
}

// VoteChange swaps one counter for another on an existing record. The write
// only happens while the stored digest still equals ExpectedDigest.
type VoteChange struct {
	ArticleID      string
	UserID         string
	Kind           entities.VoteKind
	OldValue       string
	NewValue       string
	ExpectedDigest string
	NewDigest      string
	VoterHash      string
	VotedAt        time.Time
	Event          EventEnvelope
}

// VoteLedger owns vote records and tallies. Each method must persist the
// record, the counters, the advisory duration leader and the outbox event in
// one transaction, and must re-check under lock that the article still sits
// in the kind's open phase (ErrPhaseClosed otherwise).
type VoteLedger interface {
	VoteRecordReader
	ApplyFirstVote(ctx context.Context, vote FirstVote) (entities.VoteRecord, error)
	ApplyVoteChange(ctx context.Context, change VoteChange) (entities.VoteRecord, error)
	GetDurationTally(ctx context.Context, articleID string) (entities.DurationTally, error)
	GetApprovalTally(ctx context.Context, articleID string) (entities.ApprovalTally, error)
	// FirstDurationVoteAt is the time the first duration vote was cast. It is
	// fixed when the duration tally is created and never moves afterwards.
	FirstDurationVoteAt(ctx context.Context, articleID string) (time.Time, bool, error)
}

// TransitionDecider is re-run by the repository on a snapshot read under the
// article row lock. Returning a decision that is not Ready leaves the row
// untouched.
type TransitionDecider func(snapshot entities.LifecycleSnapshot) (entities.Decision, EventEnvelope, error)

type LifecycleRepository interface {
	LoadSnapshot(ctx context.Context, articleID string) (entities.LifecycleSnapshot, error)
	// TransitionArticle locks the article, rebuilds its snapshot, runs decide
	// and writes the result conditionally on the phase it read. It returns the
	// applied decision, or a not-ready decision when nothing was written.
	TransitionArticle(ctx context.Context, articleID string, decide TransitionDecider) (entities.Decision, error)
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type VoterHasher interface {
	Hash(voterID string, articleID string, kind entities.VoteKind) string
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
