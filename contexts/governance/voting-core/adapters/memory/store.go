package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"agora/contexts/governance/voting-core/domain/entities"
	domainerrors "agora/contexts/governance/voting-core/domain/errors"
	"agora/contexts/governance/voting-core/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

type voteKey struct {
	articleID string
	userID    string
	kind      entities.VoteKind
}

// Store is the in-process adapter used by tests and local runs. Every write
// happens under one mutex, which stands in for the row locks and single
// transactions of the postgres adapter.
type Store struct {
	mu sync.RWMutex

	articles  map[string]entities.Article
	votes     map[voteKey]entities.VoteRecord
	durations map[string]entities.DurationTally
	approvals map[string]entities.ApprovalTally
	outbox    map[string]outboxRecord
	outboxSeq []string

	clock func() time.Time
}

func NewStore(seed []entities.Article) *Store {
	articles := make(map[string]entities.Article, len(seed))
	for _, article := range seed {
		articles[strings.TrimSpace(article.ArticleID)] = article
	}
	return &Store{
		articles:  articles,
		votes:     make(map[voteKey]entities.VoteRecord),
		durations: make(map[string]entities.DurationTally),
		approvals: make(map[string]entities.ApprovalTally),
		outbox:    make(map[string]outboxRecord),
		clock:     func() time.Time { return time.Now().UTC() },
	}
}

// SetClock pins the store clock, which also drives the use cases wired by
// NewInMemoryModule.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = now
}

func (s *Store) SetArticle(article entities.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles[strings.TrimSpace(article.ArticleID)] = article
}

// SetVoteRecord seeds a stored record without touching tallies, for example a
// legacy plaintext row.
func (s *Store) SetVoteRecord(record entities.VoteRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes[voteKey{record.ArticleID, record.UserID, record.Kind}] = record
}

func (s *Store) SetDurationTally(tally entities.DurationTally) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tally.Leading = tally.LeadingDuration()
	s.durations[tally.ArticleID] = tally
}

func (s *Store) SetApprovalTally(tally entities.ApprovalTally) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.approvals[tally.ArticleID] = tally
}

func (s *Store) CreateArticle(_ context.Context, article entities.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := strings.TrimSpace(article.ArticleID)
	if _, exists := s.articles[id]; exists {
		return domainerrors.ErrArticleExists
	}
	s.articles[id] = article
	return nil
}

func (s *Store) GetArticle(_ context.Context, articleID string) (entities.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	article, ok := s.articles[strings.TrimSpace(articleID)]
	if !ok {
		return entities.Article{}, domainerrors.ErrArticleNotFound
	}
	return article, nil
}

func (s *Store) ListArticlesByPhase(
	_ context.Context,
	phases []entities.Phase,
	after ports.ArticleCursor,
	limit int,
) ([]entities.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[entities.Phase]struct{}, len(phases))
	for _, phase := range phases {
		wanted[phase] = struct{}{}
	}
	items := make([]entities.Article, 0, len(s.articles))
	for _, article := range s.articles {
		if _, ok := wanted[article.Phase]; !ok {
			continue
		}
		if !after.IsZero() && !after.Before(article) {
			continue
		}
		items = append(items, article)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].PhaseEnteredAt.Equal(items[j].PhaseEnteredAt) {
			return items[i].ArticleID < items[j].ArticleID
		}
		return items[i].PhaseEnteredAt.Before(items[j].PhaseEnteredAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) GetVoteRecord(
	_ context.Context,
	articleID string,
	userID string,
	kind entities.VoteKind,
) (entities.VoteRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.votes[voteKey{strings.TrimSpace(articleID), strings.TrimSpace(userID), kind}]
	return record, ok, nil
}

func (s *Store) ApplyFirstVote(_ context.Context, vote ports.FirstVote) (entities.VoteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := vote.Record
	if err := s.requireOpenPhaseLocked(record.ArticleID, record.Kind); err != nil {
		return entities.VoteRecord{}, err
	}
	key := voteKey{record.ArticleID, record.UserID, record.Kind}
	if _, exists := s.votes[key]; exists {
		return entities.VoteRecord{}, domainerrors.ErrVoteConflict
	}
	entry, err := s.outboxEntryLocked(vote.Event)
	if err != nil {
		return entities.VoteRecord{}, err
	}
	if err := s.adjustLocked(record.ArticleID, record.Kind, vote.Value, 1, record.VotedAt); err != nil {
		return entities.VoteRecord{}, err
	}
	if record.Kind == entities.VoteKindDuration {
		tally := s.durationTallyLocked(record.ArticleID)
		if tally.FirstVoteAt.IsZero() {
			tally.FirstVoteAt = record.VotedAt.UTC()
			s.durations[record.ArticleID] = tally
		}
	}
	s.votes[key] = record
	s.commitOutboxLocked(entry)
	return record, nil
}

func (s *Store) ApplyVoteChange(_ context.Context, change ports.VoteChange) (entities.VoteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireOpenPhaseLocked(change.ArticleID, change.Kind); err != nil {
		return entities.VoteRecord{}, err
	}
	key := voteKey{change.ArticleID, change.UserID, change.Kind}
	record, exists := s.votes[key]
	if !exists || record.Digest != change.ExpectedDigest {
		return entities.VoteRecord{}, domainerrors.ErrVoteConflict
	}
	if s.countLocked(change.ArticleID, change.Kind, change.OldValue) <= 0 {
		return entities.VoteRecord{}, domainerrors.ErrVoteConflict
	}
	if !validVoteValue(change.Kind, change.NewValue) {
		return entities.VoteRecord{}, domainerrors.ErrInvalidVoteInput
	}
	entry, err := s.outboxEntryLocked(change.Event)
	if err != nil {
		return entities.VoteRecord{}, err
	}
	if err := s.adjustLocked(change.ArticleID, change.Kind, change.OldValue, -1, change.VotedAt); err != nil {
		return entities.VoteRecord{}, err
	}
	if err := s.adjustLocked(change.ArticleID, change.Kind, change.NewValue, 1, change.VotedAt); err != nil {
		return entities.VoteRecord{}, err
	}
	record.Digest = change.NewDigest
	record.VoterHash = change.VoterHash
	record.VotedAt = change.VotedAt
	s.votes[key] = record
	s.commitOutboxLocked(entry)
	return record, nil
}

func (s *Store) GetDurationTally(_ context.Context, articleID string) (entities.DurationTally, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.durationTallyLocked(strings.TrimSpace(articleID)), nil
}

func (s *Store) GetApprovalTally(_ context.Context, articleID string) (entities.ApprovalTally, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.approvalTallyLocked(strings.TrimSpace(articleID)), nil
}

func (s *Store) FirstDurationVoteAt(_ context.Context, articleID string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.firstDurationVoteAtLocked(strings.TrimSpace(articleID))
}

func (s *Store) LoadSnapshot(_ context.Context, articleID string) (entities.LifecycleSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(strings.TrimSpace(articleID))
}

func (s *Store) TransitionArticle(
	_ context.Context,
	articleID string,
	decide ports.TransitionDecider,
) (entities.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.snapshotLocked(strings.TrimSpace(articleID))
	if err != nil {
		return entities.Decision{}, err
	}
	decision, event, err := decide(snapshot)
	if err != nil {
		return entities.Decision{}, err
	}
	if !decision.Ready || decision.From != snapshot.Article.Phase || !decision.From.Precedes(decision.To) {
		return entities.Decision{From: snapshot.Article.Phase}, nil
	}
	if decision.OfficialNumber > 0 && s.officialNumberTakenLocked(decision.OfficialNumber) {
		return entities.Decision{}, domainerrors.ErrNumberingConflict
	}
	entry, err := s.outboxEntryLocked(event)
	if err != nil {
		return entities.Decision{}, err
	}
	s.articles[snapshot.Article.ArticleID] = decision.Apply(snapshot.Article)
	if decision.From == entities.PhaseDurationVotingOpen {
		tally := s.durationTallyLocked(snapshot.Article.ArticleID)
		tally.Leading = decision.WinningDuration
		s.durations[snapshot.Article.ArticleID] = tally
	}
	s.commitOutboxLocked(entry)
	return decision, nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, limit)
	for _, id := range s.outboxSeq {
		row := s.outbox[id]
		if row.published {
			continue
		}
		items = append(items, row.message)
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

// PendingOutboxCount is a test helper.
func (s *Store) PendingOutboxCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, row := range s.outbox {
		if !row.published {
			count++
		}
	}
	return count
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clock().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) requireOpenPhaseLocked(articleID string, kind entities.VoteKind) error {
	article, ok := s.articles[articleID]
	if !ok {
		return domainerrors.ErrArticleNotFound
	}
	if article.Phase != kind.OpenPhase() {
		return domainerrors.ErrPhaseClosed
	}
	return nil
}

func (s *Store) countLocked(articleID string, kind entities.VoteKind, value string) int {
	switch kind {
	case entities.VoteKindDuration:
		return s.durationTallyLocked(articleID).Count(entities.DurationValue(value))
	case entities.VoteKindApproval:
		return s.approvalTallyLocked(articleID).Count(entities.ApprovalValue(value))
	default:
		return 0
	}
}

func (s *Store) adjustLocked(articleID string, kind entities.VoteKind, value string, delta int, at time.Time) error {
	switch kind {
	case entities.VoteKindDuration:
		idx := entities.DurationValue(value).Index()
		if idx < 0 {
			return domainerrors.ErrInvalidVoteInput
		}
		tally := s.durationTallyLocked(articleID)
		tally.Counts[idx] += delta
		tally.Leading = tally.LeadingDuration()
		tally.UpdatedAt = at.UTC()
		s.durations[articleID] = tally
	case entities.VoteKindApproval:
		tally := s.approvalTallyLocked(articleID)
		switch entities.ApprovalValue(value) {
		case entities.ApprovalApprove:
			tally.Approve += delta
		case entities.ApprovalReject:
			tally.Reject += delta
		default:
			return domainerrors.ErrInvalidVoteInput
		}
		tally.UpdatedAt = at.UTC()
		s.approvals[articleID] = tally
	default:
		return domainerrors.ErrInvalidVoteInput
	}
	return nil
}

func (s *Store) durationTallyLocked(articleID string) entities.DurationTally {
	tally, ok := s.durations[articleID]
	if !ok {
		return entities.DurationTally{ArticleID: articleID}
	}
	return tally
}

func (s *Store) approvalTallyLocked(articleID string) entities.ApprovalTally {
	tally, ok := s.approvals[articleID]
	if !ok {
		return entities.ApprovalTally{ArticleID: articleID}
	}
	return tally
}

// firstDurationVoteAtLocked reads the tally's fixed first vote time. Records
// seeded without a tally fall back to the earliest stored vote.
func (s *Store) firstDurationVoteAtLocked(articleID string) (time.Time, bool, error) {
	if first := s.durationTallyLocked(articleID).FirstVoteAt; !first.IsZero() {
		return first, true, nil
	}
	var first time.Time
	for key, record := range s.votes {
		if key.articleID != articleID || key.kind != entities.VoteKindDuration {
			continue
		}
		if first.IsZero() || record.VotedAt.Before(first) {
			first = record.VotedAt
		}
	}
	return first, !first.IsZero(), nil
}

func (s *Store) snapshotLocked(articleID string) (entities.LifecycleSnapshot, error) {
	article, ok := s.articles[articleID]
	if !ok {
		return entities.LifecycleSnapshot{}, domainerrors.ErrArticleNotFound
	}
	firstVoteAt, _, _ := s.firstDurationVoteAtLocked(articleID)
	return entities.LifecycleSnapshot{
		Article:             article,
		FirstDurationVoteAt: firstVoteAt,
		Durations:           s.durationTallyLocked(articleID),
		Approvals:           s.approvalTallyLocked(articleID),
		MaxOfficialNumber:   s.maxOfficialNumberLocked(),
	}, nil
}

func (s *Store) maxOfficialNumberLocked() int {
	highest := 0
	for _, article := range s.articles {
		if article.Type == entities.ArticleTypeConstitutional &&
			article.Phase == entities.PhaseApproved &&
			article.OfficialNumber > highest {
			highest = article.OfficialNumber
		}
	}
	return highest
}

func (s *Store) officialNumberTakenLocked(number int) bool {
	for _, article := range s.articles {
		if article.Type == entities.ArticleTypeConstitutional && article.OfficialNumber == number {
			return true
		}
	}
	return false
}

// outboxEntryLocked prepares the outbox row without storing it, so callers can
// fail before any state has changed. A nil entry means nothing to append.
func (s *Store) outboxEntryLocked(envelope ports.EventEnvelope) (*ports.OutboxMessage, error) {
	if strings.TrimSpace(envelope.EventType) == "" {
		return nil, nil
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return nil, err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if _, exists := s.outbox[outboxID]; exists {
		return nil, nil
	}
	return &ports.OutboxMessage{
		OutboxID:     outboxID,
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      payload,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}, nil
}

func (s *Store) commitOutboxLocked(entry *ports.OutboxMessage) {
	if entry == nil {
		return
	}
	s.outbox[entry.OutboxID] = outboxRecord{message: *entry}
	s.outboxSeq = append(s.outboxSeq, entry.OutboxID)
}

func validVoteValue(kind entities.VoteKind, value string) bool {
	switch kind {
	case entities.VoteKindDuration:
		return entities.DurationValue(value).Valid()
	case entities.VoteKindApproval:
		return entities.ApprovalValue(value).Valid()
	default:
		return false
	}
}

var _ ports.ArticleRepository = (*Store)(nil)
var _ ports.VoteLedger = (*Store)(nil)
var _ ports.LifecycleRepository = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
