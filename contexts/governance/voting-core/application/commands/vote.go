package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "agora/contexts/governance/voting-core/application"
	"agora/contexts/governance/voting-core/domain/commitment"
	"agora/contexts/governance/voting-core/domain/entities"
	domainerrors "agora/contexts/governance/voting-core/domain/errors"
	"agora/contexts/governance/voting-core/ports"
)

// CastVoteCommand carries a vote already committed on the client. The server
// never sees the passphrase; NewValue is only used to pick the counter.
// PreviousValue is what the client recovered from the stored digest and is
// empty when it could not verify.
type CastVoteCommand struct {
	ArticleID     string
	UserID        string
	Kind          entities.VoteKind
	NewValue      string
	NewDigest     string
	PreviousValue string
}

type VoteOutcome string

const (
	VoteOutcomeCast      VoteOutcome = "cast"
	VoteOutcomeChanged   VoteOutcome = "changed"
	VoteOutcomeUnchanged VoteOutcome = "unchanged"
)

type CastVoteResult struct {
	Record  entities.VoteRecord
	Outcome VoteOutcome
}

// VoteUseCase applies cast and changed votes to the tallies. When Lifecycle
// is set, a vote that arrives after its phase deadline is refused even if no
// one has applied the transition yet.
type VoteUseCase struct {
	Articles  ports.ArticleRepository
	Votes     ports.VoteLedger
	Lifecycle ports.LifecycleRepository
	Hasher    ports.VoterHasher
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// CastOrChangeVote records a first vote or swaps an existing one. Business
// rejections come back as domain errors; nothing is mutated on any error.
func (uc VoteUseCase) CastOrChangeVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	cmd = normalizeCastVoteCommand(cmd)
	logger.Info("vote cast processing started",
		"event", "voting_vote_cast_started",
		"module", "governance/voting-core",
		"layer", "application",
		"article_id", cmd.ArticleID,
		"user_id", cmd.UserID,
		"vote_kind", string(cmd.Kind),
	)
	if err := validateCastVoteCommand(cmd); err != nil {
		logger.Warn("vote cast validation failed",
			"event", "voting_vote_cast_validation_failed",
			"module", "governance/voting-core",
			"layer", "application",
			"article_id", cmd.ArticleID,
			"user_id", cmd.UserID,
			"vote_kind", string(cmd.Kind),
		)
		return CastVoteResult{}, err
	}

	article, overdue, err := uc.loadArticle(ctx, cmd.ArticleID)
	if err != nil {
		return CastVoteResult{}, err
	}
	if article.Phase != cmd.Kind.OpenPhase() || overdue {
		logger.Warn("vote cast rejected for closed phase",
			"event", "voting_vote_cast_phase_closed",
			"module", "governance/voting-core",
			"layer", "application",
			"article_id", cmd.ArticleID,
			"user_id", cmd.UserID,
			"vote_kind", string(cmd.Kind),
			"phase", string(article.Phase),
		)
		return CastVoteResult{}, domainerrors.ErrPhaseClosed
	}

	existing, found, err := uc.Votes.GetVoteRecord(ctx, cmd.ArticleID, cmd.UserID, cmd.Kind)
	if err != nil {
		return CastVoteResult{}, err
	}
	now := uc.now()
	voterHash := uc.Hasher.Hash(cmd.UserID, cmd.ArticleID, cmd.Kind)

	if !found {
		return uc.castFirstVote(ctx, logger, cmd, voterHash, now)
	}

	if cmd.PreviousValue == "" {
		logger.Warn("vote change rejected without verified previous value",
			"event", "voting_vote_change_unverified",
			"module", "governance/voting-core",
			"layer", "application",
			"article_id", cmd.ArticleID,
			"user_id", cmd.UserID,
			"vote_kind", string(cmd.Kind),
		)
		return CastVoteResult{}, domainerrors.ErrUnverifiedPriorVote
	}
	if cmd.PreviousValue == cmd.NewValue {
		logger.Info("vote change was a no-op",
			"event", "voting_vote_change_noop",
			"module", "governance/voting-core",
			"layer", "application",
			"article_id", cmd.ArticleID,
			"user_id", cmd.UserID,
			"vote_kind", string(cmd.Kind),
		)
		return CastVoteResult{Record: existing, Outcome: VoteOutcomeUnchanged}, nil
	}

	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CastVoteResult{}, err
	}
	event, err := newVotingEnvelope(eventID, "vote.changed", cmd.ArticleID, now, map[string]any{
		"vote_id":    existing.VoteID,
		"article_id": cmd.ArticleID,
		"vote_kind":  cmd.Kind.Alias(),
		"voter_hash": voterHash,
		"voted_at":   now.UTC(),
	})
	if err != nil {
		return CastVoteResult{}, err
	}
	record, err := uc.Votes.ApplyVoteChange(ctx, ports.VoteChange{
		ArticleID:      cmd.ArticleID,
		UserID:         cmd.UserID,
		Kind:           cmd.Kind,
		OldValue:       cmd.PreviousValue,
		NewValue:       cmd.NewValue,
		ExpectedDigest: existing.Digest,
		NewDigest:      cmd.NewDigest,
		VoterHash:      voterHash,
		VotedAt:        now,
		Event:          event,
	})
	if err != nil {
		uc.logApplyFailure(logger, "voting_vote_change_failed", cmd, err)
		return CastVoteResult{}, err
	}
	logger.Info("vote changed",
		"event", "voting_vote_changed",
		"module", "governance/voting-core",
		"layer", "application",
		"vote_id", record.VoteID,
		"article_id", cmd.ArticleID,
		"vote_kind", string(cmd.Kind),
	)
	return CastVoteResult{Record: record, Outcome: VoteOutcomeChanged}, nil
}

func (uc VoteUseCase) castFirstVote(
	ctx context.Context,
	logger *slog.Logger,
	cmd CastVoteCommand,
	voterHash string,
	now time.Time,
) (CastVoteResult, error) {
	voteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CastVoteResult{}, err
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CastVoteResult{}, err
	}
	event, err := newVotingEnvelope(eventID, "vote.cast", cmd.ArticleID, now, map[string]any{
		"vote_id":    voteID,
		"article_id": cmd.ArticleID,
		"vote_kind":  cmd.Kind.Alias(),
		"voter_hash": voterHash,
		"voted_at":   now.UTC(),
	})
	if err != nil {
		return CastVoteResult{}, err
	}

	record, err := uc.Votes.ApplyFirstVote(ctx, ports.FirstVote{
		Record: entities.VoteRecord{
			VoteID:    voteID,
			ArticleID: cmd.ArticleID,
			UserID:    cmd.UserID,
			Kind:      cmd.Kind,
			Digest:    cmd.NewDigest,
			VoterHash: voterHash,
			VotedAt:   now,
		},
		Value: cmd.NewValue,
		Event: event,
	})
	if err != nil {
		uc.logApplyFailure(logger, "voting_vote_cast_failed", cmd, err)
		return CastVoteResult{}, err
	}
	logger.Info("vote cast",
		"event", "voting_vote_cast",
		"module", "governance/voting-core",
		"layer", "application",
		"vote_id", record.VoteID,
		"article_id", cmd.ArticleID,
		"vote_kind", string(cmd.Kind),
	)
	return CastVoteResult{Record: record, Outcome: VoteOutcomeCast}, nil
}

func (uc VoteUseCase) logApplyFailure(logger *slog.Logger, event string, cmd CastVoteCommand, err error) {
	level := slog.LevelError
	if errors.Is(err, domainerrors.ErrPhaseClosed) || errors.Is(err, domainerrors.ErrVoteConflict) {
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, "vote apply failed",
		"event", event,
		"module", "governance/voting-core",
		"layer", "application",
		"article_id", cmd.ArticleID,
		"user_id", cmd.UserID,
		"vote_kind", string(cmd.Kind),
		"error", err.Error(),
	)
}

func (uc VoteUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}

func normalizeCastVoteCommand(cmd CastVoteCommand) CastVoteCommand {
	cmd.ArticleID = strings.TrimSpace(cmd.ArticleID)
	cmd.UserID = strings.TrimSpace(cmd.UserID)
	cmd.NewDigest = strings.ToLower(strings.TrimSpace(cmd.NewDigest))
	cmd.NewValue = canonicalValue(cmd.Kind, cmd.NewValue)
	cmd.PreviousValue = canonicalValue(cmd.Kind, cmd.PreviousValue)
	return cmd
}

func canonicalValue(kind entities.VoteKind, raw string) string {
	switch kind {
	case entities.VoteKindDuration:
		if value, ok := entities.ParseDuration(raw); ok {
			return string(value)
		}
	case entities.VoteKindApproval:
		if value, ok := entities.ParseApproval(raw); ok {
			return string(value)
		}
	}
	return strings.TrimSpace(raw)
}

func validateCastVoteCommand(cmd CastVoteCommand) error {
	if cmd.ArticleID == "" || cmd.UserID == "" || !cmd.Kind.Valid() {
		return domainerrors.ErrInvalidVoteInput
	}
	if !cmd.Kind.IsLegalValue(cmd.NewValue) {
		return domainerrors.ErrInvalidVoteInput
	}
	if cmd.PreviousValue != "" && !cmd.Kind.IsLegalValue(cmd.PreviousValue) {
		return domainerrors.ErrInvalidVoteInput
	}
	if cmd.NewDigest == "" || !isHexDigest(cmd.NewDigest) {
		return domainerrors.ErrInvalidVoteInput
	}
	// Plaintext digests are only tolerated on legacy rows.
	if commitment.IsLegacyPlaintext(cmd.NewDigest, cmd.Kind) {
		return domainerrors.ErrInvalidVoteInput
	}
	return nil
}

func isHexDigest(value string) bool {
	if len(value) != 64 {
		return false
	}
	for _, r := range value {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

func (uc VoteUseCase) loadArticle(ctx context.Context, articleID string) (entities.Article, bool, error) {
	if uc.Lifecycle == nil {
		article, err := uc.Articles.GetArticle(ctx, articleID)
		return article, false, err
	}
	snapshot, err := uc.Lifecycle.LoadSnapshot(ctx, articleID)
	if err != nil {
		return entities.Article{}, false, err
	}
	return snapshot.Article, entities.Evaluate(snapshot, uc.now()).Ready, nil
}
