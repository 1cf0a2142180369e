package queries

import (
	"context"
	"strings"

	"agora/contexts/governance/voting-core/domain/commitment"
	"agora/contexts/governance/voting-core/domain/entities"
	domainerrors "agora/contexts/governance/voting-core/domain/errors"
	"agora/contexts/governance/voting-core/ports"
)

type VerificationStatus string

const (
	// VerificationNoRecord means there is definitely no vote of that kind.
	VerificationNoRecord VerificationStatus = "no_record"
	VerificationVerified VerificationStatus = "verified"
	// VerificationCannotVerify means a vote exists but the passphrase does not
	// open it. The vote may well exist under another passphrase.
	VerificationCannotVerify VerificationStatus = "cannot_verify"
)

type VerificationResult struct {
	Status VerificationStatus
	Value  string
	Record entities.VoteRecord
	Legacy bool
}

func (r VerificationResult) Verified() bool {
	return r.Status == VerificationVerified
}

// VerificationUseCase recovers a voter's own vote. It runs wherever the
// passphrase lives, which in practice is the voter's client.
type VerificationUseCase struct {
	Votes ports.VoteRecordReader
}

func (uc VerificationUseCase) VerifyVote(
	ctx context.Context,
	passphrase commitment.Passphrase,
	userID string,
	articleID string,
	kind entities.VoteKind,
) (VerificationResult, error) {
	userID = strings.TrimSpace(userID)
	articleID = strings.TrimSpace(articleID)
	if userID == "" || articleID == "" || !kind.Valid() {
		return VerificationResult{}, domainerrors.ErrInvalidVoteInput
	}
	record, found, err := uc.Votes.GetVoteRecord(ctx, articleID, userID, kind)
	if err != nil {
		return VerificationResult{}, err
	}
	if !found {
		return VerificationResult{Status: VerificationNoRecord}, nil
	}
	return VerifyRecord(passphrase, record), nil
}

// VerifyRecord checks an already loaded record.
func VerifyRecord(passphrase commitment.Passphrase, record entities.VoteRecord) VerificationResult {
	value, ok := commitment.VerifyKind(passphrase, record.UserID, record.ArticleID, record.Digest, record.Kind)
	if !ok {
		return VerificationResult{Status: VerificationCannotVerify, Record: record}
	}
	return VerificationResult{
		Status: VerificationVerified,
		Value:  value,
		Record: record,
		Legacy: commitment.IsLegacyPlaintext(record.Digest, record.Kind),
	}
}
