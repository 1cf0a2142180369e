package apiclient

import (
	"context"
	"errors"
	"strings"

	"agora/contexts/governance/voting-core/application/queries"
	"agora/contexts/governance/voting-core/domain/commitment"
	"agora/contexts/governance/voting-core/domain/entities"
	domainerrors "agora/contexts/governance/voting-core/domain/errors"
	httptransport "agora/contexts/governance/voting-core/transport/http"
)

const maxCastAttempts = 3

// Voter is the client side of a cast: read the stored digest, open it with the
// local passphrase, commit the new value and send only the digest.
type Voter struct {
	Client     Client
	Passphrase commitment.Passphrase
}

func (v Voter) Verify(ctx context.Context, articleID string, kind entities.VoteKind) (queries.VerificationResult, error) {
	return queries.VerificationUseCase{Votes: v.Client}.VerifyVote(ctx, v.Passphrase, v.Client.UserID, articleID, kind)
}

// Cast votes or changes a vote. A stored vote that this passphrase cannot open
// stops the cast with ErrUnverifiedPriorVote; the server would refuse it too.
func (v Voter) Cast(
	ctx context.Context,
	articleID string,
	kind entities.VoteKind,
	value string,
) (httptransport.CastVoteResponse, error) {
	if v.Passphrase.IsZero() {
		return httptransport.CastVoteResponse{}, commitment.ErrEmptyPassphrase
	}
	articleID = strings.TrimSpace(articleID)
	value = strings.TrimSpace(value)
	if !kind.IsLegalValue(value) {
		return httptransport.CastVoteResponse{}, domainerrors.ErrInvalidVoteInput
	}

	var lastErr error
	for attempt := 0; attempt < maxCastAttempts; attempt++ {
		verification, err := v.Verify(ctx, articleID, kind)
		if err != nil {
			return httptransport.CastVoteResponse{}, err
		}
		previous := ""
		switch verification.Status {
		case queries.VerificationCannotVerify:
			return httptransport.CastVoteResponse{}, domainerrors.ErrUnverifiedPriorVote
		case queries.VerificationVerified:
			previous = verification.Value
		}

		digest := commitment.Commit(v.Passphrase, v.Client.UserID, articleID, value)
		resp, err := v.Client.CastVote(ctx, articleID, httptransport.CastVoteRequest{
			Kind:          kind.Alias(),
			Value:         value,
			Digest:        string(digest),
			PreviousValue: previous,
		})
		if err == nil {
			return resp, nil
		}
		if !errors.Is(err, domainerrors.ErrVoteConflict) {
			return httptransport.CastVoteResponse{}, err
		}
		lastErr = err
	}
	return httptransport.CastVoteResponse{}, lastErr
}
