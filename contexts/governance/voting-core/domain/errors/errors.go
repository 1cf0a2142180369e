package errors

import "errors"

// ErrVoteConflict means a concurrent writer won; the whole cast may be retried
// from the start.
var (
	ErrInvalidVoteInput    = errors.New("invalid vote input")
	ErrInvalidArticleInput = errors.New("invalid article input")
	ErrArticleNotFound     = errors.New("article not found")
	ErrArticleExists       = errors.New("article already exists")
	ErrVoteNotFound        = errors.New("vote not found")
	ErrPhaseClosed         = errors.New("voting phase is closed")
	ErrUnverifiedPriorVote = errors.New("cannot verify previous vote")
	ErrVoteConflict        = errors.New("vote conflict")
	ErrNumberingConflict   = errors.New("official article number conflict")
	ErrStorageFailure      = errors.New("storage failure")
	ErrConflict            = errors.New("conflict")
)
