package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RegisterArticleRequest struct {
	ArticleID string `json:"article_id,omitempty"`
	Type      string `json:"type"`
	Title     string `json:"title"`
}

type ArticleResponse struct {
	ArticleID             string     `json:"article_id"`
	Type                  string     `json:"type"`
	Title                 string     `json:"title"`
	AuthorID              string     `json:"author_id"`
	Phase                 string     `json:"phase"`
	PhaseEnteredAt        time.Time  `json:"phase_entered_at"`
	VotedDebateDuration   string     `json:"voted_debate_duration,omitempty"`
	OfficialArticleNumber int        `json:"official_article_number,omitempty"`
	Designation           string     `json:"designation,omitempty"`
	Deadline              *time.Time `json:"deadline,omitempty"`
	RemainingSeconds      int64      `json:"remaining_seconds,omitempty"`
}

// CastVoteRequest never carries a passphrase. Digest is computed on the
// client; PreviousValue is the client's verified reading of its stored vote.
type CastVoteRequest struct {
	Kind          string `json:"kind"`
	Value         string `json:"value"`
	Digest        string `json:"digest"`
	PreviousValue string `json:"previous_value,omitempty"`
}

type CastVoteResponse struct {
	VoteID    string    `json:"vote_id"`
	ArticleID string    `json:"article_id"`
	Kind      string    `json:"kind"`
	Outcome   string    `json:"outcome"`
	VotedAt   time.Time `json:"voted_at"`
}

type VoteRecordResponse struct {
	VoteID    string    `json:"vote_id"`
	ArticleID string    `json:"article_id"`
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Digest    string    `json:"digest"`
	VotedAt   time.Time `json:"voted_at"`
}

type DurationCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type DurationTallyResponse struct {
	Counts  []DurationCount `json:"counts"`
	Leading string          `json:"leading"`
	Total   int             `json:"total"`
}

type ApprovalTallyResponse struct {
	Approve int `json:"approve"`
	Reject  int `json:"reject"`
	Total   int `json:"total"`
}

type TalliesResponse struct {
	ArticleID string                `json:"article_id"`
	Duration  DurationTallyResponse `json:"duration"`
	Approval  ApprovalTallyResponse `json:"approval"`
}

type LifecycleResponse struct {
	ArticleID             string     `json:"article_id"`
	Transitioned          bool       `json:"transitioned"`
	FromPhase             string     `json:"from_phase,omitempty"`
	Phase                 string     `json:"phase"`
	Outcome               string     `json:"outcome,omitempty"`
	WinningDuration       string     `json:"winning_duration,omitempty"`
	OfficialArticleNumber int        `json:"official_article_number,omitempty"`
	Designation           string     `json:"designation,omitempty"`
	Deadline              *time.Time `json:"deadline,omitempty"`
}

type UrgentArticleItem struct {
	ArticleID        string    `json:"article_id"`
	Title            string    `json:"title"`
	Type             string    `json:"type"`
	Phase            string    `json:"phase"`
	Deadline         time.Time `json:"deadline"`
	RemainingSeconds int64     `json:"remaining_seconds"`
}

type UrgentArticlesResponse struct {
	Items []UrgentArticleItem `json:"items"`
}
