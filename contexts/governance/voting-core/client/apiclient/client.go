// Package apiclient talks to the voting API from the voter's machine. It is
// the VoteRecordReader that local verification runs against.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"agora/contexts/governance/voting-core/domain/entities"
	domainerrors "agora/contexts/governance/voting-core/domain/errors"
	"agora/contexts/governance/voting-core/ports"
	httptransport "agora/contexts/governance/voting-core/transport/http"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("voting api %d %s: %s", e.Status, e.Code, e.Message)
}

// Unwrap maps server error codes back to domain sentinels so callers can use
// errors.Is on both sides of the wire.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "phase_closed":
		return domainerrors.ErrPhaseClosed
	case "vote_conflict":
		return domainerrors.ErrVoteConflict
	case "unverified_prior_vote":
		return domainerrors.ErrUnverifiedPriorVote
	case "article_not_found":
		return domainerrors.ErrArticleNotFound
	case "vote_not_found":
		return domainerrors.ErrVoteNotFound
	case "invalid_input":
		return domainerrors.ErrInvalidVoteInput
	default:
		return nil
	}
}

type Client struct {
	BaseURL    string
	UserID     string
	HTTPClient *http.Client
}

func New(baseURL string, userID string) Client {
	return Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		UserID:     userID,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// GetVoteRecord fetches the caller's own stored record. The server only ever
// returns the record of the identity in X-User-Id, so userID must match.
func (c Client) GetVoteRecord(
	ctx context.Context,
	articleID string,
	userID string,
	kind entities.VoteKind,
) (entities.VoteRecord, bool, error) {
	if userID != c.UserID {
		return entities.VoteRecord{}, false, fmt.Errorf("api client is bound to a different voter")
	}
	var resp httptransport.VoteRecordResponse
	path := "/v1/articles/" + url.PathEscape(articleID) + "/votes/mine?kind=" + url.QueryEscape(kind.Alias())
	err := c.do(ctx, http.MethodGet, path, nil, &resp)
	if errors.Is(err, domainerrors.ErrVoteNotFound) {
		return entities.VoteRecord{}, false, nil
	}
	if err != nil {
		return entities.VoteRecord{}, false, err
	}
	parsedKind, ok := entities.ParseVoteKind(resp.Kind)
	if !ok {
		parsedKind = kind
	}
	return entities.VoteRecord{
		VoteID:    resp.VoteID,
		ArticleID: resp.ArticleID,
		UserID:    resp.UserID,
		Kind:      parsedKind,
		Digest:    resp.Digest,
		VotedAt:   resp.VotedAt,
	}, true, nil
}

func (c Client) CastVote(
	ctx context.Context,
	articleID string,
	req httptransport.CastVoteRequest,
) (httptransport.CastVoteResponse, error) {
	var resp httptransport.CastVoteResponse
	err := c.do(ctx, http.MethodPost, "/v1/articles/"+url.PathEscape(articleID)+"/votes", req, &resp)
	return resp, err
}

func (c Client) GetArticle(ctx context.Context, articleID string) (httptransport.ArticleResponse, error) {
	var resp httptransport.ArticleResponse
	err := c.do(ctx, http.MethodGet, "/v1/articles/"+url.PathEscape(articleID), nil, &resp)
	return resp, err
}

func (c Client) Tallies(ctx context.Context, articleID string) (httptransport.TalliesResponse, error) {
	var resp httptransport.TalliesResponse
	err := c.do(ctx, http.MethodGet, "/v1/articles/"+url.PathEscape(articleID)+"/tallies", nil, &resp)
	return resp, err
}

func (c Client) Deadline(ctx context.Context, articleID string) (httptransport.LifecycleResponse, error) {
	var resp httptransport.LifecycleResponse
	err := c.do(ctx, http.MethodGet, "/v1/articles/"+url.PathEscape(articleID)+"/deadline", nil, &resp)
	return resp, err
}

func (c Client) Urgent(ctx context.Context) (httptransport.UrgentArticlesResponse, error) {
	var resp httptransport.UrgentArticlesResponse
	err := c.do(ctx, http.MethodGet, "/v1/articles/urgent", nil, &resp)
	return resp, err
}

func (c Client) do(ctx context.Context, method string, path string, body any, out any) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.UserID != "" {
		req.Header.Set("X-User-Id", c.UserID)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	res, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var apiErr httptransport.ErrorResponse
		_ = json.NewDecoder(io.LimitReader(res.Body, 1<<16)).Decode(&apiErr)
		return &APIError{Status: res.StatusCode, Code: apiErr.Code, Message: apiErr.Message}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

var _ ports.VoteRecordReader = Client{}
