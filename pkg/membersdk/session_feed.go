package membersdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// FeedOptions selects a feed page. Page counts from 1.
type FeedOptions struct {
	Mine   bool
	Search string
	Page   int
}

func (s *Session) CreatePost(ctx context.Context, req PostRequest) (*PostResponse, error) {
	var out PostResponse
	if err := s.call(ctx, http.MethodPost, "/v1/feed/posts", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Feed returns one page of posts visible to the session's principal,
// newest first.
func (s *Session) Feed(ctx context.Context, opts FeedOptions) (*FeedResponse, error) {
	q := url.Values{}
	if opts.Mine {
		q.Set("filter", "mine")
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}

	path := "/v1/feed/posts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out FeedResponse
	if err := s.call(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) GetPost(ctx context.Context, id string) (*PostResponse, error) {
	var out PostResponse
	if err := s.call(ctx, http.MethodGet, "/v1/feed/posts/"+url.PathEscape(id), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdatePost(ctx context.Context, id string, req PostUpdateRequest) (*PostResponse, error) {
	var out PostResponse
	if err := s.call(ctx, http.MethodPut, "/v1/feed/posts/"+url.PathEscape(id), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) DeletePost(ctx context.Context, id string) error {
	return s.call(ctx, http.MethodDelete, "/v1/feed/posts/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}

// ToggleLike likes the post, or unlikes it if the principal already did.
func (s *Session) ToggleLike(ctx context.Context, id string) (*LikeResponse, error) {
	var out LikeResponse
	if err := s.call(ctx, http.MethodPost, "/v1/feed/posts/"+url.PathEscape(id)+"/like", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) Comment(ctx context.Context, id, content string) (*CommentResponse, error) {
	var out CommentResponse
	req := CommentRequest{Content: content}
	if err := s.call(ctx, http.MethodPost, "/v1/feed/posts/"+url.PathEscape(id)+"/comments", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}
