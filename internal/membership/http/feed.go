package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/alumnet/internal/membership/service"
	"github.com/aussiebroadwan/alumnet/pkg/httpx"
	"github.com/aussiebroadwan/alumnet/pkg/membersdk"
)

// FeedHandler serves the social feed to every principal kind.
type FeedHandler struct {
	FeedService *service.FeedService
}

// HandleListPosts godoc
//
//	@Summary		List feed posts
//	@Description	Newest first, ten per page. Private posts appear only to their author.
//	@Tags			Feed
//	@Produce		json
//	@Param			filter	query		string	false	"mine to list only the caller's posts"
//	@Param			search	query		string	false	"Case-insensitive match on content and tags"
//	@Param			page	query		int		false	"Page number, from 1"
//	@Success		200		{object}	membersdk.FeedResponse
//	@Failure		400		{object}	membersdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/feed/posts [get].
func (h *FeedHandler) HandleListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := 1
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeBadRequest(w, "page must be a positive integer")
			return
		}
		page = n
	}

	res, err := h.FeedService.ListPosts(r.Context(), callerRef(r), service.FeedQuery{
		Mine:   q.Get("filter") == "mine",
		Search: q.Get("search"),
		Page:   page,
	})
	if err != nil {
		writeServiceError(w, r, err, "failed to list posts")
		return
	}

	out := membersdk.FeedResponse{
		Posts:   make([]membersdk.PostResponse, 0, len(res.Posts)),
		Page:    page,
		HasMore: res.HasMore,
	}
	for _, p := range res.Posts {
		out.Posts = append(out.Posts, toPostResponse(p))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleCreatePost godoc
//
//	@Summary		Create a post
//	@Tags			Feed
//	@Accept			json
//	@Produce		json
//	@Param			request	body		membersdk.PostRequest	true	"Post"
//	@Success		201		{object}	membersdk.PostResponse
//	@Failure		400		{object}	membersdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/feed/posts [post].
func (h *FeedHandler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req membersdk.PostRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	p, err := h.FeedService.CreatePost(r.Context(), callerRef(r), service.PostInput{
		Content:    req.Content,
		Tags:       req.Tags,
		Visibility: req.Visibility,
	})
	if err != nil {
		writeServiceError(w, r, err, "failed to create post")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toPostResponse(p))
}

// HandleGetPost godoc
//
//	@Summary	Get a post with its comments
//	@Tags		Feed
//	@Produce	json
//	@Param		id	path		string	true	"Post ID"
//	@Success	200	{object}	membersdk.PostResponse
//	@Failure	404	{object}	membersdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/feed/posts/{id} [get].
func (h *FeedHandler) HandleGetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := h.FeedService.GetPost(r.Context(), callerRef(r), id)
	if err != nil {
		writeServiceError(w, r, err, "failed to load post")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toPostResponse(p))
}

// HandleUpdatePost godoc
//
//	@Summary		Edit own post
//	@Description	Only fields present in the body change. The post is marked edited.
//	@Tags			Feed
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Post ID"
//	@Param			request	body		membersdk.PostUpdateRequest	true	"Fields to change"
//	@Success		200		{object}	membersdk.PostResponse
//	@Failure		400		{object}	membersdk.ErrorResponse
//	@Failure		403		{object}	membersdk.ErrorResponse	"caller is not the author"
//	@Failure		404		{object}	membersdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/feed/posts/{id} [put].
func (h *FeedHandler) HandleUpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req membersdk.PostUpdateRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	p, err := h.FeedService.UpdatePost(r.Context(), callerRef(r), id, service.PostUpdate{
		Content:    req.Content,
		Tags:       req.Tags,
		Visibility: req.Visibility,
	})
	if err != nil {
		writeServiceError(w, r, err, "failed to update post")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toPostResponse(p))
}

// HandleDeletePost godoc
//
//	@Summary	Delete own post
//	@Tags		Feed
//	@Param		id	path	string	true	"Post ID"
//	@Success	204
//	@Failure	403	{object}	membersdk.ErrorResponse	"caller is not the author"
//	@Failure	404	{object}	membersdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/feed/posts/{id} [delete].
func (h *FeedHandler) HandleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.FeedService.DeletePost(r.Context(), callerRef(r), id); err != nil {
		writeServiceError(w, r, err, "failed to delete post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleToggleLike godoc
//
//	@Summary	Like or unlike a post
//	@Tags		Feed
//	@Produce	json
//	@Param		id	path		string	true	"Post ID"
//	@Success	200	{object}	membersdk.LikeResponse
//	@Failure	404	{object}	membersdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/feed/posts/{id}/like [post].
func (h *FeedHandler) HandleToggleLike(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	state, err := h.FeedService.ToggleLike(r.Context(), callerRef(r), id)
	if err != nil {
		writeServiceError(w, r, err, "failed to toggle like")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, membersdk.LikeResponse{Liked: state.Liked, LikeCount: state.Count})
}

// HandleAddComment godoc
//
//	@Summary	Comment on a post
//	@Tags		Feed
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Post ID"
//	@Param		request	body		membersdk.CommentRequest	true	"Comment"
//	@Success	201		{object}	membersdk.CommentResponse
//	@Failure	400		{object}	membersdk.ErrorResponse
//	@Failure	404		{object}	membersdk.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/feed/posts/{id}/comments [post].
func (h *FeedHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req membersdk.CommentRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	c, err := h.FeedService.AddComment(r.Context(), callerRef(r), id, service.CommentInput{Content: req.Content})
	if err != nil {
		writeServiceError(w, r, err, "failed to add comment")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toCommentResponse(c))
}
