package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/alumnet/internal/membership/domain"
	"github.com/aussiebroadwan/alumnet/internal/membership/store"
	"github.com/aussiebroadwan/alumnet/pkg/idx"
	"github.com/aussiebroadwan/alumnet/pkg/otelx"
	"github.com/aussiebroadwan/alumnet/pkg/slogx"
	"github.com/jonboulle/clockwork"
)

// PostPageSize is how many posts one feed page holds.
const PostPageSize = 10

// emptyEditorMarkup is what the rich-text editor submits for a blank post.
const emptyEditorMarkup = "<p><br></p>"

type PostInput struct {
	Content    string   `validate:"required,max=5000"`
	Tags       []string `validate:"max=20,dive,min=1,max=50"`
	Visibility string   `validate:"omitempty,oneof=public alumni connections private"`
}

// PostUpdate changes the given fields; nil leaves a field as is.
type PostUpdate struct {
	Content    *string  `validate:"omitnil,min=1,max=5000"`
	Tags       []string `validate:"omitnil,max=20,dive,min=1,max=50"`
	Visibility *string  `validate:"omitnil,oneof=public alumni connections private"`
}

type CommentInput struct {
	Content string `validate:"required,max=2000"`
}

// FeedQuery selects one page of the feed. Mine restricts it to the
// viewer's own posts; Search matches content and tags case-insensitively.
type FeedQuery struct {
	Mine   bool
	Search string `validate:"max=100"`
	Page   int
}

type PostView struct {
	Post     domain.Post
	Author   domain.Author
	Comments []CommentView
}

type CommentView struct {
	Comment domain.Comment
	Author  domain.Author
}

type FeedPage struct {
	Posts   []PostView
	HasMore bool
}

type LikeState struct {
	Liked bool
	Count int
}

// FeedService is the social feed shared by every principal kind. Authors
// are (kind, id) references resolved against the owning table on read.
type FeedService struct {
	Store store.Store
	Clock clockwork.Clock
}

func (s *FeedService) CreatePost(ctx context.Context, author domain.PrincipalRef, in PostInput) (PostView, error) {
	ctx, span := tracer.Start(ctx, "FeedService.CreatePost")
	defer span.End()
	log := slogx.FromContext(ctx)

	in.Content = normalizeContent(in.Content)
	in.Tags = trimList(in.Tags)
	if err := validateStruct(ErrInvalidRequest, in); err != nil {
		return PostView{}, err
	}
	vis, err := domain.ParseVisibility(in.Visibility)
	if err != nil {
		return PostView{}, ErrInvalidRequest
	}

	now := s.Clock.Now()
	post := domain.Post{
		ID:         idx.NewAt(now).String(),
		Author:     author,
		Content:    in.Content,
		Tags:       in.Tags,
		Visibility: vis,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Store.Posts().CreatePost(ctx, post); err != nil {
		otelx.RecordError(span, err)
		log.Error("failed to create post", slog.Any("error", err))
		return PostView{}, err
	}

	log.Info("post created",
		slog.String("post_id", post.ID),
		slog.String("visibility", string(vis)),
	)
	return s.view(ctx, post)
}

// ListPosts returns one page of posts visible to viewer, newest first.
func (s *FeedService) ListPosts(ctx context.Context, viewer domain.PrincipalRef, q FeedQuery) (FeedPage, error) {
	ctx, span := tracer.Start(ctx, "FeedService.ListPosts")
	defer span.End()

	q.Search = strings.TrimSpace(q.Search)
	if err := validateStruct(ErrInvalidRequest, q); err != nil {
		return FeedPage{}, err
	}
	if q.Page < 1 {
		q.Page = 1
	}

	filter := domain.PostFilter{
		Viewer: viewer,
		Search: q.Search,
		Limit:  PostPageSize + 1,
		Offset: (q.Page - 1) * PostPageSize,
	}
	if q.Mine {
		filter.Author = &viewer
	}

	posts, err := s.Store.Posts().ListPosts(ctx, filter)
	if err != nil {
		otelx.RecordError(span, err)
		return FeedPage{}, err
	}

	page := FeedPage{HasMore: len(posts) > PostPageSize}
	if page.HasMore {
		posts = posts[:PostPageSize]
	}
	if page.Posts, err = s.views(ctx, posts); err != nil {
		return FeedPage{}, err
	}
	return page, nil
}

func (s *FeedService) GetPost(ctx context.Context, viewer domain.PrincipalRef, id string) (PostView, error) {
	post, err := s.visiblePost(ctx, s.Store, viewer, id)
	if err != nil {
		return PostView{}, err
	}
	return s.view(ctx, post)
}

// UpdatePost edits a post; only its author may. The post is marked edited.
func (s *FeedService) UpdatePost(ctx context.Context, viewer domain.PrincipalRef, id string, upd PostUpdate) (PostView, error) {
	if upd.Content != nil {
		c := normalizeContent(*upd.Content)
		upd.Content = &c
	}
	if upd.Tags != nil {
		upd.Tags = trimList(upd.Tags)
	}
	if err := validateStruct(ErrInvalidRequest, upd); err != nil {
		return PostView{}, err
	}

	var post domain.Post
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		if post, err = s.ownPost(ctx, tx, viewer, id); err != nil {
			return err
		}

		if upd.Content != nil {
			post.Content = *upd.Content
		}
		if upd.Tags != nil {
			post.Tags = upd.Tags
		}
		if upd.Visibility != nil {
			post.Visibility = domain.Visibility(*upd.Visibility)
		}
		post.Edited = true
		post.UpdatedAt = s.Clock.Now()
		return tx.Posts().UpdatePost(ctx, post)
	})
	if err != nil {
		return PostView{}, s.mapPostErr(ctx, err, "failed to update post")
	}
	return s.view(ctx, post)
}

// DeletePost removes a post with its likes and comments; only its author may.
func (s *FeedService) DeletePost(ctx context.Context, viewer domain.PrincipalRef, id string) error {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := s.ownPost(ctx, tx, viewer, id); err != nil {
			return err
		}
		return tx.Posts().DeletePost(ctx, id)
	})
	if err != nil {
		return s.mapPostErr(ctx, err, "failed to delete post")
	}

	slogx.FromContext(ctx).Info("post deleted", slog.String("post_id", id))
	return nil
}

// ToggleLike likes the post for viewer, or unlikes it when already liked.
func (s *FeedService) ToggleLike(ctx context.Context, viewer domain.PrincipalRef, id string) (LikeState, error) {
	var state LikeState
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := s.visiblePost(ctx, tx, viewer, id); err != nil {
			return err
		}

		switch err := tx.Posts().RemoveLike(ctx, id, viewer); {
		case err == nil:
			state.Liked = false
		case errors.Is(err, store.ErrNotFound):
			if err := tx.Posts().AddLike(ctx, id, viewer, s.Clock.Now()); err != nil && !errors.Is(err, store.ErrAlreadyExists) {
				return err
			}
			state.Liked = true
		default:
			return err
		}

		var err error
		state.Count, err = tx.Posts().CountLikes(ctx, id)
		return err
	})
	if err != nil {
		return LikeState{}, s.mapPostErr(ctx, err, "failed to toggle like")
	}
	return state, nil
}

func (s *FeedService) AddComment(ctx context.Context, viewer domain.PrincipalRef, postID string, in CommentInput) (CommentView, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := validateStruct(ErrInvalidRequest, in); err != nil {
		return CommentView{}, err
	}

	now := s.Clock.Now()
	comment := domain.Comment{
		ID:        idx.NewAt(now).String(),
		PostID:    postID,
		Author:    viewer,
		Content:   in.Content,
		CreatedAt: now,
	}
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := s.visiblePost(ctx, tx, viewer, postID); err != nil {
			return err
		}
		return tx.Posts().AddComment(ctx, comment)
	})
	if err != nil {
		return CommentView{}, s.mapPostErr(ctx, err, "failed to add comment")
	}

	authors, err := s.authors(ctx, []domain.PrincipalRef{viewer})
	if err != nil {
		return CommentView{}, err
	}
	return CommentView{Comment: comment, Author: authors[viewer]}, nil
}

// visiblePost loads a post the viewer can see; anything else is
// ErrPostNotFound.
func (s *FeedService) visiblePost(ctx context.Context, st store.Store, viewer domain.PrincipalRef, id string) (domain.Post, error) {
	post, err := st.Posts().GetPost(ctx, id, viewer)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Post{}, ErrPostNotFound
		}
		return domain.Post{}, err
	}
	if !post.VisibleTo(viewer) {
		return domain.Post{}, ErrPostNotFound
	}
	return post, nil
}

func (s *FeedService) ownPost(ctx context.Context, st store.Store, viewer domain.PrincipalRef, id string) (domain.Post, error) {
	post, err := s.visiblePost(ctx, st, viewer, id)
	if err != nil {
		return domain.Post{}, err
	}
	if post.Author != viewer {
		return domain.Post{}, ErrNotPostAuthor
	}
	return post, nil
}

func (s *FeedService) mapPostErr(ctx context.Context, err error, msg string) error {
	switch {
	case errors.Is(err, ErrPostNotFound), errors.Is(err, ErrNotPostAuthor):
		return err
	case errors.Is(err, store.ErrNotFound):
		return ErrPostNotFound
	default:
		slogx.FromContext(ctx).Error(msg, slog.Any("error", err))
		return err
	}
}

func (s *FeedService) view(ctx context.Context, post domain.Post) (PostView, error) {
	views, err := s.views(ctx, []domain.Post{post})
	if err != nil {
		return PostView{}, err
	}
	return views[0], nil
}

func (s *FeedService) views(ctx context.Context, posts []domain.Post) ([]PostView, error) {
	var refs []domain.PrincipalRef
	for _, p := range posts {
		refs = append(refs, p.Author)
		for _, c := range p.Comments {
			refs = append(refs, c.Author)
		}
	}
	authors, err := s.authors(ctx, refs)
	if err != nil {
		return nil, err
	}

	out := make([]PostView, 0, len(posts))
	for _, p := range posts {
		v := PostView{Post: p, Author: authors[p.Author]}
		for _, c := range p.Comments {
			v.Comments = append(v.Comments, CommentView{Comment: c, Author: authors[c.Author]})
		}
		out = append(out, v)
	}
	return out, nil
}

// authors resolves each distinct reference by kind. A reference whose
// record is gone resolves to an Author with only Ref set.
func (s *FeedService) authors(ctx context.Context, refs []domain.PrincipalRef) (map[domain.PrincipalRef]domain.Author, error) {
	out := make(map[domain.PrincipalRef]domain.Author, len(refs))
	for _, ref := range refs {
		if _, ok := out[ref]; ok {
			continue
		}

		a := domain.Author{Ref: ref}
		var err error
		switch ref.Role {
		case domain.RoleSuperAdmin:
			var sa domain.SuperAdmin
			if sa, err = s.Store.SuperAdmins().GetSuperAdminByID(ctx, ref.ID); err == nil {
				a.Name = sa.Name
			}
		case domain.RoleAdmin:
			var ad domain.Admin
			if ad, err = s.Store.Admins().GetAdminByID(ctx, ref.ID); err == nil {
				a.Name = ad.Name
			}
		case domain.RoleAlumni:
			var al domain.Alumni
			if al, err = s.Store.Alumni().GetAlumniByID(ctx, ref.ID); err == nil {
				a.Name = al.Name
				a.Occupation = al.Occupation
				a.ProfilePicture = al.Profile.ProfilePicture
			}
		}
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		out[ref] = a
	}
	return out, nil
}

func normalizeContent(s string) string {
	s = strings.TrimSpace(s)
	if s == emptyEditorMarkup {
		return ""
	}
	return s
}
