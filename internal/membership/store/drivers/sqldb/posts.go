package sqldb

import (
	"context"
	"strings"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/membership/domain"
	"github.com/jmoiron/sqlx"
)

type postRow struct {
	ID         string `db:"id"`
	AuthorRole string `db:"author_role"`
	AuthorID   string `db:"author_id"`
	Content    string `db:"content"`
	Tags       string `db:"tags"`
	Visibility string `db:"visibility"`
	Edited     bool   `db:"edited"`
	CreatedAt  int64  `db:"created_at"`
	UpdatedAt  int64  `db:"updated_at"`
	LikeCount  int    `db:"like_count"`
	Liked      int    `db:"liked"`
}

func (r postRow) toDomain() domain.Post {
	return domain.Post{
		ID:         r.ID,
		Author:     toRef(r.AuthorRole, r.AuthorID),
		Content:    r.Content,
		Tags:       decodeList(r.Tags),
		Visibility: domain.Visibility(r.Visibility),
		Edited:     r.Edited,
		CreatedAt:  fromMillis(r.CreatedAt),
		UpdatedAt:  fromMillis(r.UpdatedAt),
		LikeCount:  r.LikeCount,
		Liked:      r.Liked > 0,
	}
}

type commentRow struct {
	ID         string `db:"id"`
	PostID     string `db:"post_id"`
	AuthorRole string `db:"author_role"`
	AuthorID   string `db:"author_id"`
	Content    string `db:"content"`
	CreatedAt  int64  `db:"created_at"`
}

// postSelect takes the viewer's role and id as its first two arguments.
const postSelect = `
	SELECT p.id, p.author_role, p.author_id, p.content, p.tags, p.visibility, p.edited,
		p.created_at, p.updated_at,
		(SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id) AS like_count,
		(SELECT COUNT(*) FROM post_likes l
			WHERE l.post_id = p.id AND l.liker_role = ? AND l.liker_id = ?) AS liked
	FROM posts p`

type postsRepo struct {
	c conn
}

func (r *postsRepo) CreatePost(ctx context.Context, p domain.Post) error {
	_, err := r.c.exec(ctx, `
		INSERT INTO posts (id, author_role, author_id, content, tags, visibility, edited, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, refRole(p.Author), p.Author.ID, p.Content, encodeList(p.Tags), string(p.Visibility), p.Edited,
		millis(p.CreatedAt), millis(p.UpdatedAt),
	)
	return err
}

func (r *postsRepo) GetPost(ctx context.Context, id string, viewer domain.PrincipalRef) (domain.Post, error) {
	var row postRow
	if err := r.c.get(ctx, &row, postSelect+` WHERE p.id = ?`, refRole(viewer), viewer.ID, id); err != nil {
		return domain.Post{}, err
	}

	posts := []domain.Post{row.toDomain()}
	if err := r.attachComments(ctx, posts); err != nil {
		return domain.Post{}, err
	}
	return posts[0], nil
}

func (r *postsRepo) ListPosts(ctx context.Context, filter domain.PostFilter) ([]domain.Post, error) {
	viewerRole := refRole(filter.Viewer)
	where := []string{`(p.visibility <> ? OR (p.author_role = ? AND p.author_id = ?))`}
	args := []any{viewerRole, filter.Viewer.ID, string(domain.VisibilityPrivate), viewerRole, filter.Viewer.ID}

	if filter.Author != nil {
		where = append(where, `p.author_role = ? AND p.author_id = ?`)
		args = append(args, refRole(*filter.Author), filter.Author.ID)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		where = append(where, `(LOWER(p.content) LIKE ? ESCAPE '\' OR LOWER(p.tags) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	query := postSelect + ` WHERE ` + strings.Join(where, " AND ") + ` ORDER BY p.created_at DESC, p.id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	var rows []postRow
	if err := r.c.selectRows(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	out := make([]domain.Post, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	if err := r.attachComments(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// attachComments loads the comments of every post in one query, oldest first.
func (r *postsRepo) attachComments(ctx context.Context, posts []domain.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]string, len(posts))
	index := make(map[string]int, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		index[p.ID] = i
	}

	query, args, err := sqlx.In(`
		SELECT id, post_id, author_role, author_id, content, created_at
		FROM post_comments WHERE post_id IN (?) ORDER BY created_at, id`, ids)
	if err != nil {
		return err
	}

	var rows []commentRow
	if err := r.c.selectRows(ctx, &rows, query, args...); err != nil {
		return err
	}
	for _, row := range rows {
		i := index[row.PostID]
		posts[i].Comments = append(posts[i].Comments, domain.Comment{
			ID:        row.ID,
			PostID:    row.PostID,
			Author:    toRef(row.AuthorRole, row.AuthorID),
			Content:   row.Content,
			CreatedAt: fromMillis(row.CreatedAt),
		})
	}
	return nil
}

func (r *postsRepo) UpdatePost(ctx context.Context, p domain.Post) error {
	return r.c.execOne(ctx, `
		UPDATE posts SET content = ?, tags = ?, visibility = ?, edited = ?, updated_at = ?
		WHERE id = ?`,
		p.Content, encodeList(p.Tags), string(p.Visibility), p.Edited, millis(p.UpdatedAt), p.ID,
	)
}

func (r *postsRepo) DeletePost(ctx context.Context, id string) error {
	return r.c.execOne(ctx, `DELETE FROM posts WHERE id = ?`, id)
}

func (r *postsRepo) AddLike(ctx context.Context, postID string, who domain.PrincipalRef, at time.Time) error {
	_, err := r.c.exec(ctx, `
		INSERT INTO post_likes (post_id, liker_role, liker_id, created_at) VALUES (?, ?, ?, ?)`,
		postID, refRole(who), who.ID, millis(at),
	)
	return err
}

func (r *postsRepo) RemoveLike(ctx context.Context, postID string, who domain.PrincipalRef) error {
	return r.c.execOne(ctx,
		`DELETE FROM post_likes WHERE post_id = ? AND liker_role = ? AND liker_id = ?`,
		postID, refRole(who), who.ID,
	)
}

func (r *postsRepo) CountLikes(ctx context.Context, postID string) (int, error) {
	var n int
	err := r.c.get(ctx, &n, `SELECT COUNT(*) FROM post_likes WHERE post_id = ?`, postID)
	return n, err
}

func (r *postsRepo) AddComment(ctx context.Context, c domain.Comment) error {
	_, err := r.c.exec(ctx, `
		INSERT INTO post_comments (id, post_id, author_role, author_id, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.PostID, refRole(c.Author), c.Author.ID, c.Content, millis(c.CreatedAt),
	)
	return err
}

func (r *postsRepo) CountPosts(ctx context.Context) (int, error) {
	var n int
	err := r.c.get(ctx, &n, `SELECT COUNT(*) FROM posts`)
	return n, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
