package domain

import (
	"errors"
	"slices"
	"time"
)

// Visibility controls who sees a post in the feed.
type Visibility string

const (
	VisibilityPublic      Visibility = "public"
	VisibilityAlumni      Visibility = "alumni"
	VisibilityConnections Visibility = "connections"
	VisibilityPrivate     Visibility = "private"
)

var ErrUnknownVisibility = errors.New("unknown visibility")

var visibilities = []Visibility{VisibilityPublic, VisibilityAlumni, VisibilityConnections, VisibilityPrivate}

// ParseVisibility maps "" to VisibilityPublic.
func ParseVisibility(s string) (Visibility, error) {
	if s == "" {
		return VisibilityPublic, nil
	}
	v := Visibility(s)
	if !slices.Contains(visibilities, v) {
		return "", ErrUnknownVisibility
	}
	return v, nil
}

// Post is a feed entry. Author may be any principal kind.
type Post struct {
	ID         string
	Author     PrincipalRef
	Content    string
	Tags       []string
	Visibility Visibility
	Edited     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Filled on read, relative to the viewer.
	LikeCount int
	Liked     bool
	Comments  []Comment
}

// VisibleTo reports whether viewer may see the post. Private posts are only
// visible to their author.
func (p *Post) VisibleTo(viewer PrincipalRef) bool {
	return p.Visibility != VisibilityPrivate || p.Author == viewer
}

type Comment struct {
	ID        string
	PostID    string
	Author    PrincipalRef
	Content   string
	CreatedAt time.Time
}

// PostFilter selects feed posts. Viewer is always set; private posts of
// other principals never match.
type PostFilter struct {
	Viewer PrincipalRef
	Author *PrincipalRef
	Search string
	Limit  int
	Offset int
}

// Author is the display projection of a post or comment author, resolved
// by kind from the owning table.
type Author struct {
	Ref            PrincipalRef
	Name           string
	ProfilePicture string
	Occupation     string
}
