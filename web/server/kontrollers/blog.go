package kontrollers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/nrednav/cuid2"

	"go.kongo.dev/kongo/db"
	"go.kongo.dev/kongo/db/models"
	dbtypes "go.kongo.dev/kongo/db/types"
	"go.kongo.dev/kongo/web/kontrol"
	"go.kongo.dev/kongo/web/server/auth"
	"go.kongo.dev/kongo/web/server/types"
)

// BlogPostView is the JSON representation of a blog post returned by the
// blog endpoints.
type BlogPostView struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle,omitempty"`
	Author    string    `json:"author"`
	Cover     string    `json:"cover,omitempty"`
	Content   string    `json:"content"`
}

func blogPostView(p *models.BlogPost) BlogPostView {
	return BlogPostView{
		ID:        p.ID,
		CreatedAt: p.CreatedAt,
		Title:     p.Title,
		Subtitle:  p.Subtitle.V,
		Author:    p.Author,
		Cover:     p.Cover.V,
		Content:   p.Content,
	}
}

// CreateBlogPost publishes a new blog post. It accepts a multipart form with
// title, subtitle, content and an optional cover image, which is stored on
// the filesystem under CoversDir. Only administrators may publish.
type CreateBlogPost struct {
	Addr      string
	Blog      *db.DB
	Accounts  *db.DB
	FS        vfs.FileSystem
	CoversDir string
}

var _ kontrol.Kontroller = (*CreateBlogPost)(nil)

// Address returns the request path this kontroller serves.
func (k *CreateBlogPost) Address() string { return k.Addr }

// Method returns the HTTP method this kontroller serves.
func (k *CreateBlogPost) Method() string { return http.MethodPost }

// Kontrol handles a blog post creation request.
func (k *CreateBlogPost) Kontrol(kg *kontrol.Kong) kontrol.Response {
	return auth.Gate(k.Accounts, kg, func() kontrol.Response {
		if err := parseForm(kg.Request); err != nil {
			return types.NewBadRequestError(err.Error())
		}

		title := strings.TrimSpace(kg.Request.FormValue("title"))
		content := kg.Request.FormValue("content")
		if title == "" || content == "" {
			return types.NewBadRequestError("both post title and content must be set")
		}

		post := &models.BlogPost{
			ID:      cuid2.Generate(),
			Title:   title,
			Author:  kg.Passport.Username,
			Content: content,
		}
		if subtitle := kg.Request.FormValue("subtitle"); subtitle != "" {
			post.Subtitle = sql.Null[string]{V: subtitle, Valid: true}
		}

		coverPath, err := k.storeCover(kg.Request, post.ID)
		if err != nil {
			slog.Error("failed storing cover image", "post_id", post.ID, "error", err.Error())
			return types.NewInternalError("internal server error")
		}
		if coverPath != "" {
			post.Cover = sql.Null[string]{V: coverPath, Valid: true}
		}

		err = k.Blog.Do(func(ctx context.Context, q dbtypes.Querier) error {
			return post.Save(ctx, q, false)
		})
		if err != nil {
			slog.Error("failed creating blog post", "post_id", post.ID, "error", err.Error())
			return types.NewInternalError("internal server error")
		}

		return types.NewJSON(http.StatusCreated, blogPostView(post))
	})
}

// storeCover writes the uploaded cover image to the filesystem and returns
// its path, or an empty path if no cover was uploaded.
func (k *CreateBlogPost) storeCover(r *http.Request, postID string) (string, error) {
	src, hdr, err := r.FormFile("cover")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", fmt.Errorf("failed reading cover form file: %w", err)
	}
	defer src.Close()

	if err = k.FS.MkdirAll(k.CoversDir, 0o755); err != nil {
		return "", fmt.Errorf("failed creating covers directory: %w", err)
	}

	coverPath := path.Join(k.CoversDir, postID+path.Ext(hdr.Filename))
	dst, err := k.FS.Create(coverPath)
	if err != nil {
		return "", fmt.Errorf("failed creating cover file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, io.LimitReader(src, maxBodyReadSize)); err != nil {
		return "", fmt.Errorf("failed writing cover file: %w", err)
	}

	return coverPath, nil
}

// ListBlogPosts returns all published blog posts, newest first.
type ListBlogPosts struct {
	Addr string
	Blog *db.DB
}

var _ kontrol.Kontroller = (*ListBlogPosts)(nil)

// Address returns the request path this kontroller serves.
func (k *ListBlogPosts) Address() string { return k.Addr }

// Method returns the HTTP method this kontroller serves.
func (k *ListBlogPosts) Method() string { return http.MethodGet }

// Kontrol handles a blog post listing request.
func (k *ListBlogPosts) Kontrol(_ *kontrol.Kong) kontrol.Response {
	var posts []*models.BlogPost
	err := k.Blog.Do(func(ctx context.Context, q dbtypes.Querier) error {
		var lerr error
		posts, lerr = models.BlogPosts(ctx, q, nil)
		return lerr
	})
	if err != nil {
		slog.Error("failed listing blog posts", "error", err.Error())
		return types.NewInternalError("internal server error")
	}

	views := make([]BlogPostView, len(posts))
	for i, p := range posts {
		views[i] = blogPostView(p)
	}

	return types.NewJSON(http.StatusOK, views)
}
