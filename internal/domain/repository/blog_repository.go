package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"lexora/internal/common"
	"lexora/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type BlogRepository interface {
	Create(ctx context.Context, blog *model.Blog) error
	FindByID(ctx context.Context, id string) (*model.Blog, error)
	// List returns every blog, newest first.
	List(ctx context.Context) ([]*model.Blog, error)
	// ListByAuthor returns one page of an author's blogs, newest first, and
	// the author's total blog count. limit <= 0 returns all of them.
	ListByAuthor(ctx context.Context, authorID string, offset, limit int) ([]*model.Blog, int, error)
	// Trending returns the most liked blogs, newest first among equals.
	Trending(ctx context.Context, limit int) ([]*model.Blog, error)
	// AuthorIDs returns distinct author ids, most recently active first.
	AuthorIDs(ctx context.Context, limit int) ([]string, error)
	// Update writes title, slug, content, excerpt, tags, image and updatedAt.
	Update(ctx context.Context, blog *model.Blog) error
	Delete(ctx context.Context, id string) error
	// ToggleLike adds userID to the like set if absent, removes it otherwise,
	// in one atomic write. It returns the resulting like count.
	ToggleLike(ctx context.Context, blogID, userID string) (int, error)
	// AddComment stores c as the newest comment of the blog.
	AddComment(ctx context.Context, blogID string, c *model.Comment) error
}

type pgBlogRepository struct {
	db *sql.DB
}

func NewPgBlogRepository(db *sql.DB) BlogRepository {
	return &pgBlogRepository{db: db}
}

const blogSelect = `SELECT b.id, b.title, b.slug, b.content, b.excerpt, b.author_id, b.tags, b.image,
	       b.created_at, b.updated_at,
	       COALESCE((SELECT json_agg(l.user_id ORDER BY l.created_at)
	                 FROM blog_likes l WHERE l.blog_id = b.id), '[]'),
	       COALESCE((SELECT json_agg(json_build_object(
	                     'id', c.id, 'user', c.user_id, 'username', c.username,
	                     'text', c.text, 'createdAt', c.created_at) ORDER BY c.created_at DESC)
	                 FROM blog_comments c WHERE c.blog_id = b.id), '[]')
	FROM blogs b`

func scanBlog(row interface{ Scan(...any) error }) (*model.Blog, error) {
	blog := &model.Blog{}
	var tags, likes, comments []byte
	if err := row.Scan(
		&blog.ID, &blog.Title, &blog.Slug, &blog.Content, &blog.Excerpt, &blog.AuthorID, &tags, &blog.Image,
		&blog.CreatedAt, &blog.UpdatedAt, &likes, &comments,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tags, &blog.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if err := json.Unmarshal(likes, &blog.Likes); err != nil {
		return nil, fmt.Errorf("decode likes: %w", err)
	}
	if err := json.Unmarshal(comments, &blog.Comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return blog, nil
}

func (r *pgBlogRepository) queryBlogs(ctx context.Context, op, query string, args ...any) ([]*model.Blog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgBlogRepository.%s: %w", op, err)
	}
	defer rows.Close()

	blogs := []*model.Blog{}
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, fmt.Errorf("pgBlogRepository.%s scan: %w", op, err)
		}
		blogs = append(blogs, blog)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgBlogRepository.%s rows: %w", op, err)
	}
	return blogs, nil
}

func (r *pgBlogRepository) Create(ctx context.Context, blog *model.Blog) error {
	tags, err := json.Marshal(nonNilStrings(blog.Tags))
	if err != nil {
		return fmt.Errorf("pgBlogRepository.Create encode tags: %w", err)
	}
	query := `INSERT INTO blogs (id, title, slug, content, excerpt, author_id, tags, image, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = r.db.ExecContext(ctx, query,
		blog.ID, blog.Title, blog.Slug, blog.Content, blog.Excerpt, blog.AuthorID, tags, blog.Image,
		blog.CreatedAt, blog.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // author missing
			return fmt.Errorf("blog author %s does not exist: %w", blog.AuthorID, common.ErrNotFound)
		}
		return fmt.Errorf("pgBlogRepository.Create: %w", err)
	}
	return nil
}

func (r *pgBlogRepository) FindByID(ctx context.Context, id string) (*model.Blog, error) {
	blog, err := scanBlog(r.db.QueryRowContext(ctx, blogSelect+` WHERE b.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgBlogRepository.FindByID: %w", err)
	}
	return blog, nil
}

func (r *pgBlogRepository) List(ctx context.Context) ([]*model.Blog, error) {
	return r.queryBlogs(ctx, "List", blogSelect+` ORDER BY b.created_at DESC`)
}

func (r *pgBlogRepository) ListByAuthor(ctx context.Context, authorID string, offset, limit int) ([]*model.Blog, int, error) {
	if offset < 0 {
		return nil, 0, fmt.Errorf("pgBlogRepository.ListByAuthor negative offset %d: %w", offset, common.ErrBadRequest)
	}
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blogs WHERE author_id = $1`, authorID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgBlogRepository.ListByAuthor count: %w", err)
	}

	query := blogSelect + ` WHERE b.author_id = $1 ORDER BY b.created_at DESC`
	args := []any{authorID}
	if limit > 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}
	blogs, err := r.queryBlogs(ctx, "ListByAuthor", query, args...)
	if err != nil {
		return nil, 0, err
	}
	return blogs, total, nil
}

func (r *pgBlogRepository) Trending(ctx context.Context, limit int) ([]*model.Blog, error) {
	query := blogSelect + `
	ORDER BY (SELECT COUNT(*) FROM blog_likes l WHERE l.blog_id = b.id) DESC, b.created_at DESC
	LIMIT $1`
	return r.queryBlogs(ctx, "Trending", query, limit)
}

func (r *pgBlogRepository) AuthorIDs(ctx context.Context, limit int) ([]string, error) {
	query := `SELECT author_id FROM blogs GROUP BY author_id ORDER BY MAX(created_at) DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("pgBlogRepository.AuthorIDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("pgBlogRepository.AuthorIDs scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *pgBlogRepository) Update(ctx context.Context, blog *model.Blog) error {
	tags, err := json.Marshal(nonNilStrings(blog.Tags))
	if err != nil {
		return fmt.Errorf("pgBlogRepository.Update encode tags: %w", err)
	}
	query := `UPDATE blogs SET title = $2, slug = $3, content = $4, excerpt = $5, tags = $6, image = $7, updated_at = $8
	          WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query,
		blog.ID, blog.Title, blog.Slug, blog.Content, blog.Excerpt, tags, blog.Image, blog.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("pgBlogRepository.Update: %w", err)
	}
	return expectAffected(res, "pgBlogRepository.Update")
}

func (r *pgBlogRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgBlogRepository.Delete: %w", err)
	}
	return expectAffected(res, "pgBlogRepository.Delete")
}

// The CTEs see the same snapshot, so the count is corrected by what this
// statement removed or added.
const toggleLikeQuery = `WITH removed AS (
	DELETE FROM blog_likes WHERE blog_id = $1::text AND user_id = $2::text RETURNING user_id
), added AS (
	INSERT INTO blog_likes (blog_id, user_id)
	SELECT $1::text, $2::text WHERE NOT EXISTS (SELECT 1 FROM removed)
	ON CONFLICT DO NOTHING
	RETURNING user_id
)
SELECT (SELECT COUNT(*) FROM blog_likes WHERE blog_id = $1::text)
     - (SELECT COUNT(*) FROM removed)
     + (SELECT COUNT(*) FROM added)`

func (r *pgBlogRepository) ToggleLike(ctx context.Context, blogID, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, toggleLikeQuery, blogID, userID).Scan(&count)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("pgBlogRepository.ToggleLike: %w", err)
	}
	return count, nil
}

func (r *pgBlogRepository) AddComment(ctx context.Context, blogID string, c *model.Comment) error {
	query := `INSERT INTO blog_comments (id, blog_id, user_id, username, text, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, c.ID, blogID, c.UserID, c.Username, c.Text, c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return common.ErrNotFound
		}
		return fmt.Errorf("pgBlogRepository.AddComment: %w", err)
	}
	return nil
}

func expectAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
