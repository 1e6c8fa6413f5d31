package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"lexora/internal/common"
	"lexora/internal/common/security"
	"lexora/internal/domain/model"
	"lexora/internal/domain/repository"
	"lexora/internal/platform/storage"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
	trendingLimit   = 3
	authorsLimit    = 8
	maxCommentRunes = 2000

	noBioYet = "This user has not written a bio yet."
)

var (
	errBlogNotFound   = common.NewPublicError(common.ErrNotFound, "Blog not found")
	errAuthorNotFound = common.NewPublicError(common.ErrNotFound, "Author not found")
)

// Upload is a file received with a multipart request.
type Upload struct {
	Filename string
	Data     []byte
}

type BlogInput struct {
	Title   string  `json:"title" validate:"required,max=200"`
	Content string  `json:"content" validate:"required"`
	Tags    TagList `json:"tags"`
	Image   *Upload `json:"-"`
}

type MyBlogsResponse struct {
	Success    bool              `json:"success"`
	Blogs      []*model.Blog     `json:"blogs"`
	Pagination *model.Pagination `json:"pagination"`
}

type AuthorProfile struct {
	Author *model.UserSummary `json:"author"`
	Blogs  []*model.Blog      `json:"blogs"`
}

type BlogService struct {
	blogRepo repository.BlogRepository
	userRepo repository.UserRepository
	images   storage.ImageStore
	activity ActivityRecorder
}

func NewBlogService(blogRepo repository.BlogRepository, userRepo repository.UserRepository, images storage.ImageStore, activity ActivityRecorder) *BlogService {
	return &BlogService{blogRepo: blogRepo, userRepo: userRepo, images: images, activity: activity}
}

// prepare validates in and returns the sanitized content.
func (s *BlogService) prepare(in *BlogInput) (string, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if err := common.ValidateStruct(in); err != nil {
		return "", err
	}
	content := SanitizeContent(in.Content)
	if content == "" {
		return "", common.NewValidationError("content", "Content is required")
	}
	return content, nil
}

func (s *BlogService) Create(ctx context.Context, id security.Identity, in BlogInput) (*model.Blog, error) {
	content, err := s.prepare(&in)
	if err != nil {
		return nil, err
	}

	image := ""
	if in.Image != nil {
		if image, err = storage.SaveImage(ctx, s.images, "image", "blog", in.Image.Data); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	blog := &model.Blog{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Slug:      Slugify(in.Title),
		Content:   content,
		Excerpt:   Excerpt(content),
		AuthorID:  id.ID,
		Tags:      ParseTags(in.Tags),
		Image:     image,
		Likes:     []string{},
		Comments:  []model.Comment{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.blogRepo.Create(ctx, blog); err != nil {
		return nil, fmt.Errorf("failed to create blog: %w", err)
	}
	s.activity.Record(ctx, id.ID, model.ActivityCreateBlog)

	if err := s.populate(ctx, []*model.Blog{blog}, authorCard); err != nil {
		return nil, err
	}
	return blog, nil
}

func (s *BlogService) find(ctx context.Context, blogID string) (*model.Blog, error) {
	blog, err := s.blogRepo.FindByID(ctx, blogID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errBlogNotFound
		}
		return nil, fmt.Errorf("failed to load blog: %w", err)
	}
	return blog, nil
}

// Update changes title, content, tags and, when a new file is given, the
// image. Only the author may update.
func (s *BlogService) Update(ctx context.Context, id security.Identity, blogID string, in BlogInput) (*model.Blog, error) {
	blog, err := s.find(ctx, blogID)
	if err != nil {
		return nil, err
	}
	if err := security.BlogAuthor.Authorize(id, blog.AuthorID); err != nil {
		return nil, err
	}
	content, err := s.prepare(&in)
	if err != nil {
		return nil, err
	}
	if in.Image != nil {
		if blog.Image, err = storage.SaveImage(ctx, s.images, "image", "blog", in.Image.Data); err != nil {
			return nil, err
		}
	}

	blog.Title = in.Title
	blog.Slug = Slugify(in.Title)
	blog.Content = content
	blog.Excerpt = Excerpt(content)
	blog.Tags = ParseTags(in.Tags)
	blog.UpdatedAt = time.Now().UTC()
	if err := s.blogRepo.Update(ctx, blog); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errBlogNotFound
		}
		return nil, fmt.Errorf("failed to update blog: %w", err)
	}

	if err := s.populate(ctx, []*model.Blog{blog}, authorCard); err != nil {
		return nil, err
	}
	return blog, nil
}

// Delete removes a blog on behalf of its author or an admin.
func (s *BlogService) Delete(ctx context.Context, id security.Identity, blogID string) error {
	blog, err := s.find(ctx, blogID)
	if err != nil {
		return err
	}
	if err := security.BlogAuthorOrAdmin.Authorize(id, blog.AuthorID); err != nil {
		return err
	}
	return s.remove(ctx, blogID)
}

func (s *BlogService) remove(ctx context.Context, blogID string) error {
	if err := s.blogRepo.Delete(ctx, blogID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return errBlogNotFound
		}
		return fmt.Errorf("failed to delete blog: %w", err)
	}
	return nil
}

func (s *BlogService) Get(ctx context.Context, blogID string) (*model.Blog, error) {
	blog, err := s.find(ctx, blogID)
	if err != nil {
		return nil, err
	}
	if err := s.populate(ctx, []*model.Blog{blog}, authorCard); err != nil {
		return nil, err
	}
	return blog, nil
}

func (s *BlogService) List(ctx context.Context) ([]*model.Blog, error) {
	blogs, err := s.blogRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list blogs: %w", err)
	}
	if err := s.populate(ctx, blogs, authorBrief); err != nil {
		return nil, err
	}
	return blogs, nil
}

// MyBlogs pages through the caller's own blogs, newest first.
func (s *BlogService) MyBlogs(ctx context.Context, id security.Identity, page, limit int) (*MyBlogsResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	// Pages past math.MaxInt/limit are clamped to an offset past any real
	// total, so they come back empty.
	offset := math.MaxInt - limit
	if page-1 <= offset/limit {
		offset = (page - 1) * limit
	}

	blogs, total, err := s.blogRepo.ListByAuthor(ctx, id.ID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list blogs for %s: %w", id.ID, err)
	}
	if err := s.populate(ctx, blogs, authorCard); err != nil {
		return nil, err
	}
	return &MyBlogsResponse{
		Success: true,
		Blogs:   blogs,
		Pagination: &model.Pagination{
			CurrentPage: page,
			TotalPages:  (total + limit - 1) / limit,
			TotalBlogs:  total,
		},
	}, nil
}

func (s *BlogService) Trending(ctx context.Context) ([]*model.Blog, error) {
	blogs, err := s.blogRepo.Trending(ctx, trendingLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load trending blogs: %w", err)
	}
	if err := s.populate(ctx, blogs, authorBrief); err != nil {
		return nil, err
	}
	return blogs, nil
}

// Authors lists up to authorsLimit distinct users who have published.
func (s *BlogService) Authors(ctx context.Context) ([]*model.UserSummary, error) {
	ids, err := s.blogRepo.AuthorIDs(ctx, authorsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load authors: %w", err)
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load authors: %w", err)
	}
	byID := make(map[string]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	authors := []*model.UserSummary{}
	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			continue
		}
		authors = append(authors, &model.UserSummary{
			ID:       u.ID,
			Username: u.Username,
			Name:     fallback(u.Name, u.Username),
			Avatar:   fallback(u.Avatar, model.DefaultAvatar),
			Bio:      fallback(u.Bio, strings.TrimSuffix(model.DefaultBio, ".")),
		})
	}
	return authors, nil
}

func (s *BlogService) AuthorProfile(ctx context.Context, username string) (*AuthorProfile, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errAuthorNotFound
		}
		return nil, fmt.Errorf("failed to load author: %w", err)
	}
	blogs, _, err := s.blogRepo.ListByAuthor(ctx, user.ID, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list blogs for %s: %w", username, err)
	}
	for _, b := range blogs {
		b.Author = authorCard(user)
	}
	return &AuthorProfile{
		Author: &model.UserSummary{
			ID:       user.ID,
			Username: user.Username,
			Name:     fallback(user.Name, user.Username),
			Avatar:   fallback(user.Avatar, model.DefaultAvatar),
			Bio:      fallback(user.Bio, noBioYet),
		},
		Blogs: blogs,
	}, nil
}

// ToggleLike flips the caller's like on a blog and returns the new count.
func (s *BlogService) ToggleLike(ctx context.Context, id security.Identity, blogID string) (int, error) {
	n, err := s.blogRepo.ToggleLike(ctx, blogID, id.ID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return 0, errBlogNotFound
		}
		return 0, fmt.Errorf("failed to toggle like: %w", err)
	}
	return n, nil
}

func (s *BlogService) AddComment(ctx context.Context, id security.Identity, blogID, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, common.NewValidationError("text", "Comment text is required")
	}
	if len([]rune(text)) > maxCommentRunes {
		return nil, common.NewValidationError("text", fmt.Sprintf("Comment must be at most %d characters", maxCommentRunes))
	}

	c := &model.Comment{
		ID:        uuid.NewString(),
		UserID:    id.ID,
		Username:  id.Username,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.blogRepo.AddComment(ctx, blogID, c); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errBlogNotFound
		}
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return c, nil
}

// populate sets Author on every blog using view. Blogs whose author no
// longer exists keep a nil Author.
func (s *BlogService) populate(ctx context.Context, blogs []*model.Blog, view func(*model.User) *model.UserSummary) error {
	return populateAuthors(ctx, s.userRepo, blogs, view)
}

func populateAuthors(ctx context.Context, users repository.UserRepository, blogs []*model.Blog, view func(*model.User) *model.UserSummary) error {
	if len(blogs) == 0 {
		return nil
	}
	seen := map[string]bool{}
	var ids []string
	for _, b := range blogs {
		if !seen[b.AuthorID] {
			seen[b.AuthorID] = true
			ids = append(ids, b.AuthorID)
		}
	}
	found, err := users.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load blog authors: %w", err)
	}
	byID := make(map[string]*model.User, len(found))
	for _, u := range found {
		byID[u.ID] = u
	}
	for _, b := range blogs {
		if u, ok := byID[b.AuthorID]; ok {
			b.Author = view(u)
		}
	}
	return nil
}

func authorBrief(u *model.User) *model.UserSummary {
	return &model.UserSummary{ID: u.ID, Username: u.Username}
}

func authorCard(u *model.User) *model.UserSummary {
	return &model.UserSummary{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}

func authorContact(u *model.User) *model.UserSummary {
	return &model.UserSummary{ID: u.ID, Username: u.Username, Email: u.Email}
}

func fallback(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
