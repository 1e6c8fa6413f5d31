package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"testing"
	"time"

	"lexora/internal/common"
	"lexora/internal/common/security"
	"lexora/internal/domain/model"
)

func (f *fixture) addBlog(t *testing.T, id, authorID string, at time.Time, likes ...string) {
	t.Helper()
	if likes == nil {
		likes = []string{}
	}
	err := f.blogs.Create(context.Background(), &model.Blog{
		ID: id, Title: id, Slug: id, Content: "<p>" + id + "</p>", AuthorID: authorID,
		Tags: []string{}, Likes: likes, Comments: []model.Comment{},
		CreatedAt: at, UpdatedAt: at,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestCreateBlog(t *testing.T) {
	f := newFixture()
	alice := f.addUser(t, "alice", model.RoleUser)
	svc := f.blogService()

	blog, err := svc.Create(context.Background(), alice, BlogInput{
		Title:   "  Hello World  ",
		Content: `<p onclick="x()">Hi <b>there</b></p><script>alert(1)</script>`,
		Tags:    TagList{"go", " web ", "go"},
		Image:   &Upload{Filename: "cover.png", Data: pngBytes},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if blog.Title != "Hello World" || blog.Slug != "hello-world" {
		t.Errorf("title/slug = %q/%q", blog.Title, blog.Slug)
	}
	if strings.Contains(blog.Content, "script") || strings.Contains(blog.Content, "onclick") {
		t.Errorf("content not sanitized: %q", blog.Content)
	}
	if blog.Excerpt != "Hi there" {
		t.Errorf("excerpt = %q", blog.Excerpt)
	}
	if fmt.Sprint(blog.Tags) != "[go web]" {
		t.Errorf("tags = %v", blog.Tags)
	}
	if !strings.HasPrefix(blog.Image, "/uploads/blog-") || !strings.HasSuffix(blog.Image, ".png") {
		t.Errorf("image = %q", blog.Image)
	}
	if blog.AuthorID != alice.ID || blog.Author == nil || blog.Author.Username != "alice" {
		t.Errorf("author = %q %+v", blog.AuthorID, blog.Author)
	}
	if len(f.recorder.calls) != 1 || f.recorder.calls[0] != model.ActivityCreateBlog {
		t.Errorf("recorded = %v", f.recorder.calls)
	}
}

func TestCreateBlogValidation(t *testing.T) {
	f := newFixture()
	alice := f.addUser(t, "alice", model.RoleUser)
	svc := f.blogService()

	tests := []struct {
		name  string
		in    BlogInput
		field string
	}{
		{"missing title", BlogInput{Content: "<p>x</p>"}, "title"},
		{"missing content", BlogInput{Title: "t"}, "content"},
		{"content sanitized away", BlogInput{Title: "t", Content: "<script>x</script>"}, "content"},
		{"title too long", BlogInput{Title: strings.Repeat("a", 201), Content: "x"}, "title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), alice, tt.in)
			var verr *common.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v", err)
			}
			if verr.Fields[0].Field != tt.field {
				t.Errorf("field = %q, want %q", verr.Fields[0].Field, tt.field)
			}
		})
	}
	if all, _ := f.blogs.List(context.Background()); len(all) != 0 {
		t.Fatalf("invalid blogs were stored: %d", len(all))
	}
}

func TestCreateBlogRejectsNonImage(t *testing.T) {
	f := newFixture()
	alice := f.addUser(t, "alice", model.RoleUser)
	_, err := f.blogService().Create(context.Background(), alice, BlogInput{
		Title: "t", Content: "c", Image: &Upload{Filename: "x.png", Data: []byte("plain text")},
	})
	if common.HTTPStatusFromError(err) != http.StatusBadRequest {
		t.Fatalf("err = %v", err)
	}
}

func TestBlogOwnership(t *testing.T) {
	tests := []struct {
		name       string
		caller     string
		role       string
		updateCode int
		deleteCode int
	}{
		{"author", "alice", model.RoleUser, http.StatusOK, http.StatusOK},
		{"other user", "bob", model.RoleUser, http.StatusUnauthorized, http.StatusUnauthorized},
		{"admin", "root", model.RoleAdmin, http.StatusUnauthorized, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			alice := f.addUser(t, "alice", model.RoleUser)
			caller := alice
			if tt.caller != "alice" {
				caller = f.addUser(t, tt.caller, tt.role)
			}
			f.addBlog(t, "b1", alice.ID, time.Now())
			svc := f.blogService()

			_, err := svc.Update(context.Background(), caller, "b1", BlogInput{Title: "New", Content: "<p>new</p>"})
			if got := common.HTTPStatusFromError(err); tt.updateCode != http.StatusOK && got != tt.updateCode {
				t.Errorf("update status = %d, want %d", got, tt.updateCode)
			} else if tt.updateCode == http.StatusOK && err != nil {
				t.Errorf("update: %v", err)
			}
			stored, _ := f.blogs.FindByID(context.Background(), "b1")
			if tt.updateCode != http.StatusOK && stored.Title != "b1" {
				t.Errorf("blog changed by unauthorized update: %q", stored.Title)
			}
			if tt.updateCode == http.StatusOK && (stored.Title != "New" || stored.Slug != "new") {
				t.Errorf("update not applied: %+v", stored)
			}

			err = svc.Delete(context.Background(), caller, "b1")
			_, findErr := f.blogs.FindByID(context.Background(), "b1")
			if tt.deleteCode == http.StatusOK {
				if err != nil || !errors.Is(findErr, common.ErrNotFound) {
					t.Errorf("delete: err=%v find=%v", err, findErr)
				}
			} else {
				if common.HTTPStatusFromError(err) != tt.deleteCode || findErr != nil {
					t.Errorf("delete: err=%v find=%v", err, findErr)
				}
			}
		})
	}
}

func TestUpdateMissingBlog(t *testing.T) {
	f := newFixture()
	alice := f.addUser(t, "alice", model.RoleUser)
	_, err := f.blogService().Update(context.Background(), alice, "nope", BlogInput{Title: "t", Content: "c"})
	if common.PublicMessage(err) != "Blog not found" {
		t.Fatalf("err = %v", err)
	}
	if err := f.blogService().Delete(context.Background(), alice, "nope"); common.HTTPStatusFromError(err) != http.StatusNotFound {
		t.Fatalf("err = %v", err)
	}
}

func TestToggleLikeTwiceRestores(t *testing.T) {
	f := newFixture()
	alice := f.addUser(t, "alice", model.RoleUser)
	bob := f.addUser(t, "bob", model.RoleUser)
	f.addBlog(t, "b1", alice.ID, time.Now(), alice.ID)
	svc := f.blogService()

	if n, err := svc.ToggleLike(context.Background(), bob, "b1"); err != nil || n != 2 {
		t.Fatalf("first toggle = %d, %v", n, err)
	}
	if n, err := svc.ToggleLike(context.Background(), bob, "b1"); err != nil || n != 1 {
		t.Fatalf("second toggle = %d, %v", n, err)
	}
	blog, _ := f.blogs.FindByID(context.Background(), "b1")
	if fmt.Sprint(blog.Likes) != fmt.Sprint([]string{alice.ID}) {
		t.Fatalf("likes = %v", blog.Likes)
	}
	if _, err := svc.ToggleLike(context.Background(), bob, "missing"); common.HTTPStatusFromError(err) != http.StatusNotFound {
		t.Fatalf("err = %v", err)
	}
}

func TestAddComment(t *testing.T) {
	f := newFixture()
	alice := f.addUser(t, "alice", model.RoleUser)
	bob := f.addUser(t, "bob", model.RoleUser)
	f.addBlog(t, "b1", alice.ID, time.Now())
	svc := f.blogService()

	for _, text := range []string{"", "   ", strings.Repeat("x", 2001)} {
		if _, err := svc.AddComment(context.Background(), bob, "b1", text); !errors.Is(err, common.ErrValidation) {
			t.Errorf("%d chars: err = %v", len(text), err)
		}
	}

	first, err := svc.AddComment(context.Background(), bob, "b1", " first ")
	if err != nil {
		t.Fatal(err)
	}
	if first.Text != "first" || first.UserID != bob.ID || first.Username != "bob" {
		t.Errorf("comment = %+v", first)
	}
	if _, err := svc.AddComment(context.Background(), alice, "b1", "second"); err != nil {
		t.Fatal(err)
	}

	blog, _ := f.blogs.FindByID(context.Background(), "b1")
	if len(blog.Comments) != 2 || blog.Comments[0].Text != "second" {
		t.Fatalf("comments = %+v", blog.Comments)
	}
	if _, err := svc.AddComment(context.Background(), bob, "missing", "hi"); common.HTTPStatusFromError(err) != http.StatusNotFound {
		t.Fatalf("err = %v", err)
	}
}

func TestMyBlogsPagination(t *testing.T) {
	f := newFixture()
	alice := f.addUser(t, "alice", model.RoleUser)
	bob := f.addUser(t, "bob", model.RoleUser)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		f.addBlog(t, fmt.Sprintf("a%02d", i), alice.ID, base.Add(time.Duration(i)*time.Hour))
	}
	f.addBlog(t, "bob-post", bob.ID, base)
	svc := f.blogService()

	tests := []struct {
		page, limit int
		wantLen     int
		wantFirst   string
		wantPage    int
		wantPages   int
	}{
		{0, 0, 10, "a11", 1, 2},
		{2, 10, 2, "a01", 2, 2},
		{1, 5, 5, "a11", 1, 3},
		{3, 5, 2, "a01", 3, 3},
		{9, 5, 0, "", 9, 3},
		{1, 500, 12, "a11", 1, 1},
		{math.MaxInt, 0, 0, "", math.MaxInt, 2},
		{1e18, 50, 0, "", 1e18, 1},
	}
	for _, tt := range tests {
		resp, err := svc.MyBlogs(context.Background(), alice, tt.page, tt.limit)
		if err != nil {
			t.Fatal(err)
		}
		if len(resp.Blogs) != tt.wantLen {
			t.Errorf("page=%d limit=%d: len = %d, want %d", tt.page, tt.limit, len(resp.Blogs), tt.wantLen)
			continue
		}
		if tt.wantLen > 0 && resp.Blogs[0].ID != tt.wantFirst {
			t.Errorf("page=%d limit=%d: first = %s, want %s", tt.page, tt.limit, resp.Blogs[0].ID, tt.wantFirst)
		}
		p := resp.Pagination
		if !resp.Success || p.CurrentPage != tt.wantPage || p.TotalPages != tt.wantPages || p.TotalBlogs != 12 {
			t.Errorf("page=%d limit=%d: pagination = %+v", tt.page, tt.limit, p)
		}
	}

	empty, err := svc.MyBlogs(context.Background(), security.Identity{ID: "nobody", Role: model.RoleUser}, 1, 10)
	if err != nil || empty.Blogs == nil || empty.Pagination.TotalPages != 0 {
		t.Fatalf("empty = %+v, %v", empty, err)
	}
}

func TestTrendingAndList(t *testing.T) {
	f := newFixture()
	alice := f.addUser(t, "alice", model.RoleUser)
	now := time.Now()
	f.addBlog(t, "quiet", alice.ID, now)
	f.addBlog(t, "popular", alice.ID, now.Add(-time.Hour), "u1", "u2", "u3")
	f.addBlog(t, "liked", alice.ID, now.Add(-2*time.Hour), "u1")
	f.addBlog(t, "old", alice.ID, now.Add(-3*time.Hour))
	svc := f.blogService()

	trending, err := svc.Trending(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, b := range trending {
		ids = append(ids, b.ID)
	}
	if fmt.Sprint(ids) != "[popular liked quiet]" {
		t.Fatalf("trending = %v", ids)
	}

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 4 || list[0].ID != "quiet" || list[0].Author == nil || list[0].Author.Username != "alice" {
		t.Fatalf("list[0] = %+v", list[0])
	}
	if list[0].Author.Email != "" || list[0].Author.Avatar != "" {
		t.Errorf("list author leaks fields: %+v", list[0].Author)
	}
}

func TestAuthorsFallbacks(t *testing.T) {
	f := newFixture()
	alice := f.addUser(t, "alice", model.RoleUser)
	bare := &model.User{ID: "bare-id", Username: "bare", Email: "bare@x.com", Role: model.RoleUser, IsActive: true}
	if err := f.users.Create(context.Background(), bare); err != nil {
		t.Fatal(err)
	}
	f.addUser(t, "lurker", model.RoleUser)
	now := time.Now()
	f.addBlog(t, "b1", alice.ID, now.Add(-time.Hour))
	f.addBlog(t, "b2", bare.ID, now)
	f.addBlog(t, "b3", alice.ID, now.Add(-2*time.Hour))
	svc := f.blogService()

	authors, err := svc.Authors(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(authors) != 2 {
		t.Fatalf("authors = %+v", authors)
	}
	got := authors[0]
	if got.Username != "bare" || got.Name != "bare" || got.Avatar != model.DefaultAvatar || got.Bio != "Passionate writer" {
		t.Errorf("fallbacks = %+v", got)
	}
	if authors[1].Username != "alice" {
		t.Errorf("second author = %+v", authors[1])
	}

	profile, err := svc.AuthorProfile(context.Background(), "bare")
	if err != nil {
		t.Fatal(err)
	}
	if profile.Author.Bio != "This user has not written a bio yet." || len(profile.Blogs) != 1 || profile.Blogs[0].Author.Username != "bare" {
		t.Errorf("profile = %+v", profile)
	}
	if _, err := svc.AuthorProfile(context.Background(), "ghost"); common.PublicMessage(err) != "Author not found" {
		t.Errorf("err = %v", err)
	}
}
