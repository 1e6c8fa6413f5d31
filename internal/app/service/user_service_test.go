package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"lexora/internal/common"
	"lexora/internal/domain/model"
)

func TestUpdateAvatar(t *testing.T) {
	f := newFixture()
	alice := f.addUser(t, "alice", model.RoleUser)
	var storedKey string
	f.images.PutFn = func(_ context.Context, key, contentType string, _ []byte) (string, error) {
		if contentType != "image/png" {
			t.Errorf("content type = %q", contentType)
		}
		storedKey = key
		return "/uploads/" + key, nil
	}
	svc := NewUserService(f.users, f.images)

	resp, err := svc.UpdateAvatar(context.Background(), alice, alice.ID, &Upload{Filename: "me.png", Data: pngBytes})
	if err != nil {
		t.Fatalf("UpdateAvatar: %v", err)
	}
	if !strings.HasPrefix(storedKey, "avatar-") {
		t.Errorf("key = %q", storedKey)
	}
	if resp.Message != "Avatar updated successfully" || resp.Avatar != "/uploads/"+storedKey || resp.User.ID != alice.ID {
		t.Errorf("resp = %+v", resp)
	}
	u, _ := f.users.FindByID(context.Background(), alice.ID)
	if u.Avatar != resp.Avatar {
		t.Errorf("stored avatar = %q", u.Avatar)
	}
}

func TestUpdateAvatarOtherUserForbidden(t *testing.T) {
	f := newFixture()
	alice := f.addUser(t, "alice", model.RoleUser)
	bob := f.addUser(t, "bob", model.RoleUser)
	root := f.addUser(t, "root", model.RoleAdmin)
	f.images.PutFn = func(context.Context, string, string, []byte) (string, error) {
		t.Error("image stored for a forbidden request")
		return "", nil
	}
	svc := NewUserService(f.users, f.images)

	for _, caller := range []string{bob.ID, root.ID} {
		id := bob
		if caller == root.ID {
			id = root
		}
		_, err := svc.UpdateAvatar(context.Background(), id, alice.ID, &Upload{Data: pngBytes})
		if common.HTTPStatusFromError(err) != http.StatusForbidden || common.PublicMessage(err) != "Unauthorized to update this profile" {
			t.Errorf("%s: err = %v", id.Username, err)
		}
	}
	u, _ := f.users.FindByID(context.Background(), alice.ID)
	if u.Avatar != model.DefaultAvatar {
		t.Fatalf("avatar changed to %q", u.Avatar)
	}
}

func TestUpdateAvatarErrors(t *testing.T) {
	f := newFixture()
	alice := f.addUser(t, "alice", model.RoleUser)
	svc := NewUserService(f.users, f.images)

	_, err := svc.UpdateAvatar(context.Background(), alice, alice.ID, nil)
	if !errors.Is(err, common.ErrValidation) || common.PublicMessage(err) != "No avatar file provided" {
		t.Errorf("nil upload: err = %v", err)
	}

	_, err = svc.UpdateAvatar(context.Background(), alice, alice.ID, &Upload{Data: []byte("%PDF-1.4")})
	if !errors.Is(err, common.ErrValidation) {
		t.Errorf("pdf upload: err = %v", err)
	}

	ghost := alice
	ghost.ID = "ghost"
	_, err = svc.UpdateAvatar(context.Background(), ghost, "ghost", &Upload{Data: pngBytes})
	if common.PublicMessage(err) != "User not found" {
		t.Errorf("missing user: err = %v", err)
	}
}
