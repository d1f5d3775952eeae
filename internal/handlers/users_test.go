package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/videotube/backend/internal/models"
)

// fakeMediaStore records saved and removed objects.
type fakeMediaStore struct {
	saved   []string
	removed []string
}

func (s *fakeMediaStore) Save(_ context.Context, name, _ string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	s.saved = append(s.saved, name)
	return "https://cdn.example.com/" + name, nil
}

func (s *fakeMediaStore) Remove(_ context.Context, location string) error {
	s.removed = append(s.removed, location)
	return nil
}

func newUserHandler(users *fakeUserStore, media *fakeMediaStore) UserHandler {
	return UserHandler{
		Users:   users,
		History: &fakeHistoryStore{},
		Media:   media,
		NowFunc: func() time.Time { return time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestMe(t *testing.T) {
	users := newFakeUserStore()
	users.users["u1"] = models.User{ID: "u1", Username: "alice", Email: "alice@example.com"}
	handler := newUserHandler(users, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req = asViewer(req, "u1")
	rec := newRecorder()

	handler.Me(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var user models.User
	decodeEnvelope(t, rec, &user)
	if user.Username != "alice" {
		t.Fatalf("expected username alice, got %q", user.Username)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatal("expected password to be omitted from the response")
	}
}

func TestUpdateAccount(t *testing.T) {
	users := newFakeUserStore()
	users.users["u1"] = models.User{ID: "u1", Username: "alice", Email: "alice@example.com", FullName: "Alice"}
	handler := newUserHandler(users, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/me", strings.NewReader(`{"fullName":"Alice B"}`))
	req = asViewer(req, "u1")
	rec := newRecorder()

	handler.UpdateAccount(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if users.users["u1"].FullName != "Alice B" {
		t.Fatalf("expected full name to change, got %q", users.users["u1"].FullName)
	}
	// Absent fields keep their current values.
	if users.users["u1"].Email != "alice@example.com" {
		t.Fatalf("expected email untouched, got %q", users.users["u1"].Email)
	}
}

func TestUpdateAccountValidation(t *testing.T) {
	users := newFakeUserStore()
	users.users["u1"] = models.User{ID: "u1", Username: "alice", Email: "alice@example.com"}
	handler := newUserHandler(users, nil)

	cases := map[string]string{
		"empty patch": `{}`,
		"bad email":   `{"email":"not-an-email"}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/me", strings.NewReader(body))
			req = asViewer(req, "u1")
			rec := newRecorder()

			handler.UpdateAccount(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
		})
	}
}

func TestChangePasswordRejectsWrongCurrent(t *testing.T) {
	users := newFakeUserStore()
	seedUser(t, users, "u1", "alice", "alice@example.com", "secret-pass")
	handler := newUserHandler(users, nil)

	body := `{"currentPassword":"wrong-pass","newPassword":"brand-new-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/me/password", strings.NewReader(body))
	req = asViewer(req, "u1")
	rec := newRecorder()

	handler.ChangePassword(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestUploadAvatarReplacesOldObject(t *testing.T) {
	users := newFakeUserStore()
	users.users["u1"] = models.User{ID: "u1", Username: "alice", AvatarURL: "https://cdn.example.com/avatars/old.png"}
	media := &fakeMediaStore{}
	handler := newUserHandler(users, media)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/me/avatar", strings.NewReader("raw-image-bytes"))
	req.Header.Set("Content-Type", "image/png")
	req = asViewer(req, "u1")
	rec := newRecorder()

	handler.UploadAvatar(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if len(media.saved) != 1 || !strings.HasPrefix(media.saved[0], "avatars/u1-") {
		t.Fatalf("expected avatar to be stored under avatars/, got %v", media.saved)
	}
	if len(media.removed) != 1 || media.removed[0] != "https://cdn.example.com/avatars/old.png" {
		t.Fatalf("expected old avatar to be removed, got %v", media.removed)
	}
	if !strings.HasPrefix(users.users["u1"].AvatarURL, "https://cdn.example.com/avatars/") {
		t.Fatalf("expected avatar url to be updated, got %q", users.users["u1"].AvatarURL)
	}
}

func TestUploadAvatarRejectsNonImage(t *testing.T) {
	users := newFakeUserStore()
	users.users["u1"] = models.User{ID: "u1", Username: "alice"}
	handler := newUserHandler(users, &fakeMediaStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/me/avatar", strings.NewReader("plain text"))
	req.Header.Set("Content-Type", "text/plain")
	req = asViewer(req, "u1")
	rec := newRecorder()

	handler.UploadAvatar(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestWatchHistoryDefaultsEmptySlice(t *testing.T) {
	handler := newUserHandler(newFakeUserStore(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me/history", nil)
	req = asViewer(req, "u1")
	rec := newRecorder()

	handler.WatchHistory(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"data":[]`) {
		t.Fatalf("expected empty data array, got %s", body)
	}
}
