package store

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/shilointercessionmountain-org/shilohwebsite/internal/model"
)

// testDB creates a temporary test database with migrations applied.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "shiloh-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}

	return db, cleanup
}

func createTestUser(t *testing.T, q *Queries, email, role string) model.User {
	t.Helper()

	now := time.Now()
	user, err := q.CreateUser(context.Background(), CreateUserParams{
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
		FirstName:    "Test",
		LastName:     "User",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

func TestCreateUser(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	user, err := q.CreateUser(ctx, CreateUserParams{
		Email:        "test@example.com",
		PasswordHash: "hashed-password",
		Role:         model.RoleUser,
		FirstName:    "Grace",
		LastName:     "Okafor",
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if user.ID == 0 {
		t.Error("user.ID should not be 0")
	}
	if user.Email != "test@example.com" {
		t.Errorf("Email = %q, want %q", user.Email, "test@example.com")
	}
	if user.Role != model.RoleUser {
		t.Errorf("Role = %q, want %q", user.Role, model.RoleUser)
	}
	if user.FirstName != "Grace" {
		t.Errorf("FirstName = %q, want %q", user.FirstName, "Grace")
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	q := New(db)
	createTestUser(t, q, "dup@example.com", model.RoleUser)

	now := time.Now()
	_, err := q.CreateUser(context.Background(), CreateUserParams{
		Email:        "dup@example.com",
		PasswordHash: "hash",
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err == nil {
		t.Fatal("expected unique constraint error, got nil")
	}
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	q := New(db)
	_, err := q.GetUserByEmail(context.Background(), "nonexistent@example.com")
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestUpdateUserProfile(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	user := createTestUser(t, q, "profile@example.com", model.RoleUser)

	updated, err := q.UpdateUserProfile(ctx, UpdateUserProfileParams{
		ID:        user.ID,
		FirstName: "Deborah",
		LastName:  "Mensah",
		Phone:     sql.NullString{String: "+233201234567", Valid: true},
		Title:     sql.NullString{String: "Deaconess", Valid: true},
		UpdatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("UpdateUserProfile: %v", err)
	}

	if updated.FirstName != "Deborah" {
		t.Errorf("FirstName = %q, want %q", updated.FirstName, "Deborah")
	}
	if !updated.Phone.Valid || updated.Phone.String != "+233201234567" {
		t.Errorf("Phone = %+v, want valid +233201234567", updated.Phone)
	}
}

func TestCountUsersByRole(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	createTestUser(t, q, "a@example.com", model.RoleAdmin)
	createTestUser(t, q, "b@example.com", model.RoleAdmin)
	createTestUser(t, q, "c@example.com", model.RoleUser)

	n, err := q.CountUsersByRole(ctx, model.RoleAdmin)
	if err != nil {
		t.Fatalf("CountUsersByRole: %v", err)
	}
	if n != 2 {
		t.Errorf("admin count = %d, want 2", n)
	}
}

func TestAdminRequestLifecycle(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	user := createTestUser(t, q, "applicant@example.com", model.RoleUser)
	reviewer := createTestUser(t, q, "reviewer@example.com", model.RoleAdmin)

	req, err := q.CreateAdminRequest(ctx, user.ID, time.Now())
	if err != nil {
		t.Fatalf("CreateAdminRequest: %v", err)
	}
	if req.Status != model.RequestStatusPending {
		t.Errorf("Status = %q, want %q", req.Status, model.RequestStatusPending)
	}

	// Second request for the same user must violate the unique constraint
	if _, err := q.CreateAdminRequest(ctx, user.ID, time.Now()); err == nil {
		t.Error("second request for same user succeeded, want unique constraint error")
	}

	pending, err := q.ListAdminRequestsByStatus(ctx, model.RequestStatusPending)
	if err != nil {
		t.Fatalf("ListAdminRequestsByStatus: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending count = %d, want 1", len(pending))
	}
	if pending[0].UserEmail != "applicant@example.com" {
		t.Errorf("UserEmail = %q, want applicant@example.com", pending[0].UserEmail)
	}

	decided, err := q.UpdateAdminRequestStatus(ctx, UpdateAdminRequestStatusParams{
		ID:         req.ID,
		Status:     model.RequestStatusApproved,
		ReviewedBy: reviewer.ID,
		ReviewedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("UpdateAdminRequestStatus: %v", err)
	}
	if decided.Status != model.RequestStatusApproved {
		t.Errorf("Status = %q, want %q", decided.Status, model.RequestStatusApproved)
	}

	// A decided request cannot be reviewed again
	if _, err := q.UpdateAdminRequestStatus(ctx, UpdateAdminRequestStatusParams{
		ID:         req.ID,
		Status:     model.RequestStatusRejected,
		ReviewedBy: reviewer.ID,
		ReviewedAt: time.Now(),
	}); err != sql.ErrNoRows {
		t.Errorf("re-review: expected sql.ErrNoRows, got %v", err)
	}
}

func TestDeleteUserCascadesRequest(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	user := createTestUser(t, q, "gone@example.com", model.RoleUser)

	if _, err := q.CreateAdminRequest(ctx, user.ID, time.Now()); err != nil {
		t.Fatalf("CreateAdminRequest: %v", err)
	}

	if err := q.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	if _, err := q.GetAdminRequestByUserID(ctx, user.ID); err != sql.ErrNoRows {
		t.Errorf("request survived user deletion: %v", err)
	}
}

func TestGalleryAlbumCascade(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now()
	album, err := q.CreateGalleryAlbum(ctx, CreateGalleryAlbumParams{
		Title:     "Easter 2026",
		Slug:      "easter-2026",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateGalleryAlbum: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := q.CreateGalleryImage(ctx, CreateGalleryImageParams{
			AlbumID:   album.ID,
			UUID:      string(rune('a'+i)) + "-uuid",
			FilePath:  "gallery/x.jpg",
			Position:  int64(i),
			CreatedAt: now,
		}); err != nil {
			t.Fatalf("CreateGalleryImage: %v", err)
		}
	}

	if err := q.DeleteGalleryAlbum(ctx, album.ID); err != nil {
		t.Fatalf("DeleteGalleryAlbum: %v", err)
	}

	images, err := q.ListGalleryImagesByAlbum(ctx, album.ID)
	if err != nil {
		t.Fatalf("ListGalleryImagesByAlbum: %v", err)
	}
	if len(images) != 0 {
		t.Errorf("images survived album deletion: %d rows", len(images))
	}
}

func TestDeactivatePastEvents(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	now := time.Now()

	past, err := q.CreateEvent(ctx, CreateEventParams{
		Title:     "Past Revival",
		Slug:      "past-revival",
		StartsAt:  now.Add(-72 * time.Hour),
		EndsAt:    sql.NullTime{Time: now.Add(-48 * time.Hour), Valid: true},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	future, err := q.CreateEvent(ctx, CreateEventParams{
		Title:     "Upcoming Crusade",
		Slug:      "upcoming-crusade",
		StartsAt:  now.Add(48 * time.Hour),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	changed, err := q.DeactivatePastEvents(ctx, now)
	if err != nil {
		t.Fatalf("DeactivatePastEvents: %v", err)
	}
	if changed != 1 {
		t.Errorf("changed = %d, want 1", changed)
	}

	got, err := q.GetEventByID(ctx, past.ID)
	if err != nil {
		t.Fatalf("GetEventByID: %v", err)
	}
	if got.IsActive {
		t.Error("past event still active")
	}

	got, err = q.GetEventByID(ctx, future.ID)
	if err != nil {
		t.Fatalf("GetEventByID: %v", err)
	}
	if !got.IsActive {
		t.Error("future event deactivated")
	}
}

func TestChurchInfoUpsert(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	if err := q.UpsertChurchInfo(ctx, UpsertChurchInfoParams{
		Name:      "Shiloh Intercession Mountain",
		About:     "first version",
		UpdatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("UpsertChurchInfo: %v", err)
	}

	if err := q.UpsertChurchInfo(ctx, UpsertChurchInfoParams{
		Name:      "Shiloh Intercession Mountain",
		About:     "second version",
		Phone:     sql.NullString{String: "+15551234567", Valid: true},
		UpdatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("UpsertChurchInfo (update): %v", err)
	}

	info, err := q.GetChurchInfo(ctx)
	if err != nil {
		t.Fatalf("GetChurchInfo: %v", err)
	}
	if info.About != "second version" {
		t.Errorf("About = %q, want %q", info.About, "second version")
	}
	if !info.Phone.Valid {
		t.Error("Phone not stored")
	}
}

func TestAuditEventRetention(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)
	now := time.Now()

	for _, age := range []time.Duration{-100 * 24 * time.Hour, -time.Hour} {
		if _, err := q.CreateAuditEvent(ctx, CreateAuditEventParams{
			Level:     model.EventLevelInfo,
			Category:  model.EventCategorySystem,
			Message:   "entry",
			Metadata:  "{}",
			CreatedAt: now.Add(age),
		}); err != nil {
			t.Fatalf("CreateAuditEvent: %v", err)
		}
	}

	deleted, err := q.DeleteAuditEventsBefore(ctx, now.Add(-90*24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteAuditEventsBefore: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	remaining, err := q.CountAuditEvents(ctx, "")
	if err != nil {
		t.Fatalf("CountAuditEvents: %v", err)
	}
	if remaining != 1 {
		t.Errorf("remaining = %d, want 1", remaining)
	}
}
