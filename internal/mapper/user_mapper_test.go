package mapper

import (
	"testing"
	"time"

	"ai-contract-review-be/internal/entity"
	"ai-contract-review-be/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func TestUserMapperRoundTrip(t *testing.T) {
	m := NewUserMapper()

	now := time.Now()
	e := &entity.User{
		Id:        uuid.New(),
		Email:     "round@trip.test",
		Password:  "hash",
		FullName:  "Round Trip",
		CreatedAt: now,
		UpdatedAt: &now,
	}

	got := m.ToEntity(m.ToModel(e))
	if got.Id != e.Id || got.Email != e.Email || got.FullName != e.FullName {
		t.Fatalf("round trip lost identity fields: %+v", got)
	}
	if got.UpdatedAt == nil || !got.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, now)
	}
	if got.IsDeleted {
		t.Error("IsDeleted should be false for a live user")
	}
}

func TestUserMapperNilTimestamps(t *testing.T) {
	m := NewUserMapper()

	// A never-updated entity maps to a zero model timestamp and back to nil.
	mod := m.ToModel(&entity.User{Id: uuid.New(), Email: "fresh@user.test"})
	if !mod.UpdatedAt.IsZero() {
		t.Errorf("UpdatedAt = %v, want zero", mod.UpdatedAt)
	}
	if got := m.ToEntity(mod); got.UpdatedAt != nil {
		t.Errorf("UpdatedAt = %v, want nil", got.UpdatedAt)
	}
}

func TestUserMapperSoftDelete(t *testing.T) {
	m := NewUserMapper()

	when := time.Now().Add(-time.Hour)
	got := m.ToEntity(&model.User{
		Id:        uuid.New(),
		Email:     "gone@user.test",
		DeletedAt: gorm.DeletedAt{Time: when, Valid: true},
	})
	if !got.IsDeleted || got.DeletedAt == nil || !got.DeletedAt.Equal(when) {
		t.Fatalf("soft delete not carried: IsDeleted=%v DeletedAt=%v", got.IsDeleted, got.DeletedAt)
	}

	back := m.ToModel(got)
	if !back.DeletedAt.Valid || !back.DeletedAt.Time.Equal(when) {
		t.Errorf("DeletedAt = %+v, want valid at %v", back.DeletedAt, when)
	}
}
