package service

import (
	"acadex.dev/acadex/internal/model"
	"acadex.dev/acadex/pkg/apperror"
	"github.com/google/uuid"
)

func parseUUID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid id")
	}
	return parsed, nil
}

// roleRank orders the role hierarchy for moderation checks.
func roleRank(role string) int {
	switch role {
	case model.RoleOwner:
		return 3
	case model.RoleAdmin:
		return 2
	case model.RoleUser:
		return 1
	default:
		return 0
	}
}

// userRef snapshots the identity fields denormalized into courses,
// questions, reviews and rosters at write time.
func userRef(user *model.User) model.UserRef {
	return model.UserRef{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}
