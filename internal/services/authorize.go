package services

import (
	"github.com/discussion-system/discussion-system/internal/models"
)

// Owned is anything with an owning user.
type Owned interface {
	OwnerID() uint
}

// RequireOwner allows the action only when actor owns the resource.
func RequireOwner(actor *models.User, resource Owned, action string) error {
	if actor == nil {
		return ErrInvalidCredentials
	}
	if actor.ID != resource.OwnerID() {
		return newError(ErrForbidden, "Not authorized to "+action)
	}
	return nil
}

// RequireSelf allows the action only when actor is the user it targets.
func RequireSelf(actor *models.User, userID uint) error {
	if actor == nil {
		return ErrInvalidCredentials
	}
	if actor.ID != userID {
		return newError(ErrForbidden, "Not authorized to perform this action")
	}
	return nil
}
