// Package service holds the business rules between HTTP handlers and repositories.
package service

import "fakex/internal/models"

// Viewer is the caller of an operation, resolved once per request.
// It is either Anonymous or Authenticated.
type Viewer interface {
	isViewer()
}

// Anonymous is a caller without a provisioned user.
type Anonymous struct{}

// Authenticated is a caller whose token subject maps to User.
type Authenticated struct {
	User *models.User
}

func (Anonymous) isViewer()     {}
func (Authenticated) isViewer() {}

// viewerID returns the acting user's id, or 0 for anonymous callers.
func viewerID(v Viewer) uint {
	if a, ok := v.(Authenticated); ok && a.User != nil {
		return a.User.ID
	}
	return 0
}

// actingUser returns the user behind v, or NOT_FOUND when there is none.
func actingUser(v Viewer) (*models.User, error) {
	if a, ok := v.(Authenticated); ok && a.User != nil {
		return a.User, nil
	}
	return nil, models.NewNotFoundError("User")
}
