package service

import "github.com/noah-isme/school-fees-api/internal/models"

// Actor identifies the authenticated caller of a service operation.
type Actor struct {
	ID   uint
	Role models.Role
}

// SystemActor is used for audit entries written by background jobs.
var SystemActor = Actor{Role: "system"}

func (a Actor) isStudent() bool {
	return a.Role == models.RoleStudent
}

// owns reports whether a student actor is the owner of the given account. Staff always pass.
func (a Actor) owns(userID uint) bool {
	if !a.isStudent() {
		return true
	}
	return a.ID == userID
}
