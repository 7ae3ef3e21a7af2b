package services

import "github.com/terraincognita07/worklens/internal/models"

func IsAdminUser(user *models.User) bool {
	return user != nil && user.Role == models.RoleAdmin
}

func IsModeratorUser(user *models.User) bool {
	return user != nil && user.Role == models.RoleModerator
}

// CanViewReports grants report access to privileged roles or through the
// per-user opt-in flag.
func CanViewReports(user *models.User) bool {
	if IsAdminUser(user) || IsModeratorUser(user) {
		return true
	}
	return user != nil && user.CanViewReports
}

// CanLoadTasks gates task create/update/delete.
func CanLoadTasks(user *models.User) bool {
	if IsAdminUser(user) {
		return true
	}
	return user != nil && user.CanLoadTasks
}
