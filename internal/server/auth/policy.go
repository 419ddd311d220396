// Package auth turns identity tokens into session cookies and session
// cookies back into principals, and holds the role policy shared by the API
// and the dashboard.
package auth

import "github.com/dmitrijs2005/rabetweb/internal/server/models"

// StaffRoles may use the dashboard.
var StaffRoles = []models.Role{models.RoleModerator, models.RoleAdministrator}

// Allows reports whether role is one of required. An empty required set
// allows every role.
func Allows(role models.Role, required ...models.Role) bool {
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if r == role {
			return true
		}
	}
	return false
}
