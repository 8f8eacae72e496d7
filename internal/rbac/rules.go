package rbac

// Default policy for the two roles the credential can carry. Admins author
// and manage courses; students browse and take them.
var RolePermissions = map[string][]string{
	"STUDENT": {
		"course:list",
		"course:learn",
		"quiz:submit",
		"check:submit",
	},
	"ADMIN": {
		"course:*",
		"module:*",
		"lesson:*",
		"quiz:edit",
		"question:*",
		"generate:*",
	},
}
