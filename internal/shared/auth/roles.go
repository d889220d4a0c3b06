package auth

// Roles recognised by the platform
const (
	RoleAdmin     = "admin"
	RoleLawyer    = "lawyer"
	RoleAssistant = "assistant"
	RoleClient    = "client"
)

// ValidRole reports whether role is one the platform recognises
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleLawyer, RoleAssistant, RoleClient:
		return true
	}
	return false
}
