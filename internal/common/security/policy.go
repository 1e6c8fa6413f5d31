package security

import (
	"lexora/internal/common"
	"lexora/internal/domain/model"
)

// Policy is the authorization rule of one endpoint, evaluated by Authorize.
type Policy struct {
	Name string
	// Roles the identity must hold one of. Empty allows any role.
	Roles []string
	// Owned requires the identity to own the resource.
	Owned bool
	// AdminBypass lets admins pass the ownership check.
	AdminBypass bool
	// Deny is returned on failure.
	Deny error
}

// Authorize returns nil when id satisfies p for a resource owned by ownerID.
// ownerID is ignored for policies that are not Owned.
func (p Policy) Authorize(id Identity, ownerID string) error {
	if id.ID == "" {
		return common.NewPublicError(common.ErrUnauthorized, "No token, authorization denied")
	}
	if len(p.Roles) > 0 && !hasRole(p.Roles, id.Role) {
		return p.Deny
	}
	if !p.Owned {
		return nil
	}
	if ownerID != "" && id.ID == ownerID {
		return nil
	}
	if p.AdminBypass && id.IsAdmin() {
		return nil
	}
	return p.Deny
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

var (
	// AdminOnly gates every /api/admin endpoint.
	AdminOnly = Policy{
		Name:  "admin-only",
		Roles: []string{model.RoleAdmin},
		Deny:  common.NewPublicError(common.ErrForbidden, "Admin access required"),
	}
	// SelfOnly gates changes to a user's own profile.
	SelfOnly = Policy{
		Name:  "self-only",
		Owned: true,
		Deny:  common.NewPublicError(common.ErrForbidden, "Unauthorized to update this profile"),
	}
	// BlogAuthor gates blog edits.
	BlogAuthor = Policy{
		Name:  "blog-author",
		Owned: true,
		Deny:  common.NewPublicError(common.ErrUnauthorized, "User not authorized"),
	}
	// BlogAuthorOrAdmin gates blog deletion.
	BlogAuthorOrAdmin = Policy{
		Name:        "blog-author-or-admin",
		Owned:       true,
		AdminBypass: true,
		Deny:        common.NewPublicError(common.ErrUnauthorized, "User not authorized"),
	}
)
