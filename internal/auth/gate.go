package auth

// Principal is the authenticated user of a request and what it may do.
type Principal struct {
	UserID      uint64
	Username    string
	DisplayName string
	SuperAdmin  bool
	Permissions map[string]struct{}
}

// Has reports whether the principal holds permission, superadmins hold all.
func (p *Principal) Has(permission string) bool {
	if p == nil {
		return false
	}

	if p.SuperAdmin {
		return true
	}

	_, ok := p.Permissions[permission]

	return ok
}

// Name is the label shown in the header.
func (p *Principal) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}

	return p.Username
}

// Requirement is what a page asks of the principal.
type Requirement struct {
	// Permission is the permission key needed, empty means any signed-in user.
	Permission string
	// RequireSuperAdmin restricts the page to superadmins regardless of permissions.
	RequireSuperAdmin bool
}

// Allows evaluates r for p. A nil principal is never allowed.
func (r Requirement) Allows(p *Principal) bool {
	if p == nil {
		return false
	}

	if r.RequireSuperAdmin {
		return p.SuperAdmin
	}

	return p.SuperAdmin || r.Permission == "" || p.Has(r.Permission)
}
