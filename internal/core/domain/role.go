package domain

import (
	"net/url"
	"strings"
)

// Role is the closed set of roles a Profile can hold.
type Role string

const (
	RoleApplicant  Role = "applicant"
	RoleHR         Role = "hr"
	RoleSuperAdmin Role = "super_admin"
)

// Route constants for the three protected areas and the login screen.
const (
	LoginRoute = "/login"

	AdminPrefix     = "/admin"
	HRPrefix        = "/hr"
	ApplicantPrefix = "/applicant"

	AdminHome     = AdminPrefix + "/dashboard"
	HRHome        = HRPrefix + "/dashboard"
	ApplicantHome = ApplicantPrefix + "/dashboard"
)

type roleRoute struct {
	prefix string
	home   string
}

// routeTable is consulted by every redirect site. Do not inline role
// comparisons elsewhere.
var routeTable = map[Role]roleRoute{
	RoleSuperAdmin: {prefix: AdminPrefix, home: AdminHome},
	RoleHR:         {prefix: HRPrefix, home: HRHome},
	RoleApplicant:  {prefix: ApplicantPrefix, home: ApplicantHome},
}

// Roles lists every known role.
func Roles() []Role {
	return []Role{RoleApplicant, RoleHR, RoleSuperAdmin}
}

// ParseRole converts a raw string into a Role. Unknown values are rejected.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(s))
	if _, ok := routeTable[r]; !ok {
		return "", ErrInvalidRole
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := routeTable[r]
	return ok
}

func (r Role) String() string {
	return string(r)
}

// HomeRoute returns the landing page for the role. Unknown roles fall back to
// the applicant home.
func (r Role) HomeRoute() string {
	if rt, ok := routeTable[r]; ok {
		return rt.home
	}
	return ApplicantHome
}

// Prefix returns the path prefix of the area owned by the role, or "" for
// unknown roles.
func (r Role) Prefix() string {
	return routeTable[r].prefix
}

// RouteFor is the package-level spelling of Role.HomeRoute.
func RouteFor(r Role) string {
	return r.HomeRoute()
}

// AreaFor returns the role owning the protected area that path falls under.
func AreaFor(path string) (Role, bool) {
	for role, rt := range routeTable {
		if path == rt.prefix || strings.HasPrefix(path, rt.prefix+"/") {
			return role, true
		}
	}
	return "", false
}

// LoginRedirect builds the login URL that returns the user to next after
// signing in.
func LoginRedirect(next string) string {
	if next == "" {
		return LoginRoute
	}
	return LoginRoute + "?next=" + url.QueryEscape(next)
}
