package domain

import (
	"errors"
	"testing"
)

func TestRouteFor(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleSuperAdmin, "/admin/dashboard"},
		{RoleHR, "/hr/dashboard"},
		{RoleApplicant, "/applicant/dashboard"},
		{Role(""), "/applicant/dashboard"},
		{Role("owner"), "/applicant/dashboard"},
	}
	for _, tt := range tests {
		if got := RouteFor(tt.role); got != tt.want {
			t.Errorf("RouteFor(%q) = %q, want %q", tt.role, got, tt.want)
		}
	}
}

func TestParseRole(t *testing.T) {
	for _, r := range Roles() {
		got, err := ParseRole(" " + string(r) + " ")
		if err != nil || got != r {
			t.Errorf("ParseRole(%q) = %q, %v", r, got, err)
		}
	}
	for _, raw := range []string{"", "admin", "HR", "superadmin"} {
		if _, err := ParseRole(raw); !errors.Is(err, ErrInvalidRole) {
			t.Errorf("ParseRole(%q): expected ErrInvalidRole, got %v", raw, err)
		}
	}
}

func TestAreaFor(t *testing.T) {
	tests := []struct {
		path string
		want Role
		ok   bool
	}{
		{"/admin", RoleSuperAdmin, true},
		{"/admin/users", RoleSuperAdmin, true},
		{"/hr/applications/1", RoleHR, true},
		{"/applicant/jobs", RoleApplicant, true},
		{"/administrator", "", false},
		{"/login", "", false},
	}
	for _, tt := range tests {
		got, ok := AreaFor(tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("AreaFor(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestGuard(t *testing.T) {
	tests := []struct {
		name     string
		required []Role
		current  Role
		allowed  bool
		redirect string
	}{
		{"member", []Role{RoleHR, RoleSuperAdmin}, RoleHR, true, ""},
		{"applicant on admin page", []Role{RoleSuperAdmin}, RoleApplicant, false, ApplicantHome},
		{"hr on admin page", []Role{RoleSuperAdmin}, RoleHR, false, HRHome},
		{"admin on applicant page", []Role{RoleApplicant}, RoleSuperAdmin, false, AdminHome},
		{"empty required denies", nil, RoleSuperAdmin, false, AdminHome},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Guard(tt.required, tt.current)
			if d.Allowed != tt.allowed || d.Redirect != tt.redirect {
				t.Fatalf("Guard = %+v, want allowed=%v redirect=%q", d, tt.allowed, tt.redirect)
			}
		})
	}
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		role Role
		want string
	}{
		{"/hr/applications?status=Hired", RoleHR, "/hr/applications?status=Hired"},
		{"/admin/users", RoleHR, HRHome},
		{"", RoleSuperAdmin, AdminHome},
		{"https://evil.example/admin", RoleSuperAdmin, AdminHome},
		{"//evil.example/hr", RoleHR, HRHome},
		{"/login", RoleApplicant, ApplicantHome},
		{"applicant/jobs", RoleApplicant, ApplicantHome},
	}
	for _, tt := range tests {
		if got := SafeNext(tt.next, tt.role); got != tt.want {
			t.Errorf("SafeNext(%q, %s) = %q, want %q", tt.next, tt.role, got, tt.want)
		}
	}
}

func TestLoginRedirect(t *testing.T) {
	if got := LoginRedirect(""); got != "/login" {
		t.Fatalf("LoginRedirect(\"\") = %q", got)
	}
	if got := LoginRedirect("/hr/dashboard"); got != "/login?next=%2Fhr%2Fdashboard" {
		t.Fatalf("unexpected redirect %q", got)
	}
}

func TestProfileProtected(t *testing.T) {
	if !(&Profile{Role: RoleSuperAdmin}).Protected() {
		t.Fatal("super_admin profile must be protected")
	}
	if (&Profile{Role: RoleHR}).Protected() {
		t.Fatal("hr profile must not be protected")
	}
}

func TestParseApplicationStatus(t *testing.T) {
	for _, st := range ApplicationStatuses() {
		if got, err := ParseApplicationStatus(string(st)); err != nil || got != st {
			t.Errorf("ParseApplicationStatus(%q) = %q, %v", st, got, err)
		}
	}
	if _, err := ParseApplicationStatus("for review"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}
