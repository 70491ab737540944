// Package authz holds the one role policy table the route guard, the sidebar and the home grid read from.
package authz

import (
	"sort"
	"strings"

	"github.com/trezcool/markaz/core/session"
)

const (
	RoleAdmin     = "admin"
	RoleManager   = "manager"
	RoleTeacher   = "teacher"
	RoleDeveloper = "developer"
	RoleUser      = session.DefaultRole
)

const (
	HomePath        = "/"
	LoginPath       = "/login"
	LegacyLoginPath = "/auth/login"
	LogoutPath      = "/auth/logout"
	DashboardPath   = "/dashboard"
)

// AllRoles are the roles the backend hands out.
var AllRoles = []string{RoleAdmin, RoleManager, RoleTeacher, RoleDeveloper, RoleUser}

type Group string

const (
	GroupMain  Group = "main"
	GroupOther Group = "other"
)

// Section is a navigable part of the dashboard.
type Section struct {
	Key   string   `json:"key"`
	Title string   `json:"title"`
	Href  string   `json:"href"`
	Group Group    `json:"group"`
	Roles []string `json:"-"`
}

// Allows reports whether role is listed for the section.
func (s Section) Allows(role string) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// matches reports whether path is the section's href or below it.
func (s Section) matches(path string) bool {
	return path == s.Href || strings.HasPrefix(path, s.Href+"/")
}

var (
	everyone = []string{RoleAdmin, RoleManager, RoleDeveloper, RoleTeacher}

	// Sections is the policy table.
	Sections = []Section{
		{Key: "dashboard", Title: "Asosiy", Href: DashboardPath, Group: GroupMain, Roles: []string{RoleAdmin, RoleManager, RoleDeveloper}},
		{Key: "managers", Title: "Managerlar", Href: "/dashboard/manager", Group: GroupMain, Roles: []string{RoleAdmin, RoleManager, RoleDeveloper}},
		{Key: "admins", Title: "Adminlar", Href: "/dashboard/admin", Group: GroupMain, Roles: []string{RoleAdmin, RoleManager, RoleDeveloper}},
		{Key: "teachers", Title: "Ustozlar", Href: "/dashboard/ustozlar", Group: GroupMain, Roles: []string{RoleAdmin, RoleManager}},
		{Key: "students", Title: "Studentlar", Href: "/dashboard/studentlar", Group: GroupMain, Roles: []string{RoleAdmin, RoleManager, RoleTeacher}},
		{Key: "groups", Title: "Guruhlar", Href: "/dashboard/guruhlar", Group: GroupMain, Roles: []string{RoleAdmin, RoleManager, RoleTeacher}},
		{Key: "courses", Title: "Kurslar", Href: "/dashboard/kurslar", Group: GroupMain, Roles: []string{RoleAdmin, RoleManager}},
		{Key: "payments", Title: "Payment", Href: "/dashboard/payment", Group: GroupMain, Roles: []string{RoleAdmin, RoleManager}},
		{Key: "settings", Title: "Sozlamalar", Href: "/dashboard/sozlamalar", Group: GroupOther, Roles: []string{RoleAdmin, RoleDeveloper}},
		{Key: "profile", Title: "Profile", Href: "/dashboard/profile", Group: GroupOther, Roles: everyone},
		{Key: "logout", Title: "Chiqish", Href: LogoutPath, Group: GroupOther, Roles: everyone},
	}
)

// VisibleSections returns the sections whose roles contain role, in table order.
func VisibleSections(role string, sections []Section) []Section {
	visible := make([]Section, 0, len(sections))
	for _, s := range sections {
		if s.Allows(role) {
			visible = append(visible, s)
		}
	}
	return visible
}

// Decision is the outcome of a guard check.
type Decision struct {
	Allow    bool
	Redirect string
}

func allow() Decision { return Decision{Allow: true} }

func redirect(path string) Decision { return Decision{Redirect: path} }

func (d Decision) String() string {
	if d.Allow {
		return "allow"
	}
	return "redirect " + d.Redirect
}

// Guard decides whether a session may open a path.
type Guard struct {
	// role-restricted sections under the dashboard, longest href first
	restricted []Section
}

// NewGuard builds a Guard from the policy table.
func NewGuard(sections []Section) *Guard {
	g := new(Guard)
	for _, s := range sections {
		if s.matches(DashboardPath) || strings.HasPrefix(s.Href, DashboardPath+"/") {
			g.restricted = append(g.restricted, s)
		}
	}
	sort.SliceStable(g.restricted, func(i, j int) bool {
		return len(g.restricted[i].Href) > len(g.restricted[j].Href)
	})
	return g
}

// IsProtected reports whether path needs a signed-in session.
func IsProtected(path string) bool {
	return path == HomePath || path == DashboardPath || strings.HasPrefix(path, DashboardPath+"/")
}

// section returns the most specific restricted section covering path.
func (g *Guard) section(path string) (Section, bool) {
	for _, s := range g.restricted {
		if s.matches(path) {
			return s, true
		}
	}
	return Section{}, false
}

// Check is a pure function of the session and the request path.
func (g *Guard) Check(sess session.Session, path string) Decision {
	if path == LegacyLoginPath {
		return redirect(LoginPath)
	}
	if sess.Token == "" {
		if IsProtected(path) {
			return redirect(LoginPath)
		}
		return allow()
	}
	if path == LoginPath {
		return redirect(g.Landing(sess.Role))
	}
	if s, ok := g.section(path); ok {
		if !(s.Allows(sess.Role) || sess.Role == RoleDeveloper) {
			return redirect(HomePath)
		}
	}
	return allow()
}

// Landing is where a freshly signed-in role is sent: the dashboard, or home when the role may not open it.
func (g *Guard) Landing(role string) string {
	if g.Check(session.Session{Token: "-", Role: role}, DashboardPath).Allow {
		return DashboardPath
	}
	return HomePath
}
