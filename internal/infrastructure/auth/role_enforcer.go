package auth

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/HarshMishra-Git/MedPath-by-AAS-EduGuide-sub000/domain"
)

// ActionEnter is the only action route requirements check
const ActionEnter = "enter"

const roleModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// roleHierarchy lists each role with the role it inherits from
var roleHierarchy = [][2]domain.Role{
	{domain.RoleSuperAdmin, domain.RoleAdmin},
	{domain.RoleAdmin, domain.RoleUser},
}

// Subject is the casbin subject for a role
func Subject(role domain.Role) string {
	return "role_" + string(role)
}

// Object is the casbin object a role requirement protects
func Object(role domain.Role) string {
	return "area_" + strings.ToLower(string(role))
}

// NewRoleEnforcer builds an in-memory enforcer where each role may enter its own area and
// inherits the areas of the roles below it.
func NewRoleEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(roleModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse role model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}

	for _, role := range []domain.Role{domain.RoleUser, domain.RoleAdmin, domain.RoleSuperAdmin} {
		if _, err := e.AddPolicy(Subject(role), Object(role), ActionEnter); err != nil {
			return nil, fmt.Errorf("failed to add policy for %s: %w", role, err)
		}
	}
	for _, link := range roleHierarchy {
		if _, err := e.AddGroupingPolicy(Subject(link[0]), Subject(link[1])); err != nil {
			return nil, fmt.Errorf("failed to add role link %s -> %s: %w", link[0], link[1], err)
		}
	}
	return e, nil
}
