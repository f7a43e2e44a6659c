// Package rbac gates operations on the caller's role. The portal knows two
// roles: trainees consume content and their own results, admins do
// everything.
package rbac

import (
	"strings"

	"github.com/cafsi-mindset/portal/model"
)

var RolePermissions = map[model.Role][]string{
	model.RoleTrainee: {
		"course:view",
		"quiz:view",
		"quiz:take",
		"result:view-own",
		"user:change-password",
	},
	model.RoleAdmin: {
		"*", // everything
	},
}

type Checker struct {
	RolePermissions map[model.Role][]string
}

func NewChecker(rp map[model.Role][]string) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	return &Checker{RolePermissions: rp}
}

func (c *Checker) Has(role model.Role, perm string) bool {
	perms, ok := c.RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if matchPerm(p, perm) {
			return true
		}
	}
	return false
}

func (c *Checker) All(role model.Role, perms ...string) bool {
	for _, p := range perms {
		if !c.Has(role, p) {
			return false
		}
	}
	return true
}

func matchPerm(pattern, perm string) bool {
	if pattern == "*" || pattern == perm {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(perm, strings.TrimSuffix(pattern, "*"))
	}
	return false
}
