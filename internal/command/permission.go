package command

// Permission names the group a sender must belong to.
type Permission string

// Public is satisfied by every sender.
const Public Permission = "public"

// Authorizer decides whether a user holds a permission. Public is handled by
// the dispatcher and never reaches the Authorizer.
type Authorizer interface {
	Authorized(userID string, perm Permission) bool
}

// GroupAuthorizer grants permissions from a static group -> users table.
type GroupAuthorizer struct {
	groups map[Permission]map[string]struct{}
}

// NewGroupAuthorizer builds an authorizer from permission group names to the
// user ids in each group.
func NewGroupAuthorizer(groups map[string][]string) *GroupAuthorizer {
	a := &GroupAuthorizer{groups: make(map[Permission]map[string]struct{}, len(groups))}
	for group, users := range groups {
		members := make(map[string]struct{}, len(users))
		for _, u := range users {
			members[u] = struct{}{}
		}
		a.groups[Permission(group)] = members
	}
	return a
}

// Authorized implements Authorizer.
func (a *GroupAuthorizer) Authorized(userID string, perm Permission) bool {
	if perm == Public {
		return true
	}
	if userID == "" {
		return false
	}
	_, ok := a.groups[perm][userID]
	return ok
}
