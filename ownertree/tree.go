// Package ownertree holds the organizational ownership hierarchy
// (organization → business unit → user) in memory as a traversable
// structure. A Tree is mutable while the provider fills it and treated as
// immutable afterward; concurrent readers share one snapshot and rebuilds
// swap in a whole new tree.
package ownertree

// Tree records the ownership edges between users, business units, and
// organizations, with forward and reverse indexes for every lookup the
// condition builder needs. All lookups on unknown ids return empty results.
type Tree struct {
	// userOwner maps a user to its owning (manager) user.
	userOwner map[string]string

	// userOrgs maps a user to the organizations it belongs to.
	userOrgs map[string][]string

	// userBUs maps (user, organization) to the business units the user is
	// directly assigned to within that organization.
	userBUs map[string]map[string][]string

	// buOrg maps a business unit to its organization.
	buOrg map[string]string

	// buChildren maps a business unit to the units it directly owns
	// (the reverse of the owner edge; subordinate closure walks this).
	buChildren map[string][]string

	// buUsers maps a business unit to the users directly assigned to it.
	buUsers map[string][]string

	// orgBUs maps an organization to all its business units.
	orgBUs map[string][]string

	// maxDepth bounds the subordinate-unit traversal. Zero means unbounded.
	maxDepth int
}

// New creates an empty tree.
func New() *Tree {
	return &Tree{
		userOwner:  make(map[string]string),
		userOrgs:   make(map[string][]string),
		userBUs:    make(map[string]map[string][]string),
		buOrg:      make(map[string]string),
		buChildren: make(map[string][]string),
		buUsers:    make(map[string][]string),
		orgBUs:     make(map[string][]string),
	}
}

// AddUser records a user and its optional owning (manager) user.
func (t *Tree) AddUser(userID, ownerID string) {
	if ownerID != "" {
		t.userOwner[userID] = ownerID
	} else if _, ok := t.userOwner[userID]; !ok {
		t.userOwner[userID] = ""
	}
}

// AddUserOrganization records that a user belongs to an organization.
func (t *Tree) AddUserOrganization(userID, orgID string) {
	t.userOrgs[userID] = appendUnique(t.userOrgs[userID], orgID)
}

// AddUserBusinessUnit records that a user is assigned to a business unit
// within the given organization, and indexes the reverse edge.
func (t *Tree) AddUserBusinessUnit(userID, orgID, buID string) {
	byOrg := t.userBUs[userID]
	if byOrg == nil {
		byOrg = make(map[string][]string)
		t.userBUs[userID] = byOrg
	}
	byOrg[orgID] = appendUnique(byOrg[orgID], buID)
	t.buUsers[buID] = appendUnique(t.buUsers[buID], userID)
}

// AddBusinessUnit records a business unit and its organization.
func (t *Tree) AddBusinessUnit(buID, orgID string) {
	t.buOrg[buID] = orgID
	t.orgBUs[orgID] = appendUnique(t.orgBUs[orgID], buID)
}

// AddBusinessUnitRelation records that ownerBuID owns buID.
func (t *Tree) AddBusinessUnitRelation(buID, ownerBuID string) {
	t.buChildren[ownerBuID] = appendUnique(t.buChildren[ownerBuID], buID)
}

// UserOwnerID returns the owning (manager) user of a user, if any.
func (t *Tree) UserOwnerID(userID string) (string, bool) {
	owner, ok := t.userOwner[userID]
	if !ok || owner == "" {
		return "", false
	}
	return owner, true
}

// HasUser reports whether the user is known to the tree.
func (t *Tree) HasUser(userID string) bool {
	_, ok := t.userOwner[userID]
	return ok
}

// UserOrganizationIDs returns the organizations a user belongs to.
func (t *Tree) UserOrganizationIDs(userID string) []string {
	return copyIDs(t.userOrgs[userID])
}

// UserBusinessUnitIDs returns the business units a user is directly
// assigned to within an organization.
func (t *Tree) UserBusinessUnitIDs(userID, orgID string) []string {
	return copyIDs(t.userBUs[userID][orgID])
}

// BusinessUnitOrganizationID returns the organization of a business unit.
func (t *Tree) BusinessUnitOrganizationID(buID string) (string, bool) {
	orgID, ok := t.buOrg[buID]
	return orgID, ok
}

// UsersAssignedToBusinessUnit returns the users directly assigned to a
// business unit.
func (t *Tree) UsersAssignedToBusinessUnit(buID string) []string {
	return copyIDs(t.buUsers[buID])
}

// OrganizationBusinessUnitIDs returns all business units of an organization.
func (t *Tree) OrganizationBusinessUnitIDs(orgID string) []string {
	return copyIDs(t.orgBUs[orgID])
}

// SubordinateBusinessUnitIDs returns the transitive closure of business
// units owned by buID, excluding buID itself unless a cycle makes it
// reachable from itself. The walk keeps a visited set so a crafted cycle of
// units each owning the next terminates instead of looping, and stops at the
// tree's depth bound when one is set.
func (t *Tree) SubordinateBusinessUnitIDs(buID string) []string {
	type frame struct {
		id    string
		depth int
	}
	var result []string
	visited := map[string]struct{}{}

	queue := make([]frame, 0, len(t.buChildren[buID]))
	for _, child := range t.buChildren[buID] {
		queue = append(queue, frame{id: child, depth: 1})
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if _, seen := visited[current.id]; seen {
			continue
		}
		visited[current.id] = struct{}{}
		result = append(result, current.id)
		if t.maxDepth > 0 && current.depth >= t.maxDepth {
			continue
		}
		for _, child := range t.buChildren[current.id] {
			queue = append(queue, frame{id: child, depth: current.depth + 1})
		}
	}
	return result
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func copyIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
