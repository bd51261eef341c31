package rbac

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Resource is a thing the admin dashboard manages.
type Resource string

const (
	ResourceSlider     Resource = "slider"
	ResourceGallery    Resource = "gallery"
	ResourceService    Resource = "service"
	ResourceProject    Resource = "project"
	ResourceStaff      Resource = "staff"
	ResourceOffice     Resource = "office"
	ResourceContact    Resource = "contact"
	ResourceMessage    Resource = "message"
	ResourceDashboard  Resource = "dashboard"
	ResourceProfile    Resource = "profile"
	ResourceUser       Resource = "user"
	ResourceRole       Resource = "role"
	ResourcePermission Resource = "permission"
	ResourceSystem     Resource = "system"
)

// Action is an operation performed on a Resource.
type Action string

const (
	ActionCreate     Action = "create"
	ActionRead       Action = "read"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionAssign     Action = "assign"
	ActionBackup     Action = "backup"
	ActionCacheClear Action = "cache-clear"
)

// PermissionKey is a (Resource, Action) pair. Its string form is "resource:action".
type PermissionKey struct {
	Resource Resource
	Action   Action
}

// Key builds a PermissionKey.
func Key(r Resource, a Action) PermissionKey {
	return PermissionKey{Resource: r, Action: a}
}

func (k PermissionKey) String() string {
	return string(k.Resource) + ":" + string(k.Action)
}

// Group names a bundle of catalog entries granted together.
type Group string

const (
	GroupContent        Group = "content"
	GroupContactOffice  Group = "contact-office"
	GroupBasic          Group = "basic"
	GroupAdministration Group = "administration"
)

// CatalogEntry is one statically enumerated permission.
type CatalogEntry struct {
	Key         PermissionKey
	Description string
	Group       Group
}

// Name returns the stored permission string.
func (e CatalogEntry) Name() string { return e.Key.String() }

var crudActions = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}

var resourceLabels = map[Resource]string{
	ResourceSlider:  "homepage sliders",
	ResourceGallery: "gallery items",
	ResourceService: "services",
	ResourceProject: "projects",
	ResourceStaff:   "staff profiles",
	ResourceOffice:  "offices",
	ResourceContact: "contacts",
	ResourceUser:    "users",
	ResourceRole:    "roles",
}

var actionVerbs = map[Action]string{
	ActionCreate: "Create",
	ActionRead:   "View",
	ActionUpdate: "Edit",
	ActionDelete: "Delete",
}

var catalog = buildCatalog()

func buildCatalog() []CatalogEntry {
	var entries []CatalogEntry
	crud := func(r Resource, g Group) {
		for _, a := range crudActions {
			entries = append(entries, CatalogEntry{
				Key:         Key(r, a),
				Description: actionVerbs[a] + " " + resourceLabels[r],
				Group:       g,
			})
		}
	}

	crud(ResourceSlider, GroupContent)
	crud(ResourceGallery, GroupContent)
	crud(ResourceService, GroupContent)
	crud(ResourceProject, GroupContent)
	crud(ResourceStaff, GroupContent)

	crud(ResourceOffice, GroupContactOffice)
	crud(ResourceContact, GroupContactOffice)
	entries = append(entries,
		CatalogEntry{Key: Key(ResourceMessage, ActionRead), Description: "Read inbound messages", Group: GroupContactOffice},
		CatalogEntry{Key: Key(ResourceMessage, ActionDelete), Description: "Delete inbound messages", Group: GroupContactOffice},

		CatalogEntry{Key: Key(ResourceDashboard, ActionRead), Description: "Access the admin dashboard", Group: GroupBasic},
		CatalogEntry{Key: Key(ResourceProfile, ActionRead), Description: "View own profile", Group: GroupBasic},
		CatalogEntry{Key: Key(ResourceProfile, ActionUpdate), Description: "Edit own profile", Group: GroupBasic},
	)

	crud(ResourceUser, GroupAdministration)
	crud(ResourceRole, GroupAdministration)
	entries = append(entries,
		CatalogEntry{Key: Key(ResourceRole, ActionAssign), Description: "Assign roles to users", Group: GroupAdministration},
		CatalogEntry{Key: Key(ResourcePermission, ActionRead), Description: "View the permission catalog", Group: GroupAdministration},
		CatalogEntry{Key: Key(ResourcePermission, ActionAssign), Description: "Grant permissions to roles", Group: GroupAdministration},
		CatalogEntry{Key: Key(ResourceSystem, ActionBackup), Description: "Create and download backups", Group: GroupAdministration},
		CatalogEntry{Key: Key(ResourceSystem, ActionCacheClear), Description: "Clear application caches", Group: GroupAdministration},
	)
	return entries
}

// Catalog returns a copy of the full permission catalog.
func Catalog() []CatalogEntry {
	out := make([]CatalogEntry, len(catalog))
	copy(out, catalog)
	return out
}

// CatalogNames returns every permission string in the catalog.
func CatalogNames() []string {
	names := make([]string, 0, len(catalog))
	for _, e := range catalog {
		names = append(names, e.Name())
	}
	return names
}

// GroupNames returns the permission strings belonging to any of the groups.
func GroupNames(groups ...Group) []string {
	want := make(map[Group]struct{}, len(groups))
	for _, g := range groups {
		want[g] = struct{}{}
	}
	var names []string
	for _, e := range catalog {
		if _, ok := want[e.Group]; ok {
			names = append(names, e.Name())
		}
	}
	return names
}

var catalogIndex = func() map[string]PermissionKey {
	idx := make(map[string]PermissionKey, len(catalog))
	for _, e := range catalog {
		idx[e.Name()] = e.Key
	}
	return idx
}()

// ParsePermissionKey validates s against the catalog.
func ParsePermissionKey(s string) (PermissionKey, error) {
	key, ok := catalogIndex[NormalizeName(s)]
	if !ok {
		return PermissionKey{}, fmt.Errorf("%w: %q", ErrUnknownPermission, s)
	}
	return key, nil
}

// NormalizeName trims and case-folds a role or permission name.
func NormalizeName(s string) string {
	// A Caser is stateful and must not be shared between goroutines.
	return cases.Fold().String(strings.TrimSpace(s))
}

// normalizeNames dedupes and normalizes names, dropping blanks. Order of first
// occurrence is kept.
func normalizeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = NormalizeName(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
