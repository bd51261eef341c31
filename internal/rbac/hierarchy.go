package rbac

// Built-in role names.
const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleAdminTier1 = "admin-tier-1"
	RoleAdminTier2 = "admin-tier-2"
	RoleUser       = "user"
)

// DefaultRoleLevels is the built-in role to privilege level table.
func DefaultRoleLevels() map[string]int {
	return map[string]int{
		RoleSuperAdmin: 100,
		RoleAdmin:      80,
		RoleAdminTier1: 70,
		RoleAdminTier2: 60,
		RoleUser:       10,
	}
}

// Hierarchy maps role names to integer privilege levels; higher is more
// privileged. It is the single table shared by the store-backed service and
// the client snapshot. A Hierarchy is immutable after construction.
type Hierarchy struct {
	levels map[string]int
}

// NewHierarchy builds a Hierarchy from levels. Names are normalized. A nil or
// empty map yields the default table.
func NewHierarchy(levels map[string]int) *Hierarchy {
	if len(levels) == 0 {
		levels = DefaultRoleLevels()
	}
	h := &Hierarchy{levels: make(map[string]int, len(levels))}
	for name, lvl := range levels {
		h.levels[NormalizeName(name)] = lvl
	}
	return h
}

// DefaultHierarchy returns the built-in table.
func DefaultHierarchy() *Hierarchy {
	return NewHierarchy(nil)
}

// Level returns the level of a role name; unknown names are 0.
func (h *Hierarchy) Level(role string) int {
	if h == nil {
		return 0
	}
	return h.levels[NormalizeName(role)]
}

// MaxLevel returns the highest level among roles, or 0 when roles is empty.
func (h *Hierarchy) MaxLevel(roles []string) int {
	highest := 0
	for _, r := range roles {
		if lvl := h.Level(r); lvl > highest {
			highest = lvl
		}
	}
	return highest
}

// IsHigher reports whether a strictly outranks b.
func (h *Hierarchy) IsHigher(a, b string) bool {
	return h.Level(a) > h.Level(b)
}

// Levels returns a copy of the table.
func (h *Hierarchy) Levels() map[string]int {
	if h == nil {
		return map[string]int{}
	}
	out := make(map[string]int, len(h.levels))
	for k, v := range h.levels {
		out[k] = v
	}
	return out
}
