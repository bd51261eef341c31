package snapshot

import "html/template"

// FuncMap returns render helpers bound to s. A nil snapshot denies every check.
//
//	{{ if can "gallery:create" }}...{{ end }}
//	{{ if canAny "user:read" "role:read" }}...{{ end }}
//	{{ if hasRole "superadmin" }}...{{ end }}
func FuncMap(s *Snapshot) template.FuncMap {
	return template.FuncMap{
		"can": func(name string) bool {
			return s != nil && s.HasPermission(name)
		},
		"canAny": func(names ...string) bool {
			return s != nil && s.HasAnyPermission(names...)
		},
		"canAll": func(names ...string) bool {
			return s != nil && s.HasAllPermissions(names...)
		},
		"hasRole": func(role string) bool {
			return s != nil && s.HasRole(role)
		},
		"roleLevel": func() int {
			if s == nil {
				return 0
			}
			return s.UserRoleLevel()
		},
	}
}
