package roles

import "sort"

func sortByLevel(views []RoleView) {
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].Level != views[j].Level {
			return views[i].Level > views[j].Level
		}
		return views[i].Name < views[j].Name
	})
}
