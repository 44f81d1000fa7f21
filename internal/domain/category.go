package domain

import (
	"sort"
	"strings"
	"time"
)

// Category groups events for browsing
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// SortCategories orders by name and moves the catch-all "other" category last
func SortCategories(categories []Category) {
	isOther := func(c Category) bool {
		return strings.EqualFold(strings.TrimSpace(c.Name), "other")
	}
	sort.SliceStable(categories, func(i, j int) bool {
		oi, oj := isOther(categories[i]), isOther(categories[j])
		if oi != oj {
			return oj
		}
		return strings.ToLower(categories[i].Name) < strings.ToLower(categories[j].Name)
	})
}
