package config

import "sort"

// SortedMenu returns the menu entries ordered by weight ascending.
// Entries with equal weight keep their declaration order.
func (c *Config) SortedMenu() []MenuEntry {
	menu := make([]MenuEntry, len(c.Menu))
	copy(menu, c.Menu)
	sort.SliceStable(menu, func(i, j int) bool {
		return menu[i].Weight < menu[j].Weight
	})
	return menu
}
