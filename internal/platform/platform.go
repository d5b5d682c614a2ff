// Package platform defines the closed set of gaming systems the tool can
// scrape. Each entry maps the CLI-facing name to the name the external
// scraper understands, the on-disk ROM subdirectory, and an optional
// extension allow-list.
package platform

import "sort"

// System describes one supported scraping target.
type System struct {
	// Name is the identifier accepted on the command line.
	Name string

	// Canonical is the name passed to the scraper's platform flag. For
	// pseudo-systems this differs from Name.
	Canonical string

	// Subdir is the ROM directory name under the ROM root. It always
	// follows Name, never Canonical, so pseudo-systems keep their own
	// on-disk tree.
	Subdir string

	// Extensions is the glob allow-list forwarded to the scraper.
	// Empty means the scraper's own defaults apply.
	Extensions []string
}

// Pseudo reports whether the system is an alias onto another scraper
// platform rather than a natively recognized one.
func (s System) Pseudo() bool {
	return s.Name != s.Canonical
}

// Table is the set of supported systems keyed by CLI name. It is built
// once at startup and treated as read-only afterwards.
type Table map[string]System

// Default returns the built-in system table.
func Default() Table {
	t := Table{}
	for _, name := range []string{
		"arcade", "megadrive", "snes", "nes", "pcengine",
		"neogeo", "psx", "n64", "gba", "dreamcast",
	} {
		t[name] = System{Name: name, Canonical: name, Subdir: name}
	}

	// Pseudo-systems: the scraper has no such platform, so they alias a
	// real one while keeping their own ROM subdirectory and filters.
	t["ports"] = System{
		Name:       "ports",
		Canonical:  "pc",
		Subdir:     "ports",
		Extensions: []string{"*.sh"},
	}
	t["megadrive-jp"] = System{
		Name:       "megadrive-jp",
		Canonical:  "megadrive",
		Subdir:     "megadrive-jp",
		Extensions: []string{"*.bin", "*.md"},
	}
	return t
}

// Lookup resolves a CLI system name against the table.
func (t Table) Lookup(name string) (System, bool) {
	s, ok := t[name]
	return s, ok
}

// Names returns all system names in sorted order, for usage text and
// error messages.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
