// Package grimoire provides a local, CLI-based reference compendium for
// tabletop RPG content. It syncs official content from a remote source,
// caches it on disk, merges it with locally authored homebrew entries
// under deterministic override rules, and serves indexed queries against
// the merged view.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency or concern (e.g., fs/, http/, sqlite/).
package grimoire
