// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package assets defines the injected collaborator the type-check
// engine's `filepath[...]`/`icon[...]` reference-resolution stage
// depends on (spec.md §6, §9: "Global state... injected explicitly by
// the caller"). It is never looked up from process-wide state; a
// SPEC_FULL caller builds one up front (typically by walking a project
// directory) and passes it into the engine.
package assets

import "strings"

// Registry answers two questions a field declared `filepath[path,.ext]`
// or `icon[path]` needs resolved: whether a file exists under a
// configured path/extension, and whether a name is a member of a
// registered sprite type (the `<spriteType>` idiom spec.md §4.10
// describes for icon references that target a sprite collection rather
// than a bare file).
type Registry interface {
	// FileExists reports whether name exists under path, optionally
	// filtered by ext (e.g. ".dds"); ext == "" means any extension.
	FileExists(path, ext, name string) bool
	// SpriteNames returns the discovered member names of spriteType, or
	// (nil, false) if spriteType is not a registered sprite collection
	// at all — distinguishing "no sprites" from "not a sprite type".
	SpriteNames(spriteType string) ([]string, bool)
}

// StaticRegistry is a minimal in-memory Registry: a fixed set of known
// (path, ext, name) file entries and a fixed sprite-type membership
// table. Sufficient for tests and the CLI harness's default; a
// production host walking a real project directory supplies its own
// Registry built from disk.
type StaticRegistry struct {
	Files   map[string]bool // "path/ext/name" -> present
	Sprites map[string][]string
}

// NewStaticRegistry returns an empty StaticRegistry ready for Add calls.
func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{Files: make(map[string]bool), Sprites: make(map[string][]string)}
}

// AddFile registers a known file under path with the given extension
// and name.
func (r *StaticRegistry) AddFile(path, ext, name string) {
	r.Files[fileKey(path, ext, name)] = true
}

// AddSprites registers spriteType's discovered member names.
func (r *StaticRegistry) AddSprites(spriteType string, names []string) {
	r.Sprites[spriteType] = names
}

func (r *StaticRegistry) FileExists(path, ext, name string) bool {
	return r.Files[fileKey(path, ext, name)]
}

func (r *StaticRegistry) SpriteNames(spriteType string) ([]string, bool) {
	names, ok := r.Sprites[spriteType]
	return names, ok
}

func fileKey(path, ext, name string) string {
	return strings.ToLower(path) + "\x00" + strings.ToLower(ext) + "\x00" + strings.ToLower(name)
}
