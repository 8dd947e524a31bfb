// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package assets

import "testing"

func TestStaticRegistry_FileExists(t *testing.T) {
	t.Parallel()
	r := NewStaticRegistry()
	r.AddFile("gfx/interface/icons", ".dds", "my_icon")
	if !r.FileExists("GFX/Interface/Icons", ".DDS", "My_Icon") {
		t.Fatalf("expected case-insensitive match")
	}
	if r.FileExists("gfx/interface/icons", ".dds", "other") {
		t.Fatalf("expected no match for an unregistered name")
	}
}

func TestStaticRegistry_SpriteNames(t *testing.T) {
	t.Parallel()
	r := NewStaticRegistry()
	r.AddSprites("GFX_technology_icon", []string{"tech_a", "tech_b"})
	names, ok := r.SpriteNames("GFX_technology_icon")
	if !ok || len(names) != 2 {
		t.Fatalf("sprite names: got %+v, %v", names, ok)
	}
	if _, ok := r.SpriteNames("unknown"); ok {
		t.Fatalf("expected ok=false for an unregistered sprite type")
	}
}
