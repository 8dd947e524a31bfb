// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package localisation defines the optional injected collaborator the
// type-check engine's localisation rule stage consults for
// locale-coverage checks (spec.md §4.9, §4.10). Like internal/assets,
// it is supplied explicitly by the caller rather than read from
// process-wide state.
package localisation

// Coverage selects how many locales a required key must exist in for
// the localisation stage to consider it satisfied (spec.md §6:
// `localisation_coverage ∈ {any, all}`).
type Coverage int

const (
	CoverageAny Coverage = iota
	CoverageAll
)

// KeyProvider answers whether a localisation key exists, and in which
// locales, for the required-template-key existence check spec.md §4.10
// describes (`type[...] localisation { name = "$"; ## required }`).
type KeyProvider interface {
	// Locales returns every locale this provider has data for.
	Locales() []string
	// HasKey reports whether key exists in locale.
	HasKey(locale, key string) bool
}

// StaticProvider is a minimal in-memory KeyProvider: a fixed
// locale -> key set table. Sufficient for tests and the CLI harness's
// default; a production host supplies its own provider backed by the
// project's actual localisation files.
type StaticProvider struct {
	keys map[string]map[string]bool
}

// NewStaticProvider returns an empty StaticProvider ready for Add calls.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{keys: make(map[string]map[string]bool)}
}

// Add registers key as present in locale.
func (p *StaticProvider) Add(locale, key string) {
	if p.keys[locale] == nil {
		p.keys[locale] = make(map[string]bool)
	}
	p.keys[locale][key] = true
}

func (p *StaticProvider) Locales() []string {
	out := make([]string, 0, len(p.keys))
	for locale := range p.keys {
		out = append(out, locale)
	}
	return out
}

func (p *StaticProvider) HasKey(locale, key string) bool {
	return p.keys[locale][key]
}

// Satisfied reports whether key meets cov across provider p's locales.
// An empty-locale provider never satisfies CoverageAll (vacuous truth
// would silently pass every check) but does satisfy CoverageAny only if
// a locale actually has the key — with no locales at all, neither
// policy is satisfied.
func Satisfied(p KeyProvider, key string, cov Coverage) bool {
	locales := p.Locales()
	if len(locales) == 0 {
		return false
	}
	switch cov {
	case CoverageAll:
		for _, locale := range locales {
			if !p.HasKey(locale, key) {
				return false
			}
		}
		return true
	default: // CoverageAny
		for _, locale := range locales {
			if p.HasKey(locale, key) {
				return true
			}
		}
		return false
	}
}
