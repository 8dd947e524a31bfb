// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package config loads the small JSON-serializable options document a
// jominicheck invocation may read instead of repeating every flag on
// the command line (spec.md §6's "Parse options (recognized)" list).
package config

import (
	"encoding/json"
	"os"

	"github.com/mdhender/jomini/internal/cerrs"
	"github.com/mdhender/jomini/internal/lexers"
	"github.com/mdhender/jomini/internal/parser"
)

// Options mirrors spec.md §6's recognized parse-option vocabulary.
// FeatureGates' fields that internal/lexers and internal/parser do not
// yet act on (AllowParameterSyntax, AllowUnmarkedListForm,
// AllowComparisonOperators) round-trip through JSON but have no effect
// on ToLexerOptions/ToParserOptions — spec.md lists them as
// "recognized" without specifying grammar behavior, so this layer
// carries them rather than inventing one (see DESIGN.md).
type Options struct {
	Mode                      string       `json:"Mode,omitempty"` // "strict" | "permissive"
	FeatureGates              FeatureGates `json:"FeatureGates"`
	UnresolvedReferencePolicy string       `json:"UnresolvedReferencePolicy,omitempty"` // "defer" | "error"
	LocalisationCoverage      string       `json:"LocalisationCoverage,omitempty"`      // "any" | "all"
}

type FeatureGates struct {
	AllowParameterSyntax     bool `json:"AllowParameterSyntax,omitempty"`
	AllowUnmarkedListForm    bool `json:"AllowUnmarkedListForm,omitempty"`
	AllowMultilineStrings    bool `json:"AllowMultilineStrings,omitempty"`
	AllowUnterminatedStrings bool `json:"AllowUnterminatedStrings,omitempty"`
	AllowComparisonOperators bool `json:"AllowComparisonOperators,omitempty"`
}

// Default returns the permissive Jomini-script profile (matching
// parser.DefaultOptions/lexers.DefaultOptions).
func Default() *Options {
	return &Options{
		Mode: "permissive",
		FeatureGates: FeatureGates{
			AllowMultilineStrings:    true,
			AllowUnterminatedStrings: false,
		},
		UnresolvedReferencePolicy: "defer",
		LocalisationCoverage:      "any",
	}
}

// Load reads name as a JSON Options document, returning Default()
// unchanged if name does not exist (the teacher's config.Load
// convention: a missing config file is not an error, an unreadable one
// is).
func Load(name string) (*Options, error) {
	opts := Default()
	sb, err := os.Stat(name)
	if os.IsNotExist(err) {
		return opts, nil
	} else if err != nil {
		return nil, err
	} else if sb.IsDir() {
		return nil, cerrs.ErrNotAFile
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// ToLexerOptions projects the fields internal/lexers actually honors.
func (o *Options) ToLexerOptions() lexers.Options {
	return lexers.Options{
		AllowUnterminatedStrings: o.FeatureGates.AllowUnterminatedStrings,
		AllowMultilineStrings:    o.FeatureGates.AllowMultilineStrings,
	}
}

// ToParserOptions projects the fields internal/parser actually honors.
func (o *Options) ToParserOptions() parser.Options {
	return parser.Options{Strict: o.Mode == "strict"}
}
