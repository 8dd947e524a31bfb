// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package typecheck

import "github.com/mdhender/jomini/internal/rules"

// StageDescriptors returns the eight rule-stack stages' self-description
// (spec.md §4.10's ordering, spec.md §9's Rule capability-set contract)
// in stack order. Engine's walk runs the stages directly against its
// own matched-type state rather than through rules.Rule's generic
// Context — a stage needs the matched schema.Type/Subtype's extracted
// FieldRules, which rules.Context deliberately does not carry, so that
// internal/rules stays independent of internal/schema's field-rule
// shape. StageDescriptors exists so a host composing type-check
// alongside an external lint registry (spec.md §1 — lint is "not built
// here") can still introspect the type-check stack's Domain/Confidence/
// Code through the shared rules.Metadata shape, without internal/rules
// importing internal/typecheck.
func StageDescriptors() []rules.Metadata {
	return []rules.Metadata{
		{Domain: rules.DomainCorrectness, Confidence: rules.ConfidenceSound, Code: string(CodeRequiredFieldMissing)},
		{Domain: rules.DomainCorrectness, Confidence: rules.ConfidenceSound, Code: string(CodeInvalidFieldType)},
		{Domain: rules.DomainCorrectness, Confidence: rules.ConfidenceSound, Code: string(CodeUnresolvedReference)},
		{Domain: rules.DomainCorrectness, Confidence: rules.ConfidenceSound, Code: "TYPECHECK_SCOPE_TRANSITION"},
		{Domain: rules.DomainCorrectness, Confidence: rules.ConfidenceSound, Code: "TYPECHECK_ALIAS_EXECUTION"},
		{Domain: rules.DomainCorrectness, Confidence: rules.ConfidenceSound, Code: string(CodeLocalisationMissing)},
		{Domain: rules.DomainCorrectness, Confidence: rules.ConfidenceSound, Code: string(CodeModifierScopeMismatch)},
		{Domain: rules.DomainCorrectness, Confidence: rules.ConfidenceSound, Code: string(CodeRuleCustomError)},
	}
}
