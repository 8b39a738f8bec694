package catalog

import (
	"errors"
	"fmt"
)

// ErrMalformed is returned when a catalog entry violates the data model:
// unknown enum values, missing veto conditions on audit methods, or
// inconsistent level/type/behavior declarations. These are data-authoring
// defects and are never auto-corrected.
var ErrMalformed = errors.New("catalog: malformed entry")

// Validate checks the whole catalog against the data model. It stops at the
// first violation so the diagnostic names a single offending identifier.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Items))
	for i := range c.Items {
		im := &c.Items[i]
		if im.ItemID == "" {
			return fmt.Errorf("%w: item at index %d has empty item_id", ErrMalformed, i)
		}
		if seen[im.ItemID] {
			return fmt.Errorf("%w: duplicate item_id %q", ErrMalformed, im.ItemID)
		}
		seen[im.ItemID] = true

		if im.PolicyArea < 1 || im.PolicyArea > 10 {
			return fmt.Errorf("%w: item %s policy_area %d outside 1..10",
				ErrMalformed, im.ItemID, im.PolicyArea)
		}
		if im.Dimension < 1 || im.Dimension > 6 {
			return fmt.Errorf("%w: item %s dimension %d outside 1..6",
				ErrMalformed, im.ItemID, im.Dimension)
		}

		for _, ph := range []struct {
			phase   Phase
			methods []Method
		}{
			{PhaseConstruction, im.Construction},
			{PhaseComputation, im.Computation},
			{PhaseLitigation, im.Litigation},
		} {
			for _, m := range ph.methods {
				if err := validateMethod(im.ItemID, m); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// validateMethod checks one method's internal consistency. Level/phase
// placement is the composer's concern; here we check the declarations that
// must hold regardless of placement.
func validateMethod(itemID string, m Method) error {
	if m.ClassName == "" || m.MethodName == "" {
		return fmt.Errorf("%w: item %s has a method with empty identity (%q.%q)",
			ErrMalformed, itemID, m.ClassName, m.MethodName)
	}

	wantType, ok := OutputTypeForLevel(m.Level)
	if !ok {
		return fmt.Errorf("%w: item %s method %s has unknown level %q",
			ErrMalformed, itemID, m.ID(), m.Level)
	}
	if m.OutputType != wantType {
		return fmt.Errorf("%w: item %s method %s declares output_type %q, level %s requires %q",
			ErrMalformed, itemID, m.ID(), m.OutputType, m.Level, wantType)
	}

	wantBehavior, _ := BehaviorForOutputType(m.OutputType)
	if m.FusionBehavior != wantBehavior {
		return fmt.Errorf("%w: item %s method %s declares fusion_behavior %q, output_type %s requires %q",
			ErrMalformed, itemID, m.ID(), m.FusionBehavior, m.OutputType, wantBehavior)
	}

	if m.Level == LevelAudit {
		if len(m.Vetoes) == 0 {
			return fmt.Errorf("%w: item %s audit method %s has no veto conditions",
				ErrMalformed, itemID, m.ID())
		}
		for name, vc := range m.Vetoes {
			if !vc.Action.Known() {
				return fmt.Errorf("%w: item %s method %s veto %q has unknown action %q",
					ErrMalformed, itemID, m.ID(), name, vc.Action)
			}
			if vc.ConfidenceMultiplier < 0 || vc.ConfidenceMultiplier > 1 {
				return fmt.Errorf("%w: item %s method %s veto %q confidence_multiplier %v outside [0,1]",
					ErrMalformed, itemID, m.ID(), name, vc.ConfidenceMultiplier)
			}
		}
	} else if len(m.Vetoes) > 0 {
		return fmt.Errorf("%w: item %s non-audit method %s carries veto conditions",
			ErrMalformed, itemID, m.ID())
	}

	return nil
}
