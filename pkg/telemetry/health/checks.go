package health

import (
	"context"
	"fmt"

	"nocartorio/jsonrules/pkg/rules/store"
)

// RulesetCheck reports a ruleset as unhealthy when its root document is
// missing or its most recent reload failed. The previous documents keep
// serving in that case, so the failure degrades readiness rather than
// liveness.
func RulesetCheck(s *store.Store) CheckFunc {
	return func(context.Context) error {
		if _, ok := s.Root(); !ok {
			return fmt.Errorf("root document %q not loaded", s.RootName())
		}
		if _, err := s.LastReload(); err != nil {
			return fmt.Errorf("last reload failed: %w", err)
		}
		return nil
	}
}
