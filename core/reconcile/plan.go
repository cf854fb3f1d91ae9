package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Plan computes what RunPass would do without writing to either calendar or the
// ledger. Journaled mappings are treated as already recorded.
func (o *Orchestrator) Plan(ctx context.Context) (*PassPlan, error) {
	window := o.Window()
	a, b := o.fetchBoth(ctx, window)

	records, err := o.ledger.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	records = o.withJournaled(records)

	index := IndexRecords(records)
	aToB, bToA := o.opts.AToB(), o.opts.BToA()

	plan := &PassPlan{
		AToB:    analyzeIndexed(a.events, index, aToB.SourceCalendarID, aToB.TargetCalendarID),
		BToA:    analyzeIndexed(b.events, index, bToA.SourceCalendarID, bToA.TargetCalendarID),
		Orphans: o.orphanCandidates(a, b, records, window),
	}

	o.logger.Info("Plan computed",
		zap.Int("a_to_b_create", len(plan.AToB.ToCreate)),
		zap.Int("a_to_b_update", len(plan.AToB.ToUpdate)),
		zap.Int("b_to_a_create", len(plan.BToA.ToCreate)),
		zap.Int("b_to_a_update", len(plan.BToA.ToUpdate)),
		zap.Int("orphans", len(plan.Orphans)))

	return plan, nil
}
