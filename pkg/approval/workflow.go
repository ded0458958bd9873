// Package approval implements the recommendation lifecycle state machine:
// pending is the only initial state, approved and rejected are terminal.
package approval

import (
	"fmt"
	"time"

	"github.com/runixlabs/runix/pkg/models"
)

// Decision is an operator's verdict on a pending recommendation.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// InvalidTransitionError reports an attempt to transition a recommendation
// out of a terminal state. Re-approving an approved recommendation is
// rejected, not silently accepted.
type InvalidTransitionError struct {
	RecommendationID string
	From             models.ApprovalStatus
	Decision         Decision
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: recommendation %s is %s, cannot %s", e.RecommendationID, e.From, e.Decision)
}

// Transition applies an operator decision to a recommendation, stamping the
// actor identity and decision time. Only the approval fields are touched.
func Transition(rec *models.Recommendation, decision Decision, actor string, at time.Time) error {
	if actor == "" {
		return fmt.Errorf("transition requires an actor identity")
	}
	if decision != DecisionApprove && decision != DecisionReject {
		return fmt.Errorf("unknown decision %q", decision)
	}
	if rec.ApprovalStatus != models.ApprovalPending {
		return &InvalidTransitionError{
			RecommendationID: rec.RecommendationID,
			From:             rec.ApprovalStatus,
			Decision:         decision,
		}
	}

	if decision == DecisionApprove {
		rec.ApprovalStatus = models.ApprovalApproved
	} else {
		rec.ApprovalStatus = models.ApprovalRejected
	}
	rec.ApprovedBy = actor
	t := at.UTC()
	rec.ApprovedAt = &t
	return nil
}
