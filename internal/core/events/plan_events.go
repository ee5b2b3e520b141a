package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	PlanSubmittedEvent = "plan.submitted"
	PlanApprovedEvent  = "plan.approved"
	PlanRejectedEvent  = "plan.rejected"
	PlanCompletedEvent = "plan.completed"
	PlanRatedEvent     = "plan.rated"
)

func newPlanEvent(eventType, planID, employeeID string, extra map[string]interface{}) BaseEvent {
	data := map[string]interface{}{
		"plan_id":     planID,
		"employee_id": employeeID,
	}
	for k, v := range extra {
		data[k] = v
	}
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func NewPlanSubmitted(planID, employeeID, date string) BaseEvent {
	return newPlanEvent(PlanSubmittedEvent, planID, employeeID, map[string]interface{}{
		"date": date,
	})
}

func NewPlanApproved(planID, employeeID, approvedBy string) BaseEvent {
	return newPlanEvent(PlanApprovedEvent, planID, employeeID, map[string]interface{}{
		"approved_by": approvedBy,
	})
}

func NewPlanRejected(planID, employeeID, rejectedBy, reason string) BaseEvent {
	return newPlanEvent(PlanRejectedEvent, planID, employeeID, map[string]interface{}{
		"rejected_by": rejectedBy,
		"reason":      reason,
	})
}

func NewPlanCompleted(planID, employeeID string) BaseEvent {
	return newPlanEvent(PlanCompletedEvent, planID, employeeID, nil)
}

func NewPlanRated(planID, employeeID, ratedBy string) BaseEvent {
	return newPlanEvent(PlanRatedEvent, planID, employeeID, map[string]interface{}{
		"rated_by": ratedBy,
	})
}
