package scheduling

import (
	"github.com/pkg/errors"

	"github.com/oratio/oratio/store"
)

// LifecycleAction is an operator-requested transition on a schedule
// assignment. There is no time-based transition: the engine is a planning
// tool, not a publisher.
type LifecycleAction string

const (
	ActionMarkPublished LifecycleAction = "mark_published"
	ActionMarkScheduled LifecycleAction = "mark_scheduled"
	ActionCancel        LifecycleAction = "cancel"
)

// Transition applies the lifecycle table:
//
//	scheduled  --mark_published--> published
//	published  --mark_scheduled--> scheduled
//	scheduled  --cancel---------->  cancelled
//	published  --cancel---------->  cancelled
//
// Cancelled is terminal. Anything else is rejected.
func Transition(current store.ScheduleStatus, action LifecycleAction) (store.ScheduleStatus, error) {
	switch action {
	case ActionMarkPublished:
		if current == store.ScheduleStatusScheduled {
			return store.ScheduleStatusPublished, nil
		}
	case ActionMarkScheduled:
		if current == store.ScheduleStatusPublished {
			return store.ScheduleStatusScheduled, nil
		}
	case ActionCancel:
		if current == store.ScheduleStatusScheduled || current == store.ScheduleStatusPublished {
			return store.ScheduleStatusCancelled, nil
		}
	}
	return "", errors.Errorf("cannot %s a %s assignment", action, current)
}
