package lifecycle

import "fmt"

// Store is the slice of the persistent store the engine needs.
type Store interface {
	ProjectStatus(projectID string) (Status, error)
	SetProjectStatus(projectID string, status Status) error
	AllBillingItemsBilled(projectID string) (bool, error)
}

type Engine struct {
	store Store
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Advance sets the project's status to target. There is deliberately no
// adjacency check: statuses double as a calendar-scheduling key, and free
// jumps let an operator correct mis-entered progress without a separate
// undo operation.
func (e *Engine) Advance(projectID string, target Status) error {
	if !target.Valid() {
		return fmt.Errorf("unknown status %q", target)
	}
	return e.store.SetProjectStatus(projectID, target)
}

func (e *Engine) Cancel(projectID string) error {
	return e.Advance(projectID, StatusCancelled)
}

func (e *Engine) Reopen(projectID string) error {
	return e.Advance(projectID, StatusEstimate)
}

// AutoAdvanceOnFullBilling moves a project from billing to payment_in once
// every billing item is billed. It must be called after each billed-flag
// mutation; it reports whether the transition fired.
func (e *Engine) AutoAdvanceOnFullBilling(projectID string) (bool, error) {
	status, err := e.store.ProjectStatus(projectID)
	if err != nil {
		return false, err
	}
	if status != StatusBilling {
		return false, nil
	}

	allBilled, err := e.store.AllBillingItemsBilled(projectID)
	if err != nil {
		return false, err
	}
	if !allBilled {
		return false, nil
	}

	if err := e.store.SetProjectStatus(projectID, StatusPaymentIn); err != nil {
		return false, err
	}
	return true, nil
}
