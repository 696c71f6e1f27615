package employee

// LifecycleStatus replaces a bare active flag. Records are never removed; an
// employee is deactivated instead and keeps their attendance history.
type LifecycleStatus string

const (
	StatusActive      LifecycleStatus = "active"
	StatusDeactivated LifecycleStatus = "deactivated"
)

func (s LifecycleStatus) IsValid() bool {
	return s == StatusActive || s == StatusDeactivated
}

// CanTransition checks a lifecycle move. Same-state moves are rejected so that
// callers can report "already active" or "already inactive".
func CanTransition(from, to LifecycleStatus) error {
	if !to.IsValid() {
		return ErrInvalidLifecycleStatus
	}
	if from == to {
		if to == StatusActive {
			return ErrEmployeeAlreadyActive
		}
		return ErrEmployeeAlreadyInactive
	}
	return nil
}
