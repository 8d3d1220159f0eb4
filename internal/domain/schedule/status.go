package schedule

import "github.com/zighstudio/salon-scheduler/internal/httperr"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// ActiveStatuses are the statuses that occupy an employee's time. Everything
// else never blocks a new booking.
func ActiveStatuses() []string {
	return []string{string(StatusPending), string(StatusConfirmed)}
}

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
	StatusCompleted: {},
	StatusCancelled: {},
	StatusNoShow:    {},
}

func IsValidStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}

func IsTerminal(s Status) bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// CanTransition enforces the legal-transition table. Cancelling an already
// cancelled appointment gets its own code so callers can report it as a
// distinct no-op error.
func CanTransition(from, to Status) error {
	if from == StatusCancelled && to == StatusCancelled {
		return httperr.InvalidStateErr("already_cancelled", "Ce rendez-vous est déjà annulé.")
	}

	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}

	return httperr.InvalidStateErr(
		"invalid_status_transition",
		"Transition de statut non autorisée: "+string(from)+" → "+string(to)+".",
	)
}

// InitialStatus mirrors the creation rule: a booking with an employee chosen
// up front is confirmed, one waiting for assignment stays pending.
func InitialStatus(hasEmployee bool) Status {
	if hasEmployee {
		return StatusConfirmed
	}
	return StatusPending
}
