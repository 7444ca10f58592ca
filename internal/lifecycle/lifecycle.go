// Package lifecycle decides which task status changes are allowed.
package lifecycle

import (
	"github.com/nikhil/teamtasks/internal/apperror"
	"github.com/nikhil/teamtasks/internal/models"
)

const (
	msgStartFirst       = "Change status to 'in Progress'"
	msgCompleteTooEarly = "Change status to 'in Progress' before updating to 'completed'"
	msgNoRevert         = "Once the status has been changed to 'In Progress', it cannot be reverted back to 'Pending'"
	msgAlreadyStarted   = "The task is already 'in progress'. The only remaining status option is 'completed'."
	msgAlreadyCompleted = "This Task has already been completed"
	msgUnknown          = "Unknown task status"
)

type edge struct {
	from, to models.TaskStatus
}

// Rule is the outcome for one (current, requested) pair.
type Rule struct {
	Allowed bool
	Message string
}

var transitions = map[edge]Rule{
	{models.StatusPending, models.StatusPending}:    {Message: msgStartFirst},
	{models.StatusPending, models.StatusInProgress}: {Allowed: true},
	{models.StatusPending, models.StatusCompleted}:  {Message: msgCompleteTooEarly},

	{models.StatusInProgress, models.StatusPending}:    {Message: msgNoRevert},
	{models.StatusInProgress, models.StatusInProgress}: {Message: msgAlreadyStarted},
	{models.StatusInProgress, models.StatusCompleted}:  {Allowed: true},

	{models.StatusCompleted, models.StatusPending}:    {Message: msgAlreadyCompleted},
	{models.StatusCompleted, models.StatusInProgress}: {Message: msgAlreadyCompleted},
	{models.StatusCompleted, models.StatusCompleted}:  {Message: msgAlreadyCompleted},
}

// Lookup returns the rule for a pair. Pairs not in the table are denied.
func Lookup(current, requested models.TaskStatus) Rule {
	rule, ok := transitions[edge{current, requested}]
	if !ok {
		return Rule{Message: msgUnknown}
	}
	return rule
}

// Transition returns nil when current may move to requested and a Conflict
// error carrying the rejection message otherwise.
func Transition(current, requested models.TaskStatus) error {
	rule := Lookup(current, requested)
	if !rule.Allowed {
		return apperror.Conflict(rule.Message)
	}
	return nil
}
