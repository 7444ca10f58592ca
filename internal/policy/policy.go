// Package policy holds the role allow-list for every named route and the
// resource predicates that handlers and services check on top of it.
package policy

import (
	"context"
	"slices"

	"github.com/nikhil/teamtasks/internal/models"
)

// Route names. The router tags each protected route with one of these.
const (
	TeamsCreate        = "teams.create"
	TeamsUpdate        = "teams.update"
	TeamsMine          = "teams.mine"
	TeamsShow          = "teams.show"
	TeamsMembersAdd    = "teams.members.add"
	TeamsMembersRemove = "teams.members.remove"
	TasksCreate        = "tasks.create"
	TasksAssign        = "tasks.assign"
	TasksMine          = "tasks.mine"
	TasksTeam          = "tasks.team"
	TasksUpdate        = "tasks.update"
	TasksStatus        = "tasks.status"
	TasksHistory       = "tasks.history"
	RealtimeConnect    = "realtime.connect"
	UsersMe            = "users.me"
)

// Table maps a route name to the roles allowed to call it.
type Table map[string][]models.Role

var (
	adminOnly = []models.Role{models.RoleAdmin}
	anyRole   = []models.Role{models.RoleMember, models.RoleAdmin}
)

// Default returns the allow-list served by the API.
func Default() Table {
	return Table{
		TeamsCreate:        adminOnly,
		TeamsUpdate:        adminOnly,
		TeamsMembersAdd:    adminOnly,
		TeamsMembersRemove: adminOnly,
		TasksCreate:        adminOnly,
		TasksAssign:        adminOnly,

		TeamsMine:       anyRole,
		TeamsShow:       anyRole,
		TasksMine:       anyRole,
		TasksTeam:       anyRole,
		TasksUpdate:     anyRole,
		TasksStatus:     anyRole,
		TasksHistory:    anyRole,
		RealtimeConnect: anyRole,
		UsersMe:         anyRole,
	}
}

// Allows reports whether role may call route. Unknown routes are denied.
func (t Table) Allows(route string, role models.Role) bool {
	roles, ok := t[route]
	if !ok {
		return false
	}
	return slices.Contains(roles, role)
}

// Membership answers team-scoped questions about a user.
type Membership interface {
	IsTeamMember(ctx context.Context, teamID, userID string) (bool, error)
	// IsTeamAdmin is true for members of the team whose account role is admin.
	IsTeamAdmin(ctx context.Context, teamID, userID string) (bool, error)
}

func IsAssignee(task *models.Task, userID string) bool {
	return task != nil && task.AssignedToID == userID
}

// CanChangeStatus allows the assignee or an admin of the task's team.
func CanChangeStatus(task *models.Task, userID string, isTeamAdmin bool) bool {
	return IsAssignee(task, userID) || (task != nil && isTeamAdmin)
}
