package policy

import (
	"testing"

	"github.com/nikhil/teamtasks/internal/models"
)

func TestDefaultTable(t *testing.T) {
	table := Default()

	adminRoutes := []string{TeamsCreate, TeamsUpdate, TeamsMembersAdd, TeamsMembersRemove, TasksCreate, TasksAssign}
	for _, route := range adminRoutes {
		if !table.Allows(route, models.RoleAdmin) {
			t.Errorf("%s: admin denied", route)
		}
		if table.Allows(route, models.RoleMember) {
			t.Errorf("%s: member allowed", route)
		}
	}

	sharedRoutes := []string{TeamsMine, TeamsShow, TasksMine, TasksTeam, TasksUpdate, TasksStatus, TasksHistory, RealtimeConnect, UsersMe}
	for _, route := range sharedRoutes {
		for _, role := range []models.Role{models.RoleMember, models.RoleAdmin} {
			if !table.Allows(route, role) {
				t.Errorf("%s: %s denied", route, role)
			}
		}
	}
}

func TestAllowsFailsClosed(t *testing.T) {
	table := Default()
	if table.Allows("teams.delete", models.RoleAdmin) {
		t.Error("unlisted route allowed")
	}
	if table.Allows(TasksMine, models.Role("owner")) {
		t.Error("unknown role allowed")
	}
	if table.Allows("", models.RoleAdmin) {
		t.Error("unnamed route allowed")
	}
}

func TestCanChangeStatus(t *testing.T) {
	task := &models.Task{ID: "t1", AssignedToID: "alice"}

	tests := []struct {
		name        string
		task        *models.Task
		user        string
		isTeamAdmin bool
		want        bool
	}{
		{"assignee", task, "alice", false, true},
		{"team admin", task, "bob", true, true},
		{"other member", task, "bob", false, false},
		{"nil task", nil, "alice", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanChangeStatus(tt.task, tt.user, tt.isTeamAdmin); got != tt.want {
				t.Errorf("CanChangeStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsAssignee(t *testing.T) {
	task := &models.Task{AssignedToID: "alice"}
	if !IsAssignee(task, "alice") || IsAssignee(task, "bob") || IsAssignee(nil, "alice") {
		t.Error("IsAssignee mismatch")
	}
}
