package teamService

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nikhil/teamtasks/internal/apperror"
	"github.com/nikhil/teamtasks/internal/logger"
	"github.com/nikhil/teamtasks/internal/models"
	"github.com/nikhil/teamtasks/internal/realtime"
	"github.com/nikhil/teamtasks/internal/repository"
)

const (
	msgTeamNotFound     = "Team not found"
	msgUserNotFound     = "User not found"
	msgAlreadyMember    = "User already in this team"
	msgMemberNotFound   = "User not found in this team"
	msgCannotRemoveSelf = "You cannot remove yourself from the team"
)

// TeamService handles team-related operations
type TeamService struct {
	Store     *repository.Store
	Publisher realtime.Publisher
	Log       *logger.Logger
	now       func() time.Time
}

// CreateTeamRequest represents the request body for team creation
type CreateTeamRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// UpdateTeamRequest represents the request body for team updates. Absent
// fields keep their current value.
type UpdateTeamRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// MemberRequest carries the user to add to or remove from a team
type MemberRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

// NewTeamService initializes a new team service
func NewTeamService(store *repository.Store, publisher realtime.Publisher, log *logger.Logger) *TeamService {
	return &TeamService{
		Store:     store,
		Publisher: publisher,
		Log:       log,
		now:       time.Now,
	}
}

// CreateTeam creates a team and adds the creator as its first member.
func (ts *TeamService) CreateTeam(ctx context.Context, actorID string, req CreateTeamRequest) (*models.Team, error) {
	currentTime := ts.now().Unix()
	team := &models.Team{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CreatedAt:   currentTime,
		UpdatedAt:   currentTime,
	}
	member := models.TeamMember{
		ID:       uuid.NewString(),
		TeamID:   team.ID,
		UserID:   actorID,
		JoinedAt: currentTime,
	}

	err := ts.Store.ExecTx(ctx, func(q *repository.Queries) error {
		if err := q.CreateTeam(ctx, team); err != nil {
			return err
		}
		return q.AddTeamMember(ctx, &member)
	})
	if err != nil {
		return nil, apperror.Internal(err)
	}

	team.Members = []models.TeamMember{member}
	ts.Log.WithContext(ctx).Info("Team created", "team_id", team.ID, "created_by", actorID)
	return team, nil
}

// GetUserTeams lists the teams the caller belongs to.
func (ts *TeamService) GetUserTeams(ctx context.Context, actorID string) ([]models.Team, error) {
	teams, err := ts.Store.ListTeamsByMember(ctx, actorID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return teams, nil
}

// GetTeam returns a team with its members. Non-members see 404.
func (ts *TeamService) GetTeam(ctx context.Context, actorID, teamID string) (*models.Team, error) {
	isMember, err := ts.Store.IsTeamMember(ctx, teamID, actorID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !isMember {
		return nil, apperror.NotFound(msgTeamNotFound)
	}

	team, err := ts.Store.GetTeam(ctx, teamID)
	if err != nil {
		return nil, notFoundOr(err, msgTeamNotFound)
	}
	team.Members, err = ts.Store.ListTeamMembers(ctx, teamID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return team, nil
}

// UpdateTeam applies a partial update. Only admins of the team may update it.
func (ts *TeamService) UpdateTeam(ctx context.Context, actorID, teamID string, req UpdateTeamRequest) (*models.Team, error) {
	var team *models.Team
	err := ts.Store.ExecTx(ctx, func(q *repository.Queries) error {
		var err error
		if team, err = ts.managedTeam(ctx, q, actorID, teamID); err != nil {
			return err
		}
		if req.Name != nil {
			team.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			team.Description = *req.Description
		}
		team.UpdatedAt = ts.now().Unix()
		return q.UpdateTeam(ctx, team)
	})
	if err != nil {
		return nil, apperror.From(err)
	}

	ts.Log.WithContext(ctx).Info("Team updated", "team_id", teamID, "updated_by", actorID)
	return team, nil
}

// AddMember adds an existing user to the team.
func (ts *TeamService) AddMember(ctx context.Context, actorID, teamID, userID string) (*models.TeamMember, error) {
	member := &models.TeamMember{
		ID:       uuid.NewString(),
		TeamID:   teamID,
		UserID:   userID,
		JoinedAt: ts.now().Unix(),
	}

	err := ts.Store.ExecTx(ctx, func(q *repository.Queries) error {
		if _, err := ts.managedTeam(ctx, q, actorID, teamID); err != nil {
			return err
		}
		if _, err := q.GetUserByID(ctx, userID); err != nil {
			return notFoundOr(err, msgUserNotFound)
		}
		isMember, err := q.IsTeamMember(ctx, teamID, userID)
		if err != nil {
			return err
		}
		if isMember {
			return apperror.Conflict(msgAlreadyMember)
		}
		err = q.AddTeamMember(ctx, member)
		if errors.Is(err, repository.ErrDuplicate) {
			return apperror.Conflict(msgAlreadyMember)
		}
		return err
	})
	if err != nil {
		return nil, apperror.From(err)
	}

	ts.Log.WithContext(ctx).Audit("Team member added", "team_id", teamID, "user_id", userID, "added_by", actorID)
	return member, nil
}

// RemoveMember hands the member's tasks in this team over to the acting
// admin and deletes the membership, in one transaction. It returns the
// number of reassigned tasks.
func (ts *TeamService) RemoveMember(ctx context.Context, actorID, teamID, userID string) (int64, error) {
	if userID == actorID {
		return 0, apperror.Conflict(msgCannotRemoveSelf)
	}

	var reassigned int64
	err := ts.Store.ExecTx(ctx, func(q *repository.Queries) error {
		if _, err := ts.managedTeam(ctx, q, actorID, teamID); err != nil {
			return err
		}
		if _, err := q.GetTeamMember(ctx, teamID, userID); err != nil {
			return notFoundOr(err, msgMemberNotFound)
		}

		var err error
		reassigned, err = q.ReassignTeamTasks(ctx, teamID, userID, actorID, ts.now().Unix())
		if err != nil {
			return err
		}
		n, err := q.DeleteTeamMember(ctx, teamID, userID)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperror.NotFound(msgMemberNotFound)
		}
		return nil
	})
	if err != nil {
		return 0, apperror.From(err)
	}

	ts.Log.WithContext(ctx).Audit("Team member removed",
		"team_id", teamID,
		"user_id", userID,
		"removed_by", actorID,
		"tasks_reassigned", reassigned,
	)
	ts.Publisher.Publish(realtime.Event{
		Type:    realtime.EventMemberRemoved,
		TeamID:  teamID,
		ActorID: actorID,
		UserID:  userID,
		Payload: map[string]any{"tasks_reassigned": reassigned, "reassigned_to": actorID},
	})
	return reassigned, nil
}

// managedTeam loads a team the actor administers. Teams the actor is not an
// admin member of are reported as missing.
func (ts *TeamService) managedTeam(ctx context.Context, q *repository.Queries, actorID, teamID string) (*models.Team, error) {
	team, err := q.GetTeam(ctx, teamID)
	if err != nil {
		return nil, notFoundOr(err, msgTeamNotFound)
	}
	isAdmin, err := q.IsTeamAdmin(ctx, teamID, actorID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, apperror.NotFound(msgTeamNotFound)
	}
	return team, nil
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound(message)
	}
	return err
}
