package profileService

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nikhil/teamtasks/internal/apperror"
	"github.com/nikhil/teamtasks/internal/logger"
	"github.com/nikhil/teamtasks/internal/models"
	"github.com/nikhil/teamtasks/internal/repository"
)

const msgUserNotFound = "User not found"

type ProfileService struct {
	Store *repository.Store
	Log   *logger.Logger
	now   func() time.Time
}

// UpdateProfileRequest holds the editable profile fields. Email and role
// are not editable here.
type UpdateProfileRequest struct {
	Name *string `json:"name" validate:"omitempty,min=3,max=100"`
}

func NewProfileService(store *repository.Store, log *logger.Logger) *ProfileService {
	return &ProfileService{Store: store, Log: log, now: time.Now}
}

func (ps *ProfileService) GetUserProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := ps.Store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound(msgUserNotFound)
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}

func (ps *ProfileService) UpdateUserProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*models.User, error) {
	user, err := ps.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Name == nil {
		return user, nil
	}

	user.Name = strings.TrimSpace(*req.Name)
	user.UpdatedAt = ps.now().Unix()
	if err := ps.Store.UpdateUserName(ctx, user.ID, user.Name, user.UpdatedAt); err != nil {
		return nil, apperror.Internal(err)
	}
	ps.Log.WithContext(ctx).Info("User details updated", "user_id", user.ID)
	return user, nil
}
