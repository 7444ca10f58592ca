package authService

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nikhil/teamtasks/internal/apperror"
	"github.com/nikhil/teamtasks/internal/auth"
	"github.com/nikhil/teamtasks/internal/logger"
	"github.com/nikhil/teamtasks/internal/models"
	"github.com/nikhil/teamtasks/internal/repository"
	"github.com/nikhil/teamtasks/pkg/utils"
)

const (
	msgUserExists         = "User already exists"
	msgInvalidCredentials = "Email or password invalid"
	msgUserNotFound       = "User not found"
)

// AuthService handles registration, login and role promotion.
type AuthService struct {
	Store       *repository.Store
	Tokens      *auth.TokenManager
	Log         *logger.Logger
	BcryptCost  int
	AdminEmails []string
	now         func() time.Time
	// dummyHash is compared on unknown emails so both login failures cost a
	// bcrypt comparison.
	dummyHash string
}

// RegisterRequest represents the request body for account creation
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

// LoginRequest represents the request body for a session
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is returned on successful login.
type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func NewAuthService(store *repository.Store, tokens *auth.TokenManager, log *logger.Logger, bcryptCost int, adminEmails []string) *AuthService {
	return &AuthService{
		Store:       store,
		Tokens:      tokens,
		Log:         log,
		BcryptCost:  bcryptCost,
		AdminEmails: adminEmails,
		now:         time.Now,
		dummyHash:   newDummyHash(bcryptCost),
	}
}

func newDummyHash(cost int) string {
	hash, err := utils.HashPassword(uuid.NewString(), cost)
	if err != nil {
		hash, _ = utils.HashPassword(uuid.NewString(), bcrypt.DefaultCost)
	}
	return hash
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a member account. Emails listed as admin emails get the
// admin role straight away.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)

	_, err := s.Store.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, apperror.Conflict(msgUserExists)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Internal(err)
	}

	hash, err := utils.HashPassword(req.Password, s.BcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperror.Validation("Validation Error", []apperror.Issue{
				{Field: "password", Message: "must be at most 72 bytes long"},
			})
		}
		return nil, apperror.Internal(err)
	}

	role := models.RoleMember
	if slices.Contains(s.AdminEmails, email) {
		role = models.RoleAdmin
	}

	now := s.now().Unix()
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same email.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict(msgUserExists)
		}
		return nil, apperror.Internal(err)
	}

	s.Log.WithContext(ctx).Info("User registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Authenticate checks the credentials and issues a token. Unknown email and
// wrong password fail identically.
func (s *AuthService) Authenticate(ctx context.Context, req LoginRequest) (*Session, error) {
	log := s.Log.WithContext(ctx)

	user, err := s.Store.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.CheckPassword(s.dummyHash, req.Password)
			log.Info("Login failed", "reason", "unknown email")
			return nil, apperror.Validation(msgInvalidCredentials, nil)
		}
		return nil, apperror.Internal(err)
	}

	ok, err := utils.CheckPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !ok {
		log.Info("Login failed", "reason", "password mismatch", "user_id", user.ID)
		return nil, apperror.Validation(msgInvalidCredentials, nil)
	}

	token, err := s.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &Session{Token: token, User: user}, nil
}

// SyncAdmins promotes every configured admin email that has an account.
// Emails without an account are promoted when they register.
func (s *AuthService) SyncAdmins(ctx context.Context) error {
	for _, email := range s.AdminEmails {
		found, err := s.Store.SetUserRoleByEmail(ctx, email, models.RoleAdmin, s.now().Unix())
		if err != nil {
			return err
		}
		if found {
			s.Log.Audit("Admin role synced", "email", email)
		}
	}
	return nil
}

// Promote grants the admin role to the account with the given email.
func (s *AuthService) Promote(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	found, err := s.Store.SetUserRoleByEmail(ctx, email, models.RoleAdmin, s.now().Unix())
	if err != nil {
		return apperror.Internal(err)
	}
	if !found {
		return apperror.NotFound(msgUserNotFound)
	}
	s.Log.Audit("User promoted to admin", "email", email)
	return nil
}
