package users

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tixly/internal/auth"
	"tixly/internal/logger"
	"tixly/internal/models"
)

var (
	ErrBlocked      = errors.New("account is blocked")
	ErrInvalidEmail = errors.New("a valid email is required")
)

type UserDBLayer interface {
	GetUserByID(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	CreateUser(user models.User) error
	UpdateUser(user models.User) error
	SetStripeAccount(userID, accountID string) error
	SetBlocked(userID string, blocked bool) error
	ListUsers() ([]models.User, error)
}

type UserService struct {
	DB        UserDBLayer
	JWTSecret string
	Logger    *logger.Logger
}

func NewUserService(db UserDBLayer, jwtSecret string, log *logger.Logger) *UserService {
	return &UserService{DB: db, JWTSecret: jwtSecret, Logger: log}
}

type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login resolves the identity-provider subject to a stored user, creating
// one on first sight, and issues a session token. The stored role always
// wins over the requested one; new accounts never start above organizer.
func (s *UserService) Login(email, name string, requestedRole models.Role) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}

	user, err := s.DB.GetUserByEmail(email)
	switch {
	case err == nil:
	case errors.Is(err, sql.ErrNoRows):
		role := models.RoleAttendee
		if requestedRole == models.RoleOrganizer {
			role = models.RoleOrganizer
		}
		created := models.User{
			ID:        uuid.New().String(),
			Name:      name,
			Email:     email,
			Role:      role,
			CreatedAt: time.Now(),
		}
		if err := s.DB.CreateUser(created); err != nil {
			s.Logger.Error("USER", fmt.Sprintf("Failed to create user %s: %v", email, err))
			return nil, err
		}
		s.Logger.Info("USER", fmt.Sprintf("User %s registered as %s", email, role))
		user = &created
	default:
		return nil, err
	}

	if user.Blocked {
		s.Logger.Warn("USER", fmt.Sprintf("Blocked user %s attempted login", email))
		return nil, ErrBlocked
	}

	token, err := auth.IssueToken(s.JWTSecret, *user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &LoginResult{Token: token, User: *user}, nil
}

func (s *UserService) GetUser(id string) (*models.User, error) {
	return s.DB.GetUserByID(id)
}

func (s *UserService) UpdateProfile(id, name, image string) (*models.User, error) {
	user, err := s.DB.GetUserByID(id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) != "" {
		user.Name = name
	}
	if image != "" {
		user.Image = image
	}
	if err := s.DB.UpdateUser(*user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListUsers() ([]models.User, error) {
	return s.DB.ListUsers()
}

func (s *UserService) BlockUser(id string) error {
	if err := s.DB.SetBlocked(id, true); err != nil {
		return err
	}
	s.Logger.Warn("USER", fmt.Sprintf("User %s blocked", id))
	return nil
}

func (s *UserService) UnblockUser(id string) error {
	if err := s.DB.SetBlocked(id, false); err != nil {
		return err
	}
	s.Logger.Info("USER", fmt.Sprintf("User %s unblocked", id))
	return nil
}
