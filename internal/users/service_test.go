package users_test

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"tixly/internal/auth"
	"tixly/internal/logger"
	"tixly/internal/models"
	"tixly/internal/users"
)

type MockUserDB struct {
	mock.Mock
}

func (m *MockUserDB) GetUserByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserDB) GetUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserDB) CreateUser(user models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserDB) UpdateUser(user models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserDB) SetStripeAccount(userID, accountID string) error {
	args := m.Called(userID, accountID)
	return args.Error(0)
}

func (m *MockUserDB) SetBlocked(userID string, blocked bool) error {
	args := m.Called(userID, blocked)
	return args.Error(0)
}

func (m *MockUserDB) ListUsers() ([]models.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

const testSecret = "test-secret"

func TestLoginCreatesUserOnFirstSight(t *testing.T) {
	db := new(MockUserDB)
	svc := users.NewUserService(db, testSecret, logger.NewLogger())

	db.On("GetUserByEmail", "alice@example.com").Return(nil, sql.ErrNoRows)
	db.On("CreateUser", mock.AnythingOfType("models.User")).Return(nil)

	result, err := svc.Login("Alice@Example.com", "Alice", "")
	assert.NoError(t, err)
	assert.Equal(t, "alice@example.com", result.User.Email)
	assert.Equal(t, models.RoleAttendee, result.User.Role)
	assert.NotEmpty(t, result.Token)

	claims, err := auth.VerifyToken(testSecret, result.Token)
	assert.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.Subject)
	assert.Equal(t, models.RoleAttendee, claims.Role)
}

func TestLoginNewOrganizerKeepsRequestedRole(t *testing.T) {
	db := new(MockUserDB)
	svc := users.NewUserService(db, testSecret, logger.NewLogger())

	db.On("GetUserByEmail", "org@example.com").Return(nil, sql.ErrNoRows)
	db.On("CreateUser", mock.AnythingOfType("models.User")).Return(nil)

	result, err := svc.Login("org@example.com", "Org", models.RoleOrganizer)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleOrganizer, result.User.Role)
}

func TestLoginNeverGrantsAdminToNewUsers(t *testing.T) {
	db := new(MockUserDB)
	svc := users.NewUserService(db, testSecret, logger.NewLogger())

	db.On("GetUserByEmail", "sneaky@example.com").Return(nil, sql.ErrNoRows)
	db.On("CreateUser", mock.AnythingOfType("models.User")).Return(nil)

	result, err := svc.Login("sneaky@example.com", "Sneaky", models.RoleAdmin)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleAttendee, result.User.Role)
}

func TestLoginStoredRoleWins(t *testing.T) {
	db := new(MockUserDB)
	svc := users.NewUserService(db, testSecret, logger.NewLogger())

	stored := &models.User{ID: "u1", Email: "admin@example.com", Role: models.RoleAdmin}
	db.On("GetUserByEmail", "admin@example.com").Return(stored, nil)

	result, err := svc.Login("admin@example.com", "Admin", models.RoleAttendee)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, result.User.Role)
	db.AssertNotCalled(t, "CreateUser", mock.Anything)
}

func TestLoginRejectsBlockedUser(t *testing.T) {
	db := new(MockUserDB)
	svc := users.NewUserService(db, testSecret, logger.NewLogger())

	stored := &models.User{ID: "u2", Email: "blocked@example.com", Role: models.RoleAttendee, Blocked: true}
	db.On("GetUserByEmail", "blocked@example.com").Return(stored, nil)

	_, err := svc.Login("blocked@example.com", "Blocked", "")
	assert.ErrorIs(t, err, users.ErrBlocked)
}

func TestLoginRejectsInvalidEmail(t *testing.T) {
	svc := users.NewUserService(new(MockUserDB), testSecret, logger.NewLogger())

	_, err := svc.Login("not-an-email", "X", "")
	assert.ErrorIs(t, err, users.ErrInvalidEmail)
}
