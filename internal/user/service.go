// Package user manages the accounts the chat core resolves participants
// against.
package user

import (
	"context"
	"errors"
	"log/slog"

	"chatservice/backend/internal/apperror"
	"chatservice/backend/internal/models"
	"chatservice/backend/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Internal error codes.
const (
	CodeGet    = "User.Get"
	CodeList   = "User.List"
	CodeCreate = "User.Create"
	CodeUpdate = "User.Update"
	CodeDelete = "User.Delete"
)

// Store is the persistence port of the service.
type Store interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error
}

// Input carries the editable fields of a user.
type Input struct {
	Role       string `json:"role" validate:"required,oneof=Administrator FleetManager Technician InsuranceAgent HrManager Driver"`
	Email      string `json:"email" validate:"required,email"`
	FirstName  string `json:"firstName" validate:"max=100"`
	LastName   string `json:"lastName" validate:"max=100"`
	Patronymic string `json:"patronymic" validate:"max=100"`
}

// newUser is what CreateUser validates. Supplied IDs end up in storage keys
// and must be UUIDs.
type newUser struct {
	ID string `validate:"omitempty,uuid"`
	Input
}

type Service struct {
	store    Store
	validate *validator.Validate
	log      *slog.Logger
}

func NewService(store Store, log *slog.Logger) *Service {
	return &Service{store: store, validate: validator.New(), log: log}
}

// Exists reports whether a user with the given ID is known.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.store.GetUser(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperror.Internal(CodeGet).Wrap(err)
	}
	return true, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperror.UserNotFound(id)
	}
	if err != nil {
		return nil, apperror.Internal(CodeGet).Wrap(err)
	}
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, apperror.Internal(CodeList).Wrap(err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// CreateUser registers a user. An empty id gets a fresh UUID.
func (s *Service) CreateUser(ctx context.Context, id string, in Input) (*models.User, error) {
	if err := s.validate.Struct(newUser{ID: id, Input: in}); err != nil {
		return nil, apperror.FromValidation(err)
	}

	if id == "" {
		id = uuid.New().String()
	}
	u := &models.User{ID: id}
	apply(u, in)
	err := s.store.CreateUser(ctx, u)
	if errors.Is(err, storage.ErrDuplicate) {
		return nil, apperror.UserDuplicate(id)
	}
	if err != nil {
		return nil, apperror.Internal(CodeCreate).Wrap(err)
	}

	s.log.Info("User created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

func (s *Service) UpdateUser(ctx context.Context, id string, in Input) (*models.User, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperror.FromValidation(err)
	}

	u := &models.User{ID: id}
	apply(u, in)
	err := s.store.UpdateUser(ctx, u)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil, apperror.UserNotFound(id)
	case errors.Is(err, storage.ErrDuplicate):
		return nil, apperror.UserDuplicate(id)
	case err != nil:
		return nil, apperror.Internal(CodeUpdate).Wrap(err)
	}
	return u, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	err := s.store.DeleteUser(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return apperror.UserNotFound(id)
	}
	if err != nil {
		return apperror.Internal(CodeDelete).Wrap(err)
	}
	s.log.Info("User deleted", "user_id", id)
	return nil
}

func apply(u *models.User, in Input) {
	u.Role = in.Role
	u.Email = in.Email
	u.FirstName = in.FirstName
	u.LastName = in.LastName
	u.Patronymic = in.Patronymic
}
