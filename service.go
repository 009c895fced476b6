package conduit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// UserRepo defines persistence for user records.
// Implementations must be safe for concurrent use by in-flight requests.
type UserRepo interface {
	// Insert stores a new user. The ID is assigned by the caller.
	Insert(ctx context.Context, u User) error

	// Get returns the user with the given ID, or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (User, error)

	// List returns all users ordered by creation time, oldest first.
	List(ctx context.Context) ([]User, error)
}

// ErrUserFieldsRequired is the validation failure for a user missing its
// name or email.
var ErrUserFieldsRequired = fmt.Errorf("%w: name and email are required", ErrInvalidInput)

type UserService struct {
	repo     UserRepo
	validate *validator.Validate
	now      func() time.Time
}

func NewUserService(repo UserRepo) (*UserService, error) {
	if repo == nil {
		return nil, errors.New("new user service: repo cannot be nil")
	}

	return &UserService{
		repo:     repo,
		validate: validator.New(),
		now:      time.Now,
	}, nil
}

// Create validates the payload, assigns a fresh ID and stores the user.
// Missing or blank name/email yields ErrUserFieldsRequired.
func (s *UserService) Create(ctx context.Context, in CreateUser) (User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	if err := s.validate.Struct(in); err != nil {
		return User{}, fmt.Errorf("create user: %w", ErrUserFieldsRequired)
	}

	u := User{
		ID:        uuid.New(),
		Name:      in.Name,
		Email:     in.Email,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.Insert(ctx, u); err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}

	return u, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) (UserList, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return UserList{}, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []User{}
	}
	return UserList{Users: users, Count: len(users)}, nil
}
