package services

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/pratik-mahalle/dashlist/internal/config"
	"github.com/pratik-mahalle/dashlist/internal/domain/role"
	"github.com/pratik-mahalle/dashlist/internal/domain/user"
	"github.com/pratik-mahalle/dashlist/internal/pkg/errors"
	"github.com/pratik-mahalle/dashlist/internal/pkg/logger"
)

// UserService implements user.Service
type UserService struct {
	repo   user.Repository
	roles  role.Repository
	auth   config.AuthConfig
	logger *logger.Logger
}

// NewUserService creates a new user service
func NewUserService(repo user.Repository, roles role.Repository, auth config.AuthConfig, log *logger.Logger) user.Service {
	return &UserService{
		repo:   repo,
		roles:  roles,
		auth:   auth,
		logger: log.Component("users"),
	}
}

// Register creates an account with the default role
func (s *UserService) Register(ctx context.Context, in user.RegisterInput) (*user.User, error) {
	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, errors.Conflict("A user with this email already exists")
	} else if !errors.IsNotFound(err) {
		return nil, err
	}

	return s.create(ctx, user.CreateInput{
		Email:     in.Email,
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Password:  in.Password,
		Role:      s.auth.DefaultRole,
	})
}

// Authenticate checks credentials and returns the matching user
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.Unauthorized("Invalid credentials")
		}
		return nil, err
	}

	if !u.Active || u.PasswordHash == "" {
		return nil, errors.Unauthorized("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, errors.Unauthorized("Invalid credentials")
	}

	return u, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByEmail retrieves a user by email
func (s *UserService) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// GetOrCreate returns the user with the given email, creating it when missing
func (s *UserService) GetOrCreate(ctx context.Context, in user.CreateInput) (*user.User, bool, error) {
	existing, err := s.repo.GetByEmail(ctx, in.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.IsNotFound(err) {
		return nil, false, err
	}

	if in.Role == "" {
		in.Role = s.auth.DefaultRole
	}
	if _, err := s.roles.GetByName(ctx, in.Role); err != nil {
		if errors.IsNotFound(err) {
			return nil, false, errors.BadRequest("Unknown role " + in.Role)
		}
		return nil, false, err
	}

	u, err := s.create(ctx, in)
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

// Delete deletes a user
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.IsNotFound(err) {
			s.logger.ErrorWithErr(err, "Failed to delete user")
		}
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": id,
	}).Info("User deleted")
	return nil
}

func (s *UserService) create(ctx context.Context, in user.CreateInput) (*user.User, error) {
	u := &user.User{
		Email:     strings.TrimSpace(in.Email),
		Username:  strings.TrimSpace(in.Username),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Role:      in.Role,
		Active:    true,
	}
	if u.Username == "" {
		u.Username = u.Email
	}

	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost())
		if err != nil {
			return nil, errors.Internal("Failed to hash password", err)
		}
		u.PasswordHash = string(hash)
	}

	if err := s.repo.Create(ctx, u); err != nil {
		s.logger.ErrorWithErr(err, "Failed to create user")
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": u.ID,
		"email":   u.Email,
		"role":    u.Role,
	}).Info("User created")

	return u, nil
}

func (s *UserService) bcryptCost() int {
	if s.auth.BCryptCost < bcrypt.MinCost || s.auth.BCryptCost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return s.auth.BCryptCost
}
