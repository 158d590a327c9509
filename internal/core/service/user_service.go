package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/ports"
)

// UserService implements user administration (COUSR0xC).
type UserService struct {
	repo ports.UserRepository
	now  func() time.Time
}

func NewUserService(repo ports.UserRepository) *UserService {
	return &UserService{repo: repo, now: time.Now}
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(ctx, domain.NormalizeUserID(userID))
}

func (s *UserService) ListUsers(ctx context.Context, page ports.PageRequest) (domain.Page[*domain.User], error) {
	page = page.Normalize(defaultPageSize, maxPageSize)
	items, total, err := s.repo.List(ctx, page)
	if err != nil {
		return domain.Page[*domain.User]{}, fmt.Errorf("list users: %w", err)
	}
	return domain.NewPage(items, page.Page, page.PageSize, total), nil
}

func (s *UserService) AddUser(ctx context.Context, in ports.UserInput) (*domain.User, error) {
	in.UserID = domain.NormalizeUserID(in.UserID)
	if err := validateUserInput(in, true); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &domain.User{
		UserID:       in.UserID,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: string(hash),
		UserType:     in.UserType,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser changes names and type; the password only when one is given.
func (s *UserService) UpdateUser(ctx context.Context, in ports.UserInput) (*domain.User, error) {
	in.UserID = domain.NormalizeUserID(in.UserID)
	if err := validateUserInput(in, false); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.UserType = in.UserType
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	return s.repo.Delete(ctx, domain.NormalizeUserID(userID))
}

func validateUserInput(in ports.UserInput, requirePassword bool) error {
	switch {
	case in.UserID == "" || len(in.UserID) > 8:
		return fmt.Errorf("%w: user id must be 1-8 characters", domain.ErrInvalidInput)
	case strings.TrimSpace(in.FirstName) == "":
		return fmt.Errorf("%w: first name can NOT be empty", domain.ErrInvalidInput)
	case strings.TrimSpace(in.LastName) == "":
		return fmt.Errorf("%w: last name can NOT be empty", domain.ErrInvalidInput)
	case requirePassword && in.Password == "":
		return fmt.Errorf("%w: password can NOT be empty", domain.ErrInvalidInput)
	case len(in.Password) > 8:
		return fmt.Errorf("%w: password must be at most 8 characters", domain.ErrInvalidInput)
	case in.UserType != domain.UserTypeAdmin && in.UserType != domain.UserTypeRegular:
		return fmt.Errorf("%w: user type must be A or U", domain.ErrInvalidInput)
	}
	return nil
}

// SeedUsers creates the default sign-on users when they are missing.
func SeedUsers(ctx context.Context, users *UserService) error {
	defaults := []ports.UserInput{
		{UserID: "ADMIN001", FirstName: "System", LastName: "Administrator", Password: "PASSWORD", UserType: domain.UserTypeAdmin},
		{UserID: "USER001", FirstName: "Back", LastName: "Office", Password: "PASSWORD", UserType: domain.UserTypeRegular},
	}
	for _, in := range defaults {
		if _, err := users.AddUser(ctx, in); err != nil && !errors.Is(err, domain.ErrUserExists) {
			return fmt.Errorf("seed user %s: %w", in.UserID, err)
		}
	}
	return nil
}
