package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/madhava-poojari/learnsphere/internal/models"
	"github.com/madhava-poojari/learnsphere/internal/store"
	"github.com/madhava-poojari/learnsphere/internal/utils"
)

type UserService struct {
	store store.Repository
}

func NewUserService(s store.Repository) *UserService {
	return &UserService{store: s}
}

func (u *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return u.store.GetUserByID(ctx, id)
}

// CreateStudent registers a student account with a generated USR00 id.
func (u *UserService) CreateStudent(ctx context.Context, email, firstName, lastName string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || firstName == "" {
		return nil, fmt.Errorf("email and first name are required")
	}
	uid, err := utils.GenerateUserID()
	if err != nil {
		return nil, err
	}
	user := &models.User{
		ID:        uid,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Role:      models.RoleStudent,
		Active:    true,
	}
	// try create; if the id collides (rare), regenerate a few times
	for i := 0; i < 5; i++ {
		err = u.store.CreateUser(ctx, user)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return nil, err
		}
		if _, lookupErr := u.store.GetUserByID(ctx, user.ID); errors.Is(lookupErr, store.ErrNotFound) {
			// the id is free, so the email is what collided
			return nil, fmt.Errorf("email %s already registered: %w", email, err)
		}
		uid, err2 := utils.GenerateUserID()
		if err2 != nil {
			return nil, err2
		}
		user.ID = uid
	}
	return nil, errors.New("could not create unique user id")
}
