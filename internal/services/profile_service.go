package services

import (
	"context"

	"github.com/opiquem/blog-app-be/internal/models"
	"github.com/opiquem/blog-app-be/internal/repositories"
)

// ProfileService serves public profiles and the follow graph.
type ProfileService struct {
	users   repositories.UserRepository
	follows repositories.FollowRepository
	events  EventPublisher
}

// NewProfileService creates a new ProfileService. events may be nil.
func NewProfileService(users repositories.UserRepository, follows repositories.FollowRepository, events EventPublisher) *ProfileService {
	return &ProfileService{users: users, follows: follows, events: events}
}

// GetProfile returns the profile of username as seen by callerID ("" when anonymous).
func (s *ProfileService) GetProfile(ctx context.Context, callerID, username string) (*models.Profile, error) {
	user, err := s.findProfileUser(ctx, username)
	if err != nil {
		return nil, err
	}

	following := false
	if callerID != "" {
		following, err = s.follows.Exists(ctx, callerID, user.ID)
		if err != nil {
			return nil, err
		}
	}
	profile := user.ToProfile(following)
	return &profile, nil
}

// FollowProfile makes callerID follow username. Following twice is a no-op.
func (s *ProfileService) FollowProfile(ctx context.Context, callerID, username string) (*models.Profile, error) {
	user, err := s.findFollowTarget(ctx, callerID, username)
	if err != nil {
		return nil, err
	}
	if err := s.follows.Create(ctx, callerID, user.ID); err != nil {
		return nil, err
	}

	publishEvent(s.events, EventProfileFollowed, FollowEvent{FollowerID: callerID, FollowingID: user.ID})
	profile := user.ToProfile(true)
	return &profile, nil
}

// UnfollowProfile removes the follow edge whether or not it existed.
func (s *ProfileService) UnfollowProfile(ctx context.Context, callerID, username string) (*models.Profile, error) {
	user, err := s.findFollowTarget(ctx, callerID, username)
	if err != nil {
		return nil, err
	}
	if err := s.follows.Delete(ctx, callerID, user.ID); err != nil {
		return nil, err
	}

	publishEvent(s.events, EventProfileUnfollowed, FollowEvent{FollowerID: callerID, FollowingID: user.ID})
	profile := user.ToProfile(false)
	return &profile, nil
}

func (s *ProfileService) findProfileUser(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if models.IsNotFound(err) {
		return nil, models.NewNotFoundError("Profile")
	}
	return user, err
}

func (s *ProfileService) findFollowTarget(ctx context.Context, callerID, username string) (*models.User, error) {
	user, err := s.findProfileUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if user.ID == callerID {
		return nil, models.NewBadRequestError("Follower and following should not be equal")
	}
	return user, nil
}
