package service

import (
	"context"

	"fitgrid/internal/apperrors"
	"fitgrid/internal/models"
)

func (s *Service) CreateRoom(ctx context.Context, name string, capacity int) (*models.Room, error) {
	if name == "" {
		return nil, apperrors.InvalidInput("room name is required")
	}
	if capacity <= 0 {
		return nil, apperrors.InvalidInput("room capacity must be positive")
	}
	room := &models.Room{Name: name, Capacity: capacity, Active: true}
	if err := s.lookups.CreateRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

func (s *Service) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	return s.lookups.GetRoom(ctx, id)
}

func (s *Service) ListRooms(ctx context.Context) ([]models.Room, error) {
	return s.lookups.ListRooms(ctx)
}

func (s *Service) CreateInstructor(ctx context.Context, firstName, lastName, email string) (*models.Instructor, error) {
	if firstName == "" || lastName == "" {
		return nil, apperrors.InvalidInput("instructor name is required")
	}
	ins := &models.Instructor{
		FirstName: firstName,
		LastName:  lastName,
		Email:     optionalString(email),
		Active:    true,
	}
	if err := s.lookups.CreateInstructor(ctx, ins); err != nil {
		return nil, err
	}
	return ins, nil
}

func (s *Service) GetInstructor(ctx context.Context, id int64) (*models.Instructor, error) {
	return s.lookups.GetInstructor(ctx, id)
}

func (s *Service) ListInstructors(ctx context.Context) ([]models.Instructor, error) {
	return s.lookups.ListInstructors(ctx)
}

func (s *Service) CreateActivityType(ctx context.Context, name, description string) (*models.ActivityType, error) {
	if name == "" {
		return nil, apperrors.InvalidInput("activity type name is required")
	}
	at := &models.ActivityType{Name: name, Description: optionalString(description)}
	if err := s.lookups.CreateActivityType(ctx, at); err != nil {
		return nil, err
	}
	return at, nil
}

func (s *Service) GetActivityType(ctx context.Context, id int64) (*models.ActivityType, error) {
	return s.lookups.GetActivityType(ctx, id)
}

func (s *Service) ListActivityTypes(ctx context.Context) ([]models.ActivityType, error) {
	return s.lookups.ListActivityTypes(ctx)
}
