package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mfrancon/roomreserve/internal/model"
	"github.com/mfrancon/roomreserve/internal/validation"
)

type RoomService struct {
	rooms  RoomStore
	users  UserStore
	logger *zap.Logger
}

func NewRoomService(rooms RoomStore, users UserStore, logger *zap.Logger) *RoomService {
	return &RoomService{rooms: rooms, users: users, logger: logger}
}

// Create adds a room. Only admins may do so.
func (s *RoomService) Create(ctx context.Context, actorID int64, room *model.Room) error {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if actor == nil || !actor.IsAdmin {
		return fmt.Errorf("only admins can create rooms: %w", ErrForbidden)
	}

	var vs validation.Violations
	if room.Name == "" {
		vs = append(vs, validation.Violation{Field: "name", Message: "can't be blank"})
	}
	if room.Capacity <= 0 {
		vs = append(vs, validation.Violation{Field: "capacity", Message: "must be greater than 0"})
	}
	if len(vs) > 0 {
		return &validation.Error{Violations: vs}
	}

	if err := s.rooms.Create(ctx, room); err != nil {
		return err
	}

	s.logger.Info("Room created",
		zap.Int64("room_id", room.ID),
		zap.String("name", room.Name),
		zap.Int("capacity", room.Capacity),
	)

	return nil
}

// Get returns one room.
func (s *RoomService) Get(ctx context.Context, id int64) (*model.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, fmt.Errorf("room %d: %w", id, ErrNotFound)
	}
	return room, nil
}

// List returns every room.
func (s *RoomService) List(ctx context.Context) ([]*model.Room, error) {
	return s.rooms.List(ctx)
}
