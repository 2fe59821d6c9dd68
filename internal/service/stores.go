package service

import (
	"context"
	"time"

	"github.com/mfrancon/roomreserve/internal/model"
	"github.com/mfrancon/roomreserve/internal/repository"
)

// ReservationStore is the persistence surface the reservation service needs.
// *repository.ReservationRepository satisfies it; tests use an in-memory
// implementation.
type ReservationStore interface {
	BeginRoomTx(ctx context.Context, roomID int64) (repository.ReservationTx, error)
	GetByID(ctx context.Context, id int64) (*model.Reservation, error)
	List(ctx context.Context) ([]*model.Reservation, error)
	Cancel(ctx context.Context, id int64, at time.Time) (*model.Reservation, error)
	OverlapExists(ctx context.Context, roomID int64, start, end time.Time) (bool, error)
}

type RoomStore interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id int64) (*model.Room, error)
	List(ctx context.Context) ([]*model.Room, error)
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
}
