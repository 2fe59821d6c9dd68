package testfixtures

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mfrancon/roomreserve/internal/model"
	"github.com/mfrancon/roomreserve/internal/repository"
)

// MemReservationStore is an in-memory stand-in for the Postgres reservation
// repository. Its transactions stage inserts until Commit and hold a
// per-room lock between BeginRoomTx and Commit/Rollback, mirroring the
// advisory-lock discipline of the real store.
type MemReservationStore struct {
	mu        sync.Mutex
	rows      []*model.Reservation
	nextID    int64
	roomLocks map[int64]*sync.Mutex
}

func NewMemReservationStore() *MemReservationStore {
	return &MemReservationStore{
		nextID:    1,
		roomLocks: make(map[int64]*sync.Mutex),
	}
}

// Add seeds a committed reservation and returns it with an assigned id.
func (s *MemReservationStore) Add(res model.Reservation) *model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	res.ID = s.nextID
	s.nextID++
	r := res
	s.rows = append(s.rows, &r)
	return &r
}

// Count reports the number of committed rows, cancelled ones included.
func (s *MemReservationStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *MemReservationStore) BeginRoomTx(ctx context.Context, roomID int64) (repository.ReservationTx, error) {
	s.mu.Lock()
	lock, ok := s.roomLocks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		s.roomLocks[roomID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return &memTx{store: s, roomLock: lock}, nil
}

func (s *MemReservationStore) GetByID(ctx context.Context, id int64) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.ID == id {
			copied := *r
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *MemReservationStore) List(ctx context.Context) ([]*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Reservation, 0, len(s.rows))
	for _, r := range s.rows {
		copied := *r
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (s *MemReservationStore) Cancel(ctx context.Context, id int64, at time.Time) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.ID == id {
			cancelled := at
			r.CancelledAt = &cancelled
			r.UpdatedAt = at
			copied := *r
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *MemReservationStore) OverlapExists(ctx context.Context, roomID int64, start, end time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlapLocked(roomID, start, end), nil
}

func (s *MemReservationStore) overlapLocked(roomID int64, start, end time.Time) bool {
	for _, r := range s.rows {
		if r.RoomID != roomID || !r.Active() {
			continue
		}
		if r.StartsAt.Before(end) && r.EndsAt.After(start) {
			return true
		}
	}
	return false
}

func (s *MemReservationStore) countFutureActiveLocked(userID int64, after time.Time) int {
	count := 0
	for _, r := range s.rows {
		if r.UserID == userID && r.Active() && r.StartsAt.After(after) {
			count++
		}
	}
	return count
}

type memTx struct {
	store    *MemReservationStore
	roomLock *sync.Mutex
	staged   []*model.Reservation
	done     bool
}

func (t *memTx) OverlapExists(ctx context.Context, roomID int64, start, end time.Time) (bool, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	return t.store.overlapLocked(roomID, start, end), nil
}

func (t *memTx) CountFutureActive(ctx context.Context, userID int64, after time.Time) (int, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	return t.store.countFutureActiveLocked(userID, after), nil
}

func (t *memTx) Insert(ctx context.Context, res *model.Reservation) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	res.ID = t.store.nextID
	t.store.nextID++
	res.CreatedAt = time.Now()
	res.UpdatedAt = res.CreatedAt
	t.staged = append(t.staged, res)
	return nil
}

func (t *memTx) Commit(ctx context.Context) error {
	t.store.mu.Lock()
	for _, res := range t.staged {
		copied := *res
		t.store.rows = append(t.store.rows, &copied)
	}
	t.staged = nil
	t.store.mu.Unlock()
	t.release()
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	t.staged = nil
	t.release()
	return nil
}

func (t *memTx) release() {
	if t.done {
		return
	}
	t.done = true
	t.roomLock.Unlock()
}

// MemRoomStore keeps rooms in memory.
type MemRoomStore struct {
	mu     sync.Mutex
	rooms  map[int64]*model.Room
	nextID int64
}

func NewMemRoomStore() *MemRoomStore {
	return &MemRoomStore{rooms: make(map[int64]*model.Room), nextID: 1}
}

// Add seeds a room and returns it with an assigned id.
func (s *MemRoomStore) Add(room model.Room) *model.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	room.ID = s.nextID
	s.nextID++
	r := room
	s.rooms[r.ID] = &r
	return &r
}

func (s *MemRoomStore) Create(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room.ID = s.nextID
	s.nextID++
	room.CreatedAt = time.Now()
	room.UpdatedAt = room.CreatedAt
	copied := *room
	s.rooms[room.ID] = &copied
	return nil
}

func (s *MemRoomStore) GetByID(ctx context.Context, id int64) (*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, nil
	}
	copied := *room
	return &copied, nil
}

func (s *MemRoomStore) List(ctx context.Context) ([]*model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		copied := *room
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MemUserStore keeps users in memory.
type MemUserStore struct {
	mu     sync.Mutex
	users  map[int64]*model.User
	nextID int64
}

func NewMemUserStore() *MemUserStore {
	return &MemUserStore{users: make(map[int64]*model.User), nextID: 1}
}

// Add seeds a user and returns it with an assigned id.
func (s *MemUserStore) Add(user model.User) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = s.nextID
	s.nextID++
	u := user
	s.users[u.ID] = &u
	return &u
}

func (s *MemUserStore) Create(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = s.nextID
	s.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *MemUserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (s *MemUserStore) List(ctx context.Context) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.User, 0, len(s.users))
	for _, user := range s.users {
		copied := *user
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
