package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/zynxquzo/studyroom-reservation-system/internal/model"
	pkgerrors "github.com/zynxquzo/studyroom-reservation-system/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users     map[string]*model.User
	idCounter int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.StudentID == user.StudentID {
			return pkgerrors.ErrStorageConflict
		}
	}
	if user.UserID == "" {
		m.idCounter++
		user.UserID = fmt.Sprintf("user-%d", m.idCounter)
	}
	user.CreatedAt = time.Now()
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByStudentID(_ context.Context, studentID string) (*model.User, error) {
	for _, u := range m.users {
		if u.StudentID == studentID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ExistsByStudentID(_ context.Context, studentID string) (bool, error) {
	for _, u := range m.users {
		if u.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

// ── Mock StudyRoomRepository ──

type mockStudyRoomRepo struct {
	rooms map[string]*model.StudyRoom
}

func newMockStudyRoomRepo() *mockStudyRoomRepo {
	return &mockStudyRoomRepo{rooms: make(map[string]*model.StudyRoom)}
}

func (m *mockStudyRoomRepo) add(room *model.StudyRoom) *model.StudyRoom {
	if room.RoomID == "" {
		room.RoomID = "room-" + room.Name
	}
	m.rooms[room.RoomID] = room
	return room
}

func (m *mockStudyRoomRepo) List(_ context.Context, floor *int, minCapacity *int) ([]model.StudyRoom, error) {
	var result []model.StudyRoom
	for _, r := range m.rooms {
		if floor != nil && r.Floor != *floor {
			continue
		}
		if minCapacity != nil && r.MaxCapacity < *minCapacity {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Floor != result[j].Floor {
			return result[i].Floor < result[j].Floor
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (m *mockStudyRoomRepo) GetByID(_ context.Context, id string) (*model.StudyRoom, error) {
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock ReservationRepository ──

// mockReservationRepo 与 GORM 实现保持同一语义：
// CreateConfirmed 内部做房间存在性与冲突复查（互斥锁替代行锁），
// 并发场景下同槽位请求恰好一个成功。
type mockReservationRepo struct {
	mu           sync.Mutex
	reservations []*model.Reservation
	rooms        *mockStudyRoomRepo
	idCounter    int
}

func newMockReservationRepo(rooms *mockStudyRoomRepo) *mockReservationRepo {
	return &mockReservationRepo{rooms: rooms}
}

func (m *mockReservationRepo) CreateConfirmed(_ context.Context, res *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms.rooms[res.RoomID]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, r := range m.reservations {
		if r.Status == model.StatusCancelled {
			continue
		}
		if r.RoomID == res.RoomID && r.ReservationDate == res.ReservationDate && r.StartTime == res.StartTime {
			return pkgerrors.ErrSlotConflict
		}
		if r.UserID == res.UserID && r.ReservationDate == res.ReservationDate && r.StartTime == res.StartTime {
			return pkgerrors.ErrUserSlotConflict
		}
	}

	m.idCounter++
	if res.ReservationID == "" {
		res.ReservationID = fmt.Sprintf("rsv-%d", m.idCounter)
	}
	res.CreatedAt = time.Now()
	m.reservations = append(m.reservations, res)
	return nil
}

func (m *mockReservationRepo) GetByID(_ context.Context, id string) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reservations {
		if r.ReservationID == id {
			cp := *r
			if room, ok := m.rooms.rooms[r.RoomID]; ok {
				cp.Room = room
			}
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReservationRepo) ListByUserCompletingExpired(_ context.Context, userID, today, nowTime string) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.reservations {
		if r.UserID != userID || r.Status != model.StatusConfirmed {
			continue
		}
		if r.ReservationDate < today || (r.ReservationDate == today && r.EndTime <= nowTime) {
			r.Status = model.StatusCompleted
		}
	}

	var result []model.Reservation
	for _, r := range m.reservations {
		if r.UserID != userID {
			continue
		}
		cp := *r
		if room, ok := m.rooms.rooms[r.RoomID]; ok {
			cp.Room = room
		}
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].ReservationDate != result[j].ReservationDate {
			return result[i].ReservationDate > result[j].ReservationDate
		}
		return result[i].StartTime > result[j].StartTime
	})
	return result, nil
}

func (m *mockReservationRepo) CountConfirmedByUserAndDate(_ context.Context, userID, date string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, r := range m.reservations {
		if r.UserID == userID && r.ReservationDate == date && r.Status == model.StatusConfirmed {
			count++
		}
	}
	return count, nil
}

func (m *mockReservationRepo) HasRoomConflict(_ context.Context, roomID, date, startTime string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reservations {
		if r.RoomID == roomID && r.ReservationDate == date && r.StartTime == startTime && r.Status != model.StatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockReservationRepo) HasUserConflict(_ context.Context, userID, date, startTime string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reservations {
		if r.UserID == userID && r.ReservationDate == date && r.StartTime == startTime && r.Status != model.StatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockReservationRepo) GetReservedStartTimes(_ context.Context, roomID, date string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var times []string
	for _, r := range m.reservations {
		if r.RoomID == roomID && r.ReservationDate == date && r.Status != model.StatusCancelled {
			times = append(times, r.StartTime)
		}
	}
	sort.Strings(times)
	return times, nil
}

func (m *mockReservationRepo) UpdateStatus(_ context.Context, id, from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reservations {
		if r.ReservationID == id && r.Status == from {
			r.Status = to
			return nil
		}
	}
	return pkgerrors.ErrStorageConflict
}

// ── Mock ReviewRepository ──

type mockReviewRepo struct {
	reviews   []*model.Review
	users     *mockUserRepo
	rooms     *mockStudyRoomRepo
	idCounter int
}

func newMockReviewRepo(users *mockUserRepo, rooms *mockStudyRoomRepo) *mockReviewRepo {
	return &mockReviewRepo{users: users, rooms: rooms}
}

func (m *mockReviewRepo) CreateRefreshingRating(_ context.Context, review *model.Review) error {
	for _, r := range m.reviews {
		if r.ReservationID == review.ReservationID {
			return pkgerrors.ErrDuplicateReview
		}
	}
	m.idCounter++
	if review.ReviewID == "" {
		review.ReviewID = fmt.Sprintf("rvw-%d", m.idCounter)
	}
	review.CreatedAt = time.Now()
	m.reviews = append(m.reviews, review)

	if room, ok := m.rooms.rooms[review.RoomID]; ok {
		avg, _ := m.GetAverageRating(context.Background(), review.RoomID)
		room.Rating = avg
	}
	return nil
}

func (m *mockReviewRepo) FindByReservationID(_ context.Context, reservationID string) (*model.Review, error) {
	for _, r := range m.reviews {
		if r.ReservationID == reservationID {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReviewRepo) ListByRoom(_ context.Context, roomID string) ([]model.Review, error) {
	var result []model.Review
	for _, r := range m.reviews {
		if r.RoomID != roomID {
			continue
		}
		cp := *r
		if u, ok := m.users.users[r.UserID]; ok {
			cp.User = u
		}
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockReviewRepo) GetAverageRating(_ context.Context, roomID string) (float64, error) {
	var sum float64
	var count int
	for _, r := range m.reviews {
		if r.RoomID == roomID {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	// 与 SQL 的 ROUND(AVG(rating)::numeric, 1) 对齐
	return math.Round(sum/float64(count)*10) / 10, nil
}
