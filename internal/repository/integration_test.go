//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zynxquzo/studyroom-reservation-system/internal/model"
	"github.com/zynxquzo/studyroom-reservation-system/internal/repository"
	"github.com/zynxquzo/studyroom-reservation-system/pkg/database"
	pkgerrors "github.com/zynxquzo/studyroom-reservation-system/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=studyroom password=studyroom_password dbname=studyroom_test sslmode=disable TimeZone=Asia/Shanghai"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 跑正式迁移而非 AutoMigrate：部分唯一索引是并发正确性的前提
	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取底层 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "数据库迁移失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// setupTestData 创建一个用户和一间自习室，返回清理函数
func setupTestData(t *testing.T) (user *model.User, room *model.StudyRoom, cleanup func()) {
	t.Helper()
	ctx := context.Background()

	user = &model.User{
		StudentID:    fmt.Sprintf("2026%d", time.Now().UnixNano()%100000000),
		PasswordHash: "$2a$10$placeholder",
		Name:         "测试用户",
	}
	if err := testDB.WithContext(ctx).Create(user).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}

	room = &model.StudyRoom{
		Name:        fmt.Sprintf("测试室-%d", time.Now().UnixNano()),
		Floor:       1,
		Location:    "测试楼 1层",
		MaxCapacity: 4,
		OpenTime:    "09:00",
		CloseTime:   "18:00",
	}
	if err := testDB.WithContext(ctx).Create(room).Error; err != nil {
		t.Fatalf("创建自习室失败: %v", err)
	}

	cleanup = func() {
		testDB.Where("room_id = ?", room.RoomID).Delete(&model.Review{})
		testDB.Where("room_id = ?", room.RoomID).Delete(&model.Reservation{})
		testDB.Where("room_id = ?", room.RoomID).Delete(&model.StudyRoom{})
		testDB.Where("user_id = ?", user.UserID).Delete(&model.User{})
	}
	return
}

func newReservation(userID, roomID, date, start, end string) *model.Reservation {
	return &model.Reservation{
		UserID:          userID,
		RoomID:          roomID,
		ReservationDate: date,
		StartTime:       start,
		EndTime:         end,
		Status:          model.StatusConfirmed,
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Concurrent Booking (partial unique index + row lock)
// ═══════════════════════════════════════════════════════════

func TestCreateConfirmed_ConcurrentSameSlot(t *testing.T) {
	_, room, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	// 不同用户并发抢同一槽位，必须恰好一个成功
	const workers = 8
	users := make([]*model.User, workers)
	for i := range users {
		users[i] = &model.User{
			StudentID:    fmt.Sprintf("C%d%d", i, time.Now().UnixNano()%10000000),
			PasswordHash: "$2a$10$placeholder",
			Name:         fmt.Sprintf("并发用户%d", i),
		}
		if err := testDB.Create(users[i]).Error; err != nil {
			t.Fatalf("创建并发用户失败: %v", err)
		}
	}
	defer func() {
		for _, u := range users {
			testDB.Where("user_id = ?", u.UserID).Delete(&model.Reservation{})
			testDB.Where("user_id = ?", u.UserID).Delete(&model.User{})
		}
	}()

	date := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Reservation.CreateConfirmed(ctx,
				newReservation(users[i].UserID, room.RoomID, date, "14:00", "15:00"))
		}(i)
	}
	wg.Wait()

	success := 0
	for i, err := range errs {
		switch {
		case err == nil:
			success++
		case errors.Is(err, pkgerrors.ErrSlotConflict):
		default:
			t.Errorf("协程 %d 期望 nil 或 ErrSlotConflict，实际=%v", i, err)
		}
	}
	if success != 1 {
		t.Errorf("期望恰好 1 次预约成功，实际=%d", success)
	}
}

func TestCreateConfirmed_UserConflictAcrossRooms(t *testing.T) {
	user, room, cleanup := setupTestData(t)
	defer cleanup()

	room2 := &model.StudyRoom{
		Name:        fmt.Sprintf("测试室2-%d", time.Now().UnixNano()),
		Floor:       2,
		Location:    "测试楼 2层",
		MaxCapacity: 4,
		OpenTime:    "09:00",
		CloseTime:   "18:00",
	}
	if err := testDB.Create(room2).Error; err != nil {
		t.Fatalf("创建第二间自习室失败: %v", err)
	}
	defer func() {
		testDB.Where("room_id = ?", room2.RoomID).Delete(&model.Reservation{})
		testDB.Where("room_id = ?", room2.RoomID).Delete(&model.StudyRoom{})
	}()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	date := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	if err := repo.Reservation.CreateConfirmed(ctx,
		newReservation(user.UserID, room.RoomID, date, "10:00", "11:00")); err != nil {
		t.Fatalf("首次预约应成功: %v", err)
	}

	// 同一用户同一时段预约另一间房间，应命中用户冲突
	err := repo.Reservation.CreateConfirmed(ctx,
		newReservation(user.UserID, room2.RoomID, date, "10:00", "11:00"))
	if !errors.Is(err, pkgerrors.ErrUserSlotConflict) {
		t.Errorf("期望 ErrUserSlotConflict，实际=%v", err)
	}
}

func TestCreateConfirmed_CancelledFreesSlot(t *testing.T) {
	user, room, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	date := time.Now().AddDate(0, 0, 2).Format("2006-01-02")

	first := newReservation(user.UserID, room.RoomID, date, "15:00", "16:00")
	if err := repo.Reservation.CreateConfirmed(ctx, first); err != nil {
		t.Fatalf("首次预约应成功: %v", err)
	}
	if err := repo.Reservation.UpdateStatus(ctx, first.ReservationID, model.StatusConfirmed, model.StatusCancelled); err != nil {
		t.Fatalf("取消预约失败: %v", err)
	}

	// 部分唯一索引不约束 cancelled 行，槽位应重新可约
	if err := repo.Reservation.CreateConfirmed(ctx,
		newReservation(user.UserID, room.RoomID, date, "15:00", "16:00")); err != nil {
		t.Errorf("取消后重约应成功: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Lazy Completion
// ═══════════════════════════════════════════════════════════

func TestListByUserCompletingExpired_Persists(t *testing.T) {
	user, room, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	// 直接落一条过去日期的 confirmed 预约（绕过业务校验）
	past := newReservation(user.UserID, room.RoomID, "2020-01-06", "14:00", "15:00")
	if err := testDB.Create(past).Error; err != nil {
		t.Fatalf("创建历史预约失败: %v", err)
	}

	now := time.Now()
	list, err := repo.Reservation.ListByUserCompletingExpired(ctx, user.UserID,
		now.Format("2006-01-02"), now.Format("15:04"))
	if err != nil {
		t.Fatalf("ListByUserCompletingExpired 失败: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("期望 1 条预约，实际=%d", len(list))
	}
	if list[0].Status != model.StatusCompleted {
		t.Errorf("期望状态 completed，实际=%s", list[0].Status)
	}

	// 推进已持久化
	got, err := repo.Reservation.GetByID(ctx, past.ReservationID)
	if err != nil {
		t.Fatalf("GetByID 失败: %v", err)
	}
	if got.Status != model.StatusCompleted {
		t.Errorf("懒惰完成应持久化为 completed，实际=%s", got.Status)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Conditional Status Transition
// ═══════════════════════════════════════════════════════════

func TestUpdateStatus_Conditional(t *testing.T) {
	user, room, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	date := time.Now().AddDate(0, 0, 3).Format("2006-01-02")

	res := newReservation(user.UserID, room.RoomID, date, "11:00", "12:00")
	if err := repo.Reservation.CreateConfirmed(ctx, res); err != nil {
		t.Fatalf("创建预约失败: %v", err)
	}

	if err := repo.Reservation.UpdateStatus(ctx, res.ReservationID, model.StatusConfirmed, model.StatusCancelled); err != nil {
		t.Fatalf("首次取消应成功: %v", err)
	}

	// 状态已不是 confirmed，条件更新命中 0 行
	err := repo.Reservation.UpdateStatus(ctx, res.ReservationID, model.StatusConfirmed, model.StatusCancelled)
	if !errors.Is(err, pkgerrors.ErrStorageConflict) {
		t.Errorf("期望 ErrStorageConflict，实际=%v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Review Insert + Rating Refresh (one transaction)
// ═══════════════════════════════════════════════════════════

func TestCreateRefreshingRating(t *testing.T) {
	user, room, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	res1 := newReservation(user.UserID, room.RoomID, "2020-01-06", "14:00", "15:00")
	res2 := newReservation(user.UserID, room.RoomID, "2020-01-07", "14:00", "15:00")
	res1.Status = model.StatusCompleted
	res2.Status = model.StatusCompleted
	for _, r := range []*model.Reservation{res1, res2} {
		if err := testDB.Create(r).Error; err != nil {
			t.Fatalf("创建已完成预约失败: %v", err)
		}
	}

	if err := repo.Review.CreateRefreshingRating(ctx, &model.Review{
		ReservationID: res1.ReservationID,
		UserID:        user.UserID,
		RoomID:        room.RoomID,
		Rating:        4,
	}); err != nil {
		t.Fatalf("首条评价应成功: %v", err)
	}
	if err := repo.Review.CreateRefreshingRating(ctx, &model.Review{
		ReservationID: res2.ReservationID,
		UserID:        user.UserID,
		RoomID:        room.RoomID,
		Rating:        5,
	}); err != nil {
		t.Fatalf("第二条评价应成功: %v", err)
	}

	got, err := repo.StudyRoom.GetByID(ctx, room.RoomID)
	if err != nil {
		t.Fatalf("查询自习室失败: %v", err)
	}
	if got.Rating != 4.5 {
		t.Errorf("期望均分 4.5，实际=%v", got.Rating)
	}

	// 同一预约重复评价，由唯一约束兜底
	err = repo.Review.CreateRefreshingRating(ctx, &model.Review{
		ReservationID: res1.ReservationID,
		UserID:        user.UserID,
		RoomID:        room.RoomID,
		Rating:        1,
	})
	if !errors.Is(err, pkgerrors.ErrDuplicateReview) {
		t.Errorf("期望 ErrDuplicateReview，实际=%v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Duplicate StudentID
// ═══════════════════════════════════════════════════════════

func TestUserCreate_DuplicateStudentID(t *testing.T) {
	user, _, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	dup := &model.User{
		StudentID:    user.StudentID,
		PasswordHash: "$2a$10$placeholder",
		Name:         "重复学号",
	}
	err := repo.User.Create(ctx, dup)
	if !errors.Is(err, pkgerrors.ErrStorageConflict) {
		t.Errorf("期望 ErrStorageConflict，实际=%v", err)
	}
}
