package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/zynxquzo/studyroom-reservation-system/config"
	"github.com/zynxquzo/studyroom-reservation-system/internal/dto"
	"github.com/zynxquzo/studyroom-reservation-system/internal/model"
	"github.com/zynxquzo/studyroom-reservation-system/internal/repository"
	"github.com/zynxquzo/studyroom-reservation-system/pkg/clock"
)

// ── 测试辅助 ──

// 固定测试时刻：2026-03-10 12:00
var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func testReservationConfig() *config.Config {
	return &config.Config{
		Reservation: config.ReservationConfig{
			WindowDays:    7,
			MaxDailyCount: 2,
			CancelCutoff:  time.Hour,
		},
	}
}

func setupTestStudyRoomService() (StudyRoomService, *mockStudyRoomRepo, *mockReservationRepo) {
	roomRepo := newMockStudyRoomRepo()
	resRepo := newMockReservationRepo(roomRepo)
	repo := &repository.Repository{
		User:        newMockUserRepo(),
		StudyRoom:   roomRepo,
		Reservation: resRepo,
		Review:      newMockReviewRepo(newMockUserRepo(), roomRepo),
	}
	svc := NewStudyRoomService(testReservationConfig(), repo, clock.Fixed(testNow), zap.NewNop())
	return svc, roomRepo, resRepo
}

// ── List 测试 ──

func TestStudyRoomService_List_Filters(t *testing.T) {
	svc, roomRepo, _ := setupTestStudyRoomService()
	roomRepo.add(&model.StudyRoom{Name: "A101", Floor: 1, MaxCapacity: 4, OpenTime: "09:00", CloseTime: "18:00"})
	roomRepo.add(&model.StudyRoom{Name: "B201", Floor: 2, MaxCapacity: 8, OpenTime: "09:00", CloseTime: "22:00"})
	roomRepo.add(&model.StudyRoom{Name: "B202", Floor: 2, MaxCapacity: 2, OpenTime: "09:00", CloseTime: "22:00"})

	floor := 2
	minCap := 4
	rooms, err := svc.List(context.Background(), &dto.StudyRoomListRequest{Floor: &floor, MinCapacity: &minCap})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(rooms) != 1 {
		t.Fatalf("期望1个房间，实际=%d", len(rooms))
	}
	if rooms[0].Name != "B201" {
		t.Errorf("期望Name=B201，实际=%s", rooms[0].Name)
	}
}

func TestStudyRoomService_List_Empty(t *testing.T) {
	svc, _, _ := setupTestStudyRoomService()

	rooms, err := svc.List(context.Background(), &dto.StudyRoomListRequest{})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(rooms) != 0 {
		t.Errorf("期望空列表，实际=%d", len(rooms))
	}
}

// ── GetDetail 测试 ──

func TestStudyRoomService_GetDetail_Success(t *testing.T) {
	svc, roomRepo, _ := setupTestStudyRoomService()
	room := roomRepo.add(&model.StudyRoom{
		Name: "A101", Floor: 1, MaxCapacity: 4,
		OpenTime: "09:00", CloseTime: "18:00",
		Facilities: []model.Facility{{Name: "白板"}, {Name: "电源插座"}},
	})

	detail, err := svc.GetDetail(context.Background(), room.RoomID)
	if err != nil {
		t.Fatalf("GetDetail 应成功: %v", err)
	}
	if detail.OpenTime != "09:00" || detail.CloseTime != "18:00" {
		t.Errorf("期望运营时间 09:00-18:00，实际=%s-%s", detail.OpenTime, detail.CloseTime)
	}
	if len(detail.Facilities) != 2 {
		t.Errorf("期望2项设施，实际=%d", len(detail.Facilities))
	}
}

func TestStudyRoomService_GetDetail_NotFound(t *testing.T) {
	svc, _, _ := setupTestStudyRoomService()

	_, err := svc.GetDetail(context.Background(), "nonexistent")
	if !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("期望 ErrRoomNotFound，实际: %v", err)
	}
}

// ── ListAvailability 测试 ──

func TestStudyRoomService_ListAvailability_MarksReservedSlot(t *testing.T) {
	svc, roomRepo, resRepo := setupTestStudyRoomService()
	room := roomRepo.add(&model.StudyRoom{Name: "A101", OpenTime: "09:00", CloseTime: "18:00"})

	err := resRepo.CreateConfirmed(context.Background(), &model.Reservation{
		UserID: "user-1", RoomID: room.RoomID,
		ReservationDate: "2026-03-12", StartTime: "14:00", EndTime: "15:00",
		Status: model.StatusConfirmed,
	})
	if err != nil {
		t.Fatalf("预置预约失败: %v", err)
	}

	resp, err := svc.ListAvailability(context.Background(), room.RoomID, "2026-03-12")
	if err != nil {
		t.Fatalf("ListAvailability 应成功: %v", err)
	}
	if len(resp.AvailableTimes) != 9 {
		t.Fatalf("期望9个槽位，实际=%d", len(resp.AvailableTimes))
	}
	for i, slot := range resp.AvailableTimes {
		wantAvailable := slot.Time != "14:00"
		if slot.Available != wantAvailable {
			t.Errorf("槽位[%d] %s 期望 available=%v，实际=%v", i, slot.Time, wantAvailable, slot.Available)
		}
	}
}

func TestStudyRoomService_ListAvailability_CancelledFreesSlot(t *testing.T) {
	svc, roomRepo, resRepo := setupTestStudyRoomService()
	room := roomRepo.add(&model.StudyRoom{Name: "A101", OpenTime: "09:00", CloseTime: "18:00"})

	res := &model.Reservation{
		UserID: "user-1", RoomID: room.RoomID,
		ReservationDate: "2026-03-12", StartTime: "14:00", EndTime: "15:00",
		Status: model.StatusConfirmed,
	}
	if err := resRepo.CreateConfirmed(context.Background(), res); err != nil {
		t.Fatalf("预置预约失败: %v", err)
	}
	if err := resRepo.UpdateStatus(context.Background(), res.ReservationID, model.StatusConfirmed, model.StatusCancelled); err != nil {
		t.Fatalf("取消预约失败: %v", err)
	}

	resp, err := svc.ListAvailability(context.Background(), room.RoomID, "2026-03-12")
	if err != nil {
		t.Fatalf("ListAvailability 应成功: %v", err)
	}
	for _, slot := range resp.AvailableTimes {
		if slot.Time == "14:00" && !slot.Available {
			t.Error("已取消预约占用的槽位应重新可用")
		}
	}
}

func TestStudyRoomService_ListAvailability_RoomNotFound(t *testing.T) {
	svc, _, _ := setupTestStudyRoomService()

	_, err := svc.ListAvailability(context.Background(), "nonexistent", "2026-03-12")
	if !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("期望 ErrRoomNotFound，实际: %v", err)
	}
}

func TestStudyRoomService_ListAvailability_DateOutOfWindow(t *testing.T) {
	svc, roomRepo, _ := setupTestStudyRoomService()
	room := roomRepo.add(&model.StudyRoom{Name: "A101", OpenTime: "09:00", CloseTime: "18:00"})

	// 窗口为 [2026-03-10, 2026-03-17]
	if _, err := svc.ListAvailability(context.Background(), room.RoomID, "2026-03-18"); !errors.Is(err, ErrDateOutOfWindow) {
		t.Errorf("窗口外日期期望 ErrDateOutOfWindow，实际: %v", err)
	}
	if _, err := svc.ListAvailability(context.Background(), room.RoomID, "2026-03-09"); !errors.Is(err, ErrDateOutOfWindow) {
		t.Errorf("过去日期期望 ErrDateOutOfWindow，实际: %v", err)
	}
	if _, err := svc.ListAvailability(context.Background(), room.RoomID, "2026-03-17"); err != nil {
		t.Errorf("窗口最后一天应可查询: %v", err)
	}
}
