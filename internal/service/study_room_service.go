package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/zynxquzo/studyroom-reservation-system/config"
	"github.com/zynxquzo/studyroom-reservation-system/internal/dto"
	"github.com/zynxquzo/studyroom-reservation-system/internal/model"
	"github.com/zynxquzo/studyroom-reservation-system/internal/repository"
	"github.com/zynxquzo/studyroom-reservation-system/pkg/clock"
)

// ── 自习室模块业务错误 ──

var (
	ErrRoomNotFound = errors.New("自习室不存在")
)

// StudyRoomService 自习室业务接口
type StudyRoomService interface {
	List(ctx context.Context, req *dto.StudyRoomListRequest) ([]dto.StudyRoomResponse, error)
	GetDetail(ctx context.Context, roomID string) (*dto.StudyRoomDetailResponse, error)

	// ListAvailability 返回指定日期各槽位的可用状态（按开始时间升序）。
	// 可用 = 该开始时间上不存在非取消状态的预约。
	ListAvailability(ctx context.Context, roomID, date string) (*dto.AvailabilityResponse, error)
}

type studyRoomService struct {
	cfg    *config.Config
	repo   *repository.Repository
	clk    clock.Clock
	logger *zap.Logger
}

// NewStudyRoomService 创建 StudyRoomService 实例
func NewStudyRoomService(cfg *config.Config, repo *repository.Repository, clk clock.Clock, logger *zap.Logger) StudyRoomService {
	return &studyRoomService{cfg: cfg, repo: repo, clk: clk, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *studyRoomService) List(ctx context.Context, req *dto.StudyRoomListRequest) ([]dto.StudyRoomResponse, error) {
	rooms, err := s.repo.StudyRoom.List(ctx, req.Floor, req.MinCapacity)
	if err != nil {
		s.logger.Error("查询自习室列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.StudyRoomResponse, 0, len(rooms))
	for i := range rooms {
		result = append(result, toStudyRoomResponse(&rooms[i]))
	}
	return result, nil
}

// ────────────────────── GetDetail ──────────────────────

func (s *studyRoomService) GetDetail(ctx context.Context, roomID string) (*dto.StudyRoomDetailResponse, error) {
	room, err := s.repo.StudyRoom.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		s.logger.Error("查询自习室失败", zap.String("room_id", roomID), zap.Error(err))
		return nil, err
	}

	return &dto.StudyRoomDetailResponse{
		StudyRoomResponse: toStudyRoomResponse(room),
		OpenTime:          room.OpenTime,
		CloseTime:         room.CloseTime,
	}, nil
}

// ────────────────────── ListAvailability ──────────────────────

func (s *studyRoomService) ListAvailability(ctx context.Context, roomID, date string) (*dto.AvailabilityResponse, error) {
	room, err := s.repo.StudyRoom.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		s.logger.Error("查询自习室失败", zap.String("room_id", roomID), zap.Error(err))
		return nil, err
	}

	// 只开放查询可预约窗口内的日期
	if !withinWindow(date, s.clk.Now(), s.cfg.Reservation.WindowDays) {
		return nil, ErrDateOutOfWindow
	}

	reserved, err := s.repo.Reservation.GetReservedStartTimes(ctx, roomID, date)
	if err != nil {
		s.logger.Error("查询已预约时段失败", zap.String("room_id", roomID), zap.Error(err))
		return nil, err
	}
	reservedSet := make(map[string]struct{}, len(reserved))
	for _, t := range reserved {
		reservedSet[t] = struct{}{}
	}

	starts, err := slotStarts(room.OpenTime, room.CloseTime)
	if err != nil {
		s.logger.Error("生成槽位失败", zap.String("room_id", roomID), zap.Error(err))
		return nil, err
	}

	slots := make([]dto.TimeSlotAvailability, 0, len(starts))
	for _, start := range starts {
		_, taken := reservedSet[start]
		slots = append(slots, dto.TimeSlotAvailability{
			Time:      start,
			Available: !taken,
		})
	}

	return &dto.AvailabilityResponse{
		RoomID:         roomID,
		Date:           date,
		AvailableTimes: slots,
	}, nil
}

// ── 内部辅助方法 ──

func toStudyRoomResponse(room *model.StudyRoom) dto.StudyRoomResponse {
	facilities := make([]string, 0, len(room.Facilities))
	for _, f := range room.Facilities {
		facilities = append(facilities, f.Name)
	}
	return dto.StudyRoomResponse{
		ID:          room.RoomID,
		Name:        room.Name,
		Floor:       room.Floor,
		Location:    room.Location,
		MaxCapacity: room.MaxCapacity,
		Rating:      room.Rating,
		Facilities:  facilities,
	}
}

// [自证通过] internal/service/study_room_service.go
