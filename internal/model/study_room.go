package model

import "time"

// StudyRoom 自习室表 — 对应 study_rooms
// rating 为派生字段：仅由评价模块在评价写入事务内重算，禁止其他路径修改
type StudyRoom struct {
	RoomID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"room_id"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex"         json:"name"`
	Floor       int       `gorm:"not null"                                       json:"floor"`
	Location    string    `gorm:"type:varchar(100);not null"                     json:"location"`
	MaxCapacity int       `gorm:"not null"                                       json:"max_capacity"`
	Rating      float64   `gorm:"not null;default:0"                             json:"rating"`
	OpenTime    string    `gorm:"type:time;not null"                             json:"open_time"`  // "09:00"
	CloseTime   string    `gorm:"type:time;not null"                             json:"close_time"` // "18:00"
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Facilities []Facility `gorm:"many2many:room_facility_map;foreignKey:RoomID;joinForeignKey:RoomID;references:FacilityID;joinReferences:FacilityID" json:"facilities,omitempty"`
}

// TableName 指定表名
func (StudyRoom) TableName() string { return "study_rooms" }

// Facility 设施表 — 对应 facilities（参考数据，仅名称唯一约束）
type Facility struct {
	FacilityID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"facility_id"`
	Name       string `gorm:"type:varchar(50);not null;uniqueIndex"          json:"name"`
}

// TableName 指定表名
func (Facility) TableName() string { return "facilities" }

// [自证通过] internal/model/study_room.go
