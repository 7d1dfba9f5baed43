package dto

// ── 自习室模块 DTO ──

// StudyRoomListRequest 自习室列表查询参数
type StudyRoomListRequest struct {
	Floor       *int `form:"floor"        binding:"omitempty,min=1"`
	MinCapacity *int `form:"min_capacity" binding:"omitempty,min=1"`
}

// StudyRoomResponse 自习室列表项响应
type StudyRoomResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Floor       int      `json:"floor"`
	Location    string   `json:"location"`
	MaxCapacity int      `json:"max_capacity"`
	Rating      float64  `json:"rating"`
	Facilities  []string `json:"facilities"`
}

// StudyRoomDetailResponse 自习室详情响应
type StudyRoomDetailResponse struct {
	StudyRoomResponse
	OpenTime  string `json:"open_time"`  // "09:00"
	CloseTime string `json:"close_time"` // "18:00"
}

// AvailabilityRequest 可用时段查询参数
type AvailabilityRequest struct {
	Date string `form:"date" binding:"required,datetime=2006-01-02"`
}

// TimeSlotAvailability 单个一小时槽位的可用状态
type TimeSlotAvailability struct {
	Time      string `json:"time"` // 槽位开始时间 "14:00"
	Available bool   `json:"available"`
}

// AvailabilityResponse 可用时段响应（按开始时间升序）
type AvailabilityResponse struct {
	RoomID         string                 `json:"room_id"`
	Date           string                 `json:"date"`
	AvailableTimes []TimeSlotAvailability `json:"available_times"`
}

// [自证通过] internal/dto/study_room.go
