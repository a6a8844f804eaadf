package order

import (
	"context"
	"strings"
	"time"

	"github.com/xiebiao/shopadmin/internal/domain/order"
	apperrors "github.com/xiebiao/shopadmin/pkg/errors"
)

// OrderNotesUseCase 订单备注用例
// 备注是追加写的:只能新增和删除单条,不支持编辑,
// 保留完整的沟通痕迹
type OrderNotesUseCase struct {
	orderRepo order.Repository
	now       func() time.Time
}

// NewOrderNotesUseCase 创建备注用例
func NewOrderNotesUseCase(orderRepo order.Repository) *OrderNotesUseCase {
	return &OrderNotesUseCase{orderRepo: orderRepo, now: time.Now}
}

// AddNoteRequest 添加备注请求DTO
type AddNoteRequest struct {
	OrderID   uint
	Author    string // 管理员用户名(从JWT中提取)
	Content   string
	IsPrivate bool
}

// AddNote 添加备注
func (uc *OrderNotesUseCase) AddNote(ctx context.Context, req AddNoteRequest) (*OrderNoteDTO, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.NewValidation(map[string]string{
			"content": "备注内容不能为空",
		})
	}

	note := &order.OrderNote{
		OrderID:   req.OrderID,
		Author:    req.Author,
		Content:   content,
		IsPrivate: req.IsPrivate,
		CreatedAt: uc.now(),
	}
	if err := uc.orderRepo.AddNote(ctx, req.OrderID, note); err != nil {
		return nil, err
	}

	return &OrderNoteDTO{
		ID:        note.ID,
		Author:    note.Author,
		Content:   note.Content,
		IsPrivate: note.IsPrivate,
		CreatedAt: note.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

// DeleteNote 删除单条备注
func (uc *OrderNotesUseCase) DeleteNote(ctx context.Context, orderID, noteID uint) error {
	return uc.orderRepo.DeleteNote(ctx, orderID, noteID)
}
