package order

import (
	"context"
	"testing"

	"github.com/xiebiao/shopadmin/internal/domain/order"
	apperrors "github.com/xiebiao/shopadmin/pkg/errors"
)

// TestAddNote 测试添加备注
func TestAddNote(t *testing.T) {
	repo := newFakeRepo(testOrder(1, order.OrderStatusPending, order.PaymentStatusPending, false))
	uc := NewOrderNotesUseCase(repo)

	note, err := uc.AddNote(context.Background(), AddNoteRequest{
		OrderID: 1, Author: "admin", Content: "  买家要求周末配送  ", IsPrivate: true,
	})
	if err != nil {
		t.Fatalf("添加备注失败: %v", err)
	}
	if note.Content != "买家要求周末配送" {
		t.Errorf("备注内容应去除首尾空白: %q", note.Content)
	}
	if !note.IsPrivate {
		t.Error("内部备注标记丢失")
	}

	stored, _ := repo.FindByID(context.Background(), 1)
	if len(stored.Notes) != 1 {
		t.Errorf("备注未落库: %d条", len(stored.Notes))
	}
}

// TestAddNote_Blank 测试全空白备注被拒绝
func TestAddNote_Blank(t *testing.T) {
	repo := newFakeRepo(testOrder(1, order.OrderStatusPending, order.PaymentStatusPending, false))
	uc := NewOrderNotesUseCase(repo)

	_, err := uc.AddNote(context.Background(), AddNoteRequest{
		OrderID: 1, Author: "admin", Content: "   ",
	})
	appErr := apperrors.GetAppError(err)
	if appErr == nil || appErr.Fields["content"] == "" {
		t.Errorf("全空白备注应在content字段上报错,实际: %v", err)
	}
}

// TestDeleteNote 测试删除单条备注
func TestDeleteNote(t *testing.T) {
	repo := newFakeRepo(testOrder(1, order.OrderStatusPending, order.PaymentStatusPending, false))
	uc := NewOrderNotesUseCase(repo)

	note, err := uc.AddNote(context.Background(), AddNoteRequest{
		OrderID: 1, Author: "admin", Content: "待删除",
	})
	if err != nil {
		t.Fatalf("添加备注失败: %v", err)
	}

	if err := uc.DeleteNote(context.Background(), 1, note.ID); err != nil {
		t.Fatalf("删除备注失败: %v", err)
	}

	// 再删一次应报不存在
	err = uc.DeleteNote(context.Background(), 1, note.ID)
	appErr := apperrors.GetAppError(err)
	if appErr == nil || appErr.Code != apperrors.ErrCodeNoteNotFound {
		t.Errorf("期望备注不存在错误,实际: %v", err)
	}
}
