package order

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/xiebiao/shopadmin/internal/domain/order"
	"github.com/xiebiao/shopadmin/pkg/latest"
)

// TestListOrders_Basic 测试基本列表查询
func TestListOrders_Basic(t *testing.T) {
	repo := newFakeRepo(
		testOrder(1, order.OrderStatusPending, order.PaymentStatusPending, false),
		testOrder(2, order.OrderStatusShipped, order.PaymentStatusPaid, false),
		testOrder(3, order.OrderStatusCancelled, order.PaymentStatusFailed, true), // 已删除
	)
	uc := NewListOrdersUseCase(repo, latest.NewGuards())

	resp, err := uc.Execute(context.Background(), "1", order.DefaultFilter())
	if err != nil {
		t.Fatalf("列表查询失败: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("默认视图应排除已删除订单,期望2条,实际%d条", resp.Total)
	}
	if resp.Stale {
		t.Error("唯一的请求不应是过期的")
	}

	// 回收站视图只看已删除
	trash := order.DefaultFilter()
	trash.Deleted = true
	resp, err = uc.Execute(context.Background(), "1", trash)
	if err != nil {
		t.Fatalf("回收站查询失败: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("回收站视图应只含已删除订单,实际%d条", resp.Total)
	}
}

// TestListOrders_StaleResponseDiscarded 测试旧响应丢弃
// 场景:请求A先发出但响应慢,请求B后发出先返回,
// A的结果到达时必须被标记为过期,页面只采用B的结果
func TestListOrders_StaleResponseDiscarded(t *testing.T) {
	repo := newFakeRepo(testOrder(1, order.OrderStatusPending, order.PaymentStatusPending, false))
	uc := NewListOrdersUseCase(repo, latest.NewGuards())

	gate := make(chan struct{})
	repo.blockList = gate

	// 请求A:先发出,阻塞在查询中
	var wg sync.WaitGroup
	var respA *ListOrdersResponse
	var errA error
	started := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		close(started)
		respA, errA = uc.Execute(context.Background(), "1", order.DefaultFilter())
	}()
	<-started

	// 等A拿到序号并进入查询(gate被取走说明List已开始)
	for {
		repo.mu.Lock()
		taken := repo.blockList == nil
		repo.mu.Unlock()
		if taken {
			break
		}
		time.Sleep(time.Millisecond)
	}

	// 请求B:后发出,立即完成
	respB, err := uc.Execute(context.Background(), "1", order.DefaultFilter())
	if err != nil {
		t.Fatalf("请求B失败: %v", err)
	}
	if respB.Stale {
		t.Error("最新请求B的结果不应过期")
	}

	// 放行A
	close(gate)
	wg.Wait()
	if errA != nil {
		t.Fatalf("请求A失败: %v", errA)
	}
	if !respA.Stale {
		t.Error("请求A的结果晚于B发出的请求,必须标记为过期")
	}
	if respA.Seq >= respB.Seq {
		t.Errorf("A的序号应早于B: a=%d b=%d", respA.Seq, respB.Seq)
	}
}

// TestListOrders_ViewersIsolated 测试不同管理员的序号互不干扰
// 场景:管理员A的查询还在路上,管理员B刷新了自己的列表,
// A的结果到达时仍然是A视图内最新的,不应被判定为过期
func TestListOrders_ViewersIsolated(t *testing.T) {
	repo := newFakeRepo(testOrder(1, order.OrderStatusPending, order.PaymentStatusPending, false))
	uc := NewListOrdersUseCase(repo, latest.NewGuards())

	gate := make(chan struct{})
	repo.blockList = gate

	var wg sync.WaitGroup
	var respA *ListOrdersResponse
	var errA error
	wg.Add(1)
	go func() {
		defer wg.Done()
		respA, errA = uc.Execute(context.Background(), "admin-a", order.DefaultFilter())
	}()

	// 等A进入查询
	for {
		repo.mu.Lock()
		taken := repo.blockList == nil
		repo.mu.Unlock()
		if taken {
			break
		}
		time.Sleep(time.Millisecond)
	}

	// 管理员B在A等待期间完成了自己的查询
	respB, err := uc.Execute(context.Background(), "admin-b", order.DefaultFilter())
	if err != nil {
		t.Fatalf("管理员B的查询失败: %v", err)
	}
	if respB.Stale {
		t.Error("管理员B的结果不应过期")
	}

	close(gate)
	wg.Wait()
	if errA != nil {
		t.Fatalf("管理员A的查询失败: %v", errA)
	}
	if respA.Stale {
		t.Error("管理员B的查询不应让管理员A的结果过期")
	}
}

// TestListOrders_SequenceMonotonic 测试序号单调递增
func TestListOrders_SequenceMonotonic(t *testing.T) {
	repo := newFakeRepo()
	uc := NewListOrdersUseCase(repo, latest.NewGuards())

	var last uint64
	for i := 0; i < 5; i++ {
		resp, err := uc.Execute(context.Background(), "1", order.DefaultFilter())
		if err != nil {
			t.Fatalf("查询失败: %v", err)
		}
		if resp.Seq <= last {
			t.Errorf("序号应单调递增: %d <= %d", resp.Seq, last)
		}
		last = resp.Seq
	}
}
