package latest

import (
	"sync"
	"testing"
)

// TestGuard_StaleResponseDiscarded 测试过期响应被丢弃
// 场景：先后发出请求A、B，A的响应晚于B到达，页面必须显示B的结果
func TestGuard_StaleResponseDiscarded(t *testing.T) {
	g := NewGuard()

	seqA := g.Next()
	seqB := g.Next()

	// B的响应先到，应该被接受
	if !g.Accept(seqB) {
		t.Error("最新请求B的响应应该被接受")
	}

	// A的响应后到，应该被丢弃
	if g.Accept(seqA) {
		t.Error("过期请求A的响应应该被丢弃")
	}
}

// TestGuard_SequenceMonotonic 测试序号单调递增
func TestGuard_SequenceMonotonic(t *testing.T) {
	g := NewGuard()

	prev := uint64(0)
	for i := 0; i < 100; i++ {
		seq := g.Next()
		if seq <= prev {
			t.Fatalf("序号必须单调递增: prev=%d, got=%d", prev, seq)
		}
		prev = seq
	}

	if g.Latest() != 100 {
		t.Errorf("期望最新序号为100，实际%d", g.Latest())
	}
}

// TestGuard_LatestAlwaysAccepted 测试最新序号总是被接受
func TestGuard_LatestAlwaysAccepted(t *testing.T) {
	g := NewGuard()

	for i := 0; i < 10; i++ {
		seq := g.Next()
		if !g.Accept(seq) {
			t.Fatalf("最新序号%d应该被接受", seq)
		}
	}
}

// TestGuards_SameViewSameGuard 测试同一视图键拿到同一个守卫
func TestGuards_SameViewSameGuard(t *testing.T) {
	gs := NewGuards()

	if gs.For("7") != gs.For("7") {
		t.Error("同一视图键应返回同一个守卫")
	}
	if gs.For("7") == gs.For("8") {
		t.Error("不同视图键应返回不同的守卫")
	}
}

// TestGuards_ViewsIsolated 测试视图之间序号互不影响
// 管理员B领取新序号,不能让管理员A正在等待的响应变成过期
func TestGuards_ViewsIsolated(t *testing.T) {
	gs := NewGuards()

	seqA := gs.For("a").Next()
	gs.For("b").Next()

	if !gs.For("a").Accept(seqA) {
		t.Error("视图b的请求不应让视图a的响应过期")
	}
	if gs.For("a").Latest() != 1 || gs.For("b").Latest() != 1 {
		t.Errorf("各视图序号应独立计数: a=%d b=%d",
			gs.For("a").Latest(), gs.For("b").Latest())
	}
}

// TestGuard_ConcurrentNext 测试并发领取序号不重复
func TestGuard_ConcurrentNext(t *testing.T) {
	g := NewGuard()

	const n = 200
	seen := make(map[uint64]bool, n)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq := g.Next()
			mu.Lock()
			defer mu.Unlock()
			if seen[seq] {
				t.Errorf("序号%d被重复发出", seq)
			}
			seen[seq] = true
		}()
	}
	wg.Wait()

	if g.Latest() != n {
		t.Errorf("期望最新序号为%d，实际%d", n, g.Latest())
	}
}
