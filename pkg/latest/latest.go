// Package latest 提供"最新请求获胜"的序号守卫
//
// 问题场景：
// 管理员快速连续修改过滤条件，前后发出请求A、B。由于网络抖动，
// A的响应可能晚于B到达。如果直接应用，页面会被旧数据覆盖。
//
// 解决方案：
// 1. 每次发起请求前调用Next()领取一个单调递增的序号
// 2. 响应到达时调用Accept(seq)，只有最新序号的响应才被接受
// 3. 过期响应直接丢弃，绝不报错（丢弃是正常行为，不是故障）
package latest

import "sync"

// Guard 请求序号守卫
// 并发安全：列表页与仪表盘的刷新可能来自不同goroutine
type Guard struct {
	mu     sync.Mutex
	issued uint64 // 已发出的最大序号
}

// NewGuard 创建序号守卫
func NewGuard() *Guard {
	return &Guard{}
}

// Next 领取下一个请求序号
// 序号从1开始，0保留表示"尚未发起任何请求"
func (g *Guard) Next() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued++
	return g.issued
}

// Accept 判断序号为seq的响应是否应该被应用
// 只有seq等于最新发出的序号时返回true；旧序号的响应一律丢弃
func (g *Guard) Accept(seq uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return seq == g.issued
}

// Latest 返回当前最新的已发出序号（0表示尚未发起请求）
func (g *Guard) Latest() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.issued
}

// Guards 按视图键隔离的守卫集合
// 序号只在同一个视图内比较新旧：管理员A和管理员B各看各的列表，
// B发起查询不能把A正在等待的结果判定为过期
type Guards struct {
	mu     sync.Mutex
	byView map[string]*Guard
}

// NewGuards 创建守卫集合
func NewGuards() *Guards {
	return &Guards{byView: map[string]*Guard{}}
}

// For 返回视图键对应的守卫，首次访问时创建
func (gs *Guards) For(view string) *Guard {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	g, ok := gs.byView[view]
	if !ok {
		g = NewGuard()
		gs.byView[view] = g
	}
	return g
}
