package order

import "sort"

// Selection 列表页的勾选集合
// 设计说明:
// 1. 勾选只在当前页内有效,翻页/改筛选条件后应由调用方Clear,
//    避免把看不见的订单带进批量操作
// 2. Toggle对同一ID是幂等的开关语义,重复勾选不会产生重复项
// 3. 非并发安全,一个会话的勾选状态由单个请求上下文持有
type Selection struct {
	ids map[uint]bool
}

// NewSelection 创建空勾选集合
func NewSelection() *Selection {
	return &Selection{ids: map[uint]bool{}}
}

// Toggle 切换某个订单的勾选状态
func (s *Selection) Toggle(id uint) {
	if s.ids[id] {
		delete(s.ids, id)
		return
	}
	s.ids[id] = true
}

// SelectAll 勾选当前页的全部订单(替换式,不与已有勾选合并)
func (s *Selection) SelectAll(ids []uint) {
	s.ids = make(map[uint]bool, len(ids))
	for _, id := range ids {
		s.ids[id] = true
	}
}

// Clear 清空勾选
func (s *Selection) Clear() {
	s.ids = map[uint]bool{}
}

// Contains 某个订单是否已勾选
func (s *Selection) Contains(id uint) bool {
	return s.ids[id]
}

// Count 已勾选数量
func (s *Selection) Count() int {
	return len(s.ids)
}

// IsEmpty 是否没有任何勾选
func (s *Selection) IsEmpty() bool {
	return len(s.ids) == 0
}

// IDs 返回已勾选的订单ID,升序排列保证批量操作的处理顺序稳定
func (s *Selection) IDs() []uint {
	out := make([]uint, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
