package dto

// UpdateStatusRequest HTTP状态流转请求
// kind区分改的是履约状态还是支付状态,两类状态独立流转
type UpdateStatusRequest struct {
	Kind   string `json:"kind" binding:"required,oneof=order payment" example:"order"`
	Status string `json:"status" binding:"required,max=20" example:"shipped"`
}

// BulkActionRequest HTTP批量操作请求
type BulkActionRequest struct {
	Action string `json:"action" binding:"required,oneof=delete restore export" example:"delete"`
	IDs    []uint `json:"ids" binding:"required" example:"1,2,3"`
}

// AddNoteRequest HTTP添加备注请求
type AddNoteRequest struct {
	Content   string `json:"content" binding:"required,max=2000" example:"买家要求周末配送"`
	IsPrivate bool   `json:"is_private" example:"true"`
}

// StatusOptionsRequest HTTP状态候选查询请求
type StatusOptionsRequest struct {
	Kind    string `form:"kind" binding:"required,oneof=order payment" example:"order"`
	Current string `form:"current" binding:"required,max=20" example:"pending"`
}
