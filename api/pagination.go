package api

// Pagination 分页窗口
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// NewPagination 计算分页窗口
// page/limit 缺省或非正数时取默认值 1/10（按缺省处理，不视为错误）
func NewPagination(page, limit int) Pagination {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	return Pagination{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// TotalPages 根据总数计算总页数，total 为 0 时为 0
func (p Pagination) TotalPages(total int64) int {
	if total <= 0 {
		return 0
	}
	limit := int64(p.Limit)
	return int((total + limit - 1) / limit)
}
