package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	// 缺省值
	p := NewPagination(0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 0, p.Offset)

	// 负数同样按缺省处理
	p = NewPagination(-3, -5)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.Limit)

	// 正常翻页
	p = NewPagination(3, 20)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 40, p.Offset)
}

func TestPaginationTotalPages(t *testing.T) {
	p := NewPagination(1, 10)

	// 向上取整
	assert.Equal(t, 3, p.TotalPages(27))
	assert.Equal(t, 1, p.TotalPages(1))
	assert.Equal(t, 1, p.TotalPages(10))
	assert.Equal(t, 2, p.TotalPages(11))

	// 无记录时为 0
	assert.Equal(t, 0, p.TotalPages(0))
}
