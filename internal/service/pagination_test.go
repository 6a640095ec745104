package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequestNormalized(t *testing.T) {
	p := PageRequest{}.normalized()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, defaultPageSize, p.Size)

	p = PageRequest{Page: 3, Size: 500}.normalized()
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, maxPageSize, p.Size)
}

func TestPageRequestHugePageDoesNotOverflow(t *testing.T) {
	page := PageRequest{Page: math.MaxInt, Size: maxPageSize}.toRepository()
	assert.Equal(t, maxPageSize, page.Limit)
	assert.Equal(t, (maxPage-1)*maxPageSize, page.Offset)
	assert.Positive(t, page.Offset)
}

func TestPageRequestSort(t *testing.T) {
	page := PageRequest{}.toRepository()
	assert.Equal(t, "created_at", page.Sort)
	assert.True(t, page.Desc)

	page = PageRequest{Sort: "title,ASC"}.toRepository()
	assert.Equal(t, "title", page.Sort)
	assert.False(t, page.Desc)

	page = PageRequest{Sort: " priority , desc"}.toRepository()
	assert.Equal(t, "priority", page.Sort)
	assert.True(t, page.Desc)
}
