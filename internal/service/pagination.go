package service

import (
	"strings"

	"github.com/spec-kit/support-desk/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxPage         = 1_000_000
)

// PageRequest is the caller-facing pagination: Page is 1-based and Sort reads
// "field" or "field,asc|desc".
type PageRequest struct {
	Page int
	Size int
	Sort string
}

// PageResult is one page of items plus the total match count.
type PageResult[T any] struct {
	Items []T
	Page  int
	Size  int
	Total int64
}

func (p PageRequest) normalized() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > maxPage {
		p.Page = maxPage
	}
	if p.Size <= 0 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return p
}

// toRepository converts to a limit/offset page. Without an explicit sort the
// newest rows come first.
func (p PageRequest) toRepository() repository.Page {
	p = p.normalized()
	page := repository.Page{Limit: p.Size, Offset: (p.Page - 1) * p.Size, Sort: "created_at", Desc: true}

	field, dir, _ := strings.Cut(p.Sort, ",")
	field = strings.TrimSpace(field)
	if field == "" {
		return page
	}
	page.Sort = field
	page.Desc = strings.EqualFold(strings.TrimSpace(dir), "desc")
	return page
}
