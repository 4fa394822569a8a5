package util

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var ErrInvalidPage = errors.New("invalid page or limit")

type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

// ParsePage reads page and limit query values; empty values take defaults, anything
// non-numeric or non-positive is ErrInvalidPage.
func ParsePage(pageRaw, limitRaw string) (page, limit int, err error) {
	page, err = parsePositive(pageRaw, 1)
	if err != nil {
		return 0, 0, err
	}
	limit, err = parsePositive(limitRaw, DefaultPageSize)
	if err != nil {
		return 0, 0, err
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit, nil
}

func parsePositive(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPage, s)
	}
	return v, nil
}

func Calculate(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return (page - 1) * size, size
}

func NewMeta(page, limit int, total int64) Meta {
	offset, limit := Calculate(page, limit)
	return Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
		HasPrev:    page > 1,
		HasNext:    int64(offset+limit) < total,
	}
}

// Links builds previous and next page URLs for path, preserving the other query values.
func Links(path string, query url.Values, m Meta) (prev, next string) {
	build := func(page int) string {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("page", strconv.Itoa(page))
		q.Set("limit", strconv.Itoa(m.Limit))
		return path + "?" + q.Encode()
	}
	if m.HasPrev {
		prev = build(m.Page - 1)
	}
	if m.HasNext {
		next = build(m.Page + 1)
	}
	return prev, next
}
