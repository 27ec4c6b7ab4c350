package models

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 12
)

// ListParams describes one GET /notes request. It is never persisted.
type ListParams struct {
	Page    int
	PerPage int
	Search  string
	Tag     Tag
}

// Normalize replaces non-positive pagination values with the defaults.
func (p ListParams) Normalize() ListParams {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	return p
}

// HasSearch reports whether the search term is non-empty after trimming.
func (p ListParams) HasSearch() bool {
	return strings.TrimSpace(p.Search) != ""
}

// Query builds the outgoing query string.
//
// page and perPage are always present. search is sent untrimmed, and only when it is non-blank.
// tag is omitted when empty or [TagAll].
func (p ListParams) Query() url.Values {
	p = p.Normalize()

	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("perPage", strconv.Itoa(p.PerPage))
	if p.HasSearch() {
		q.Set("search", p.Search)
	}
	if !p.Tag.IsAll() {
		q.Set("tag", string(p.Tag))
	}
	return q
}
