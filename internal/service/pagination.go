package service

import "navega/internal/repository"

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// PageRequest is a 1-based page request as sent by the admin panel.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize applies the defaults: page 1, limit 10, limit at most 100.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p PageRequest) window() repository.Page {
	return repository.Page{Limit: p.Limit, Offset: (p.Page - 1) * p.Limit}
}

func totalPages(total int64, limit int) int {
	if total == 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
