package audit

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// RepositoryPort defines data access methods for the timeline.
type RepositoryPort interface {
	Timeline(ctx context.Context, org *uuid.UUID, entity, action string, limit, offset int) ([]Entry, error)
}

// Service coordinates timeline reads.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Timeline returns one page of audit entries, newest first. A non-nil
// org restricts the page to that tenant; only the global super-role
// reaches here without one. It fetches one row past the page boundary
// to decide HasNext without a count query.
func (s *Service) Timeline(ctx context.Context, org *uuid.UUID, filters Filters) ([]Entry, Paging, error) {
	if s.repo == nil {
		return nil, Paging{}, errors.New("audit: repository not configured")
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 50 {
		pageSize = 50
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize

	entries, err := s.repo.Timeline(ctx, org, filters.Entity, filters.Action, pageSize+1, offset)
	if err != nil {
		return nil, Paging{}, err
	}
	hasNext := len(entries) > pageSize
	if hasNext {
		entries = entries[:pageSize]
	}
	return entries, Paging{Page: page, PageSize: pageSize, HasNext: hasNext}, nil
}
