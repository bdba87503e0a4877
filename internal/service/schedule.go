package service

import (
	"context"
	"encoding/json"
	"time"

	"fitgrid/internal/apperrors"
	"fitgrid/internal/logger"
	"fitgrid/internal/models"
)

// Schedule returns the public upcoming schedule as rendered JSON. The
// rendered body is cached per day and invalidated on any write that can
// change it.
func (s *Service) Schedule(ctx context.Context) ([]byte, error) {
	now := s.now().In(s.loc)
	day := now.Format("2006-01-02")

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, day)
		if err != nil {
			logger.Get().Error("schedule cache read failed", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	items, err := s.occurrences.ListSchedule(ctx, now)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(items)
	if err != nil {
		return nil, apperrors.Internal("failed to render schedule", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, day, body); err != nil {
			logger.Get().Error("schedule cache write failed", "error", err)
		}
	}
	return body, nil
}

// SearchClasses runs the fuzzy class search. dateStr optionally narrows
// results to one day (YYYY-MM-DD, local).
func (s *Service) SearchClasses(ctx context.Context, text, dateStr string) ([]models.ClassDocument, error) {
	if s.indexer == nil {
		return nil, apperrors.Internal("search is not available", nil)
	}

	var day *time.Time
	if dateStr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", dateStr, s.loc)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid date, expected YYYY-MM-DD")
		}
		day = &parsed
	}

	docs, err := s.indexer.Search(ctx, text, day)
	if err != nil {
		return nil, apperrors.Internal("class search failed", err)
	}
	return docs, nil
}
