package service

import (
	"context"

	"github.com/natillera-ledger/internal/domain/member"
	"github.com/natillera-ledger/internal/domain/movement"
)

const (
	DefaultMovementLimit = 50
	MaxMovementLimit     = 200
	DefaultJournalPage   = 20
	MaxJournalPerPage    = 100
)

type MovementServiceImpl struct {
	members   member.Repository
	movements movement.Repository
	journal   movement.JournalRepository
}

func NewMovementService(members member.Repository, movements movement.Repository, journal movement.JournalRepository) MovementService {
	return &MovementServiceImpl{
		members:   members,
		movements: movements,
		journal:   journal,
	}
}

// ListMovements returns the latest movements first. limit is clamped to [1, MaxMovementLimit].
func (s *MovementServiceImpl) ListMovements(ctx context.Context, memberID int64, limit int) ([]*movement.Entry, error) {
	if _, err := s.members.GetByID(ctx, memberID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultMovementLimit
	}
	if limit > MaxMovementLimit {
		limit = MaxMovementLimit
	}

	return s.movements.ListByMember(ctx, memberID, limit)
}

// ListJournal pages through the projected journal. It lags the ledger by the outbox delay.
func (s *MovementServiceImpl) ListJournal(ctx context.Context, memberID int64, page, perPage int) ([]*movement.Entry, int64, error) {
	if _, err := s.members.GetByID(ctx, memberID); err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultJournalPage
	}
	if perPage > MaxJournalPerPage {
		perPage = MaxJournalPerPage
	}

	entries, err := s.journal.ListByMember(ctx, memberID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.journal.CountByMember(ctx, memberID)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
