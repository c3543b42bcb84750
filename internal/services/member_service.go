package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mealbook/internal/core"
	"mealbook/internal/log"
	"mealbook/internal/storage"
)

// MemberService manages the roster. Deactivating a member keeps their history
// but leaves them out of later settlements.
type MemberService struct {
	storage *storage.SQLiteRepository
}

func NewMemberService(storage *storage.SQLiteRepository) *MemberService {
	return &MemberService{storage: storage}
}

func (s *MemberService) List(ctx context.Context) ([]core.Member, error) {
	members, err := s.storage.ListMembers(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

func (s *MemberService) Add(ctx context.Context, name string) (core.Member, error) {
	m := core.Member{Name: strings.TrimSpace(name)}
	if err := m.Validate(); err != nil {
		return core.Member{}, err
	}
	created, err := s.storage.CreateMember(ctx, m.Name)
	if err != nil {
		return core.Member{}, fmt.Errorf("add member: %w", err)
	}

	slog.InfoContext(ctx, "Member added", log.FieldMemberID, created.ID, log.FieldOperation, log.OpCreate)
	return created, nil
}

func (s *MemberService) SetActive(ctx context.Context, id string, active bool) (core.Member, error) {
	var updated core.Member
	err := s.storage.InTx(ctx, func(tx *storage.SQLiteRepository) error {
		if err := tx.SetMemberActive(ctx, id, active); err != nil {
			return err
		}
		var err error
		updated, err = tx.GetMember(ctx, id)
		return err
	})
	if err != nil {
		return core.Member{}, fmt.Errorf("set member active: %w", err)
	}

	slog.InfoContext(ctx, "Member status changed",
		log.FieldMemberID, id, "active", active, log.FieldOperation, log.OpUpdate)
	return updated, nil
}
