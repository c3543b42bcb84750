package services

import (
	"context"
	"fmt"
	"log/slog"

	"mealbook/internal/core"
	"mealbook/internal/log"
	"mealbook/internal/storage"
)

// MealService records daily meal counts.
type MealService struct {
	storage *storage.SQLiteRepository
}

func NewMealService(storage *storage.SQLiteRepository) *MealService {
	return &MealService{storage: storage}
}

// Update sets the member's meal count for a day, replacing any earlier count.
// The month of the meal's date must be unlocked.
func (s *MealService) Update(ctx context.Context, meal core.Meal) (core.Meal, error) {
	if err := meal.Validate(); err != nil {
		return core.Meal{}, err
	}

	var saved core.Meal
	err := s.storage.InTx(ctx, func(tx *storage.SQLiteRepository) error {
		if err := NewLockGuard(tx).guard(ctx, KindMeal, meal.Date); err != nil {
			return err
		}
		if _, err := tx.GetMember(ctx, meal.MemberID); err != nil {
			return err
		}
		var err error
		saved, err = tx.UpsertMeal(ctx, meal)
		return err
	})
	if err != nil {
		return core.Meal{}, fmt.Errorf("update meal: %w", err)
	}

	slog.DebugContext(ctx, "Meal count saved",
		log.FieldMemberID, saved.MemberID,
		log.FieldDate, saved.Date.String(),
		log.FieldOperation, log.OpUpdate)
	return saved, nil
}

// ListByDate returns every member's meal entry for one day.
func (s *MealService) ListByDate(ctx context.Context, date core.Date) ([]core.Meal, error) {
	meals, err := s.storage.ListMealsByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	return meals, nil
}
