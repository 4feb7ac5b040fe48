package mysql

import (
	"context"
	"errors"
	"log"

	"delivery-service/internal/domain"
	"delivery-service/internal/repository"

	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *orderRepo) Save(ctx context.Context, order *domain.Order) error {
	for i := range order.Lines {
		order.Lines[i].OrderID = order.ID
		order.Lines[i].Position = i
	}

	// Create inserts the order and its lines inside one transaction
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		log.Printf("order save error: %v", err)
		return err
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).
		Preload("Lines", preloadLines).
		First(&o, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("order FindByID error: %v", err)
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindAll(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.WithContext(ctx).
		Preload("Lines", preloadLines).
		Order("created_at ASC").Order("id ASC").
		Find(&out).Error
	if err != nil {
		log.Printf("order FindAll error: %v", err)
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		log.Printf("order UpdateStatus error: %v", result.Error)
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
