package mysql

import (
	"context"
	"errors"
	"log"

	"delivery-service/internal/domain"
	"delivery-service/internal/repository"

	"gorm.io/gorm"
)

type productRepo struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Save(ctx context.Context, product *domain.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		log.Printf("product save error: %v", err)
		return err
	}
	return nil
}

func (r *productRepo) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("product FindByID error: %v", err)
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []domain.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		log.Printf("product FindByIDs error: %v", err)
		return nil, err
	}
	return out, nil
}

func (r *productRepo) FindAll(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&out).Error; err != nil {
		log.Printf("product FindAll error: %v", err)
		return nil, err
	}
	return out, nil
}
