package mysql

import (
	"context"
	"errors"
	"log"

	"delivery-service/internal/domain"
	"delivery-service/internal/repository"

	"gorm.io/gorm"
)

type customerRepo struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) repository.CustomerRepository {
	return &customerRepo{db: db}
}

// Save relies on gorm.Config.TranslateError to surface the email unique index as
// gorm.ErrDuplicatedKey.
func (r *customerRepo) Save(ctx context.Context, customer *domain.Customer) error {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateEmail
		}
		log.Printf("customer save error: %v", err)
		return err
	}
	return nil
}

func (r *customerRepo) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	var c domain.Customer
	if err := r.db.WithContext(ctx).First(&c, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("customer FindByEmail error: %v", err)
		return nil, err
	}
	return &c, nil
}

func (r *customerRepo) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	var c domain.Customer
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("customer FindByID error: %v", err)
		return nil, err
	}
	return &c, nil
}

func (r *customerRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.Customer, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []domain.Customer
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		log.Printf("customer FindByIDs error: %v", err)
		return nil, err
	}
	return out, nil
}

func (r *customerRepo) FindAll(ctx context.Context) ([]domain.Customer, error) {
	var out []domain.Customer
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&out).Error; err != nil {
		log.Printf("customer FindAll error: %v", err)
		return nil, err
	}
	return out, nil
}
