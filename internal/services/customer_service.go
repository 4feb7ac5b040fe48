package services

import (
	"context"

	"delivery-service/internal/domain"
	"delivery-service/internal/repository"
)

type CustomerService struct {
	customers repository.CustomerRepository
}

func NewCustomerService(customers repository.CustomerRepository) *CustomerService {
	return &CustomerService{customers: customers}
}

func (s *CustomerService) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	customers, err := s.customers.FindAll(ctx)
	if err != nil {
		return nil, storageErr("list customers", err)
	}
	if customers == nil {
		customers = []domain.Customer{}
	}
	return customers, nil
}
