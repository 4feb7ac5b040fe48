package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"delivery-service/internal/domain"
	"delivery-service/internal/infra"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestParseCatalog(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []infra.NewProduct
		wantErr bool
	}{
		{
			name:  "yaml",
			input: "- name: Milk\n  price: 80\n- name: ' Bread '\n  price: 45.5\n",
			want: []infra.NewProduct{
				{Name: "Milk", Price: decimal.NewFromInt(80)},
				{Name: "Bread", Price: decimal.RequireFromString("45.5")},
			},
		},
		{
			name:  "json",
			input: `[{"name":"Milk","price":80}]`,
			want:  []infra.NewProduct{{Name: "Milk", Price: decimal.NewFromInt(80)}},
		},
		{name: "empty list", input: "[]", want: []infra.NewProduct{}},
		{
			name:  "price kept exact",
			input: "- name: Salt\n  price: 0.1\n- name: Saffron\n  price: '1234567.89'\n",
			want: []infra.NewProduct{
				{Name: "Salt", Price: decimal.RequireFromString("0.1")},
				{Name: "Saffron", Price: decimal.RequireFromString("1234567.89")},
			},
		},
		{name: "missing name", input: "- price: 10\n", wantErr: true},
		{name: "missing price", input: "- name: Milk\n", wantErr: true},
		{name: "price not a number", input: "- name: Milk\n  price: cheap\n", wantErr: true},
		{name: "price is a list", input: "- name: Milk\n  price: [1]\n", wantErr: true},
		{name: "negative price", input: "- name: Milk\n  price: -1\n", wantErr: true},
		{name: "not a list", input: "name: Milk\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCatalog([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i].Name, got[i].Name)
				assert.True(t, tt.want[i].Price.Equal(got[i].Price), "price %s != %s", tt.want[i].Price, got[i].Price)
			}
		})
	}
}

func TestLoadCatalog_ExampleFile(t *testing.T) {
	products, err := loadCatalog("catalog.example.yaml")
	require.NoError(t, err)
	assert.Len(t, products, 4)

	_, err = loadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type mockCatalogClient struct{ mock.Mock }

func (m *mockCatalogClient) AddProducts(ctx context.Context, products []infra.NewProduct) (*infra.AddProductsResult, error) {
	args := m.Called(ctx, products)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*infra.AddProductsResult), args.Error(1)
}

func (m *mockCatalogClient) ListProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func TestSeed(t *testing.T) {
	products := []infra.NewProduct{{Name: "Milk", Price: decimal.NewFromInt(80)}}

	t.Run("adds then lists", func(t *testing.T) {
		client := new(mockCatalogClient)
		client.On("AddProducts", mock.Anything, products).Return(&infra.AddProductsResult{Message: "products added", Count: 1}, nil)
		client.On("ListProducts", mock.Anything).Return([]domain.Product{{ID: "p1", Name: "Milk", Price: decimal.NewFromInt(80)}}, nil)

		require.NoError(t, seed(context.Background(), client, products))
		client.AssertExpectations(t)
	})

	t.Run("add failure stops", func(t *testing.T) {
		client := new(mockCatalogClient)
		client.On("AddProducts", mock.Anything, products).Return(nil, errors.New("status 400: invalid payload"))

		err := seed(context.Background(), client, products)
		assert.ErrorContains(t, err, "add products")
		client.AssertNotCalled(t, "ListProducts", mock.Anything)
	})
}
