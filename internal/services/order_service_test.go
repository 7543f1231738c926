package services

import (
	"testing"

	"restaurant_ops_backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 { return &v }

func validCreateRequest() CreateOrderRequest {
	return CreateOrderRequest{
		Channel: string(models.ChannelPickup),
		Items: []CreateOrderItemRequest{
			{StoreProductID: int64Ptr(1), Quantity: 2},
		},
	}
}

func TestValidateCreateOrderRequest(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateOrderRequest)
		wantErr error
	}{
		{
			name:   "valid pickup order",
			mutate: func(r *CreateOrderRequest) {},
		},
		{
			name:    "unknown channel",
			mutate:  func(r *CreateOrderRequest) { r.Channel = "drive_through" },
			wantErr: ErrValidation,
		},
		{
			name:    "no items",
			mutate:  func(r *CreateOrderRequest) { r.Items = nil },
			wantErr: ErrValidation,
		},
		{
			name:    "negative discount",
			mutate:  func(r *CreateOrderRequest) { r.DiscountAmount = -1 },
			wantErr: ErrValidation,
		},
		{
			name: "delivery without address",
			mutate: func(r *CreateOrderRequest) {
				r.Channel = string(models.ChannelDelivery)
			},
			wantErr: ErrValidation,
		},
		{
			name: "delivery with address",
			mutate: func(r *CreateOrderRequest) {
				r.Channel = string(models.ChannelDelivery)
				r.DeliveryAddressID = int64Ptr(5)
			},
		},
		{
			name: "table on a pickup order",
			mutate: func(r *CreateOrderRequest) {
				r.TableID = int64Ptr(3)
			},
			wantErr: ErrValidation,
		},
		{
			name: "table on a dine-in order",
			mutate: func(r *CreateOrderRequest) {
				r.Channel = string(models.ChannelDineIn)
				r.TableID = int64Ptr(3)
			},
		},
		{
			name: "line with both product and combo",
			mutate: func(r *CreateOrderRequest) {
				r.Items[0].ComboID = int64Ptr(9)
			},
			wantErr: ErrValidation,
		},
		{
			name: "line with neither product nor combo",
			mutate: func(r *CreateOrderRequest) {
				r.Items[0].StoreProductID = nil
			},
			wantErr: ErrValidation,
		},
		{
			name: "zero quantity",
			mutate: func(r *CreateOrderRequest) {
				r.Items[0].Quantity = 0
			},
			wantErr: ErrValidation,
		},
		{
			name: "combo line with addons",
			mutate: func(r *CreateOrderRequest) {
				r.Items[0].StoreProductID = nil
				r.Items[0].ComboID = int64Ptr(9)
				r.Items[0].Addons = []CreateOrderAddonRequest{{StoreProductID: 2, Quantity: 1}}
			},
			wantErr: ErrValidation,
		},
		{
			name: "addon with zero quantity",
			mutate: func(r *CreateOrderRequest) {
				r.Items[0].Addons = []CreateOrderAddonRequest{{StoreProductID: 2, Quantity: 0}}
			},
			wantErr: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(&req)
			err := ValidateCreateOrderRequest(req)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestRestockableItems(t *testing.T) {
	items := []models.OrderItem{
		{ID: 1, Status: models.ItemStatusPending},
		{ID: 2, Status: models.ItemStatusInPreparation},
		{ID: 3, Status: models.ItemStatusReady},
		{ID: 4, Status: models.ItemStatusPending},
		{ID: 5, Status: models.ItemStatusCancelled},
	}

	restock := restockableItems(items)

	// Once the kitchen starts an item its ingredients are spent; only
	// untouched lines go back to stock.
	assert.Len(t, restock, 2)
	assert.Equal(t, int64(1), restock[0].ID)
	assert.Equal(t, int64(4), restock[1].ID)
}

func TestAllItemsAtLeastReady(t *testing.T) {
	tests := []struct {
		name  string
		items []models.OrderItem
		want  bool
	}{
		{
			name: "all ready",
			items: []models.OrderItem{
				{Status: models.ItemStatusReady},
				{Status: models.ItemStatusReady},
			},
			want: true,
		},
		{
			name: "delivered counts as ready",
			items: []models.OrderItem{
				{Status: models.ItemStatusReady},
				{Status: models.ItemStatusDelivered},
			},
			want: true,
		},
		{
			name: "cancelled items are skipped",
			items: []models.OrderItem{
				{Status: models.ItemStatusReady},
				{Status: models.ItemStatusCancelled},
			},
			want: true,
		},
		{
			name: "one item still cooking",
			items: []models.OrderItem{
				{Status: models.ItemStatusReady},
				{Status: models.ItemStatusInPreparation},
			},
			want: false,
		},
		{
			name:  "no items",
			items: nil,
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, allItemsAtLeastReady(tt.items))
		})
	}
}
