package services

import (
	"testing"

	"restaurant_ops_backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestMergeStockLines(t *testing.T) {
	tests := []struct {
		name  string
		lines []models.StockLine
		want  []models.StockLine
	}{
		{
			name:  "empty input",
			lines: nil,
			want:  []models.StockLine{},
		},
		{
			name: "distinct products pass through in order",
			lines: []models.StockLine{
				{StoreProductID: 1, Quantity: 2},
				{StoreProductID: 2, Quantity: 1},
			},
			want: []models.StockLine{
				{StoreProductID: 1, Quantity: 2},
				{StoreProductID: 2, Quantity: 1},
			},
		},
		{
			name: "duplicate products collapse into one line",
			lines: []models.StockLine{
				{StoreProductID: 1, Quantity: 2},
				{StoreProductID: 2, Quantity: 1},
				{StoreProductID: 1, Quantity: 3},
			},
			want: []models.StockLine{
				{StoreProductID: 1, Quantity: 5},
				{StoreProductID: 2, Quantity: 1},
			},
		},
		{
			name: "combo expansion overlapping a plain line",
			lines: []models.StockLine{
				{StoreProductID: 7, Quantity: 1},  // ordered on its own
				{StoreProductID: 7, Quantity: 2},  // also a combo component
				{StoreProductID: 9, Quantity: 2},  // addon
				{StoreProductID: 9, Quantity: 2},  // same addon on another line
			},
			want: []models.StockLine{
				{StoreProductID: 7, Quantity: 3},
				{StoreProductID: 9, Quantity: 4},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeStockLines(tt.lines))
		})
	}
}
