package services

import (
	"sync"
	"testing"

	"restaurant_ops_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// End-to-end service flows against the in-memory fakes.

func TestCreateOrderKeepsStockWhenAnyLineFails(t *testing.T) {
	f := newServiceFixture()
	f.addProduct(1, "Espresso", 300, 5)
	f.addProduct(2, "Tonic", 500, 0)

	_, err := f.orderSvc.CreateOrder(f.storeID, CreateOrderRequest{
		Channel: string(models.ChannelPickup),
		Items: []CreateOrderItemRequest{
			{StoreProductID: int64Ptr(1), Quantity: 2},
			{StoreProductID: int64Ptr(2), Quantity: 1},
		},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	// The first line was decremented before the second failed; the rollback
	// must return it, along with the half-written order.
	assert.Equal(t, 5, f.catalog.stock(1))
	assert.Equal(t, 0, f.catalog.stock(2))
	assert.Zero(t, f.moves.count())

	queue, err := f.orderSvc.ListQueue(f.storeID, QueueFilters{})
	require.NoError(t, err)
	assert.Empty(t, queue)
}

func TestConcurrentOrdersNeverOversell(t *testing.T) {
	f := newServiceFixture()
	f.addProduct(1, "Last Croissant", 900, 1)

	const attempts = 4
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.orderSvc.CreateOrder(f.storeID, CreateOrderRequest{
				Channel: string(models.ChannelPickup),
				Items: []CreateOrderItemRequest{
					{StoreProductID: int64Ptr(1), Quantity: 1},
				},
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		require.ErrorIs(t, err, ErrInsufficientStock)
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, 0, f.catalog.stock(1))

	queue, err := f.orderSvc.ListQueue(f.storeID, QueueFilters{})
	require.NoError(t, err)
	assert.Len(t, queue, 1)
}

func TestServedTableAwaitsPaymentUntilCloseOut(t *testing.T) {
	f := newServiceFixture()
	f.addProduct(1, "Risotto", 1800, 10)
	f.addTable(1, 1)

	order, err := f.orderSvc.CreateOrder(f.storeID, CreateOrderRequest{
		Channel: string(models.ChannelDineIn),
		TableID: int64Ptr(1),
		Items: []CreateOrderItemRequest{
			{StoreProductID: int64Ptr(1), Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	itemID := order.Items[0].ID

	for _, status := range []models.ItemStatus{
		models.ItemStatusInPreparation,
		models.ItemStatusReady,
		models.ItemStatusDelivered,
	} {
		order, err = f.orderSvc.TransitionItemStatus(f.storeID, itemID, UpdateItemStatusRequest{Status: string(status)})
		require.NoError(t, err)
	}

	// Every item is served, but the session stays open for payment: the
	// order holds at ready and the table flips to awaiting_payment.
	assert.Equal(t, models.OrderStatusReady, order.Status)

	table, err := f.tableSvc.GetTable(f.storeID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.TableStatusAwaitingPayment, table.Status)
	require.NotNil(t, table.CurrentOrderID)
	assert.Equal(t, order.ID, *table.CurrentOrderID)

	// Payment settles the session: the explicit close-out completes the
	// order and frees the table.
	order, err = f.orderSvc.TransitionOrderStatus(f.storeID, order.ID, UpdateOrderStatusRequest{
		Status: string(models.OrderStatusDelivered),
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, order.Status)

	table, err = f.tableSvc.GetTable(f.storeID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.TableStatusFree, table.Status)
	assert.Nil(t, table.CurrentOrderID)
}

func TestCancellingEveryItemClosesCourierRun(t *testing.T) {
	f := newServiceFixture()
	f.addProduct(1, "Pad Thai", 1500, 10)
	f.addCourier(7, "Dana")

	order := readyDeliveryOrder(t, f)
	itemID := order.Items[0].ID

	_, err := f.dispatchSvc.AssignCourier(f.storeID, order.ID, AssignCourierRequest{CourierID: 7})
	require.NoError(t, err)

	couriers, err := f.dispatchSvc.ListAvailableCouriers(f.storeID)
	require.NoError(t, err)
	assert.Empty(t, couriers)

	// Cancelling the only line empties the order, so the derived status is
	// terminal and must settle the run the same way an explicit cancel does.
	order, err = f.orderSvc.TransitionItemStatus(f.storeID, itemID, UpdateItemStatusRequest{
		Status: string(models.ItemStatusCancelled),
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
	require.NotNil(t, order.CancelReason)
	assert.Equal(t, "all items cancelled", *order.CancelReason)

	_, err = f.dispatchSvc.GetAssignment(f.storeID, order.ID)
	assert.ErrorIs(t, err, ErrAssignmentNotFound)

	couriers, err = f.dispatchSvc.ListAvailableCouriers(f.storeID)
	require.NoError(t, err)
	require.Len(t, couriers, 1)
	assert.Equal(t, int64(7), couriers[0].ID)
}

func TestCreateOrderRejectsOccupiedTable(t *testing.T) {
	f := newServiceFixture()
	f.addProduct(1, "Ramen", 1600, 10)
	f.addTable(1, 1)

	_, err := f.tableSvc.OpenTable(f.storeID, 1, OpenTableRequest{})
	require.NoError(t, err)

	// The occupied table already carries its session order; a second seat
	// must go through AddItemToOrder on that order instead.
	_, err = f.orderSvc.CreateOrder(f.storeID, CreateOrderRequest{
		Channel: string(models.ChannelDineIn),
		TableID: int64Ptr(1),
		Items: []CreateOrderItemRequest{
			{StoreProductID: int64Ptr(1), Quantity: 1},
		},
	})
	require.ErrorIs(t, err, ErrTableHasOpenOrder)
	assert.Equal(t, 10, f.catalog.stock(1))
}

func TestAppendAfterReadyDependsOnChannel(t *testing.T) {
	f := newServiceFixture()
	f.addProduct(1, "Flat White", 450, 10)
	f.addTable(1, 1)

	// A counter order that is ready for handover no longer takes changes.
	counter, err := f.orderSvc.CreateOrder(f.storeID, CreateOrderRequest{
		Channel: string(models.ChannelPickup),
		Items: []CreateOrderItemRequest{
			{StoreProductID: int64Ptr(1), Quantity: 1},
		},
	})
	require.NoError(t, err)
	for _, status := range []models.ItemStatus{models.ItemStatusInPreparation, models.ItemStatusReady} {
		counter, err = f.orderSvc.TransitionItemStatus(f.storeID, counter.Items[0].ID, UpdateItemStatusRequest{Status: string(status)})
		require.NoError(t, err)
	}
	require.Equal(t, models.OrderStatusReady, counter.Status)

	_, err = f.orderSvc.AddItemToOrder(f.storeID, counter.ID, CreateOrderItemRequest{
		StoreProductID: int64Ptr(1), Quantity: 1,
	})
	require.ErrorIs(t, err, ErrInvalidTransition)

	// A table session keeps taking rounds until close-out, even with every
	// earlier line served.
	table, err := f.tableSvc.OpenTable(f.storeID, 1, OpenTableRequest{})
	require.NoError(t, err)
	session, err := f.orderSvc.AddItemToOrder(f.storeID, *table.CurrentOrderID, CreateOrderItemRequest{
		StoreProductID: int64Ptr(1), Quantity: 1,
	})
	require.NoError(t, err)
	for _, status := range []models.ItemStatus{
		models.ItemStatusInPreparation,
		models.ItemStatusReady,
		models.ItemStatusDelivered,
	} {
		session, err = f.orderSvc.TransitionItemStatus(f.storeID, session.Items[0].ID, UpdateItemStatusRequest{Status: string(status)})
		require.NoError(t, err)
	}
	require.Equal(t, models.OrderStatusReady, session.Status)

	session, err = f.orderSvc.AddItemToOrder(f.storeID, session.ID, CreateOrderItemRequest{
		StoreProductID: int64Ptr(1), Quantity: 1,
	})
	require.NoError(t, err)
	assert.Len(t, session.Items, 2)

	// The second round reopens the session visually as well.
	table, err = f.tableSvc.GetTable(f.storeID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.TableStatusOccupied, table.Status)
}

// readyDeliveryOrder creates a delivery order for product 1 and walks it to
// ready, the state couriers pick up from.
func readyDeliveryOrder(t *testing.T, f *serviceFixture) *models.Order {
	t.Helper()

	order, err := f.orderSvc.CreateOrder(f.storeID, CreateOrderRequest{
		Channel:           string(models.ChannelDelivery),
		DeliveryAddressID: int64Ptr(11),
		Items: []CreateOrderItemRequest{
			{StoreProductID: int64Ptr(1), Quantity: 1},
		},
	})
	require.NoError(t, err)

	order, err = f.orderSvc.TransitionOrderStatus(f.storeID, order.ID, UpdateOrderStatusRequest{
		Status: string(models.OrderStatusInPreparation),
	})
	require.NoError(t, err)

	order, err = f.orderSvc.TransitionItemStatus(f.storeID, order.Items[0].ID, UpdateItemStatusRequest{
		Status: string(models.ItemStatusReady),
	})
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusReady, order.Status)
	return order
}
