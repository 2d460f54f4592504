package orders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"order-mesh/internal/meshclient"
)

// Service implements the order lifecycle on top of the remote catalog, the
// order store and the event bus. All collaborators arrive through the
// constructor; the service holds no state of its own beyond them.
type Service struct {
	catalog Catalog
	store   Store
	bus     Publisher
	log     *slog.Logger
	name    string // producer name stamped on events
}

func NewService(cat Catalog, store Store, bus Publisher, log *slog.Logger, name string) *Service {
	return &Service{catalog: cat, store: store, bus: bus, log: log, name: name}
}

// mapCatalogErr translates remote-client failures into the domain taxonomy.
// Not-found stays distinguishable from "could not ask the catalog at all".
func mapCatalogErr(err error) error {
	if meshclient.KindOf(err) == meshclient.KindNotFound {
		return ErrProductNotFound
	}
	return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
}

func (s *Service) CreateOrder(ctx context.Context, productID, customerName, customerEmail string, quantity int) (*Order, error) {
	if productID == "" || customerName == "" || customerEmail == "" || quantity <= 0 {
		return nil, ErrInvalidInput
	}

	// Fresh stock read on every creation, never cached across calls.
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, mapCatalogErr(err)
	}

	if quantity > product.Stock {
		return nil, &InsufficientStockError{Requested: quantity, Available: product.Stock}
	}

	now := time.Now().UTC()
	order := &Order{
		ID:            uuid.NewString(),
		ProductID:     product.ID,
		ProductName:   product.Name,
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		Quantity:      quantity,
		UnitPrice:     product.Price,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	// The order stands even if the stock write fails; the inconsistency
	// window is logged, not rolled back.
	if err := s.catalog.SetStock(ctx, product.ID, product.Stock-quantity); err != nil {
		s.log.Warn("stock update failed after order persisted",
			"order_id", order.ID, "product_id", product.ID, "error", err)
	}

	s.publishCreated(ctx, order)
	return order, nil
}

func (s *Service) CancelOrder(ctx context.Context, orderID, reason string) error {
	order, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}

	// Give the reservation back while the order still holds one. A product
	// deleted upstream does not block cancellation: the reservation is lost
	// and logged.
	if order.Status.ReservesStock() {
		product, err := s.catalog.GetProduct(ctx, order.ProductID)
		if err != nil {
			s.log.Warn("skipping stock restore, product lookup failed",
				"order_id", order.ID, "product_id", order.ProductID, "error", err)
		} else if err := s.catalog.SetStock(ctx, product.ID, product.Stock+order.Quantity); err != nil {
			s.log.Warn("stock restore failed",
				"order_id", order.ID, "product_id", product.ID, "error", err)
		}
	}

	order.Status = StatusCancelled
	order.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, order); err != nil {
		return fmt.Errorf("save order: %w", err)
	}

	s.publish(ctx, EventOrderCancelled, TopicOrderCancelled, order.ID,
		OrderCancelledPayload{OrderID: order.ID, Reason: reason})
	return nil
}

func (s *Service) UpdateStatus(ctx context.Context, orderID string, newStatus Status) (*Order, error) {
	if !newStatus.Valid() || newStatus == StatusCancelled {
		// cancellation goes through CancelOrder, which restores stock
		return nil, ErrInvalidInput
	}

	order, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(order.Status, newStatus) {
		return nil, ErrAlreadyCancelled
	}

	old := order.Status
	order.Status = newStatus
	order.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	s.publish(ctx, EventOrderStatusChanged, TopicOrderStatusChanged, order.ID,
		OrderStatusChangedPayload{OrderID: order.ID, OldStatus: old, NewStatus: newStatus})
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	return s.store.FindByID(ctx, orderID)
}

func (s *Service) ListByEmail(ctx context.Context, email string) ([]*Order, error) {
	return s.store.FindByCustomerEmail(ctx, email)
}

func (s *Service) publishCreated(ctx context.Context, order *Order) {
	s.publish(ctx, EventOrderCreated, TopicOrderCreated, order.ID, OrderCreatedPayload{
		OrderID:       order.ID,
		ProductID:     order.ProductID,
		ProductName:   order.ProductName,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		Quantity:      order.Quantity,
		UnitPrice:     order.UnitPrice,
		TotalPrice:    order.TotalPrice(),
		CreatedAt:     order.CreatedAt,
	})
}

// publish is best-effort: the state change already committed, so a bus
// failure is logged and swallowed, never turned into a caller-visible error.
func (s *Service) publish(ctx context.Context, eventType, topic, orderID string, payload any) {
	env, err := NewEnvelope(eventType, s.name, orderID, payload)
	if err != nil {
		s.log.Warn("event payload did not marshal", "event", eventType, "order_id", orderID, "error", err)
		return
	}
	if err := s.bus.Publish(ctx, topic, env); err != nil {
		s.log.Warn("event publish failed", "event", eventType, "order_id", orderID, "error", err)
	}
}
