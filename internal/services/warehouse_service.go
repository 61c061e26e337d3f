package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"warehouse/internal/events"
	"warehouse/internal/models"
	"warehouse/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "warehouse/internal/services"

// WarehouseService enforces the stock rules over a ProductRepository.
//
// Expected rejections never surface as errors from the mutating operations:
// they come back as a failed response carrying an ErrorReason. A returned
// error always means the store itself failed.
//
// Mutations are serialized by mu so that the fetch, check and persist steps
// of one request cannot interleave with another's. Movements are appended to
// the ledger while mu is held, so the ledger follows commit order. Events are
// published after mu is released and may reach the broker out of order across
// concurrent requests; consumers order them by the quantities they carry.
type WarehouseService struct {
	repo      repositories.ProductRepository
	movements repositories.MovementRepository
	publisher events.Publisher
	validate  *validator.Validate
	logger    *zap.Logger
	tracer    trace.Tracer
	mu        sync.Mutex
}

// NewWarehouseService creates a new WarehouseService. A nil movement
// repository falls back to an in-memory ledger and a nil publisher drops events.
func NewWarehouseService(repo repositories.ProductRepository, movements repositories.MovementRepository, publisher events.Publisher, logger *zap.Logger) *WarehouseService {
	if movements == nil {
		movements = repositories.NewMemoryMovementRepository()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &WarehouseService{
		repo:      repo,
		movements: movements,
		publisher: publisher,
		validate:  validator.New(),
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
	}
}

// GetProduct returns the product with the given ID, or a *RequestError with
// reason InvalidRequest when there is none.
func (s *WarehouseService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	_, span := s.tracer.Start(ctx, "warehouse.get_product", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	product, err := s.getProduct(id)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return product, nil
}

// GetInStockProducts returns every product with units available to sell.
func (s *WarehouseService) GetInStockProducts(ctx context.Context) ([]models.Product, error) {
	_, span := s.tracer.Start(ctx, "warehouse.get_in_stock_products")
	defer span.End()

	all, err := s.repo.List()
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	inStock := make([]models.Product, 0, len(all))
	for _, p := range all {
		if isInStock(p) {
			inStock = append(inStock, p)
		}
	}
	span.SetAttributes(attribute.Int("warehouse.in_stock_count", len(inStock)))
	return inStock, nil
}

// GetMovements returns the quantity history of an existing product.
func (s *WarehouseService) GetMovements(ctx context.Context, id int64) ([]models.StockMovement, error) {
	_, span := s.tracer.Start(ctx, "warehouse.get_movements", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	if _, err := s.getProduct(id); err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	movements, err := s.movements.ListByProduct(id)
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	return movements, nil
}

// ProcessOrder reserves request.Quantity units of a product. The reservation
// only succeeds while the new reserved total stays strictly below the stock.
func (s *WarehouseService) ProcessOrder(ctx context.Context, request models.UpdateQuantityRequest) (models.UpdateResponse, error) {
	return s.updateQuantities(ctx, "warehouse.process_order", models.MovementReserve, request, reserveProduct)
}

// ShipOrder ships request.Quantity reserved units, lowering both the reserved
// and the stock quantity.
func (s *WarehouseService) ShipOrder(ctx context.Context, request models.UpdateQuantityRequest) (models.UpdateResponse, error) {
	return s.updateQuantities(ctx, "warehouse.ship_order", models.MovementShip, request, shipProduct)
}

// Restock adds request.Quantity units to a product's stock.
func (s *WarehouseService) Restock(ctx context.Context, request models.UpdateQuantityRequest) (models.UpdateResponse, error) {
	return s.updateQuantities(ctx, "warehouse.restock", models.MovementRestock, request, restockProduct)
}

// AddItem creates a product with the requested name and stock and no
// reservations. A name already in use, compared after trimming, gets the
// number of products sharing it appended.
func (s *WarehouseService) AddItem(ctx context.Context, product models.Product) (models.CreateResponse[models.Product], error) {
	_, span := s.tracer.Start(ctx, "warehouse.add_item", trace.WithAttributes(
		attribute.String("product.name", product.Name),
		attribute.Int("product.in_stock_quantity", product.InStockQuantity),
	))
	defer span.End()

	movement, err := s.insertProduct(&product)

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		s.reject(span, "warehouse.add_item", product.ID, product.InStockQuantity, reqErr)
		return models.CreateResponse[models.Product]{Success: false, ErrorReason: &reqErr.Reason}, nil
	}
	if err != nil {
		recordSpanError(span, err)
		s.logger.Error("Failed to add product", zap.String("name", product.Name), zap.Error(err))
		return models.CreateResponse[models.Product]{}, err
	}

	span.SetAttributes(attribute.Int64("product.id", product.ID), attribute.String("warehouse.result", "success"))
	s.publish(movement)
	return models.CreateResponse[models.Product]{Success: true, Model: &product}, nil
}

func (s *WarehouseService) insertProduct(product *models.Product) (*models.StockMovement, error) {
	if err := s.checkQuantity(product.InStockQuantity); err != nil {
		return nil, err
	}
	if err := s.validate.Var(strings.TrimSpace(product.Name), "required"); err != nil {
		return nil, newRequestError(models.ErrorReasonInvalidRequest, ErrMsgEmptyName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	name := strings.TrimSpace(product.Name)
	matching := 0
	for _, p := range existing {
		if strings.TrimSpace(p.Name) == name {
			matching++
		}
	}
	if matching > 0 {
		product.Name += strconv.Itoa(matching)
	}
	product.ReservedQuantity = 0

	if err := s.repo.Insert(product); err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}
	return s.record(newMovement(models.MovementCreate, product.InStockQuantity, product)), nil
}

type quantityRule func(product *models.Product, quantity int) error

func (s *WarehouseService) updateQuantities(ctx context.Context, op string, kind models.MovementKind, request models.UpdateQuantityRequest, rule quantityRule) (models.UpdateResponse, error) {
	_, span := s.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.Int64("product.id", request.ID),
		attribute.Int("order.quantity", request.Quantity),
	))
	defer span.End()

	movement, err := s.applyRule(kind, request, rule)

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		s.reject(span, op, request.ID, request.Quantity, reqErr)
		return models.UpdateFailed(reqErr.Reason), nil
	}
	if err != nil {
		recordSpanError(span, err)
		s.logger.Error("Failed to update product quantities",
			zap.String("operation", op),
			zap.Int64("product_id", request.ID),
			zap.Error(err),
		)
		return models.UpdateResponse{}, err
	}

	span.SetAttributes(attribute.String("warehouse.result", "success"))
	s.publish(movement)
	return models.UpdateSucceeded(), nil
}

func (s *WarehouseService) applyRule(kind models.MovementKind, request models.UpdateQuantityRequest, rule quantityRule) (*models.StockMovement, error) {
	if err := s.checkQuantity(request.Quantity); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.getProduct(request.ID)
	if err != nil {
		return nil, err
	}
	if err := rule(product, request.Quantity); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateQuantities(product); err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", product.ID, err)
	}
	return s.record(newMovement(kind, request.Quantity, product)), nil
}

func (s *WarehouseService) getProduct(id int64) (*models.Product, error) {
	product, err := s.repo.Get(id)
	if errors.Is(err, repositories.ErrProductNotFound) {
		return nil, newRequestError(models.ErrorReasonInvalidRequest, ErrMsgProductNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return product, nil
}

func (s *WarehouseService) checkQuantity(quantity int) error {
	if err := s.validate.Var(quantity, "gte=0"); err != nil {
		return newRequestError(models.ErrorReasonQuantityInvalid, ErrMsgNegativeQuantity)
	}
	return nil
}

// record appends movement to the ledger and returns it, or nil when the
// ledger write failed. Callers hold mu. Failures are logged only; the
// quantities are already committed.
func (s *WarehouseService) record(movement models.StockMovement) *models.StockMovement {
	if err := s.movements.Create(&movement); err != nil {
		s.logger.Warn("Failed to record stock movement",
			zap.Int64("product_id", movement.ProductID),
			zap.String("kind", string(movement.Kind)),
			zap.Error(err),
		)
		return nil
	}
	return &movement
}

// publish sends a recorded movement to the event publisher.
func (s *WarehouseService) publish(movement *models.StockMovement) {
	if movement == nil {
		return
	}
	if err := s.publisher.Publish(events.NewStockEvent(*movement)); err != nil {
		s.logger.Warn("Failed to publish stock event",
			zap.Int64("product_id", movement.ProductID),
			zap.String("kind", string(movement.Kind)),
			zap.Error(err),
		)
	}
}

func (s *WarehouseService) reject(span trace.Span, op string, id int64, quantity int, reqErr *RequestError) {
	span.SetAttributes(
		attribute.String("warehouse.result", "rejected"),
		attribute.String("warehouse.error_reason", string(reqErr.Reason)),
	)
	s.logger.Info("Warehouse request rejected",
		zap.String("operation", op),
		zap.Int64("product_id", id),
		zap.Int("quantity", quantity),
		zap.String("reason", string(reqErr.Reason)),
		zap.String("message", reqErr.Message),
	)
}

func reserveProduct(product *models.Product, quantity int) error {
	// Same as InStock > Reserved+quantity, compared against the headroom so
	// the sum cannot overflow.
	if quantity >= product.InStockQuantity-product.ReservedQuantity {
		return newRequestErrorf(models.ErrorReasonNotEnoughQuantity, "Not enough of product:%d to reserve.", product.ID)
	}
	product.ReservedQuantity += quantity
	return nil
}

func shipProduct(product *models.Product, quantity int) error {
	if !hasStock(*product, quantity) || product.ReservedQuantity-quantity < 0 {
		return newRequestErrorf(models.ErrorReasonNotEnoughQuantity, "Not enough of product:%d to ship.", product.ID)
	}
	product.ReservedQuantity -= quantity
	product.InStockQuantity -= quantity
	return nil
}

func restockProduct(product *models.Product, quantity int) error {
	if quantity > math.MaxInt-product.InStockQuantity {
		return newRequestErrorf(models.ErrorReasonQuantityInvalid, "Restocking product:%d by %d exceeds the maximum quantity.", product.ID, quantity)
	}
	product.InStockQuantity += quantity
	return nil
}

// hasStock reports whether the stock is strictly greater than quantity.
func hasStock(product models.Product, quantity int) bool {
	return product.InStockQuantity > quantity
}

func isInStock(product models.Product) bool {
	return hasStock(product, product.ReservedQuantity) && product.Available() > 0
}

func newMovement(kind models.MovementKind, quantity int, product *models.Product) models.StockMovement {
	return models.StockMovement{
		ProductID:        product.ID,
		Kind:             kind,
		Quantity:         quantity,
		InStockQuantity:  product.InStockQuantity,
		ReservedQuantity: product.ReservedQuantity,
		CreatedAt:        time.Now(),
	}
}

func recordSpanError(span trace.Span, err error) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		span.SetAttributes(attribute.String("warehouse.error_reason", string(reqErr.Reason)))
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
