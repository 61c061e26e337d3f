package handlers

import (
	"context"
	"errors"

	"warehouse/internal/models"
	"warehouse/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// WarehouseHandler handles HTTP requests for the warehouse API.
type WarehouseHandler struct {
	service *services.WarehouseService
	logger  *zap.Logger
}

// NewWarehouseHandler creates a new WarehouseHandler.
func NewWarehouseHandler(service *services.WarehouseService, logger *zap.Logger) *WarehouseHandler {
	return &WarehouseHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the warehouse routes under router.
func (h *WarehouseHandler) RegisterRoutes(router fiber.Router) {
	warehouseRoutes := router.Group("/warehouse")
	warehouseRoutes.Get("/", h.HandleGetInStockProducts)
	warehouseRoutes.Post("/order", h.HandleOrderItem)
	warehouseRoutes.Put("/ship", h.HandleShipItem)
	warehouseRoutes.Put("/restock", h.HandleRestockItem)
	warehouseRoutes.Post("/add", h.HandleAddProduct)
	warehouseRoutes.Get("/:id/movements", h.HandleGetMovements)
	warehouseRoutes.Get("/:id", h.HandleGetProduct)
}

// HandleGetProduct returns a single product. An unknown or malformed ID is a
// 404 and any other failure a 500; both bodies are the message as a JSON string.
func (h *WarehouseHandler) HandleGetProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(services.ErrMsgProductNotFound)
	}

	product, err := h.service.GetProduct(c.UserContext(), int64(id))
	if err != nil {
		return h.lookupFailure(c, err)
	}
	return c.JSON(product)
}

// HandleGetMovements returns the quantity history of a product.
func (h *WarehouseHandler) HandleGetMovements(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(services.ErrMsgProductNotFound)
	}

	movements, err := h.service.GetMovements(c.UserContext(), int64(id))
	if err != nil {
		return h.lookupFailure(c, err)
	}
	return c.JSON(movements)
}

// HandleGetInStockProducts returns every product that has units available.
func (h *WarehouseHandler) HandleGetInStockProducts(c *fiber.Ctx) error {
	products, err := h.service.GetInStockProducts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(products)
}

// HandleOrderItem reserves stock for an order.
func (h *WarehouseHandler) HandleOrderItem(c *fiber.Ctx) error {
	return h.handleUpdate(c, h.service.ProcessOrder)
}

// HandleShipItem ships reserved stock.
func (h *WarehouseHandler) HandleShipItem(c *fiber.Ctx) error {
	return h.handleUpdate(c, h.service.ShipOrder)
}

// HandleRestockItem adds stock to a product.
func (h *WarehouseHandler) HandleRestockItem(c *fiber.Ctx) error {
	return h.handleUpdate(c, h.service.Restock)
}

// HandleAddProduct creates a new product. Rejections are reported in a 200
// CreateResponse with no model.
func (h *WarehouseHandler) HandleAddProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return h.badRequest(c, err)
	}

	resp, err := h.service.AddItem(c.UserContext(), product)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

type updateFunc func(ctx context.Context, request models.UpdateQuantityRequest) (models.UpdateResponse, error)

// handleUpdate decodes an UpdateQuantityRequest and answers with the
// service's UpdateResponse. Store failures go to the app's error handler.
func (h *WarehouseHandler) handleUpdate(c *fiber.Ctx, update updateFunc) error {
	var request models.UpdateQuantityRequest
	if err := c.BodyParser(&request); err != nil {
		return h.badRequest(c, err)
	}

	resp, err := update(c.UserContext(), request)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *WarehouseHandler) lookupFailure(c *fiber.Ctx, err error) error {
	var reqErr *services.RequestError
	if errors.As(err, &reqErr) {
		return c.Status(fiber.StatusNotFound).JSON(reqErr.Message)
	}
	h.logger.Error("Error looking up product", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(err.Error())
}

func (h *WarehouseHandler) badRequest(c *fiber.Ctx, err error) error {
	h.logger.Info("Error parsing request body", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}
