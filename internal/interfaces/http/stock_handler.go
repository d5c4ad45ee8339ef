package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-pro/internal/application/dto"
	"github.com/tu-usuario/pos-pro/internal/application/stock"
	"github.com/tu-usuario/pos-pro/internal/domain"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
)

// StockHandler maneja ajustes manuales, consulta de niveles y el historial
// de movimientos (protegido).
type StockHandler struct {
	ledger *stock.LedgerService
}

// NewStockHandler construye el handler.
func NewStockHandler(ledger *stock.LedgerService) *StockHandler {
	return &StockHandler{ledger: ledger}
}

// Adjust godoc
// @Summary      Ajuste manual de stock
// @Description  direction "increase" suma, "decrease" resta (condicional: falla con 409 si el stock no alcanza).
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "product_id, outlet_id, direction, quantity > 0"
// @Success      200   {object}  dto.StockLevelResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/adjustments [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	input := stock.AdjustInput{
		CompanyID: companyID,
		ProductID: in.ProductID,
		OutletID:  in.OutletID,
		Quantity:  in.Quantity,
		Kind:      entity.MovementKindAdjustment,
		Reference: entity.ManualReference(),
		UserID:    userID,
		Note:      in.Note,
	}

	var after decimal.Decimal
	var err error
	switch in.Direction {
	case "increase":
		after, err = h.ledger.Increase(c.Context(), input)
	case "decrease":
		after, err = h.ledger.Decrease(c.Context(), input)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "direction debe ser increase o decrease"})
	}
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(dto.StockLevelResponse{ProductID: in.ProductID, OutletID: in.OutletID, Quantity: after})
}

// GetLevel godoc
// @Summary      Cantidad en mano de un producto en una sucursal
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true  "ID del producto"
// @Param        outlet_id   query  string  true  "ID de la sucursal"
// @Success      200  {object}  dto.StockLevelResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/levels [get]
func (h *StockHandler) GetLevel(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	productID := c.Query("product_id")
	outletID := c.Query("outlet_id")
	if productID == "" || outletID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id y outlet_id son requeridos"})
	}
	qty, err := h.ledger.CurrentQuantity(c.Context(), companyID, productID, outletID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(dto.StockLevelResponse{ProductID: productID, OutletID: outletID, Quantity: qty})
}

// ListMovements godoc
// @Summary      Historial de movimientos de un producto en una sucursal
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true   "ID del producto"
// @Param        outlet_id   query  string  true   "ID de la sucursal"
// @Param        from        query  string  false  "Fecha inicial (RFC3339)"
// @Param        to          query  string  false  "Fecha final (RFC3339)"
// @Param        limit       query  int     false  "Límite"  default(50)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.StockMovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	productID := c.Query("product_id")
	outletID := c.Query("outlet_id")
	if productID == "" || outletID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id y outlet_id son requeridos"})
	}

	var from, to *time.Time
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
		}
		to = &t
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	movements, err := h.ledger.MovementHistory(c.Context(), companyID, productID, outletID, from, to, limit, offset)
	if err != nil {
		return h.mapError(c, err)
	}

	out := make([]dto.StockMovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.StockMovementResponse{
			ID:             m.ID,
			ProductID:      m.ProductID,
			OutletID:       m.OutletID,
			Kind:           m.Kind,
			Delta:          m.Delta,
			QuantityBefore: m.QuantityBefore,
			QuantityAfter:  m.QuantityAfter,
			ReferenceType:  m.Reference.ReferenceType(),
			ReferenceID:    m.Reference.ReferenceID(),
			Note:           m.Note,
			CreatedAt:      m.CreatedAt.Format(time.RFC3339),
			CreatedBy:      m.CreatedBy,
		})
	}
	return c.JSON(out)
}

func (h *StockHandler) mapError(c *fiber.Ctx, err error) error {
	switch err {
	case domain.ErrInvalidInput, domain.ErrInvalidQuantity:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case domain.ErrNotFound:
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto o sucursal no encontrada"})
	case domain.ErrForbidden:
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado al recurso"})
	case domain.ErrInsufficientStock:
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
