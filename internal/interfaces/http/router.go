package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/pos-pro/internal/application/auth"
	"github.com/tu-usuario/pos-pro/internal/application/purchasing"
	"github.com/tu-usuario/pos-pro/internal/application/sales"
	"github.com/tu-usuario/pos-pro/internal/application/stock"
	"github.com/tu-usuario/pos-pro/internal/application/transfers"
	"github.com/tu-usuario/pos-pro/internal/application/usecase"
	"github.com/tu-usuario/pos-pro/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CompanyUC  *usecase.CompanyUseCase
	OutletUC   *usecase.OutletUseCase
	ProductUC  *usecase.ProductUseCase
	Ledger     *stock.LedgerService
	SettleSale *sales.SettleSaleUseCase
	Receiving  *purchasing.ReceivingUseCase
	TransferUC *transfers.TransferUseCase
	AuthUC     *auth.AuthUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Companies (público por ahora; se puede proteger con AuthMiddleware(deps.JWTSecret))
	companies := api.Group("/companies")
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Get("/", companyHandler.List)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Outlets (protegido; crear solo admin)
	outlets := protected.Group("/outlets")
	outletHandler := NewOutletHandler(deps.OutletUC)
	outlets.Post("/", RequireRole(), outletHandler.Create)
	outlets.Get("/", outletHandler.List)
	outlets.Get("/:id", outletHandler.GetByID)

	// Products y presentaciones (protegido; escritura admin o bodeguero)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", RequireRole(entity.RoleBodeguero), productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", RequireRole(entity.RoleBodeguero), productHandler.Update)
	products.Post("/:id/units", RequireRole(entity.RoleBodeguero), productHandler.CreateUnit)
	products.Get("/:id/units", productHandler.ListUnits)

	// Stock: ajustes manuales, niveles y journal (protegido)
	stockGroup := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.Ledger)
	stockGroup.Post("/adjustments", RequireRole(entity.RoleBodeguero), stockHandler.Adjust)
	stockGroup.Get("/levels", stockHandler.GetLevel)
	stockGroup.Get("/movements", stockHandler.ListMovements)

	// Sales (protegido; liquidan cajeros y admin)
	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SettleSale)
	salesGroup.Post("/", RequireRole(entity.RoleCajero), saleHandler.Create)
	salesGroup.Get("/:id", saleHandler.GetByID)

	// Purchases (protegido; bodeguero y admin)
	purchases := protected.Group("/purchases")
	purchaseHandler := NewPurchaseHandler(deps.Receiving)
	purchases.Post("/", RequireRole(entity.RoleBodeguero), purchaseHandler.Create)
	purchases.Get("/:id", purchaseHandler.GetByID)
	purchases.Put("/:id/status", RequireRole(entity.RoleBodeguero), purchaseHandler.ChangeStatus)

	// Transfers (protegido; bodeguero y admin)
	transfersGroup := protected.Group("/transfers")
	transferHandler := NewTransferHandler(deps.TransferUC)
	transfersGroup.Post("/", RequireRole(entity.RoleBodeguero), transferHandler.Create)
	transfersGroup.Get("/:id", transferHandler.GetByID)
	transfersGroup.Post("/:id/approve", RequireRole(entity.RoleBodeguero), transferHandler.Approve)
}
