package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"giftcode-market/internal/domain/user"
	"giftcode-market/internal/handler/api"
	"giftcode-market/internal/handler/middleware"
	"giftcode-market/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	authHandler *api.AuthHandler,
	orderHandler *api.OrderHandler,
	codeHandler *api.CodeHandler,
	couponHandler *api.CouponHandler,
	storeHandler *api.StoreHandler,
	adminHandler *api.AdminHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, authHandler, orderHandler, codeHandler, couponHandler, storeHandler, adminHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	authHandler *api.AuthHandler,
	orderHandler *api.OrderHandler,
	codeHandler *api.CodeHandler,
	couponHandler *api.CouponHandler,
	storeHandler *api.StoreHandler,
	adminHandler *api.AdminHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		auth := apiGroup.Group("/auth")
		{
			addRoutes(auth, []route{
				{Method: http.MethodPost, Path: "/login", Handler: authHandler.Login},
			})

			authRequired := auth.Group("")
			authRequired.Use(authMiddleware.RequireAuth())
			addRoutes(authRequired, []route{
				{Method: http.MethodPost, Path: "/logout", Handler: authHandler.Logout},
				{Method: http.MethodGet, Path: "/me", Handler: authHandler.Me},
			})
		}

		orders := apiGroup.Group("/orders")
		orders.Use(authMiddleware.RequireAuth())
		{
			addRoutes(orders, []route{
				{Method: http.MethodPost, Path: "", Handler: orderHandler.CreateOrder},
				{Method: http.MethodGet, Path: "", Handler: orderHandler.ListMyOrders},
				{Method: http.MethodGet, Path: "/:id", Handler: orderHandler.GetOrder},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: orderHandler.CancelOrder},
				{Method: http.MethodPost, Path: "/:id/payment", Handler: orderHandler.SubmitPayment},
				{Method: http.MethodGet, Path: "/:id/codes", Handler: orderHandler.ListOrderCodes},
			})
		}

		cart := apiGroup.Group("/cart")
		cart.Use(authMiddleware.RequireAuth())
		{
			addRoutes(cart, []route{
				{Method: http.MethodPost, Path: "/validate", Handler: orderHandler.ValidateCart},
			})
		}

		codes := apiGroup.Group("/codes")
		codes.Use(authMiddleware.RequireAuth())
		{
			addRoutes(codes, []route{
				{Method: http.MethodGet, Path: "", Handler: codeHandler.ListMine},
				{Method: http.MethodPost, Path: "/:id/viewed", Handler: codeHandler.MarkViewed},
			})
		}

		coupons := apiGroup.Group("/coupons")
		coupons.Use(authMiddleware.RequireAuth())
		{
			addRoutes(coupons, []route{
				{Method: http.MethodPost, Path: "/validate", Handler: couponHandler.Validate},
			})
		}

		// Availability is public so product pages can poll it without a session
		addRoutes(apiGroup.Group("/products"), []route{
			{Method: http.MethodGet, Path: "/:id/availability", Handler: codeHandler.Availability},
		})

		// Opening a store only needs a session; the seller role is granted on success
		stores := apiGroup.Group("/stores")
		stores.Use(authMiddleware.RequireAuth())
		{
			addRoutes(stores, []route{
				{Method: http.MethodPost, Path: "", Handler: storeHandler.CreateStore},
			})
		}

		store := apiGroup.Group("/store")
		store.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRoleAtLeast(user.RoleSeller))
		{
			addRoutes(store, []route{
				{Method: http.MethodGet, Path: "/orders", Handler: storeHandler.ListStoreOrders},
				{Method: http.MethodGet, Path: "/deliveries", Handler: storeHandler.ListDeliveries},
				{Method: http.MethodPost, Path: "/products", Handler: storeHandler.CreateProduct},
				{Method: http.MethodPut, Path: "/products/:id", Handler: storeHandler.UpdateProduct},
				{Method: http.MethodPatch, Path: "/products/:id/stock", Handler: storeHandler.SetStock},
				{Method: http.MethodPost, Path: "/products/:id/codes", Handler: storeHandler.AppendCodes},
				{Method: http.MethodPost, Path: "/order-items/:id/fulfill", Handler: storeHandler.AcknowledgeFulfillment},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRoleAtLeast(user.RoleAdmin))
		{
			addRoutes(admin, []route{
				{Method: http.MethodGet, Path: "/orders/pending-verification", Handler: adminHandler.ListPendingVerification},
				{Method: http.MethodPost, Path: "/orders/:id/payment-review", Handler: adminHandler.ReviewPayment},
				{Method: http.MethodPost, Path: "/stores/:id/review", Handler: adminHandler.ReviewStore},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
