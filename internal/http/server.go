package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/service"
)

// Services зависимости обработчиков
type Services struct {
	Products  *service.ProductService
	Carts     *service.CartService
	Purchases *service.PurchaseEngine
	Users     *service.UserService
	Tickets   *service.TicketService
	Export    *service.CatalogExporter
}

type Options struct {
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	CORSOrigins []string
	CookieName  string
	TokenTTL    time.Duration
}

type Server struct {
	engine *gin.Engine
	svc    Services
	opts   Options
}

func NewServer(svc Services, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.CookieName == "" {
		opts.CookieName = "token"
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = time.Hour
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	r := gin.New()
	// отмена запроса доходит до хранилища через *gin.Context
	r.ContextWithFallback = true
	r.Use(gin.Recovery(), requestLogger(opts.Logger), instrument(opts.Metrics))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: !containsWildcard(opts.CORSOrigins),
		MaxAge:           12 * time.Hour,
	}))

	s := &Server{engine: r, svc: svc, opts: opts}
	s.registerRoutes()
	return s
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	s.engine.GET("/metrics", gin.WrapH(s.opts.Metrics.Handler()))
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := authenticate(s.svc.Users, s.opts.CookieName)
	admin := requireRoles(domain.RoleAdmin)
	user := requireRoles(domain.RoleUser)
	anyone := requireRoles(domain.RoleUser, domain.RoleAdmin)
	owner := canAccessCart(s.svc.Carts)

	v1 := s.engine.Group("/api/v1")
	{
		sessions := v1.Group("/sessions")
		sessions.POST("/register", s.register)
		sessions.POST("/login", s.login)
		sessions.POST("/logout", s.logout)
		sessions.GET("/current", auth, s.current)

		users := v1.Group("/users", auth, admin)
		users.GET("", s.listUsers)
		users.GET(":uid", s.getUser)
		users.PUT(":uid", s.updateUser)
		users.DELETE(":uid", s.deleteUser)

		products := v1.Group("/products")
		products.GET("", s.listProducts)
		products.GET("/export", auth, admin, s.exportProducts)
		products.GET(":pid", s.getProduct)
		products.POST("", auth, admin, s.createProduct)
		products.PUT(":pid", auth, admin, s.updateProduct)
		products.DELETE(":pid", auth, admin, s.deleteProduct)

		carts := v1.Group("/carts", auth)
		carts.POST("", user, s.createCart)
		carts.GET(":cid", anyone, owner, s.getCart)
		carts.PUT(":cid", user, owner, s.replaceCart)
		carts.DELETE(":cid", user, owner, s.clearCart)
		carts.POST(":cid/product/:pid", user, owner, s.addToCart)
		carts.PUT(":cid/product/:pid", user, owner, s.setQuantity)
		carts.DELETE(":cid/product/:pid", user, owner, s.removeFromCart)
		carts.POST(":cid/purchase", user, owner, s.purchase)

		tickets := v1.Group("/tickets", auth, anyone)
		tickets.GET("", s.listTickets)
		tickets.GET(":code", s.getTicket)
	}
}
