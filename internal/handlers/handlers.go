package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"serrano/api/internal/apperr"
	"serrano/api/internal/cache"
	"serrano/api/internal/config"
	"serrano/api/internal/mail"
	"serrano/api/internal/middleware"
	"serrano/api/internal/models"
	"serrano/api/internal/repository"
	"serrano/api/internal/security"
	"serrano/api/internal/service"
	"serrano/api/internal/storage"
)

type HandlerSet struct {
	log        zerolog.Logger
	cfg        *config.AppConfig
	auth       *service.AuthService
	activation *service.ActivationService
	upload     *service.UploadService
	payment    *service.PaymentService
	db         *pgxpool.Pool
	cache      *redis.Client
	store      *storage.ObjectStore
	users      *repository.UserRepository
	shops      *repository.ShopRepository
	admins     *repository.AdminRepository
	products   *repository.ProductRepository
	orders     *repository.OrderRepository
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cacheClient *redis.Client, store *storage.ObjectStore, mailer *mail.Client, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	shopRepo := repository.NewShopRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	burner := cache.NewTokenBurner(cacheClient)

	auth := service.NewAuthService(userRepo, shopRepo, adminRepo, cfg, log)
	activation := service.NewActivationService(userRepo, shopRepo, adminRepo, mailer, burner, cfg, log)
	upload := service.NewUploadService(store, cacheClient, cfg, log)
	payment := service.NewPaymentService(paymentRepo, cfg.Payment, log)

	return HandlerSet{
		log:        log,
		cfg:        cfg,
		auth:       auth,
		activation: activation,
		upload:     upload,
		payment:    payment,
		db:         db,
		cache:      cacheClient,
		store:      store,
		users:      userRepo,
		shops:      shopRepo,
		admins:     adminRepo,
		products:   productRepo,
		orders:     orderRepo,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v2 := router.Group("/v2")

	authUser := middleware.AuthUser(h.cfg, h.users)
	authSeller := middleware.AuthSeller(h.cfg, h.shops)
	authAdmin := middleware.AuthAdmin(h.cfg, h.admins)

	user := v2.Group("/user")
	{
		user.POST("/login-user", h.LoginUser)
		user.GET("/logout", h.LogoutUser)
		user.GET("/getuser", authUser, h.GetUser)
		user.PUT("/update-user-info", authUser, h.UpdateUserInfo)
		user.PUT("/profile-picture", authUser, h.UpdateUserAvatar)
		user.PUT("/update-user-addresses", authUser, h.UpdateUserAddresses)
		user.DELETE("/delete-user-address/:id", authUser, h.DeleteUserAddress)
		user.PUT("/update-user-password", authUser, h.UpdateUserPassword)
		user.POST("/forgot-password", h.ForgotUserPassword)
		user.POST("/reset-password", h.ResetUserPassword)
		user.GET("/user-info/:id", h.UserInfo)
		user.GET("/admin-all-users", authAdmin, h.AdminListUsers)
		user.DELETE("/delete-user/:id", authAdmin, h.AdminDeleteUser)
	}

	shop := v2.Group("/shop")
	{
		shop.POST("/create-shop", h.CreateShop)
		shop.POST("/activation", h.ActivateShop)
		shop.POST("/login-shop", h.LoginShop)
		shop.GET("/getSeller", authSeller, h.GetSeller)
		shop.GET("/logout", h.LogoutShop)
		shop.GET("/get-shop-info/:id", h.ShopInfo)
		shop.PUT("/update-shop-avatar", authSeller, h.UpdateShopAvatar)
		shop.PUT("/update-seller-info", authSeller, h.UpdateShopInfo)
		shop.PUT("/update-payment-methods", authSeller, h.UpdateWithdrawMethod)
		shop.DELETE("/delete-withdraw-method", authSeller, h.DeleteWithdrawMethod)
		shop.PUT("/change-password", authSeller, h.UpdateShopPassword)
		shop.POST("/forgot-password", h.ForgotShopPassword)
		shop.POST("/reset-password", h.ResetShopPassword)
		shop.GET("/orders", authSeller, h.ShopOrders)
		shop.GET("/shop-products", authSeller, h.ShopProducts)
		shop.PUT("/products/:id", authSeller, h.RestockProduct)
		shop.GET("/admin-all-sellers", authAdmin, h.AdminListShops)
		shop.DELETE("/delete-seller/:id", authAdmin, h.AdminDeleteShop)
		shop.PUT("/update-shop-status/:id", authAdmin, h.AdminUpdateShopStatus)
	}

	admin := v2.Group("/admin")
	{
		admin.POST("/create-admin", h.CreateAdmin)
		admin.POST("/login-admin", h.LoginAdmin)
		admin.GET("/logout", h.LogoutAdmin)
		admin.PUT("/update-admin-avatar", authAdmin, h.UpdateAdminAvatar)
		admin.PUT("/update-admin-profile", authAdmin, h.UpdateAdminProfile)
		admin.PUT("/change-password", authAdmin, h.UpdateAdminPassword)
		admin.POST("/forgot-password", h.ForgotAdminPassword)
		admin.POST("/reset-password", h.ResetAdminPassword)
		admin.POST("/create-product", authAdmin, h.CreateProduct)
		admin.GET("/admin-all-products", authAdmin, h.AdminListProducts)
	}

	payment := v2.Group("/payment")
	{
		payment.POST("/checkout", h.Checkout)
		payment.POST("/paymentverification", h.VerifyPayment)
		payment.GET("/getkey", h.PaymentKey)
	}

	product := v2.Group("/product")
	{
		product.GET("", h.ListProducts)
		product.GET("/:id", h.ProductInfo)
	}

	order := v2.Group("/order")
	{
		order.POST("/create-order", authUser, h.CreateOrder)
		order.GET("/my-orders", authUser, h.MyOrders)
	}
}

// respondError maps a service error onto its HTTP status. Internal causes
// are logged and collapsed to a generic message.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(apperr.Status(err), gin.H{"error": apperr.Message(err)})
}

func (h HandlerSet) setSessionCookie(c *gin.Context, role models.Role, token string) {
	http.SetCookie(c.Writer, security.SessionCookie(h.cfg.Security, role, token))
}

func (h HandlerSet) clearSessionCookie(c *gin.Context, role models.Role) {
	http.SetCookie(c.Writer, security.ClearedSessionCookie(h.cfg.Security, role))
}
