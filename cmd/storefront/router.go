package main

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/MikeMC777/quickcart/internal/cart"
	"github.com/MikeMC777/quickcart/internal/httpx"
	"github.com/MikeMC777/quickcart/internal/invoice"
	"github.com/MikeMC777/quickcart/internal/media"
	"github.com/MikeMC777/quickcart/internal/order"
	"github.com/MikeMC777/quickcart/internal/product"
	"github.com/MikeMC777/quickcart/internal/session"
	"github.com/MikeMC777/quickcart/internal/user"
	"github.com/MikeMC777/quickcart/internal/wishlist"
	"github.com/MikeMC777/quickcart/web"
)

// deps is everything the routes need, built once in main.
type deps struct {
	Products product.Repository
	Carts    *cart.Service
	Orders   *order.Service
	Invoices *invoice.Service
	Wishlist wishlist.Repository
	Users    *user.Service
	Sessions *session.Manager
	Media    *media.Resolver
	Log      zerolog.Logger

	// AllowedHosts is enforced unless Debug is set.
	AllowedHosts []string
	Debug        bool
}

func newRouter(d deps) (*gin.Engine, error) {
	tmpl, err := loadTemplates(d.Media)
	if err != nil {
		return nil, err
	}
	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(d.Log))
	if !d.Debug {
		r.Use(httpx.AllowedHosts(d.AllowedHosts))
	}
	r.Use(httpx.Authenticate(d.Sessions))
	r.SetHTMLTemplate(tmpl)
	r.NoRoute(notFound)

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.StaticFileFS("/static/style.css", "style.css", http.FS(static))

	r.GET("/", homeHandler(d.Products))
	r.GET("/product/:id/", productDetailHandler(d.Products))
	r.GET("/thankyou/", thankYouHandler())

	r.GET("/register/", registerPageHandler())
	r.POST("/register/", registerHandler(d.Users))
	r.GET("/login/", loginPageHandler())
	r.POST("/login/", loginHandler(d.Users, d.Sessions))
	r.GET("/logout/", logoutHandler(d.Sessions))
	r.POST("/logout/", logoutHandler(d.Sessions))

	auth := r.Group("/", httpx.RequireLogin())
	{
		back := func(c *gin.Context) { redirect(c, "/cart/") }

		auth.GET("/cart/", cartHandler(d.Carts))
		auth.POST("/add_to_cart/:productId/", addToCartHandler(d.Products, d.Carts))
		auth.POST("/update_quantity/:id/", updateQuantityHandler(d.Carts))
		auth.GET("/update_quantity/:id/", back)
		auth.POST("/remove_from_cart/:id/", removeFromCartHandler(d.Carts))

		auth.GET("/checkout/", checkoutHandler(d.Carts))
		auth.POST("/place_order/", placeOrderHandler(d.Orders))
		auth.GET("/place_order/", back)
		auth.GET("/orders/", ordersHandler(d.Orders))
		auth.GET("/bill/:orderId/", billHandler(d.Orders))
		auth.GET("/invoice/:orderId/", invoiceHandler(d.Invoices))

		auth.GET("/wishlist/", wishlistHandler(d.Wishlist))
		auth.POST("/wishlist/", wishlistHandler(d.Wishlist))
		auth.GET("/add_to_wishlist/:productId/", addToWishlistHandler(d.Wishlist))
		auth.POST("/add_to_wishlist/:productId/", addToWishlistHandler(d.Wishlist))
		auth.GET("/remove_from_wishlist/:id/", removeFromWishlistHandler(d.Wishlist))
		auth.POST("/remove_from_wishlist/:id/", removeFromWishlistHandler(d.Wishlist))
	}
	return r, nil
}
