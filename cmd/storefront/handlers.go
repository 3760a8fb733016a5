package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/MikeMC777/quickcart/internal/cart"
	"github.com/MikeMC777/quickcart/internal/httpx"
	"github.com/MikeMC777/quickcart/internal/invoice"
	"github.com/MikeMC777/quickcart/internal/order"
	"github.com/MikeMC777/quickcart/internal/product"
	"github.com/MikeMC777/quickcart/internal/session"
	"github.com/MikeMC777/quickcart/internal/user"
	"github.com/MikeMC777/quickcart/internal/wishlist"
)

const checkoutForm = "checkout"

// ---------- catalog ----------

func homeHandler(products product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := product.Query{
			Q:            c.Query("q"),
			TrendingOnly: c.Query("trending") == "1",
		}
		items, err := products.List(c.Request.Context(), q)
		if err != nil {
			serverError(c, err)
			return
		}
		render(c, http.StatusOK, "home.html", gin.H{
			"products":   items,
			"query":      strings.TrimSpace(q.Q),
			"isTrending": q.TrendingOnly,
		})
	}
}

func productDetailHandler(products product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		p, err := products.GetByID(c.Request.Context(), id)
		if errors.Is(err, product.ErrNotFound) {
			notFound(c)
			return
		}
		if err != nil {
			serverError(c, err)
			return
		}
		render(c, http.StatusOK, "product_detail.html", gin.H{"title": p.Name, "product": p})
	}
}

// ---------- cart ----------

func cartHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, total, err := carts.Contents(c.Request.Context(), currentUserID(c))
		if err != nil {
			serverError(c, err)
			return
		}
		render(c, http.StatusOK, "cart.html", gin.H{"title": "Cart", "items": items, "total": total})
	}
}

func addToCartHandler(products product.Repository, carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "productId")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		p, err := products.GetByID(ctx, id)
		if errors.Is(err, product.ErrNotFound) {
			notFound(c)
			return
		}
		if err != nil {
			serverError(c, err)
			return
		}
		if err := carts.AddItem(ctx, currentUserID(c), p.ID); err != nil {
			serverError(c, err)
			return
		}
		httpx.AddFlash(c, httpx.Success, p.Name+" added to cart!")
		redirect(c, "/cart/")
	}
}

func updateQuantityHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		qty, err := strconv.Atoi(strings.TrimSpace(c.DefaultPostForm("quantity", "1")))
		if err != nil {
			qty = 1
		}
		err = carts.SetQuantity(c.Request.Context(), currentUserID(c), id, qty)
		if errors.Is(err, cart.ErrNotFound) {
			notFound(c)
			return
		}
		if err != nil {
			serverError(c, err)
			return
		}
		redirect(c, "/cart/")
	}
}

func removeFromCartHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		err := carts.RemoveItem(c.Request.Context(), currentUserID(c), id)
		if errors.Is(err, cart.ErrNotFound) {
			notFound(c)
			return
		}
		if err != nil {
			serverError(c, err)
			return
		}
		redirect(c, "/cart/")
	}
}

// ---------- checkout / orders ----------

func checkoutHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, total, err := carts.Contents(c.Request.Context(), currentUserID(c))
		if err != nil {
			serverError(c, err)
			return
		}
		var form order.Recipient
		httpx.LoadForm(c, checkoutForm, &form)
		render(c, http.StatusOK, "checkout.html", gin.H{
			"title": "Checkout",
			"items": items,
			"total": total,
			"form":  form,
		})
	}
}

func placeOrderHandler(orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rcpt order.Recipient
		if err := c.ShouldBindWith(&rcpt, binding.Form); err != nil {
			httpx.Log(c).Debug().Err(err).Msg("bind checkout form")
		}
		o, err := orders.PlaceOrder(c.Request.Context(), currentUserID(c), rcpt)
		switch {
		case errors.Is(err, order.ErrValidation):
			httpx.SaveForm(c, checkoutForm, rcpt)
			httpx.AddFlash(c, httpx.Error, "Please fill in your name, phone and address.")
			redirect(c, "/checkout/")
		case errors.Is(err, order.ErrEmptyCart):
			httpx.AddFlash(c, httpx.Error, "Your cart is empty.")
			redirect(c, "/cart/")
		case err != nil:
			serverError(c, err)
		default:
			httpx.Log(c).Info().Int64("order_id", o.ID).Msg("checkout complete")
			httpx.AddFlash(c, httpx.Success, "Order placed successfully!")
			redirect(c, "/thankyou/")
		}
	}
}

func thankYouHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		render(c, http.StatusOK, "thank_you.html", gin.H{"title": "Thank you"})
	}
}

func ordersHandler(orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := orders.History(c.Request.Context(), currentUserID(c))
		if err != nil {
			serverError(c, err)
			return
		}
		render(c, http.StatusOK, "orders.html", gin.H{"title": "Orders", "orders": list})
	}
}

func billHandler(orders *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "orderId")
		if !ok {
			return
		}
		o, err := orders.Get(c.Request.Context(), id, currentUserID(c))
		if errors.Is(err, order.ErrNotFound) {
			notFound(c)
			return
		}
		if err != nil {
			serverError(c, err)
			return
		}
		render(c, http.StatusOK, "bill.html", gin.H{"title": fmt.Sprintf("Bill for order %d", o.ID), "order": o})
	}
}

func invoiceHandler(invoices *invoice.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "orderId")
		if !ok {
			return
		}
		pdf, err := invoices.Render(c.Request.Context(), id, currentUserID(c))
		switch {
		case errors.Is(err, invoice.ErrUnavailable):
			c.String(http.StatusServiceUnavailable, "PDF feature is currently unavailable.")
		case errors.Is(err, order.ErrNotFound):
			notFound(c)
		case err != nil:
			serverError(c, err)
		default:
			c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", invoice.Filename(id)))
			c.Data(http.StatusOK, "application/pdf", pdf)
		}
	}
}

// ---------- wishlist ----------

func wishlistHandler(wl wishlist.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := wl.List(c.Request.Context(), currentUserID(c))
		if err != nil {
			serverError(c, err)
			return
		}
		render(c, http.StatusOK, "wishlist.html", gin.H{"title": "Wishlist", "items": items})
	}
}

func addToWishlistHandler(wl wishlist.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "productId")
		if !ok {
			return
		}
		err := wl.Add(c.Request.Context(), currentUserID(c), id)
		if errors.Is(err, wishlist.ErrNotFound) {
			notFound(c)
			return
		}
		if err != nil {
			serverError(c, err)
			return
		}
		redirect(c, "/wishlist/")
	}
}

func removeFromWishlistHandler(wl wishlist.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := wl.Remove(c.Request.Context(), currentUserID(c), id); err != nil {
			serverError(c, err)
			return
		}
		redirect(c, "/wishlist/")
	}
}

// ---------- auth ----------

func registerPageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		render(c, http.StatusOK, "register.html", gin.H{"title": "Register"})
	}
}

func registerHandler(users *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, err := users.Register(c.Request.Context(), c.PostForm("username"), c.PostForm("password"))
		switch {
		case errors.Is(err, user.ErrInvalidInput):
			httpx.AddFlash(c, httpx.Error, "Username and password are required.")
			redirect(c, "/register/")
		case errors.Is(err, user.ErrAlreadyExist):
			httpx.AddFlash(c, httpx.Error, "Username already exists.")
			redirect(c, "/register/")
		case err != nil:
			serverError(c, err)
		default:
			redirect(c, "/login/?from_register=1")
		}
	}
}

func loginPageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		render(c, http.StatusOK, "login.html", gin.H{
			"title":        "Login",
			"fromRegister": c.Query("from_register") == "1",
			"next":         httpx.SafeNext(c.Query("next"), ""),
		})
	}
}

func loginHandler(users *user.Service, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		next := httpx.SafeNext(c.PostForm("next"), "")
		u, err := users.Authenticate(c.Request.Context(), c.PostForm("username"), c.PostForm("password"))
		if errors.Is(err, user.ErrInvalidCredentials) {
			httpx.AddFlash(c, httpx.Error, "Invalid username or password")
			to := "/login/"
			if next != "" {
				to += "?next=" + url.QueryEscape(next)
			}
			redirect(c, to)
			return
		}
		if err != nil {
			serverError(c, err)
			return
		}
		if err := sessions.Write(c, session.Identity{UserID: u.ID, Username: u.Username}); err != nil {
			serverError(c, err)
			return
		}
		redirect(c, httpx.SafeNext(next, "/"))
	}
}

func logoutHandler(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions.Clear(c)
		redirect(c, "/")
	}
}
