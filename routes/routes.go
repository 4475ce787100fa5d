package routes

import (
	"kourso/auth"
	"kourso/cart"
	"kourso/middleware"
	"kourso/ratelim"

	"github.com/julienschmidt/httprouter"
)

func AddAuthRoutes(router *httprouter.Router) {
	router.POST("/api/auth/register", ratelim.RateLimit(auth.Register))
	router.POST("/api/auth/login", ratelim.RateLimit(auth.Login))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.LogoutUser))
	router.POST("/api/auth/token/refresh", ratelim.RateLimit(middleware.Authenticate(auth.RefreshToken)))
}

func AddCartRoutes(router *httprouter.Router) {
	router.GET("/api/cart", middleware.Authenticate(cart.GetCart))
	router.POST("/api/cart", middleware.Authenticate(cart.SaveCart))
	// Guests validate coupons too; auth only changes whose subtotal is sent.
	router.POST("/api/cart/apply-coupon", ratelim.RateLimit(middleware.OptionalAuth(cart.ApplyCoupon)))
	router.POST("/api/cart/checkout", ratelim.RateLimit(middleware.Authenticate(cart.Checkout)))
	router.GET("/api/orders/:orderid/receipt", middleware.Authenticate(cart.Receipt))
}
