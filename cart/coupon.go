package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"kourso/db"
	"kourso/engine"
	"kourso/models"
	"kourso/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

type couponRequest struct {
	Code      string  `json:"code"`
	CartTotal float64 `json:"cartTotal"` // current subtotal, for min spend rules
}

// ApplyCoupon validates a code against the coupon collection and, when
// it passes, returns the typed coupon for the engine to apply. Every
// rejection carries a human-readable message the frontend shows as-is.
func ApplyCoupon(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req couponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "No coupon provided")
		return
	}

	var coupon models.CouponDoc
	err := db.CouponCollection.FindOne(ctx, bson.M{"code": code}).Decode(&coupon)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Coupon not found")
		return
	}

	// validate
	if !coupon.Active {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, "Coupon inactive")
		return
	}
	if time.Now().After(coupon.ExpiresAt) {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, "Coupon expired")
		return
	}
	if coupon.MinSpend > 0 && req.CartTotal < coupon.MinSpend {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, "Cart total is below the coupon's minimum spend")
		return
	}

	utils.RespondWithData(w, http.StatusOK, map[string]any{
		"coupon": engine.Coupon{
			Code:  coupon.Code,
			Type:  coupon.Type,
			Value: coupon.Value,
		},
	})
}
