package cart

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"kourso/db"
	"kourso/engine"
	"kourso/models"
	"kourso/mq"
	"kourso/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// Checkout re-validates the stored cart server-side, freezes the price
// breakdown into an order and clears the cart. The engine's Validate is
// advisory on the client; this is the authoritative pass.
func Checkout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var payload struct {
		Address        string                `json:"address"`
		PaymentMethod  string                `json:"paymentMethod"`
		ShippingMethod engine.ShippingMethod `json:"shippingMethod"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid order payload")
		return
	}
	if payload.ShippingMethod == "" {
		payload.ShippingMethod = engine.ShippingStandard
	}
	if !engine.ValidShippingMethod(payload.ShippingMethod) {
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown shipping method")
		return
	}

	var doc models.CartDoc
	if err := db.CartCollection.FindOne(ctx, bson.M{"userId": userID}).Decode(&doc); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	if v := engine.ValidateItems(doc.Items); !v.Valid {
		utils.RespondWithJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"success": false,
			"message": "Cart failed validation",
			"reasons": v.Reasons,
		})
		return
	}

	order := models.Order{
		OrderID:        "ORD" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12]),
		UserID:         userID,
		Items:          doc.Items,
		Coupon:         doc.Coupon,
		ShippingMethod: payload.ShippingMethod,
		Summary:        engine.Calculate(doc.Items, doc.Coupon, payload.ShippingMethod),
		Address:        payload.Address,
		PaymentMethod:  payload.PaymentMethod,
		Status:         "pending",
		CreatedAt:      time.Now(),
	}

	if _, err := db.OrderCollection.InsertOne(ctx, order); err != nil {
		log.Println("Checkout InsertOne error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Order creation failed")
		return
	}

	if _, err := db.CartCollection.DeleteMany(ctx, bson.M{"userId": userID}); err != nil {
		log.Println("Checkout cart cleanup error:", err)
	}

	mq.Emit(ctx, "order-placed", mq.Event{EntityType: "order", Method: "POST", EntityId: order.OrderID, UserId: userID})

	utils.RespondWithData(w, http.StatusCreated, order)
}
