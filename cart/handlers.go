package cart

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"kourso/db"
	"kourso/engine"
	"kourso/models"
	"kourso/mq"
	"kourso/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetCart returns the user's cart as { success, data: { items, coupon } }.
// A user without a cart document gets an empty cart, not an error.
func GetCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var doc models.CartDoc
	err := db.CartCollection.FindOne(ctx, bson.M{"userId": userID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		doc = models.CartDoc{UserID: userID, Items: []engine.LineItem{}}
	} else if err != nil {
		log.Println("GetCart FindOne error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not retrieve cart")
		return
	}

	if doc.Items == nil {
		doc.Items = []engine.LineItem{}
	}

	utils.RespondWithData(w, http.StatusOK, map[string]any{
		"items":  doc.Items,
		"coupon": doc.Coupon,
	})
}

// SaveCart replaces the user's cart wholesale with the posted items and
// coupon. The engine treats this as fire-and-forget, so the handler
// stays simple: validate shape, upsert, emit.
func SaveCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var payload struct {
		Items  []engine.LineItem `json:"items"`
		Coupon *engine.Coupon    `json:"coupon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Println("SaveCart decode error:", err)
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	items := make([]engine.LineItem, 0, len(payload.Items))
	for _, it := range payload.Items {
		if it.ID == "" || it.Quantity < 1 {
			continue
		}
		items = append(items, it)
	}

	doc := models.CartDoc{
		UserID:    userID,
		Items:     items,
		Coupon:    payload.Coupon,
		UpdatedAt: time.Now(),
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := db.CartCollection.ReplaceOne(ctx, bson.M{"userId": userID}, doc, opts); err != nil {
		log.Println("SaveCart ReplaceOne error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save cart")
		return
	}

	mq.Emit(ctx, "cart-updated", mq.Event{EntityType: "cart", Method: "PUT", EntityId: userID, UserId: userID})

	utils.RespondWithData(w, http.StatusOK, map[string]string{"status": "saved"})
}
