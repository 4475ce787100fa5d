package cart

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"time"

	"kourso/db"
	"kourso/models"
	"kourso/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
)

var hmacSecret = receiptSecret()

func receiptSecret() string {
	if s := os.Getenv("RECEIPT_SECRET"); s != "" {
		return s
	}
	return "dev-receipt-secret"
}

// signReceipt returns orderID|userID|timestamp|signature for the QR
// payload, so a scanned receipt can be verified offline.
func signReceipt(orderID, userID string) string {
	data := fmt.Sprintf("%s|%s|%d", orderID, userID, time.Now().Unix())
	h := hmac.New(sha256.New, []byte(hmacSecret))
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("%s|%s", data, sig)
}

// Receipt renders the order as a PDF with a signed QR code.
func Receipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	orderID := ps.ByName("orderid")
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var order models.Order
	err := db.OrderCollection.FindOne(ctx, bson.M{"orderId": orderID, "userId": userID}).Decode(&order)
	if err != nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}

	qrPNG, err := qrcode.Encode(signReceipt(order.OrderID, userID), qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}

	// Create PDF
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Order Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Order ID: %s", order.OrderID))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Placed: %s", order.CreatedAt.Format("2006-01-02 15:04")))
	pdf.Ln(10)

	for _, it := range order.Items {
		pdf.Cell(0, 8, fmt.Sprintf("%s  x%d  %.2f", it.Title, it.Quantity, it.UnitPrice*float64(it.Quantity)))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	s := order.Summary
	pdf.Cell(0, 8, fmt.Sprintf("Subtotal: %.2f", s.Subtotal))
	pdf.Ln(6)
	if s.Discount > 0 {
		pdf.Cell(0, 8, fmt.Sprintf("Discount: -%.2f", s.Discount))
		pdf.Ln(6)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Taxes: %.2f", s.Taxes))
	pdf.Ln(6)
	pdf.Cell(0, 8, fmt.Sprintf("Shipping: %.2f", s.ShippingCost))
	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %.2f", s.Total))

	// Add QR image
	imageOpts := gofpdf.ImageOptions{
		ImageType: "PNG",
	}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=receipt-"+order.OrderID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
