package lib

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"crs/src/types"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"

	razorpay "github.com/razorpay/razorpay-go"
)

var razorpayClient *razorpay.Client

func GetRazorpayClient() *razorpay.Client {
	if razorpayClient != nil {
		return razorpayClient
	}
	keyId := os.Getenv("RAZORPAY_KEY_ID")
	keySecret := os.Getenv("RAZORPAY_KEY_SECRET")
	c := razorpay.NewClient(keyId, keySecret)
	// SetTimeout takes seconds.
	c.SetTimeout(10)
	razorpayClient = c
	return c
}

// NewRazorpayClient replaces the shared instance, used by tests.
func NewRazorpayClient(c *razorpay.Client) {
	razorpayClient = c
}

// RazorpayGateway adapts the Razorpay SDK to the booking core's gateway
// contract. The signature scheme is HMAC-SHA256 over "orderId|paymentId" with
// the key secret, hex encoded.
type RazorpayGateway struct {
	keySecret string
}

func NewRazorpayGateway() *RazorpayGateway {
	return &RazorpayGateway{keySecret: os.Getenv("RAZORPAY_KEY_SECRET")}
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount int64, currency string, receipt string) (*types.PaymentOrder, error) {
	client := GetRazorpayClient()
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	body, err := client.Order.Create(data, nil)
	if err != nil {
		log.Printf("[Razorpay] Error creating order: %s\n", err.Error())
		return nil, err
	}
	orderId, ok := body["id"].(string)
	if !ok {
		return nil, errors.New("order id missing from gateway response")
	}
	orderAmount, ok := body["amount"].(float64)
	if !ok {
		return nil, fmt.Errorf("order [%s] amount missing from gateway response", orderId)
	}
	orderCurrency, _ := body["currency"].(string)
	return &types.PaymentOrder{
		OrderID:  orderId,
		Amount:   int64(orderAmount),
		Currency: orderCurrency,
	}, nil
}

func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifyHMACSignature(g.keySecret, fmt.Sprintf("%s|%s", orderID, paymentID), signature)
}

func VerifyHMACSignature(secret, payload, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	expected := hex.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

// ComputePaymentSignature derives the proof the gateway would have handed the
// payer. Used when confirmation is driven by an already-authenticated webhook
// instead of the client.
func ComputePaymentSignature(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(os.Getenv("RAZORPAY_KEY_SECRET")))
	mac.Write([]byte(fmt.Sprintf("%s|%s", orderID, paymentID)))
	return hex.EncodeToString(mac.Sum(nil))
}

func RazorpayWebhookSecret() string {
	return os.Getenv("RAZORPAY_WEBHOOK_SECRET")
}
