package lib

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signWith(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestGetRazorpayClient(t *testing.T) {
	NewRazorpayClient(nil)
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_key")
	t.Setenv("RAZORPAY_KEY_SECRET", "topsecret")

	client := GetRazorpayClient()
	assert.NotNil(t, client)
	assert.Same(t, client, GetRazorpayClient())
}

func TestVerifyHMACSignature(t *testing.T) {
	payload := "order_abc|pay_xyz"
	signature := signWith("topsecret", payload)

	assert.True(t, VerifyHMACSignature("topsecret", payload, signature))
	assert.False(t, VerifyHMACSignature("topsecret", payload, signature+"00"))
	assert.False(t, VerifyHMACSignature("wrongsecret", payload, signature))
	assert.False(t, VerifyHMACSignature("topsecret", "order_abc|pay_other", signature))
}

func TestRazorpayGatewayVerifySignature(t *testing.T) {
	g := &RazorpayGateway{keySecret: "topsecret"}
	signature := signWith("topsecret", "order_abc|pay_xyz")

	assert.True(t, g.VerifySignature("order_abc", "pay_xyz", signature))
	assert.False(t, g.VerifySignature("order_abc", "pay_xyz", "deadbeef"))
	assert.False(t, g.VerifySignature("order_other", "pay_xyz", signature))
}

func TestComputePaymentSignature(t *testing.T) {
	t.Setenv("RAZORPAY_KEY_SECRET", "topsecret")

	computed := ComputePaymentSignature("order_abc", "pay_xyz")
	assert.Equal(t, signWith("topsecret", "order_abc|pay_xyz"), computed)

	g := &RazorpayGateway{keySecret: "topsecret"}
	assert.True(t, g.VerifySignature("order_abc", "pay_xyz", computed))
}
