package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignPayment returns hex(HMAC-SHA256(secret, orderID + "|" + paymentID)), the
// signature the checkout widget hands back after a successful payment.
func SignPayment(secret, orderID, paymentID string) string {
	return sign(secret, []byte(orderID+"|"+paymentID))
}

func VerifyPaymentSignature(secret, orderID, paymentID, signature string) bool {
	return verify(secret, []byte(orderID+"|"+paymentID), signature)
}

// SignWebhook returns hex(HMAC-SHA256(secret, body)) over the raw request body.
func SignWebhook(secret string, body []byte) string {
	return sign(secret, body)
}

func VerifyWebhookSignature(secret string, body []byte, signature string) bool {
	return verify(secret, body, signature)
}

func sign(secret string, msg []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(msg)
	return hex.EncodeToString(h.Sum(nil))
}

// verify compares the lowercase hex encoding in constant time. Any other
// spelling of the MAC (uppercase, padded, truncated) never matches.
func verify(secret string, msg []byte, signature string) bool {
	if secret == "" || len(signature) != hex.EncodedLen(sha256.Size) {
		return false
	}
	return hmac.Equal([]byte(sign(secret, msg)), []byte(signature))
}
