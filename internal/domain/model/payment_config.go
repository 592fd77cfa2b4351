package model

import "time"

// Keys of the stored payment_config rows editable from the admin API.
const (
	PaymentConfigKeyID         = "razorpay_key_id"
	PaymentConfigKeySecret     = "razorpay_key_secret"
	PaymentConfigWebhookSecret = "razorpay_webhook_secret"
)

// IsSecretPaymentConfigKey reports whether the value is encrypted at rest.
func IsSecretPaymentConfigKey(key string) bool {
	return key == PaymentConfigKeySecret || key == PaymentConfigWebhookSecret
}

func IsKnownPaymentConfigKey(key string) bool {
	return key == PaymentConfigKeyID || IsSecretPaymentConfigKey(key)
}

type PaymentConfigEntry struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
