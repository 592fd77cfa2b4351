package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		ordersCreatedTotal,
		promoValidationsTotal,
		promoRedemptionsTotal,
	)
}

var (
	ordersCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Gateway orders opened, labeled by whether a promo code was applied.",
		},
		[]string{"promo"},
	)

	// result: valid|invalid|expired|exhausted
	promoValidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promo_validations_total",
			Help: "Promo code pre-checks by result.",
		},
		[]string{"result"},
	)

	// result: redeemed|rejected|released
	promoRedemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promo_redemptions_total",
			Help: "Promo code redemptions at order time by result.",
		},
		[]string{"result"},
	)
)

func IncOrderCreated(promoApplied bool) {
	ordersCreatedTotal.WithLabelValues(strconv.FormatBool(promoApplied)).Inc()
}

func IncPromoValidation(result string) {
	promoValidationsTotal.WithLabelValues(norm(result)).Inc()
}

func IncPromoRedemption(result string) {
	promoRedemptionsTotal.WithLabelValues(norm(result)).Inc()
}
