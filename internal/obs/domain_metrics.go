package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuoteTotal counts cart quote computations by outcome.
	QuoteTotal *prometheus.CounterVec
	// DiscountSelectedTotal counts winning discounts by kind ("none" when no offer applied).
	DiscountSelectedTotal *prometheus.CounterVec
	// CheckoutTotal counts checkout attempts by result.
	CheckoutTotal *prometheus.CounterVec
	// OffersExpiredTotal counts offers deactivated by the expiry sweep.
	OffersExpiredTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuoteTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_quote_total",
			Help:      "Count of cart quote computations by outcome.",
		}, []string{"result"})
		DiscountSelectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_selected_total",
			Help:      "Count of winning promotional discounts by kind.",
		}, []string{"kind"})
		CheckoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "Count of checkout attempts by result.",
		}, []string{"result"})
		OffersExpiredTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offers_expired_total",
			Help:      "Number of offers deactivated by the expiry sweep.",
		})

		if v, ok := register(reg, QuoteTotal).(*prometheus.CounterVec); ok {
			QuoteTotal = v
		}
		if v, ok := register(reg, DiscountSelectedTotal).(*prometheus.CounterVec); ok {
			DiscountSelectedTotal = v
		}
		if v, ok := register(reg, CheckoutTotal).(*prometheus.CounterVec); ok {
			CheckoutTotal = v
		}
		if v, ok := register(reg, OffersExpiredTotal).(prometheus.Counter); ok {
			OffersExpiredTotal = v
		}
	})
}
