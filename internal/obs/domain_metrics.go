package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// VoucherValidationsTotal counts Validate outcomes by result reason.
	VoucherValidationsTotal *prometheus.CounterVec
	// VoucherClaimsTotal counts Claim outcomes by result reason.
	VoucherClaimsTotal *prometheus.CounterVec
	// VoucherRedemptionsTotal counts Redeem and MarkUsed outcomes by result reason.
	VoucherRedemptionsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers voucher Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		VoucherValidationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voucher_validations_total",
			Help:      "Count of voucher validations by result.",
		}, []string{"result"})
		VoucherClaimsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voucher_claims_total",
			Help:      "Count of voucher claims by result.",
		}, []string{"result"})
		VoucherRedemptionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voucher_redemptions_total",
			Help:      "Count of voucher redemptions by result.",
		}, []string{"result"})

		registerCounterVec(reg, &VoucherValidationsTotal)
		registerCounterVec(reg, &VoucherClaimsTotal)
		registerCounterVec(reg, &VoucherRedemptionsTotal)
	})
}
