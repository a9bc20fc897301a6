package ledger

import "github.com/prometheus/client_golang/prometheus"

var (
	searchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lookup_searches_total",
		Help: "Total committed lookup searches",
	})
	newUsersTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lookup_new_users_total",
		Help: "Total first-contact user registrations",
	})
	referralsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lookup_referrals_total",
		Help: "Total granted referral rewards",
	})
	refundsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lookup_refunds_total",
		Help: "Total credits refunded after failed lookups",
	})
)

func init() {
	prometheus.MustRegister(searchesTotal)
	prometheus.MustRegister(newUsersTotal)
	prometheus.MustRegister(referralsTotal)
	prometheus.MustRegister(refundsTotal)
}
