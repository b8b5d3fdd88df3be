// Package metrics содержит прометеевские счётчики сервиса.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PurchasesTotal количество успешных покупок курсов.
var PurchasesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "course_platform_purchases_total",
	Help: "Total number of successful course purchases.",
})

// PurchaseFailuresTotal количество отклонённых покупок с причиной отказа.
var PurchaseFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "course_platform_purchase_failures_total",
	Help: "Total number of rejected course purchases by reason.",
}, []string{"reason"})
