package validator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TotalValidatedRecords tracks records that survived a cleaning pass.
var TotalValidatedRecords = promauto.NewCounter(prometheus.CounterOpts{
	Name: "collector_validated_records_total",
	Help: "The total number of records that passed validation.",
})
