package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// httpRequestsTotal counts served HTTP requests by route and status
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "instructions_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"path", "status"},
	)

	// uploadsTotal counts instruction submissions by outcome
	uploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "instructions_uploads_total",
			Help: "Total number of instruction submissions",
		},
		[]string{"result"},
	)

	// filesUploadedTotal counts files written to the blob store
	filesUploadedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "instructions_files_uploaded_total",
			Help: "Total number of files written to the blob store",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(uploadsTotal)
	prometheus.MustRegister(filesUploadedTotal)
}
