package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/merge-indexer/eth-parser/logging"
)

const (
	LayerConsensus = "consensus"
	LayerExecution = "execution"
)

var (
	SyncedSlotGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "synced_beacon_slot",
		Help: "Highest beacon slot recorded in the store.",
	})

	SyncedExecBlockGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "synced_execution_block",
		Help: "Highest execution block number recorded in the store.",
	})

	ValidatorsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "indexed_validators",
		Help: "Number of validators stored.",
	})

	DepositLinkCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deposit_links_total",
		Help: "Deposit transactions linked to exactly one validator.",
	})

	DepositLinkAnomalyCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "deposit_link_anomalies_total",
		Help: "Deposit transactions that matched zero or several validators, or failed to link.",
	}, []string{"kind"})

	HeightFailureCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "height_failures_total",
		Help: "Heights whose processing failed, the catch up pass skips them and goes on.",
	}, []string{"layer"})

	MetricsItems = []prometheus.Collector{
		SyncedSlotGauge,
		SyncedExecBlockGauge,
		ValidatorsGauge,
		DepositLinkCounter,
		DepositLinkAnomalyCounter,
		HeightFailureCounter,
	}
)

const DefaultMetricsAddress = "0.0.0.0:9090"

type Metrics struct {
	httpAddress string
	registry    *prometheus.Registry
	httpServer  *http.Server
}

func NewMetrics(address string) *Metrics {
	if address == "" {
		address = DefaultMetricsAddress
	}
	return &Metrics{
		httpAddress: address,
		registry:    prometheus.NewRegistry(),
	}
}

func (m *Metrics) Start() {
	m.registry.MustRegister(MetricsItems...)
	router := mux.NewRouter()
	router.Path("/metrics").Handler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	m.httpServer = &http.Server{
		Addr:    m.httpAddress,
		Handler: router,
	}
	go m.serve()
}

func (m *Metrics) serve() {
	if err := m.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logging.Logger.Errorf("failed to listen and serve metrics, err=%s", err.Error())
		panic(err)
	}
}

func (m *Metrics) Stop() {
	if m.httpServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.httpServer.Shutdown(ctx); err != nil {
		logging.Logger.Errorf("failed to stop metrics server, err=%s", err.Error())
	}
}
