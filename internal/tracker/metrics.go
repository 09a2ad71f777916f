// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Toonlaunch Contributors

package tracker

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports the latest snapshot as Prometheus gauges.
type Metrics struct {
	invasionsActive      prometheus.Gauge
	invasionProgress     *prometheus.GaugeVec
	populationTotal      prometheus.Gauge
	populationByDistrict *prometheus.GaugeVec
	fieldOfficesOpen     prometheus.Gauge
	polls                *prometheus.CounterVec
}

// NewMetrics creates and registers the tracker metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		invasionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "toonlaunch_invasions_active",
			Help: "Number of active cog invasions",
		}),
		invasionProgress: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "toonlaunch_invasion_cogs_defeated",
			Help: "Cogs defeated in each active invasion",
		}, []string{"district", "cog"}),
		populationTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "toonlaunch_population_total",
			Help: "Toons online across all districts",
		}),
		populationByDistrict: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "toonlaunch_population",
			Help: "Toons online by district",
		}, []string{"district"}),
		fieldOfficesOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "toonlaunch_field_offices_open",
			Help: "Number of field offices accepting toons",
		}),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "toonlaunch_tracker_polls_total",
			Help: "Total number of tracker polls by result",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.invasionsActive,
		m.invasionProgress,
		m.populationTotal,
		m.populationByDistrict,
		m.fieldOfficesOpen,
		m.polls,
	)
	return m
}

func (m *Metrics) record(s *Snapshot) {
	if m == nil {
		return
	}

	m.invasionsActive.Set(float64(len(s.Invasions)))
	m.invasionProgress.Reset()
	for _, inv := range s.Invasions {
		m.invasionProgress.WithLabelValues(inv.District, inv.CogType).Set(float64(inv.Defeated))
	}

	m.populationByDistrict.Reset()
	if s.Population != nil {
		m.populationTotal.Set(float64(s.Population.Total))
		for _, d := range s.Population.Districts {
			m.populationByDistrict.WithLabelValues(d.Name).Set(float64(d.Population))
		}
	}

	open := 0
	for _, fo := range s.FieldOffices {
		if fo.Open {
			open++
		}
	}
	m.fieldOfficesOpen.Set(float64(open))
}

func (m *Metrics) poll(result string) {
	if m == nil {
		return
	}
	m.polls.WithLabelValues(result).Inc()
}
