package report

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hepcomp/resource-model/model"
	"github.com/hepcomp/resource-model/model/capacity"
)

const namespace = "resource_model"

// Label names.
const (
	yearLabel     = "year"
	kindLabel     = "kind"
	categoryLabel = "category"
	resourceLabel = "resource"
	modelLabel    = "model"
	mediumLabel   = "medium"
	tierLabel     = "tier"
)

// projectionMetrics are per-year gauges for one projection.
type projectionMetrics struct {
	events       *prometheus.GaugeVec
	cpuRequired  *prometheus.GaugeVec
	cpuTime      *prometheus.GaugeVec
	capacity     *prometheus.GaugeVec
	storageBytes *prometheus.GaugeVec
}

func newProjectionMetrics() *projectionMetrics {
	return &projectionMetrics{
		events: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "events",
			Help:      "events produced per year and kind",
		}, []string{yearLabel, kindLabel}),
		cpuRequired: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cpu_required_hs06",
			Help:      "required processing rate per year and category",
		}, []string{yearLabel, categoryLabel}),
		cpuTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cpu_time_hs06_seconds",
			Help:      "processing time per year and category",
		}, []string{yearLabel, categoryLabel}),
		capacity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "capacity",
			Help:      "available capacity per year, HS06 for cpu and bytes for disk and tape",
		}, []string{yearLabel, resourceLabel, modelLabel}),
		storageBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "storage_bytes",
			Help:      "occupancy per year, medium and tier",
		}, []string{yearLabel, mediumLabel, tierLabel}),
	}
}

func (m *projectionMetrics) register(reg *prometheus.Registry) {
	reg.MustRegister(m.events, m.cpuRequired, m.cpuTime, m.capacity, m.storageBytes)
}

func (m *projectionMetrics) observe(pr *model.Projection) {
	for _, y := range pr.Params.Years() {
		year := strconv.Itoa(y)
		for _, kind := range pr.Events.Kinds() {
			m.events.With(prometheus.Labels{yearLabel: year, kindLabel: kind}).Set(pr.Events.Events(y, kind))
		}
		for _, c := range pr.CPU.Categories() {
			labels := prometheus.Labels{yearLabel: year, categoryLabel: c.Name}
			m.cpuRequired.With(labels).Set(c.Required[y])
			m.cpuTime.With(labels).Set(c.Time[y])
		}
		for res, series := range pr.Capacity.Ledger {
			m.capacity.With(prometheus.Labels{yearLabel: year, resourceLabel: res, modelLabel: "ledger"}).Set(series[y])
		}
		for res, series := range pr.Capacity.Simple {
			m.capacity.With(prometheus.Labels{yearLabel: year, resourceLabel: res, modelLabel: "simple"}).Set(series[y])
		}
		for medium, occ := range map[string]model.Occupancy{capacity.Disk: pr.Storage.Disk, capacity.Tape: pr.Storage.Tape} {
			for _, tiers := range occ.ByOrigin[y] {
				for tier, bytes := range tiers {
					m.storageBytes.With(prometheus.Labels{yearLabel: year, mediumLabel: medium, tierLabel: tier}).Add(bytes)
				}
			}
		}
		m.storageBytes.With(prometheus.Labels{yearLabel: year, mediumLabel: capacity.Disk, tierLabel: model.LegacyColumn}).
			Set(pr.Storage.LegacyDisk[y] * model.Peta)
	}
}

// WriteTextfile writes the projection as Prometheus gauges in the text
// exposition format, for the node exporter textfile collector.
func WriteTextfile(path string, pr *model.Projection) error {
	reg := prometheus.NewRegistry()
	m := newProjectionMetrics()
	m.register(reg)
	m.observe(pr)
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("writing textfile %s: %w", path, err)
	}
	return nil
}
