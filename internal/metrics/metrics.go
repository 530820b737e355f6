package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Registry collects negotiation counters for the /metrics endpoint.
// The zero value is ready to use; all methods tolerate a nil receiver.
type Registry struct {
	sessionsStarted   atomic.Int64
	sessionsCompleted atomic.Int64
	sessionsFailed    atomic.Int64
	generations       sync.Map
	busCounters       sync.Map
	subscriberCounts  sync.Map
}

type generationStats struct {
	count         atomic.Int64
	failures      atomic.Int64
	durationNanos atomic.Int64
}

var Default = &Registry{}

func (r *Registry) IncSessionStarted() {
	if r == nil {
		return
	}
	r.sessionsStarted.Add(1)
}

func (r *Registry) IncSessionCompleted() {
	if r == nil {
		return
	}
	r.sessionsCompleted.Add(1)
}

func (r *Registry) IncSessionFailed() {
	if r == nil {
		return
	}
	r.sessionsFailed.Add(1)
}

// RecordGeneration tracks one text-generation call by operation name
// (brand_rfq, brand_counter, supplier_reply, brand_decision).
func (r *Registry) RecordGeneration(operation string, duration time.Duration, err error) {
	if r == nil {
		return
	}
	if strings.TrimSpace(operation) == "" {
		operation = "unknown"
	}
	stats := r.generationStats(operation)
	stats.count.Add(1)
	stats.durationNanos.Add(duration.Nanoseconds())
	if err != nil {
		stats.failures.Add(1)
	}
}

func (r *Registry) generationStats(operation string) *generationStats {
	if existing, ok := r.generations.Load(operation); ok {
		return existing.(*generationStats)
	}
	created := &generationStats{}
	actual, _ := r.generations.LoadOrStore(operation, created)
	return actual.(*generationStats)
}

// IncEventPublished and IncEventDropped are the event bus hooks.
func (r *Registry) IncEventPublished(bus, eventType string) {
	r.incBusCounter("published", bus, eventType)
}

func (r *Registry) IncEventDropped(bus, eventType string) {
	r.incBusCounter("dropped", bus, eventType)
}

func (r *Registry) SetEventSubscriberCounts(bus string, filtered, unfiltered int) {
	if r == nil {
		return
	}
	r.subscriberCounts.Store(bus, [2]int{filtered, unfiltered})
}

func (r *Registry) incBusCounter(kind, bus, eventType string) {
	if r == nil {
		return
	}
	key := kind + "\x00" + bus + "\x00" + eventType
	if existing, ok := r.busCounters.Load(key); ok {
		existing.(*atomic.Int64).Add(1)
		return
	}
	created := &atomic.Int64{}
	actual, _ := r.busCounters.LoadOrStore(key, created)
	actual.(*atomic.Int64).Add(1)
}

// WritePrometheus writes the registry in Prometheus text exposition format.
func (r *Registry) WritePrometheus(writer io.Writer) error {
	if r == nil {
		return nil
	}

	lines := []string{
		"# TYPE parley_sessions_started_total counter",
		fmt.Sprintf("parley_sessions_started_total %d", r.sessionsStarted.Load()),
		"# TYPE parley_sessions_completed_total counter",
		fmt.Sprintf("parley_sessions_completed_total %d", r.sessionsCompleted.Load()),
		"# TYPE parley_sessions_failed_total counter",
		fmt.Sprintf("parley_sessions_failed_total %d", r.sessionsFailed.Load()),
	}

	type generationRow struct {
		operation string
		stats     *generationStats
	}
	var generationRows []generationRow
	r.generations.Range(func(key, value any) bool {
		generationRows = append(generationRows, generationRow{key.(string), value.(*generationStats)})
		return true
	})
	sort.Slice(generationRows, func(i, j int) bool {
		return generationRows[i].operation < generationRows[j].operation
	})
	if len(generationRows) > 0 {
		lines = append(lines,
			"# TYPE parley_generation_calls_total counter",
			"# TYPE parley_generation_failures_total counter",
			"# TYPE parley_generation_duration_seconds_total counter",
		)
		for _, row := range generationRows {
			label := fmt.Sprintf("{operation=%q}", row.operation)
			lines = append(lines,
				fmt.Sprintf("parley_generation_calls_total%s %d", label, row.stats.count.Load()),
				fmt.Sprintf("parley_generation_failures_total%s %d", label, row.stats.failures.Load()),
				fmt.Sprintf("parley_generation_duration_seconds_total%s %.6f", label,
					time.Duration(row.stats.durationNanos.Load()).Seconds()),
			)
		}
	}

	type busRow struct {
		kind      string
		bus       string
		eventType string
		value     int64
	}
	var busRows []busRow
	r.busCounters.Range(func(key, value any) bool {
		parts := strings.SplitN(key.(string), "\x00", 3)
		if len(parts) != 3 {
			return true
		}
		busRows = append(busRows, busRow{parts[0], parts[1], parts[2], value.(*atomic.Int64).Load()})
		return true
	})
	sort.Slice(busRows, func(i, j int) bool {
		if busRows[i].kind != busRows[j].kind {
			return busRows[i].kind < busRows[j].kind
		}
		if busRows[i].bus != busRows[j].bus {
			return busRows[i].bus < busRows[j].bus
		}
		return busRows[i].eventType < busRows[j].eventType
	})
	for _, row := range busRows {
		lines = append(lines, fmt.Sprintf("parley_events_%s_total{bus=%q,type=%q} %d",
			row.kind, row.bus, row.eventType, row.value))
	}

	for _, line := range lines {
		if _, err := io.WriteString(writer, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}
