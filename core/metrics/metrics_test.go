package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMetricsRegistered(t *testing.T) {
	// Touch each collector so the families appear in a gather.
	LaunchesTotal.WithLabelValues("goroutine", "fire").Add(0)
	TasksActive.WithLabelValues("goroutine").Set(0)
	TaskFailuresTotal.WithLabelValues("process").Add(0)

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	expected := []string{
		"offload_launches_total",
		"offload_tasks_active",
		"offload_task_failures_total",
	}

	found := make(map[string]bool)
	for _, fam := range families {
		found[fam.GetName()] = true
	}
	for _, name := range expected {
		if !found[name] {
			t.Errorf("metric %q not registered", name)
		}
	}
}
