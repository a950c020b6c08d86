package metrics

import "testing"

func TestNewRegistry_GatherReturnsRegisteredFamilies(t *testing.T) {
	r := NewRegistry()
	r.Writes.WithLabelValues("tasks").Inc()
	r.Syncs.Inc()

	families, err := r.Gatherer().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected at least one metric family after recording activity")
	}

	found := false
	for _, f := range families {
		if f.GetName() == "taskstore_writes_total" {
			found = true
		}
	}
	if !found {
		t.Error("expected taskstore_writes_total to be present")
	}
}
