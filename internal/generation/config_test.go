package generation

import "testing"

func TestConfigDefaults_GPULayers(t *testing.T) {
	if got := *(Config{}).withDefaults().GPULayers; got != defaultGPULayers {
		t.Fatalf("unset gpu layers: expected %d, got %d", defaultGPULayers, got)
	}
	for _, n := range []int{0, 20} {
		n := n
		if got := *(Config{GPULayers: &n}).withDefaults().GPULayers; got != n {
			t.Fatalf("explicit gpu layers %d rewritten to %d", n, got)
		}
	}
}

func TestConfigDefaults(t *testing.T) {
	c := Config{}.withDefaults()
	if c.ContextSize != defaultContextSize || c.Threads != defaultThreads || c.MaxQueueDepth != defaultMaxQueueDepth {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if len(c.Adapters) != len(DefaultAdapterIDs) || c.Runtime == nil || c.Publisher == nil || c.Logger == nil {
		t.Fatalf("collaborators not defaulted: %+v", c)
	}
}
