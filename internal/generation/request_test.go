package generation

import "testing"

func TestDefaultParams(t *testing.T) {
	b := DefaultParams(AddressByBrand)
	if b.MaxTokens != 256 || b.Temperature != 0.7 || len(b.Stop) != 2 || b.Stop[0] != "</s>" || b.Stop[1] != "###" {
		t.Fatalf("brand defaults: %+v", b)
	}
	// callers get a copy
	b.Stop[0] = "mutated"
	if DefaultParams(AddressByBrand).Stop[0] != "</s>" {
		t.Fatalf("defaults mutated through returned slice")
	}
	c := DefaultParams(AddressByCheckpoint)
	if c.MaxTokens != 512 || len(c.Stop) != 0 {
		t.Fatalf("checkpoint defaults: %+v", c)
	}
}

func TestWithDefaults(t *testing.T) {
	p := withDefaults(SamplingParams{MaxTokens: 10, Temperature: 0.1, TopK: 40}, AddressByBrand)
	if p.MaxTokens != 10 || p.Temperature != 0.1 || p.TopK != 40 || len(p.Stop) != 2 {
		t.Fatalf("explicit values must survive: %+v", p)
	}
	p = withDefaults(SamplingParams{Stop: []string{}}, AddressByBrand)
	if len(p.Stop) != 0 || p.MaxTokens != 256 {
		t.Fatalf("empty stop list must be kept: %+v", p)
	}
}

func TestRequestBuilders(t *testing.T) {
	r := ByBrand("p", "documentation").WithCheckpoint("/ckpt/doc").WithParams(SamplingParams{Seed: 7})
	if r.Mode != AddressByBrand || r.Brand != "documentation" || r.Checkpoint != "/ckpt/doc" || r.Params.Seed != 7 {
		t.Fatalf("unexpected request: %+v", r)
	}
	c := ByCheckpoint("p", "test_gen_adapter", "/ckpt/t")
	if c.Mode != AddressByCheckpoint || c.AdapterID != "test_gen_adapter" || c.Mode.String() != "checkpoint" || r.Mode.String() != "brand" {
		t.Fatalf("unexpected request: %+v", c)
	}
}
