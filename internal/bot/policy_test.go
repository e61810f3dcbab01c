package bot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPresets(t *testing.T) {
	presets := Presets()
	for _, name := range []string{VariantFirst, VariantAggro, VariantDiscerning} {
		p, ok := presets[name]
		if !ok {
			t.Fatalf("missing preset %s", name)
		}
		if p.Name != name {
			t.Errorf("%s: name %q", name, p.Name)
		}
		if p.Gather.MaxDistance != 15 {
			t.Errorf("%s: max distance %d, want 15", name, p.Gather.MaxDistance)
		}
		if p.Values != baselineValues {
			t.Errorf("%s: values %+v", name, p.Values)
		}
	}
	if got := VariantNames(); strings.Join(got, ",") != "aggro,discerning,first" {
		t.Errorf("VariantNames: got %v", got)
	}
}

func TestParsePolicies_Overlay(t *testing.T) {
	raw := []byte(`
policies:
  - name: aggro-far
    base: aggro
    gather:
      max_distance: 20
  - name: first
    build:
      travel_threshold: 7
`)
	policies, err := ParsePolicies(raw)
	if err != nil {
		t.Fatalf("ParsePolicies: %v", err)
	}

	far, ok := policies["aggro-far"]
	if !ok {
		t.Fatal("aggro-far not registered")
	}
	if far.Name != "aggro-far" {
		t.Errorf("name: got %q", far.Name)
	}
	if far.Gather.MaxDistance != 20 {
		t.Errorf("max distance: got %d, want 20", far.Gather.MaxDistance)
	}
	if far.Cadence.Modulus != 3 || far.Gather.NightMaxSpace != 60 {
		t.Errorf("base fields lost: %+v", far)
	}
	if len(far.Power.Tiers) != 1 || far.Power.Tiers[0].AfterPhase != 15 {
		t.Errorf("tiers: got %+v", far.Power.Tiers)
	}

	if got := policies[VariantFirst].Build.TravelThreshold; got != 7 {
		t.Errorf("first threshold: got %d, want 7", got)
	}
	if got := policies[VariantAggro].Gather.MaxDistance; got != 15 {
		t.Errorf("aggro preset modified: max distance %d", got)
	}
}

func TestParsePolicies_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bad yaml", "policies: [", "policy yaml"},
		{"missing name", "policies:\n  - base: aggro\n", "missing name"},
		{"unknown base", "policies:\n  - name: x\n    base: nope\n", "unknown base"},
		{"zero distance", "policies:\n  - name: x\n    base: aggro\n    gather:\n      max_distance: 0\n", "max_distance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePolicies([]byte(tt.raw))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadPolicies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policies.yaml")
	doc := "policies:\n  - name: slow\n    base: discerning\n    explore:\n      enabled: false\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	policies, err := LoadPolicies(path)
	if err != nil {
		t.Fatalf("LoadPolicies: %v", err)
	}
	slow := policies["slow"]
	if slow.Explore.Enabled {
		t.Error("explore should be disabled")
	}
	if !slow.Opening.Enabled || slow.Build.MaxBuildersPerTurn != 4 {
		t.Errorf("discerning fields lost: %+v", slow)
	}

	if _, err := LoadPolicies(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
