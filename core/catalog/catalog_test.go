package catalog

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/emberops/wildfire/core/model"
)

func TestDefaultCatalog(t *testing.T) {
	cat := Default()
	if len(cat.Resources()) != 5 {
		t.Fatalf("expected 5 resource kinds got %d", len(cat.Resources()))
	}
	sj, ok := cat.Lookup("Smoke Jumpers")
	if !ok {
		t.Fatalf("Smoke Jumpers missing")
	}
	if sj.DeployTime != 30*time.Minute || sj.Cost != 5000 || sj.Units != 5 {
		t.Fatalf("unexpected Smoke Jumpers attributes: %+v", sj)
	}
	if cat.DamageCost(model.SeverityHigh) != 200000 {
		t.Fatalf("expected high damage 200000 got %v", cat.DamageCost(model.SeverityHigh))
	}
}

func TestOrderedCostPriority(t *testing.T) {
	cat := Default()
	got, err := cat.Ordered(OrderCostPriority)
	if err != nil {
		t.Fatalf("ordered: %v", err)
	}
	want := []string{"Fire Engines", "Ground Crews", "Smoke Jumpers", "Helicopters", "Tanker Planes"}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("position %d: want %s got %s", i, name, got[i].Name)
		}
	}
}

func TestOrderedCostTime(t *testing.T) {
	cat := Default()
	got, err := cat.Ordered(OrderCostTime)
	if err != nil {
		t.Fatalf("ordered: %v", err)
	}
	// cost x hours: engines 2000, jumpers 2500, crews 4500, helicopters 6000, tankers 30000
	want := []string{"Fire Engines", "Smoke Jumpers", "Ground Crews", "Helicopters", "Tanker Planes"}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("position %d: want %s got %s", i, name, got[i].Name)
		}
	}
}

func TestOrderedPriority(t *testing.T) {
	cat := Default()
	got, err := cat.Ordered(OrderPriority)
	if err != nil {
		t.Fatalf("ordered: %v", err)
	}
	if got[0].Name != "Smoke Jumpers" {
		t.Fatalf("expected Smoke Jumpers first got %s", got[0].Name)
	}
}

func TestOrderedUnknownPolicy(t *testing.T) {
	var cfgErr *model.ConfigError
	if _, err := Default().Ordered(Ordering("foo")); !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError got %v", err)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	damage := map[model.Severity]float64{
		model.SeverityLow: 1, model.SeverityMedium: 2, model.SeverityHigh: 3,
	}
	cases := []struct {
		name      string
		resources []Resource
		damage    map[model.Severity]float64
	}{
		{"empty", nil, damage},
		{"zero units", []Resource{{Name: "a", DeployTime: time.Hour, Units: 0}}, damage},
		{"zero deploy time", []Resource{{Name: "a", Units: 1}}, damage},
		{"duplicate", []Resource{
			{Name: "a", DeployTime: time.Hour, Units: 1},
			{Name: "a", DeployTime: time.Hour, Units: 1},
		}, damage},
		{"missing damage", []Resource{{Name: "a", DeployTime: time.Hour, Units: 1}}, nil},
	}
	for _, tc := range cases {
		if _, err := New(tc.resources, tc.damage); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestDecodeYAML(t *testing.T) {
	data := `
resources:
  - name: Test Crews
    deployment_minutes: 60
    cost: 1000
    units: 2
    priority: 1
damage_costs:
  low: 100
  medium: 200
  high: 300
`
	cat, err := Decode(bytes.NewBufferString(data), "yaml")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	r, ok := cat.Lookup("Test Crews")
	if !ok || r.DeployTime != time.Hour || r.Units != 2 {
		t.Fatalf("bad resource %+v ok=%v", r, ok)
	}
	if cat.DamageCost(model.SeverityMedium) != 200 {
		t.Fatalf("bad damage table")
	}
}
