package factory_test

import (
	"errors"
	"testing"

	"github.com/fairhaven/cetrack/ce"
	"github.com/fairhaven/cetrack/factory"
)

func TestParseSpecFromJSON(t *testing.T) {
	// GIVEN a JSON descriptor with a nested ethics minimum
	jsonStr := `{
		"code": "CFP",
		"name": "Certified Financial Planner",
		"period": {"kind": "birth_month"},
		"total_hours": 30,
		"subs": [
			{"name": "ethics", "kind": "ethics_text", "hours": 2, "cap_earned": true}
		]
	}`

	// WHEN parsing
	f := factory.NewSpecFactory()
	spec, err := f.ParseSpec(jsonStr)
	if err != nil {
		t.Fatalf("ParseSpec failed: %v", err)
	}

	// THEN the spec matches the descriptor
	if spec.Code != "CFP" {
		t.Errorf("expected code CFP, got %s", spec.Code)
	}
	if spec.Rule.Kind != ce.PeriodBirthMonth {
		t.Errorf("expected birth_month rule, got %s", spec.Rule.Kind)
	}
	if !spec.TotalRequired.Value.Equal(ce.Hours(30).Value) {
		t.Errorf("expected 30 required hours, got %s", spec.TotalRequired)
	}
	if len(spec.Subs) != 1 {
		t.Fatalf("expected 1 sub-requirement, got %d", len(spec.Subs))
	}
	sub := spec.Subs[0]
	if sub.Name != "ethics" || sub.Kind != ce.SubEthicsText || !sub.CapEarned {
		t.Errorf("unexpected sub-requirement: %+v", sub)
	}
}

func TestParseSpecFeeMetadata(t *testing.T) {
	// GIVEN a descriptor with renewal fee and volunteer waiver
	jsonStr := `{
		"code": "CEP",
		"name": "Certified Equity Professional",
		"period": {"kind": "anniversary"},
		"total_hours": 30,
		"admin_fee": 250,
		"volunteer_waiver_hours": 15
	}`

	// WHEN parsing
	spec, err := factory.NewSpecFactory().ParseSpec(jsonStr)
	if err != nil {
		t.Fatalf("ParseSpec failed: %v", err)
	}

	// THEN both amounts carry through with the right units
	if spec.AdminFee == nil || !spec.AdminFee.Value.Equal(ce.NewAmount(250, ce.UnitDollars).Value) {
		t.Errorf("expected $250 admin fee, got %v", spec.AdminFee)
	}
	if spec.AdminFee.Unit != ce.UnitDollars {
		t.Errorf("expected dollar unit on admin fee, got %s", spec.AdminFee.Unit)
	}
	if spec.VolunteerWaiver == nil || !spec.VolunteerWaiver.Value.Equal(ce.Hours(15).Value) {
		t.Errorf("expected 15h volunteer waiver, got %v", spec.VolunteerWaiver)
	}
}

func TestParseSpecUnknownPeriodKind(t *testing.T) {
	// GIVEN a descriptor with a misspelled period kind
	jsonStr := `{
		"code": "CFP",
		"period": {"kind": "callendar_year"},
		"total_hours": 30
	}`

	// WHEN parsing
	_, err := factory.NewSpecFactory().ParseSpec(jsonStr)

	// THEN it fails loudly instead of defaulting
	if err == nil {
		t.Fatal("expected error for unknown period kind")
	}
	if !errors.Is(err, ce.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestParseSpecUnknownSubKind(t *testing.T) {
	jsonStr := `{
		"code": "EA",
		"period": {"kind": "triennial"},
		"total_hours": 72,
		"subs": [{"name": "ethics", "kind": "ethics_titles", "hours": 2}]
	}`

	_, err := factory.NewSpecFactory().ParseSpec(jsonStr)
	if err == nil {
		t.Fatal("expected error for unknown sub kind")
	}
	if !errors.Is(err, ce.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestParseSpecMalformedJSON(t *testing.T) {
	_, err := factory.NewSpecFactory().ParseSpec(`{"code": "CFP",`)
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestSpecRoundTrip(t *testing.T) {
	// GIVEN a JSON descriptor
	jsonStr := `{
		"code": "EA",
		"name": "Enrolled Agent",
		"period": {"kind": "triennial"},
		"total_hours": 72,
		"subs": [
			{"name": "yearly minimum", "kind": "yearly_minimum", "hours": 16},
			{"name": "ethics", "kind": "ethics_text", "hours": 2, "cap_earned": true}
		]
	}`

	f := factory.NewSpecFactory()
	spec, err := f.ParseSpec(jsonStr)
	if err != nil {
		t.Fatalf("ParseSpec failed: %v", err)
	}

	// WHEN converting back to JSON and parsing again
	again, err := f.FromJSON(f.ToJSON(spec))
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}

	// THEN nothing is lost
	if again.Code != spec.Code || again.Rule.Kind != spec.Rule.Kind {
		t.Errorf("round trip changed identity: %+v vs %+v", again, spec)
	}
	if len(again.Subs) != len(spec.Subs) {
		t.Fatalf("round trip changed sub count: %d vs %d", len(again.Subs), len(spec.Subs))
	}
	for i := range spec.Subs {
		if again.Subs[i].Kind != spec.Subs[i].Kind || !again.Subs[i].Required.Value.Equal(spec.Subs[i].Required.Value) {
			t.Errorf("round trip changed sub %d: %+v vs %+v", i, again.Subs[i], spec.Subs[i])
		}
	}
}

func TestParseCatalog(t *testing.T) {
	// GIVEN a catalog file with two descriptors
	data := []byte(`[
		{"code": "CFA", "period": {"kind": "calendar_year"}, "total_hours": 20},
		{"code": "CLU", "period": {"kind": "even_odd"}, "total_hours": 30}
	]`)

	// WHEN parsing
	specs, err := factory.ParseCatalog(data)
	if err != nil {
		t.Fatalf("ParseCatalog failed: %v", err)
	}

	// THEN both arrive in file order
	if len(specs) != 2 {
		t.Fatalf("expected 2 specs, got %d", len(specs))
	}
	if specs[0].Code != "CFA" || specs[1].Code != "CLU" {
		t.Errorf("unexpected order: %s, %s", specs[0].Code, specs[1].Code)
	}
}

func TestParseCatalogRejectsBadEntry(t *testing.T) {
	// One bad descriptor poisons the whole file: partial catalogs are
	// worse than a failed startup.
	data := []byte(`[
		{"code": "CFA", "period": {"kind": "calendar_year"}, "total_hours": 20},
		{"code": "", "period": {"kind": "calendar_year"}, "total_hours": 10}
	]`)

	_, err := factory.ParseCatalog(data)
	if err == nil {
		t.Fatal("expected error for catalog with invalid entry")
	}
}

func TestOverlayReplacesAndAppends(t *testing.T) {
	// GIVEN a base catalog and an override file that changes CFA's hours
	// and adds a new code
	base, err := factory.ParseCatalog([]byte(`[
		{"code": "CFA", "period": {"kind": "calendar_year"}, "total_hours": 20},
		{"code": "CLU", "period": {"kind": "even_odd"}, "total_hours": 30}
	]`))
	if err != nil {
		t.Fatalf("base catalog failed: %v", err)
	}
	overrides, err := factory.ParseCatalog([]byte(`[
		{"code": "CFA", "period": {"kind": "calendar_year"}, "total_hours": 25},
		{"code": "XYZ", "period": {"kind": "calendar_year"}, "total_hours": 12}
	]`))
	if err != nil {
		t.Fatalf("override catalog failed: %v", err)
	}

	// WHEN overlaying
	merged := factory.Overlay(base, overrides)

	// THEN CFA is replaced in place, CLU untouched, XYZ appended
	if len(merged) != 3 {
		t.Fatalf("expected 3 specs, got %d", len(merged))
	}
	if merged[0].Code != "CFA" || !merged[0].TotalRequired.Value.Equal(ce.Hours(25).Value) {
		t.Errorf("expected CFA overridden to 25h, got %s %s", merged[0].Code, merged[0].TotalRequired)
	}
	if merged[1].Code != "CLU" {
		t.Errorf("expected CLU second, got %s", merged[1].Code)
	}
	if merged[2].Code != "XYZ" {
		t.Errorf("expected XYZ appended, got %s", merged[2].Code)
	}

	// AND the base slice is not mutated
	if !base[0].TotalRequired.Value.Equal(ce.Hours(20).Value) {
		t.Error("Overlay mutated the base catalog")
	}
}
