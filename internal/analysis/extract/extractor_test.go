package extract

import (
	"reflect"
	"testing"
)

func TestPartIDsPSFormat(t *testing.T) {
	ids := PartIDs("PS11752778")
	if !reflect.DeepEqual(ids, []string{"PS11752778"}) {
		t.Fatalf("unexpected part ids: %v", ids)
	}
}

func TestPartIDsExplicitPhrase(t *testing.T) {
	ids := PartIDs("do you have part number WPW10321304 in stock")
	if len(ids) == 0 {
		t.Fatal("expected a part id")
	}
	if ids[0] != "WPW10321304" {
		t.Fatalf("unexpected first id: %s", ids[0])
	}
}

func TestPartIDsVendorFormats(t *testing.T) {
	cases := map[string]string{
		"my whirlpool needs W10295370":   "W10295370",
		"samsung part DA29-00020B maybe": "DA29-00020B",
		"bosch code 00165256 here":       "00165256",
	}
	for text, want := range cases {
		ids := PartIDs(text)
		if len(ids) == 0 {
			t.Fatalf("no ids extracted from %q", text)
		}
		found := false
		for _, id := range ids {
			if id == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected %s in %v for %q", want, ids, text)
		}
	}
}

func TestPartIDsDedupAcrossPatterns(t *testing.T) {
	// PS11752778 matches both the PS pattern and the generic sweep; it must
	// appear exactly once, attributed to the higher-priority pattern.
	ids := PartIDs("part number PS11752778, yes PS11752778")
	count := 0
	for _, id := range ids {
		if id == "PS11752778" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one PS11752778, got %v", ids)
	}
	if ids[0] != "PS11752778" {
		t.Fatalf("expected PS id first, got %v", ids)
	}
}

func TestPartIDsCaseInsensitiveDedup(t *testing.T) {
	ids := PartIDs("ps11752778 or PS11752778")
	if len(ids) != 1 {
		t.Fatalf("expected one id after case-insensitive dedup, got %v", ids)
	}
}

func TestPartIDsDeterministicOrder(t *testing.T) {
	text := "I need W10295370 and PS11752778 for my fridge"
	first := PartIDs(text)
	second := PartIDs(text)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("extraction not idempotent: %v vs %v", first, second)
	}
}

func TestPartIDsEmptyText(t *testing.T) {
	if ids := PartIDs("   "); len(ids) != 0 {
		t.Fatalf("expected no ids for whitespace text, got %v", ids)
	}
}

func TestModelNumbers(t *testing.T) {
	models := ModelNumbers("will it fit model WDT780SAEM1")
	if len(models) == 0 {
		t.Fatal("expected a model number")
	}
	if models[0] != "WDT780SAEM1" {
		t.Fatalf("unexpected model: %s", models[0])
	}
}

func TestModelNumbersVendorFormat(t *testing.T) {
	models := ModelNumbers("my WRF535SWHZ is making noise")
	found := false
	for _, m := range models {
		if m == "WRF535SWHZ" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected WRF535SWHZ in %v", models)
	}
}

func TestModelAndPartBothFire(t *testing.T) {
	text := "is PS11752778 compatible with WDT780SAEM1"
	if ids := PartIDs(text); len(ids) == 0 || ids[0] != "PS11752778" {
		t.Fatalf("unexpected part ids: %v", PartIDs(text))
	}
	if models := ModelNumbers(text); len(models) == 0 {
		t.Fatal("expected model numbers")
	}
}

func TestIsModelNumberOnly(t *testing.T) {
	if !IsModelNumberOnly("WDT780SAEM1") {
		t.Fatal("expected bare model number to match")
	}
	if !IsModelNumberOnly("  wdt780saem1  ") {
		t.Fatal("expected match to ignore case and whitespace")
	}
	if IsModelNumberOnly("my model is WDT780SAEM1") {
		t.Fatal("expected sentence not to match")
	}
	if IsModelNumberOnly("") {
		t.Fatal("expected empty text not to match")
	}
	if IsModelNumberOnly("PS11752778") {
		t.Fatal("expected bare part id not to count as a model number")
	}
}

func TestApplianceTypeFromModel(t *testing.T) {
	cases := map[string]string{
		"WDT780SAEM1": "dishwasher",
		"WRF535SWHZ":  "refrigerator",
		"RF28R7351SG": "refrigerator",
		"ZZZ999":      "appliance",
	}
	for model, want := range cases {
		if got := ApplianceTypeFromModel(model); got != want {
			t.Fatalf("ApplianceTypeFromModel(%s) = %s, want %s", model, got, want)
		}
	}
}
