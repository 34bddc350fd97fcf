package models

import "testing"

func TestKeyEquivalentChambers(t *testing.T) {
	a := FilterState{Period: Period30D, Chamber: ChamberAny, Limit: 50}
	b := FilterState{Period: Period30D, Chamber: "", Limit: 50}
	if a.Key() != b.Key() {
		t.Fatalf("chamber=any and unset chamber must collapse: %q vs %q", a.Key(), b.Key())
	}
}

func TestKeyOmitsNoFilterFields(t *testing.T) {
	f := FilterState{Period: Period30D, Limit: 50}
	key := string(f.Key())
	if key != "limit=50&period=30d" {
		t.Fatalf("unexpected key %q", key)
	}
}

func TestKeyDistinguishesFilters(t *testing.T) {
	a := FilterState{Period: Period30D, Chamber: ChamberSenate, Limit: 50}
	b := FilterState{Period: Period30D, Chamber: ChamberHouse, Limit: 50}
	if a.Key() == b.Key() {
		t.Fatalf("different chambers must not collide")
	}

	c := FilterState{Period: Period90D, Chamber: ChamberSenate, Limit: 50}
	if a.Key() == c.Key() {
		t.Fatalf("different periods must not collide")
	}
}

func TestKeyDeterministicOrdering(t *testing.T) {
	f := FilterState{Period: Period7D, Chamber: ChamberHouse, Limit: 10, Cursor: "abc"}
	if f.Key() != f.Key() {
		t.Fatalf("key must be deterministic")
	}
	if string(f.Key()) != "chamber=house&cursor=abc&limit=10&period=7d" {
		t.Fatalf("unexpected canonical ordering %q", f.Key())
	}
}

func TestQueryMatchesKeyOmissions(t *testing.T) {
	f := FilterState{Period: Period30D, Chamber: ChamberAny, Limit: 50}
	q := f.Query()
	if _, ok := q["chamber"]; ok {
		t.Fatalf("unrestricted chamber must not be sent upstream")
	}
	if got := q["period"]; len(got) != 1 || got[0] != "30d" {
		t.Fatalf("unexpected period param %v", got)
	}
	if got := q["limit"]; len(got) != 1 || got[0] != "50" {
		t.Fatalf("unexpected limit param %v", got)
	}
}
