package letterhead

import (
	"testing"

	"github.com/carelane/printcore/internal/canonical"
)

var defaults = canonical.CenterInfo{
	Name:    "CareLane Clinic",
	Address: "12 Hospital Road",
	Phone:   "000-1111",
	Email:   "contact@carelane.example",
}

func TestResolvePerFieldFallback(t *testing.T) {
	partial := canonical.CenterInfo{
		Name:  "Branch Clinic",
		Phone: "  ",
	}

	got := Resolve(partial, defaults)
	if got.Name != "Branch Clinic" {
		t.Errorf("Name = %q, known field must not regress", got.Name)
	}
	if got.Phone != "000-1111" {
		t.Errorf("Phone = %q, blank field must fall back", got.Phone)
	}
	if got.Address != "12 Hospital Road" {
		t.Errorf("Address = %q, missing field must fall back", got.Address)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	partial := canonical.CenterInfo{Name: "Branch Clinic", Email: "branch@carelane.example"}

	once := Resolve(partial, defaults)
	twice := Resolve(once, defaults)
	if once != twice {
		t.Errorf("Resolve is not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestResolveRecordAliases(t *testing.T) {
	rec := map[string]any{
		"centerName": "City Lab",
		"mobile":     "99-88-77",
		"logo":       "/img/logo.png",
	}

	got := ResolveRecord(rec, defaults)
	if got.Name != "City Lab" {
		t.Errorf("Name = %q", got.Name)
	}
	if got.AppointmentNumber != "99-88-77" {
		t.Errorf("AppointmentNumber = %q", got.AppointmentNumber)
	}
	if got.LogoRef != "/img/logo.png" {
		t.Errorf("LogoRef = %q", got.LogoRef)
	}
	if got.Phone != "000-1111" {
		t.Errorf("Phone = %q, want default", got.Phone)
	}
}

func TestResolveRecordJoinsAddressAndLocation(t *testing.T) {
	got := ResolveRecord(map[string]any{"address": "12 Hospital Road", "location": "Westside"}, defaults)
	if got.Address != "12 Hospital Road, Westside" {
		t.Errorf("Address = %q", got.Address)
	}

	got = ResolveRecord(map[string]any{"location": "Westside"}, defaults)
	if got.Address != "Westside" {
		t.Errorf("Address = %q, lone location should stand alone", got.Address)
	}

	got = ResolveRecord(map[string]any{}, defaults)
	if got.Address != "12 Hospital Road" {
		t.Errorf("Address = %q, empty record should use default", got.Address)
	}
}

func TestResolveRecordNil(t *testing.T) {
	got := ResolveRecord(nil, defaults)
	if got != defaults {
		t.Errorf("nil record should resolve to defaults, got %+v", got)
	}
}
