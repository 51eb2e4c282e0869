// Package letterhead resolves the issuing center's letterhead fields.
// Center records are frequently partial; each field falls back to its
// static default independently so a known field never regresses because a
// sibling field is missing.
package letterhead

import (
	"strings"

	"github.com/carelane/printcore/internal/canonical"
	"github.com/carelane/printcore/internal/normalize"
)

// Resolve merges a partial center with defaults field by field. Total over
// all inputs, idempotent: resolving an already-resolved center is a no-op.
func Resolve(partial, defaults canonical.CenterInfo) canonical.CenterInfo {
	return canonical.CenterInfo{
		Name:              pick(partial.Name, defaults.Name),
		SubTitle:          pick(partial.SubTitle, defaults.SubTitle),
		Address:           pick(partial.Address, defaults.Address),
		Phone:             pick(partial.Phone, defaults.Phone),
		Fax:               pick(partial.Fax, defaults.Fax),
		Email:             pick(partial.Email, defaults.Email),
		Website:           pick(partial.Website, defaults.Website),
		LabWebsite:        pick(partial.LabWebsite, defaults.LabWebsite),
		MissCallNumber:    pick(partial.MissCallNumber, defaults.MissCallNumber),
		AppointmentNumber: pick(partial.AppointmentNumber, defaults.AppointmentNumber),
		Code:              pick(partial.Code, defaults.Code),
		LogoRef:           pick(partial.LogoRef, defaults.LogoRef),
	}
}

// ResolveRecord extracts a partial CenterInfo from a loosely shaped center
// record, then resolves it against defaults. A nil record is treated as an
// empty one.
func ResolveRecord(rec map[string]any, defaults canonical.CenterInfo) canonical.CenterInfo {
	partial := canonical.CenterInfo{
		Name:              normalize.Pick(rec, "", "name", "centerName", "title"),
		SubTitle:          normalize.Pick(rec, "", "subTitle", "subtitle", "tagline"),
		Address:           resolveAddress(rec),
		Phone:             normalize.Pick(rec, "", "phone", "phoneNumber", "contact"),
		Fax:               normalize.Pick(rec, "", "fax", "faxNumber"),
		Email:             normalize.Pick(rec, "", "email", "emailAddress"),
		Website:           normalize.Pick(rec, "", "website", "web"),
		LabWebsite:        normalize.Pick(rec, "", "labWebsite", "labWeb"),
		MissCallNumber:    normalize.Pick(rec, "", "missCallNumber", "missCall"),
		AppointmentNumber: normalize.Pick(rec, "", "appointmentNumber", "mobile", "mobileNumber"),
		Code:              normalize.Pick(rec, "", "code", "centerCode"),
		LogoRef:           normalize.Pick(rec, "", "logo", "logoUrl", "logoRef"),
	}
	return Resolve(partial, defaults)
}

// resolveAddress joins separate address and location parts with ", " when
// at least one is present; an empty join falls through to the default.
func resolveAddress(rec map[string]any) string {
	address := normalize.Pick(rec, "", "address")
	location := normalize.Pick(rec, "", "location")
	switch {
	case address != "" && location != "":
		return address + ", " + location
	case address != "":
		return address
	default:
		return location
	}
}

func pick(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}
