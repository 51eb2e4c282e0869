package normalize

import (
	"strings"

	"github.com/carelane/printcore/internal/canonical"
)

// Alias chains for medication records.
var (
	medicationNameKeys        = []string{"drugName", "medicine", "name", "medicationName"}
	medicationDoseKeys        = []string{"dose", "dosage", "dosageDetails", "medicineDose"}
	medicationFrequencyKeys   = []string{"frequency", "freq", "medicineFrequency"}
	medicationDurationKeys    = []string{"duration", "period", "medicineDuration", "course"}
	medicationInstructionKeys = []string{"instructions", "instruction"}

	medicationEntryKeys = concat(
		medicationNameKeys,
		medicationDoseKeys,
		medicationFrequencyKeys,
		medicationDurationKeys,
		medicationInstructionKeys,
	)
)

func concat(chains ...[]string) []string {
	var out []string
	for _, c := range chains {
		out = append(out, c...)
	}
	return out
}

// Medication normalizes one source medication record of arbitrary shape.
// Inputs that are not record-shaped yield an all-placeholder row rather
// than failing; a document must always be producible from partial data.
func Medication(v any) canonical.Medication {
	rec, ok := AsRecord(v)
	if !ok {
		return canonical.Medication{
			Name:        canonical.Placeholder,
			DosageText:  canonical.Placeholder,
			Duration:    canonical.Placeholder,
			Instruction: canonical.Placeholder,
		}
	}

	dose := Pick(rec, "", medicationDoseKeys...)
	freq := Pick(rec, "", medicationFrequencyKeys...)
	dosageText := strings.TrimSpace(dose + " " + freq)
	if dosageText == "" {
		dosageText = canonical.Placeholder
	}

	return canonical.Medication{
		Name:        Pick(rec, canonical.Placeholder, medicationNameKeys...),
		DosageText:  dosageText,
		Duration:    Pick(rec, canonical.Placeholder, medicationDurationKeys...),
		Instruction: Pick(rec, canonical.Placeholder, medicationInstructionKeys...),
	}
}

// Medications normalizes a list-shaped medications value, tolerating the
// same container shapes as test lists. A record carrying medication field
// aliases is one medication, not a keyed container.
func Medications(v any) []canonical.Medication {
	elems := CoerceList(v, medicationEntryKeys...)
	meds := make([]canonical.Medication, 0, len(elems))
	for _, e := range elems {
		meds = append(meds, Medication(e))
	}
	return meds
}
