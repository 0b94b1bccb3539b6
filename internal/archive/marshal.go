package archive

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/trainaudit/internal/canon"
	"github.com/roach88/trainaudit/internal/report"
)

// marshalReport converts a report to canonical JSON TEXT for storage, so the
// stored bytes do not depend on struct field order.
func marshalReport(r *report.Report) (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	v, err := canon.Decode(data)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	out, err := canon.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	return string(out), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
