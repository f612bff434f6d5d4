package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bcfcore/promion/internal/errors"
)

// jsonReport is the expected outer shape of a standalone JSON report:
// a list of acquisitions, each optionally carrying a config summary.
// Pointer fields distinguish a missing key from an empty value.
type jsonReport struct {
	Acquisitions []struct {
		AcquisitionRunInfo struct {
			ConfigSummary struct {
				BasecallingModelVersion   *string `json:"basecalling_model_version"`
				BasecallingConfigFilename *string `json:"basecalling_config_filename"`
			} `json:"config_summary"`
		} `json:"acquisition_run_info"`
	} `json:"acquisitions"`
}

// loadFromJSON populates the basecalling model and config from a
// standalone JSON report. The first acquisition carrying each value
// wins; acquisitions without a config summary are skipped silently.
// A document that does not decode to the expected shape fails with a
// parse error.
func (m *Metadata) loadFromJSON(path string) error {
	const op = errors.Op("report.loadFromJSON")
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.E(op, errors.KindIO, err)
	}

	var doc jsonReport
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.E(op, errors.KindParse,
			fmt.Sprintf("%s: unable to extract JSON data", path), err)
	}

	for _, acq := range doc.Acquisitions {
		summary := acq.AcquisitionRunInfo.ConfigSummary
		setIfUnset(&m.BasecallingModel, summary.BasecallingModelVersion)
		setIfUnset(&m.BasecallingConfig, summary.BasecallingConfigFilename)
		if m.BasecallingModel != nil && m.BasecallingConfig != nil {
			break
		}
	}
	return nil
}
