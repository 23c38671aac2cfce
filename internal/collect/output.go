package collect

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"rivalsense/internal/model"
)

const allCompaniesFile = "all_company_data.json"

// companyFile is the on-disk shape: a CompanyRecord that the analysis API
// accepts as-is, plus the market data gathered alongside it.
type companyFile struct {
	model.CompanyRecord
	Financials []model.FinancialSnapshot `json:"financials"`
}

// CompanyFileName is the per-company output file for a key.
func CompanyFileName(key string) string {
	return key + "_data.json"
}

// WriteSnapshots writes one file per company and a combined file keyed by
// company key. It returns the paths written.
func WriteSnapshots(dir string, snapshots []*model.CompanySnapshot) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	all := make(map[string]companyFile, len(snapshots))
	var paths []string

	for _, s := range snapshots {
		file := companyFile{CompanyRecord: s.Company, Financials: s.Financials}
		path := filepath.Join(dir, CompanyFileName(s.Key))
		if err := writeJSON(path, file); err != nil {
			return paths, err
		}
		paths = append(paths, path)
		all[s.Key] = file
	}

	path := filepath.Join(dir, allCompaniesFile)
	if err := writeJSON(path, all); err != nil {
		return paths, err
	}

	return append(paths, path), nil
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return f.Close()
}
