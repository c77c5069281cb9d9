// Package survey reads tabular survey exports (CSV, one row per respondent)
// and groups responses by segment for the anonymity gate.
package survey

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rodrinoblega/hr-climate-insight/internal/model"
)

// sectorKeywords are column-name fragments that identify the segmentation
// column, covering Spanish and English survey exports
var sectorKeywords = []string{
	// Spanish
	"sector", "área", "area", "departamento", "equipo",
	"división", "division", "unidad", "sucursal", "oficina",
	"planta", "sede", "gerencia", "dirección", "direccion",
	"región", "region", "localidad", "ubicación", "ubicacion",
	// English
	"department", "team", "unit", "branch", "office",
	"location", "site", "facility", "group", "function",
	// Common phrasings ("which area do you work in?")
	"trabajas", "work", "belong", "perteneces",
}

// maxSectorValues caps how many distinct values a column may have and still
// be considered categorical; avoids matching free-text columns
const maxSectorValues = 20

// Load reads a survey CSV file into a Dataset and detects the sector column
func Load(path string) (*model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open survey file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads survey CSV data from a reader
func Parse(r io.Reader) (*model.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // Ragged exports happen; pad below

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse survey CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("survey file is empty")
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("survey file has no data rows")
	}

	header := records[0]
	rows := records[1:]
	for i, row := range rows {
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			rows[i] = padded
		}
	}

	ds := &model.Dataset{
		Header:       header,
		Rows:         rows,
		SectorColumn: -1,
	}
	ds.SectorColumn = detectSectorColumn(ds)

	return ds, nil
}

// detectSectorColumn finds the column holding segment information, or -1
func detectSectorColumn(ds *model.Dataset) int {
	for i, col := range ds.Header {
		lower := strings.ToLower(col)
		for _, kw := range sectorKeywords {
			if !strings.Contains(lower, kw) {
				continue
			}
			if distinctValues(ds.Rows, i) <= maxSectorValues {
				return i
			}
		}
	}
	return -1
}

func distinctValues(rows [][]string, col int) int {
	seen := make(map[string]struct{})
	for _, row := range rows {
		if col < len(row) && row[col] != "" {
			seen[row[col]] = struct{}{}
		}
	}
	return len(seen)
}

// Groups splits the dataset's rows by the sector column. When no sector
// column was detected, the whole dataset forms a single group.
// Group order follows first appearance in the input.
func Groups(ds *model.Dataset) []model.ResponseGroup {
	if ds.SectorColumn < 0 {
		return []model.ResponseGroup{{
			Key:   "all",
			Count: len(ds.Rows),
			Rows:  ds.Rows,
		}}
	}

	index := make(map[string]int)
	var groups []model.ResponseGroup
	for _, row := range ds.Rows {
		key := strings.TrimSpace(row[ds.SectorColumn])
		if key == "" {
			key = "(unspecified)"
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, model.ResponseGroup{Key: key})
		}
		groups[i].Count++
		groups[i].Rows = append(groups[i].Rows, row)
	}
	return groups
}

// Stats summarizes the dataset for verbose output and the manifest
func Stats(ds *model.Dataset) model.Stats {
	s := model.Stats{
		TotalResponses: ds.Responses(),
		TotalQuestions: ds.Questions(),
	}
	if ds.SectorColumn >= 0 {
		s.SectorColumn = ds.Header[ds.SectorColumn]
		s.Sectors = make(map[string]int)
		for _, g := range Groups(ds) {
			s.Sectors[g.Key] = g.Count
		}
	}
	return s
}

// RenderCSV serializes a header plus rows back to CSV text for prompt
// injection. Only rows that survived the anonymity gate may be passed here.
func RenderCSV(header []string, rows [][]string) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)

	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("render CSV header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("render CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("render CSV: %w", err)
	}
	return b.String(), nil
}
