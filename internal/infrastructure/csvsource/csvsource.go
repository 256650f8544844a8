// Package csvsource читает таблицы районов и ступеней пошлины из CSV.
package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"propinvest/internal/domain"
	"propinvest/internal/domain/entity"
	"propinvest/internal/domain/value"
	"propinvest/pkg/errcodes"
)

var ErrNoSource = errors.New("no readable source file")

// FirstExisting первый существующий непустой файл. Так полный набор данных
// подменяет встроенный пример, если он скачан.
func FirstExisting(paths ...string) (string, error) {
	for _, p := range paths {
		st, err := os.Stat(p)
		if err == nil && !st.IsDir() && st.Size() > 0 {
			return p, nil
		}
	}

	return "", fmt.Errorf("%s: %w", strings.Join(paths, ", "), ErrNoSource)
}

//nolint:gochecknoglobals
var (
	areaCodeColumns = []string{"area_code", "code", "sa2_code", "sa2_code_2021"}
	areaNameColumns = []string{"area_name", "name", "sa2_name", "sa2_name_2021"}
)

// ReadFeatures пустая ячейка означает отсутствие значения. Неизвестные столбцы игнорируются.
func ReadFeatures(r io.Reader) ([]entity.FeatureRow, error) {
	records, header, err := readAll(r)
	if err != nil {
		return nil, err
	}

	codeIdx := header.find(areaCodeColumns...)
	if codeIdx < 0 {
		return nil, domain.NewError(errcodes.InvalidInput, "area code column is missing")
	}

	nameIdx := header.find(areaNameColumns...)

	type factorColumn struct {
		factor value.Factor
		idx    int
	}

	var factorCols []factorColumn

	for _, f := range value.Factors() {
		if i := header.find(f.String()); i >= 0 {
			factorCols = append(factorCols, factorColumn{factor: f, idx: i})
		}
	}

	rows := make([]entity.FeatureRow, 0, len(records))

	for line, rec := range records {
		row := entity.FeatureRow{
			Code:   strings.TrimSpace(rec[codeIdx]),
			Values: make(map[value.Factor]*float64, len(factorCols)),
		}

		if nameIdx >= 0 {
			row.Name = strings.TrimSpace(rec[nameIdx])
		}

		for _, col := range factorCols {
			f := col.factor
			cell := strings.TrimSpace(rec[col.idx])
			if cell == "" || strings.EqualFold(cell, "NA") || strings.EqualFold(cell, "NaN") {
				row.Values[f] = nil
				continue
			}

			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, domain.WrapError(err, errcodes.InvalidInput,
					fmt.Sprintf("line %d: bad %s value %q", line+2, f, cell)) //nolint:mnd // заголовок + 1-based
			}

			row.Values[f] = &v
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// ReadBrackets порядок строк файла сохраняется.
func ReadBrackets(r io.Reader) (entity.BracketTable, error) {
	records, header, err := readAll(r)
	if err != nil {
		return nil, err
	}

	cols := map[string]int{
		"jurisdiction": header.find("jurisdiction", "state"),
		"occupancy":    header.find("occupancy"),
		"bracket_min":  header.find("bracket_min"),
		"bracket_max":  header.find("bracket_max"),
		"base":         header.find("base"),
		"rate":         header.find("marginal_rate_pct", "rate_pct"),
		"above":        header.find("marginal_above_threshold", "marginal_above"),
	}

	for _, name := range bracketColumns {
		if cols[name] < 0 {
			return nil, domain.NewError(errcodes.InvalidInput, fmt.Sprintf("bracket column %s is missing", name))
		}
	}

	table := make(entity.BracketTable, 0, len(records))

	for line, rec := range records {
		b, err := parseBracket(rec, cols)
		if err != nil {
			if domain.IsAppError(err) {
				return nil, fmt.Errorf("line %d: %w", line+2, err) //nolint:mnd
			}

			return nil, domain.WrapError(err, errcodes.InvalidInput, fmt.Sprintf("line %d", line+2)) //nolint:mnd
		}

		table = append(table, b)
	}

	return table, nil
}

// ReadFeaturesFile читает первый существующий из переданных файлов.
func ReadFeaturesFile(paths ...string) ([]entity.FeatureRow, string, error) {
	path, err := FirstExisting(paths...)
	if err != nil {
		return nil, "", err
	}

	fh, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("os.Open: %w", err)
	}
	defer fh.Close()

	rows, err := ReadFeatures(fh)
	if err != nil {
		return nil, "", fmt.Errorf("ReadFeatures(%s): %w", path, err)
	}

	return rows, path, nil
}

func ReadBracketsFile(paths ...string) (entity.BracketTable, string, error) {
	path, err := FirstExisting(paths...)
	if err != nil {
		return nil, "", err
	}

	fh, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("os.Open: %w", err)
	}
	defer fh.Close()

	table, err := ReadBrackets(fh)
	if err != nil {
		return nil, "", fmt.Errorf("ReadBrackets(%s): %w", path, err)
	}

	return table, path, nil
}

func parseBracket(rec []string, cols map[string]int) (entity.DutyBracket, error) {
	j, err := value.ParseJurisdiction(rec[cols["jurisdiction"]])
	if err != nil {
		return entity.DutyBracket{}, err
	}

	o, err := value.ParseOccupancy(rec[cols["occupancy"]])
	if err != nil {
		return entity.DutyBracket{}, err
	}

	num := func(key string) (decimal.Decimal, error) {
		cell := strings.TrimSpace(rec[cols[key]])

		d, err := decimal.NewFromString(cell)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%s %q: %w", key, cell, err)
		}

		return d, nil
	}

	b := entity.DutyBracket{Jurisdiction: j, Occupancy: o}

	for _, field := range []struct {
		key string
		dst *decimal.Decimal
	}{
		{"bracket_min", &b.BracketMin},
		{"bracket_max", &b.BracketMax},
		{"base", &b.Base},
		{"rate", &b.MarginalRatePct},
		{"above", &b.MarginalAboveThreshold},
	} {
		if *field.dst, err = num(field.key); err != nil {
			return entity.DutyBracket{}, err
		}
	}

	return b, nil
}

//nolint:gochecknoglobals
var bracketColumns = []string{"jurisdiction", "occupancy", "bracket_min", "bracket_max", "base", "rate", "above"}

type header map[string]int

func (h header) find(names ...string) int {
	for _, n := range names {
		if i, ok := h[n]; ok {
			return i
		}
	}

	return -1
}

func readAll(r io.Reader) ([][]string, header, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, domain.WrapError(err, errcodes.InvalidInput, "malformed CSV")
	}

	if len(records) == 0 {
		return nil, nil, domain.NewError(errcodes.InvalidInput, "CSV has no header")
	}

	h := make(header, len(records[0]))
	for i, name := range records[0] {
		h[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}

	return records[1:], h, nil
}
