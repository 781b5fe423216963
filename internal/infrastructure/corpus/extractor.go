package corpus

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/uinjkt-dev/campus-assistant/internal/core/domain"
)

// textColumn, when present, overrides the generated row rendering with
// curated text from the sheet itself.
const textColumn = "TEXT"

// Extractor turns CSV and XLSX tariff/program sheets into
// metadata-tagged documents, one per data row. Headers are normalized to
// uppercase with underscores so sheets from different admins line up.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, filename string, data io.Reader) ([]domain.CorpusDocument, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		rows, err = readCSV(data)
	case ".xlsx":
		rows, err = readXLSX(data)
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "extract rows",
			fmt.Errorf("unsupported file type: %s", filepath.Ext(filename)))
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, nil
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = normalizeHeader(h)
	}

	out := make([]domain.CorpusDocument, 0, len(rows)-1)
	for _, row := range rows[1:] {
		doc, ok := buildDocument(filename, headers, row)
		if !ok {
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}

func readCSV(data io.Reader) ([][]string, error) {
	reader := csv.NewReader(data)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func readXLSX(data io.Reader) ([][]string, error) {
	workbook, err := excelize.OpenReader(data)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}
	return rows, nil
}

// buildDocument renders one data row. The program and degree columns
// lead the text so entity matching sees them first; the rest follow in
// header order.
func buildDocument(filename string, headers []string, row []string) (domain.CorpusDocument, bool) {
	values := make(map[string]string, len(headers))
	empty := true
	for i, header := range headers {
		if header == "" || i >= len(row) {
			continue
		}
		value := strings.TrimSpace(row[i])
		if value == "" {
			continue
		}
		values[header] = value
		empty = false
	}
	if empty {
		return domain.CorpusDocument{}, false
	}

	prodi := valueOr(values, domain.MetaProdi, "UMUM")
	jenjang := valueOr(values, domain.MetaJenjang, "S1")

	content := values[textColumn]
	if content == "" {
		var b strings.Builder
		fmt.Fprintf(&b, "Prodi: %s | Jenjang: %s", prodi, jenjang)
		for i, header := range headers {
			if header == "" || header == domain.MetaProdi || header == domain.MetaJenjang || header == textColumn {
				continue
			}
			if i >= len(row) {
				continue
			}
			value := strings.TrimSpace(row[i])
			if value == "" {
				continue
			}
			fmt.Fprintf(&b, " | %s: %s", header, value)
		}
		content = b.String()
	}

	return domain.CorpusDocument{
		Content: content,
		Metadata: map[string]string{
			domain.MetaSource:   filename,
			domain.MetaKategori: valueOr(values, domain.MetaKategori, domain.KategoriKeuangan),
			domain.MetaJenjang:  jenjang,
			domain.MetaTipeData: valueOr(values, domain.MetaTipeData, "BIAYA"),
			domain.MetaProdi:    prodi,
		},
	}, true
}

func normalizeHeader(header string) string {
	header = strings.ToUpper(strings.TrimSpace(header))
	header = strings.ReplaceAll(header, " ", "_")
	return header
}

func valueOr(values map[string]string, key, fallback string) string {
	if v := values[key]; v != "" {
		return v
	}
	return fallback
}
