package loader

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet is a raw table as read from a source, before renaming.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Fingerprint is a content hash of the header and every cell.
func (s *Sheet) Fingerprint() string {
	h := sha1.New()
	write := func(cells []string) {
		for _, c := range cells {
			io.WriteString(h, c)
			h.Write([]byte{0x1f})
		}
		h.Write([]byte{0x1e})
	}
	write(s.Header)
	for _, row := range s.Rows {
		write(row)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// SheetReader produces the raw order sheet from some source.
type SheetReader interface {
	Name() string
	ReadSheet(ctx context.Context) (*Sheet, error)
}

// xlsx files are zip archives.
var zipMagic = []byte("PK\x03\x04")

// DecodeSheet parses an xlsx or csv document. The format is chosen by file
// extension and falls back to sniffing the content. An empty sheet name
// selects the first sheet of a workbook.
func DecodeSheet(name string, data []byte, sheet string) (*Sheet, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return decodeXLSX(name, data, sheet)
	case ".csv":
		return decodeCSV(name, data)
	}
	if bytes.HasPrefix(data, zipMagic) {
		return decodeXLSX(name, data, sheet)
	}
	return decodeCSV(name, data)
}

func decodeXLSX(name string, data []byte, sheet string) (*Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file %s: %w", name, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("xlsx file %s has no sheets", name)
		}
		sheet = sheets[0]
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	var records [][]string
	for rows.Next() {
		// Raw values keep dates as serial numbers instead of locale formatted text.
		record, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read row from %s: %w", name, err)
		}
		records = append(records, record)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("error iterating rows in %s: %w", name, err)
	}

	return fromRecords(name, records), nil
}

func decodeCSV(name string, data []byte) (*Sheet, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv %s: %w", name, err)
	}
	return fromRecords(name, records), nil
}

func fromRecords(name string, records [][]string) *Sheet {
	s := &Sheet{Name: name}
	if len(records) == 0 {
		return s
	}
	s.Header = records[0]
	s.Rows = records[1:]
	return s
}
