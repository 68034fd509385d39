package importer

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Row is one normalized statement line, keyed by canonical field
type Row struct {
	ClientName string
	VchNo      string
	VchType    string
	Date       string
	Debit      string
	Credit     string
}

// ReadStatement parses a CSV statement upload. The first headerOffset
// records are report preamble (titles, company name) and are discarded;
// the next record is the header row, everything after it is data.
func ReadStatement(r io.Reader, headerOffset int) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // report exports pad rows unevenly
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	if len(records) <= headerOffset {
		return nil, fmt.Errorf("statement has no header row (got %d rows, header offset %d)", len(records), headerOffset)
	}

	header := records[headerOffset]
	columns := ResolveColumns(header)
	if !columns.HasClientName() {
		return nil, fmt.Errorf("no client name column found in header %v", header)
	}

	var rows []Row
	for _, record := range records[headerOffset+1:] {
		rows = append(rows, Row{
			ClientName: columns.Get(record, FieldClientName),
			VchNo:      columns.Get(record, FieldVchNo),
			VchType:    columns.Get(record, FieldVchType),
			Date:       columns.Get(record, FieldDate),
			Debit:      columns.Get(record, FieldDebit),
			Credit:     columns.Get(record, FieldCredit),
		})
	}

	return rows, nil
}
