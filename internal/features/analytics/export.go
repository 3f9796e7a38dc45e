package analytics

import (
	"fmt"
	"time"

	"go-analytics/internal/features/datastore"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const exportSheet = "Results"

// WriteWorkbook lays rows out as a single sheet with a bold header row.
func WriteWorkbook(rows []datastore.ResultDocument, columns []string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, col); err != nil {
			return nil, err
		}
		f.SetCellStyle(exportSheet, cell, cell, headerStyle)
	}

	for rowIdx, row := range rows {
		for colIdx, col := range columns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(exportSheet, cell, cellValue(row[col])); err != nil {
				return nil, err
			}
		}
	}

	for i := range columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(exportSheet, col, col, 18)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellValue(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		return t.UTC().Format("2006-01-02 15:04:05")
	case primitive.DateTime:
		return t.Time().UTC().Format("2006-01-02 15:04:05")
	case primitive.Decimal128:
		return t.String()
	case string, bool, float64, float32, int, int32, int64:
		return t
	default:
		// nested documents and arrays
		return fmt.Sprint(t)
	}
}
