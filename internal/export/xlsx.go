package export

import (
	"bytes"
	"fmt"

	"github.com/SscSPs/budget_request_app/internal/core/domain"
	"github.com/xuri/excelize/v2"
)

const (
	requestsSheet = "Demandes"
	itemsSheet    = "Articles"
	dateLayout    = "02/01/2006"

	// ContentType is the MIME type of the produced workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var requestHeaders = []string{
	"Référence", "Titre", "Demandeur", "Département", "Catégorie", "Urgence",
	"Montant", "Statut", "Compte", "Validé par", "Validé le", "Créée le", "Mise à jour",
}

var itemHeaders = []string{"Référence demande", "Description", "Quantité", "Prix unitaire", "Total"}

// WriteRequests renders requests as a two-sheet workbook: one row per request
// and one row per line item.
func WriteRequests(list []domain.BudgetRequest) (buf *bytes.Buffer, err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing workbook: %w", cerr)
		}
	}()

	if err := f.SetSheetName("Sheet1", requestsSheet); err != nil {
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return nil, fmt.Errorf("creating items sheet: %w", err)
	}

	if err := writeHeader(f, requestsSheet, requestHeaders); err != nil {
		return nil, fmt.Errorf("writing request header: %w", err)
	}
	if err := writeHeader(f, itemsSheet, itemHeaders); err != nil {
		return nil, fmt.Errorf("writing item header: %w", err)
	}

	itemRow := 1
	for i, r := range list {
		if err := writeRow(f, requestsSheet, i+2, requestRow(r)); err != nil {
			return nil, fmt.Errorf("writing request %s: %w", r.ID, err)
		}
		for _, item := range r.Items {
			itemRow++
			row := []any{r.ID, item.Description, item.Quantity, item.UnitPrice.InexactFloat64(), item.TotalPrice.InexactFloat64()}
			if err := writeRow(f, itemsSheet, itemRow, row); err != nil {
				return nil, fmt.Errorf("writing item of %s: %w", r.ID, err)
			}
		}
	}

	if err := applyAmountFormat(f, requestsSheet, 7, len(list)+1); err != nil {
		return nil, err
	}
	if err := applyAmountFormat(f, itemsSheet, 4, itemRow); err != nil {
		return nil, err
	}
	if err := applyAmountFormat(f, itemsSheet, 5, itemRow); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}

func requestRow(r domain.BudgetRequest) []any {
	validatedBy, validatedAt := "", ""
	if r.ValidatedBy != nil {
		validatedBy = *r.ValidatedBy
	}
	if r.ValidatedAt != nil {
		validatedAt = r.ValidatedAt.Format(dateLayout)
	}
	account := ""
	if r.AccountCode != nil {
		account = *r.AccountCode
	}
	return []any{
		r.ID, r.Title, r.OwnerName, r.Department, r.Category, string(r.Urgency),
		r.Amount.InexactFloat64(), r.Status.Label(), account, validatedBy, validatedAt,
		r.CreatedAt.Format(dateLayout), r.UpdatedAt.Format(dateLayout),
	}
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	style, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Font:      &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return err
	}
	lastCell, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCell, style); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 22); err != nil {
		return err
	}
	values := make([]any, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	return writeRow(f, sheet, 1, values)
}

// applyAmountFormat gives column col a two-decimal number format down to lastRow.
func applyAmountFormat(f *excelize.File, sheet string, col, lastRow int) error {
	if lastRow < 2 {
		return nil
	}
	format := "#,##0.00"
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
	if err != nil {
		return err
	}
	from, err := excelize.CoordinatesToCellName(col, 2)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(col, lastRow)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, from, to, style)
}
