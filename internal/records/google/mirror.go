package google

import (
	"context"
	"errors"
	"fmt"

	gsheet "google.golang.org/api/sheets/v4"

	"finanze/internal/core"
	"finanze/internal/records"
)

var _ records.Mirror = (*Client)(nil)

// Mirror operations keep a spreadsheet copy in step with the primary
// database. Unlike the append path they preserve the id the primary
// assigned; nextID scans existing ids, so mirrored rows can never be
// handed out again.

func (c *Client) UpsertTransaction(ctx context.Context, t core.Transaction) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	row := transactionToRow(t)
	return c.upsertRow(ctx, c.transactionsSheet, t.ID, row, len(row))
}

func (c *Client) RemoveTransaction(ctx context.Context, id int64) error {
	return c.removeRow(ctx, c.transactionsSheet, id)
}

func (c *Client) UpsertGoal(ctx context.Context, g core.Goal) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	row := goalToRow(g)
	return c.upsertRow(ctx, c.goalsSheet, g.ID, row, len(row))
}

func (c *Client) RemoveGoal(ctx context.Context, id int64) error {
	return c.removeRow(ctx, c.goalsSheet, id)
}

// upsertRow updates the row holding id in place, appending a fresh row
// when the id is not on the sheet yet.
func (c *Client) upsertRow(ctx context.Context, sheetName string, id int64, row []interface{}, width int) error {
	vr := &gsheet.ValueRange{Values: [][]interface{}{row}}

	rowNum, err := c.findRowByID(ctx, sheetName, id)
	switch {
	case err == nil:
		rng := fmt.Sprintf("%s!A%d:%s%d", sheetName, rowNum, columnLetter(width), rowNum)
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
			ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("update mirrored row %d in sheet %s: %w", rowNum, sheetName, err)
		}
	case errors.Is(err, records.ErrNotFound):
		rng := fmt.Sprintf("%s!A:%s", sheetName, columnLetter(width))
		_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
			ValueInputOption("USER_ENTERED").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("append mirrored row to sheet %s: %w", sheetName, err)
		}
	default:
		return err
	}

	c.InvalidateRowCache()
	return nil
}

// removeRow deletes the row holding id. A missing id is not an error:
// the mirror may already have caught up, or the row never made it over.
func (c *Client) removeRow(ctx context.Context, sheetName string, id int64) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rowNum, err := c.findRowByID(ctx, sheetName, id)
	if errors.Is(err, records.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return c.deleteRow(ctx, sheetName, rowNum)
}

// columnLetter maps a 1-based column count to its A1 letter. Sheets in
// this layout never pass column Z.
func columnLetter(n int) string {
	if n < 1 || n > 26 {
		return "Z"
	}
	return string(rune('A' + n - 1))
}
