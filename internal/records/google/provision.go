package google

import (
	"context"
	"fmt"
	"log/slog"

	gsheet "google.golang.org/api/sheets/v4"
)

// Provision creates any missing worksheets with their header rows.
// Existing worksheets and their data are left untouched, so the call is
// safe to repeat.
func (c *Client) Provision(ctx context.Context) error {
	if c.svc == nil {
		return fmt.Errorf("sheets service not initialized")
	}

	headers := map[string][]interface{}{
		c.transactionsSheet: {"id", "owner", "kind", "date", "description", "amount", "category",
			"payer", "bank", "plan", "installment_dates", "recurring", "recurrence_count", "status"},
		c.goalsSheet: {"id", "owner", "description", "target", "current", "category", "due_date", "status"},
		c.usersSheet: {"username", "password_hash", "created_at"},
		c.metaSheet:  {"key", "next_id"},
	}
	order := []string{c.transactionsSheet, c.goalsSheet, c.usersSheet, c.metaSheet}

	resp, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets(properties(sheetId,title))").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet metadata: %w", err)
	}

	existing := make(map[string]bool)
	for _, sh := range resp.Sheets {
		if sh.Properties != nil {
			existing[sh.Properties.Title] = true
		}
	}

	var requests []*gsheet.Request
	var created []string
	for _, name := range order {
		if existing[name] {
			continue
		}
		requests = append(requests, &gsheet.Request{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: name},
			},
		})
		created = append(created, name)
	}

	if len(requests) > 0 {
		req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: requests}
		if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("create worksheets: %w", err)
		}
	}

	for _, name := range created {
		rng := fmt.Sprintf("%s!A1", name)
		header := &gsheet.ValueRange{Values: [][]interface{}{headers[name]}}
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, header).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("write header for %s: %w", name, err)
		}
		slog.InfoContext(ctx, "created worksheet", "sheet", name)
	}

	if len(created) == 0 {
		slog.InfoContext(ctx, "all worksheets already present")
	}

	c.InvalidateRowCache()
	return nil
}
