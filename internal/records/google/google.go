// Package google keeps the records in one spreadsheet, three data
// worksheets plus a meta worksheet holding the id counters. Reads go
// through a short-lived cache; every write invalidates it. Counter
// updates are not atomic, concurrent writers are out of scope.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"finanze/internal/core"
	"finanze/internal/records"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const defaultCacheTTL = 2 * time.Minute

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	goalsSheet        string
	usersSheet        string
	metaSheet         string

	mu                 sync.Mutex
	cacheValidDuration time.Duration
	valueCache         map[string]cachedValues
	cacheExpiresAt     time.Time
	sheetIDs           map[string]int64
}

type cachedValues struct {
	values    [][]interface{}
	expiresAt time.Time
}

// Ensure interface conformance
var (
	_ records.TransactionReader = (*Client)(nil)
	_ records.TransactionWriter = (*Client)(nil)
	_ records.GoalReader        = (*Client)(nil)
	_ records.GoalWriter        = (*Client)(nil)
	_ records.UserStore         = (*Client)(nil)
)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Optional worksheet names: GOOGLE_TRANSACTIONS_SHEET_NAME (default
// "Transactions"), GOOGLE_GOALS_SHEET_NAME (default "Goals"),
// GOOGLE_USERS_SHEET_NAME (default "Users"), GOOGLE_META_SHEET_NAME
// (default "Meta"). CACHE_TTL tunes the read cache.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	transactions := strings.TrimSpace(os.Getenv("GOOGLE_TRANSACTIONS_SHEET_NAME"))
	if transactions == "" {
		transactions = "Transactions"
	}
	goals := strings.TrimSpace(os.Getenv("GOOGLE_GOALS_SHEET_NAME"))
	if goals == "" {
		goals = "Goals"
	}
	users := strings.TrimSpace(os.Getenv("GOOGLE_USERS_SHEET_NAME"))
	if users == "" {
		users = "Users"
	}
	meta := strings.TrimSpace(os.Getenv("GOOGLE_META_SHEET_NAME"))
	if meta == "" {
		meta = "Meta"
	}

	ttl := defaultCacheTTL
	if v := strings.TrimSpace(os.Getenv("CACHE_TTL")); v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse CACHE_TTL: %w", err)
		}
		ttl = parsed
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:                svc,
		spreadsheetID:      spreadsheetID,
		transactionsSheet:  transactions,
		goalsSheet:         goals,
		usersSheet:         users,
		metaSheet:          meta,
		cacheValidDuration: ttl,
		valueCache:         make(map[string]cachedValues),
		sheetIDs:           make(map[string]int64),
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

// readValues returns the sheet body (header excluded) through the cache.
func (c *Client) readValues(ctx context.Context, sheetName, colRange string) ([][]interface{}, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!%s", sheetName, colRange)

	if values, ok := c.cacheGet(rng); ok {
		return values, nil
	}

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	values := resp.Values
	if len(values) > 0 {
		values = values[1:] // drop header
	}

	c.cachePut(rng, values)
	return values, nil
}

func (c *Client) cacheGet(rng string) ([][]interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.valueCache[rng]
	if !ok || !time.Now().Before(entry.expiresAt) {
		return nil, false
	}
	return entry.values, true
}

func (c *Client) cachePut(rng string, values [][]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valueCache == nil {
		c.valueCache = make(map[string]cachedValues)
	}
	expires := time.Now().Add(c.cacheValidDuration)
	c.valueCache[rng] = cachedValues{values: values, expiresAt: expires}
	c.cacheExpiresAt = expires
}

// InvalidateRowCache drops every cached read so the next one hits the API.
func (c *Client) InvalidateRowCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valueCache = make(map[string]cachedValues)
	c.cacheExpiresAt = time.Time{}
}

func (c *Client) ListTransactions(ctx context.Context, owner string) ([]core.Transaction, error) {
	values, err := c.readValues(ctx, c.transactionsSheet, transactionRange)
	if err != nil {
		return nil, err
	}

	var out []core.Transaction
	for i, row := range values {
		t, err := parseTransactionRow(toStrings(row))
		if err != nil {
			slog.WarnContext(ctx, "skipping unreadable transaction row",
				"sheet", c.transactionsSheet, "row", i+2, "error", err)
			continue
		}
		if t.Owner == owner {
			out = append(out, t)
		}
	}
	return out, nil
}

func (c *Client) GetTransaction(ctx context.Context, owner string, id int64) (core.Transaction, error) {
	txs, err := c.ListTransactions(ctx, owner)
	if err != nil {
		return core.Transaction{}, err
	}
	for _, t := range txs {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, records.ErrNotFound)
}

func (c *Client) AppendTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	if c.svc == nil {
		return 0, errors.New("sheets service not initialized")
	}

	id, err := c.nextID(ctx, "transaction", c.transactionsSheet)
	if err != nil {
		return 0, err
	}
	t.ID = id

	rng := fmt.Sprintf("%s!%s", c.transactionsSheet, transactionRange)
	vr := &gsheet.ValueRange{Values: [][]interface{}{transactionToRow(t)}}
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("append to sheet %s: %w", c.transactionsSheet, err)
	}

	c.InvalidateRowCache()
	return id, nil
}

func (c *Client) UpdateTransaction(ctx context.Context, owner string, id int64, patch core.TransactionPatch) error {
	rowNum, err := c.findRowByID(ctx, c.transactionsSheet, id)
	if err != nil {
		return err
	}

	current, err := c.readTransactionRow(ctx, rowNum)
	if err != nil {
		return err
	}
	if current.Owner != owner {
		return fmt.Errorf("transaction %d: %w", id, records.ErrNotFound)
	}

	updated, err := patch.Apply(current)
	if err != nil {
		return err
	}

	rng := fmt.Sprintf("%s!A%d:N%d", c.transactionsSheet, rowNum, rowNum)
	vr := &gsheet.ValueRange{Values: [][]interface{}{transactionToRow(updated)}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update row %d in sheet %s: %w", rowNum, c.transactionsSheet, err)
	}

	c.InvalidateRowCache()
	return nil
}

func (c *Client) DeleteTransaction(ctx context.Context, owner string, id int64) error {
	rowNum, err := c.findRowByID(ctx, c.transactionsSheet, id)
	if err != nil {
		return err
	}

	current, err := c.readTransactionRow(ctx, rowNum)
	if err != nil {
		return err
	}
	if current.Owner != owner {
		return fmt.Errorf("transaction %d: %w", id, records.ErrNotFound)
	}

	return c.deleteRow(ctx, c.transactionsSheet, rowNum)
}

func (c *Client) readTransactionRow(ctx context.Context, rowNum int) (core.Transaction, error) {
	rng := fmt.Sprintf("%s!A%d:N%d", c.transactionsSheet, rowNum, rowNum)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("read %s: %w", rng, err)
	}
	if len(resp.Values) == 0 {
		return core.Transaction{}, records.ErrNotFound
	}
	return parseTransactionRow(toStrings(resp.Values[0]))
}

func (c *Client) ListGoals(ctx context.Context, owner string) ([]core.Goal, error) {
	values, err := c.readValues(ctx, c.goalsSheet, goalRange)
	if err != nil {
		return nil, err
	}

	var out []core.Goal
	for i, row := range values {
		g, err := parseGoalRow(toStrings(row))
		if err != nil {
			slog.WarnContext(ctx, "skipping unreadable goal row",
				"sheet", c.goalsSheet, "row", i+2, "error", err)
			continue
		}
		if g.Owner == owner {
			out = append(out, g)
		}
	}
	return out, nil
}

func (c *Client) GetGoal(ctx context.Context, owner string, id int64) (core.Goal, error) {
	goals, err := c.ListGoals(ctx, owner)
	if err != nil {
		return core.Goal{}, err
	}
	for _, g := range goals {
		if g.ID == id {
			return g, nil
		}
	}
	return core.Goal{}, fmt.Errorf("goal %d: %w", id, records.ErrNotFound)
}

func (c *Client) AppendGoal(ctx context.Context, g core.Goal) (int64, error) {
	if g.Status == "" {
		g.Status = core.GoalInProgress
	}
	if err := g.Validate(); err != nil {
		return 0, err
	}
	if c.svc == nil {
		return 0, errors.New("sheets service not initialized")
	}

	id, err := c.nextID(ctx, "goal", c.goalsSheet)
	if err != nil {
		return 0, err
	}
	g.ID = id

	rng := fmt.Sprintf("%s!%s", c.goalsSheet, goalRange)
	vr := &gsheet.ValueRange{Values: [][]interface{}{goalToRow(g)}}
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("append to sheet %s: %w", c.goalsSheet, err)
	}

	c.InvalidateRowCache()
	return id, nil
}

func (c *Client) UpdateGoal(ctx context.Context, owner string, id int64, patch core.GoalPatch) error {
	return c.rewriteGoal(ctx, owner, id, func(g core.Goal) (core.Goal, error) {
		return patch.Apply(g)
	})
}

func (c *Client) AddGoalProgress(ctx context.Context, owner string, id int64, amount core.Money) error {
	return c.rewriteGoal(ctx, owner, id, func(g core.Goal) (core.Goal, error) {
		if err := g.AddProgress(amount); err != nil {
			return core.Goal{}, err
		}
		return g, nil
	})
}

func (c *Client) CompleteGoal(ctx context.Context, owner string, id int64) error {
	return c.rewriteGoal(ctx, owner, id, func(g core.Goal) (core.Goal, error) {
		g.Complete()
		return g, nil
	})
}

// rewriteGoal reads the goal's row, applies mutate, and writes it back.
func (c *Client) rewriteGoal(ctx context.Context, owner string, id int64, mutate func(core.Goal) (core.Goal, error)) error {
	rowNum, err := c.findRowByID(ctx, c.goalsSheet, id)
	if err != nil {
		return err
	}

	rng := fmt.Sprintf("%s!A%d:H%d", c.goalsSheet, rowNum, rowNum)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", rng, err)
	}
	if len(resp.Values) == 0 {
		return fmt.Errorf("goal %d: %w", id, records.ErrNotFound)
	}

	current, err := parseGoalRow(toStrings(resp.Values[0]))
	if err != nil {
		return fmt.Errorf("goal %d: %w", id, err)
	}
	if current.Owner != owner {
		return fmt.Errorf("goal %d: %w", id, records.ErrNotFound)
	}

	updated, err := mutate(current)
	if err != nil {
		return err
	}

	vr := &gsheet.ValueRange{Values: [][]interface{}{goalToRow(updated)}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update row %d in sheet %s: %w", rowNum, c.goalsSheet, err)
	}

	c.InvalidateRowCache()
	return nil
}

func (c *Client) DeleteGoal(ctx context.Context, owner string, id int64) error {
	rowNum, err := c.findRowByID(ctx, c.goalsSheet, id)
	if err != nil {
		return err
	}

	rng := fmt.Sprintf("%s!A%d:H%d", c.goalsSheet, rowNum, rowNum)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", rng, err)
	}
	if len(resp.Values) == 0 {
		return fmt.Errorf("goal %d: %w", id, records.ErrNotFound)
	}
	current, err := parseGoalRow(toStrings(resp.Values[0]))
	if err != nil {
		return fmt.Errorf("goal %d: %w", id, err)
	}
	if current.Owner != owner {
		return fmt.Errorf("goal %d: %w", id, records.ErrNotFound)
	}

	return c.deleteRow(ctx, c.goalsSheet, rowNum)
}

func (c *Client) CreateUser(ctx context.Context, u core.User) error {
	_, err := c.FindUser(ctx, u.Username)
	if err == nil {
		return fmt.Errorf("user %q: %w", u.Username, records.ErrUserExists)
	}
	if !errors.Is(err, records.ErrUserNotFound) {
		return err
	}

	rng := fmt.Sprintf("%s!%s", c.usersSheet, userRange)
	vr := &gsheet.ValueRange{Values: [][]interface{}{userToRow(u)}}
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", c.usersSheet, err)
	}

	c.InvalidateRowCache()
	return nil
}

func (c *Client) FindUser(ctx context.Context, username string) (core.User, error) {
	values, err := c.readValues(ctx, c.usersSheet, userRange)
	if err != nil {
		return core.User{}, err
	}

	for i, row := range values {
		u, err := parseUserRow(toStrings(row))
		if err != nil {
			slog.WarnContext(ctx, "skipping unreadable user row",
				"sheet", c.usersSheet, "row", i+2, "error", err)
			continue
		}
		if u.Username == username {
			return u, nil
		}
	}
	return core.User{}, fmt.Errorf("user %q: %w", username, records.ErrUserNotFound)
}

// nextID hands out max+1 style identifiers backed by the meta worksheet.
// The counter survives deletes; a wiped counter falls back to scanning the
// data sheet so ids still move strictly forward.
func (c *Client) nextID(ctx context.Context, key, dataSheet string) (int64, error) {
	metaRng := fmt.Sprintf("%s!A:B", c.metaSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, metaRng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", metaRng, err)
	}

	metaNext := int64(0)
	metaRow := -1
	for i, row := range resp.Values {
		cols := toStrings(row)
		if len(cols) >= 1 && cols[0] == key {
			metaRow = i + 1
			if len(cols) >= 2 {
				if v, err := strconv.ParseInt(cols[1], 10, 64); err == nil {
					metaNext = v
				}
			}
			break
		}
	}

	maxID, err := c.maxID(ctx, dataSheet)
	if err != nil {
		return 0, err
	}

	next := metaNext
	if maxID+1 > next {
		next = maxID + 1
	}
	if next < 1 {
		next = 1
	}

	counter := &gsheet.ValueRange{Values: [][]interface{}{{key, next + 1}}}
	if metaRow > 0 {
		rng := fmt.Sprintf("%s!A%d:B%d", c.metaSheet, metaRow, metaRow)
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, counter).
			ValueInputOption("RAW").Context(ctx).Do()
	} else {
		_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, metaRng, counter).
			ValueInputOption("RAW").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).Do()
	}
	if err != nil {
		return 0, fmt.Errorf("advance %s counter: %w", key, err)
	}

	return next, nil
}

func (c *Client) maxID(ctx context.Context, sheetName string) (int64, error) {
	rng := fmt.Sprintf("%s!A:A", sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}

	var max int64
	for i, row := range resp.Values {
		if i == 0 || len(row) == 0 {
			continue // header
		}
		if v, err := strconv.ParseInt(strings.TrimSpace(fmt.Sprint(row[0])), 10, 64); err == nil && v > max {
			max = v
		}
	}
	return max, nil
}

// findRowByID locates a record's 1-based row number by scanning the id
// column fresh, so writes never aim at a stale cached position.
func (c *Client) findRowByID(ctx context.Context, sheetName string, id int64) (int, error) {
	if c.svc == nil {
		return 0, errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}

	for i, row := range resp.Values {
		if i == 0 || len(row) == 0 {
			continue // header
		}
		v, err := strconv.ParseInt(strings.TrimSpace(fmt.Sprint(row[0])), 10, 64)
		if err != nil {
			continue
		}
		if v == id {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("id %d in sheet %s: %w", id, sheetName, records.ErrNotFound)
}

// deleteRow removes the row for good via DeleteDimension.
func (c *Client) deleteRow(ctx context.Context, sheetName string, rowNum int) error {
	sheetID, err := c.sheetID(ctx, sheetName)
	if err != nil {
		return err
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowNum - 1),
					EndIndex:   int64(rowNum),
				},
			},
		}},
	}

	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("delete row %d in sheet %s: %w", rowNum, sheetName, err)
	}

	c.InvalidateRowCache()
	return nil
}

func (c *Client) sheetID(ctx context.Context, sheetName string) (int64, error) {
	c.mu.Lock()
	if id, ok := c.sheetIDs[sheetName]; ok {
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	resp, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets(properties(sheetId,title))").
		Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet metadata: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sh := range resp.Sheets {
		if sh.Properties != nil {
			c.sheetIDs[sh.Properties.Title] = sh.Properties.SheetId
		}
	}
	id, ok := c.sheetIDs[sheetName]
	if !ok {
		return 0, fmt.Errorf("worksheet %q not found in spreadsheet", sheetName)
	}
	return id, nil
}
