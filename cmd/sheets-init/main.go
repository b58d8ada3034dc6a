// Command sheets-init prepares the Google spreadsheet used by the
// sheets backend and the mirror worker: it creates the Transactions,
// Goals, Users and Meta worksheets with header rows when they are
// missing. Run it once per spreadsheet.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"finanze/internal/cli"
	gsheet "finanze/internal/records/google"
)

func main() {
	cli.LoadEnvFile()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := gsheet.NewFromEnv(ctx)
	if err != nil {
		log.Fatalf("sheets client: %v", err)
	}

	if err := client.Provision(ctx); err != nil {
		log.Fatalf("provision spreadsheet: %v", err)
	}

	fmt.Fprintln(os.Stdout, "Spreadsheet ready.")
}
