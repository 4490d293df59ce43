// Command exportable converts tabular data between formats.
//
// Usage:
//
//	# List the output formats
//	exportable formats
//
//	# CSV to Parquet
//	exportable convert --input people.csv --output people.parquet
//
//	# Query results as a Markdown table on stdout
//	exportable convert --driver sqlite --dsn file:app.db --query 'SELECT * FROM users' --format md
//
//	# JSON lines to a zipped spreadsheet in S3
//	exportable convert --input events.jsonl --format xlsx --zip --s3-bucket exports --s3-key daily/events.xlsx.zip
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Execute(ctx)
	stop()
	os.Exit(code)
}
