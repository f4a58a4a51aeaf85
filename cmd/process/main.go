// Command process runs one reconciliation over an aging report from
// the command line: local path or gs:// URI in, decorated workbook
// out.
package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/rise-pro/debt-aging/internal/drafts"
	"github.com/rise-pro/debt-aging/internal/gcsstore"
	"github.com/rise-pro/debt-aging/internal/ledger"
	"github.com/rise-pro/debt-aging/internal/logger"
	"github.com/rise-pro/debt-aging/internal/matching"
	"github.com/rise-pro/debt-aging/internal/workbook"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func main() {
	_ = godotenv.Load()

	var (
		input    = flag.String("input", "", "aging report: local path or gs:// URI (required)")
		output   = flag.String("output", "", "processed workbook path (defaults next to the input)")
		contacts = flag.String("contacts", "", "optional contacts workbook with supplier emails")
		company  = flag.String("company", os.Getenv("COMPANY_NAME"), "company name signing draft messages")
		bucket   = flag.String("upload-bucket", os.Getenv("GCS_BUCKET"), "optional GCS bucket to upload the processed workbook to")
	)
	flag.Parse()

	log := logger.New()
	ctx := context.Background()

	if *input == "" {
		log.Fatal().Msg("-input is required")
	}

	data, err := readInput(ctx, *input)
	if err != nil {
		log.Fatal().Err(err).Str("input", *input).Msg("Failed to read aging report")
	}

	l, err := workbook.ReadLedger(bytes.NewReader(data))
	if err != nil {
		log.Fatal().Err(err).Str("input", *input).Msg("Not a valid aging report")
	}
	defer l.Close()

	result := matching.NewEngine(matching.Config{}).Classify(l.Rows)

	dir := drafts.Directory{}
	if *contacts != "" {
		contactsFile, err := os.Open(*contacts)
		if err != nil {
			log.Fatal().Err(err).Str("contacts", *contacts).Msg("Failed to open contacts workbook")
		}
		dir, err = workbook.ReadContacts(contactsFile)
		contactsFile.Close()
		if err != nil {
			log.Fatal().Err(err).Str("contacts", *contacts).Msg("Failed to read contacts workbook")
		}
	}

	companyName := l.CompanyName
	if companyName == "" {
		companyName = *company
	}
	draftList := drafts.Build(result.CategoryRows(ledger.CategoryTransferTag), companyName, dir)

	if err := l.RenderProcessed(result, draftList); err != nil {
		log.Fatal().Err(err).Msg("Failed to render processed workbook")
	}

	outPath := *output
	if outPath == "" {
		outPath = "processed_" + inputFilename(*input)
	}

	out, err := os.Create(outPath)
	if err != nil {
		log.Fatal().Err(err).Str("output", outPath).Msg("Failed to create output file")
	}
	if err := l.Write(out); err != nil {
		out.Close()
		log.Fatal().Err(err).Str("output", outPath).Msg("Failed to write processed workbook")
	}
	if err := out.Close(); err != nil {
		log.Fatal().Err(err).Str("output", outPath).Msg("Failed to close output file")
	}

	totals := result.Totals()
	log.Info().
		Str("run_id", result.RunID).
		Str("output", outPath).
		Int("total_rows", result.TotalRows()).
		Int("exact", totals[ledger.CategoryExactMatch]).
		Int("tolerant", totals[ledger.CategoryTolerantMatch]).
		Int("global", totals[ledger.CategoryGlobalMatch]).
		Int("transfer", totals[ledger.CategoryTransferTag]).
		Int("special", totals[ledger.CategorySpecial]).
		Int("drafts", len(draftList)).
		Msg("Processing run completed")

	if *bucket != "" {
		processed, err := os.Open(outPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to reopen processed workbook for upload")
		}
		defer processed.Close()

		uri, err := gcsstore.Upload(ctx, *bucket, "processed/"+filepath.Base(outPath), contentTypeXLSX, processed)
		if err != nil {
			log.Fatal().Err(err).Str("bucket", *bucket).Msg("Failed to upload processed workbook")
		}
		log.Info().Str("gcs_uri", uri).Msg("Processed workbook uploaded")
	}
}

func readInput(ctx context.Context, input string) ([]byte, error) {
	if gcsstore.IsURI(input) {
		return gcsstore.Fetch(ctx, input)
	}
	return os.ReadFile(input)
}

func inputFilename(input string) string {
	if gcsstore.IsURI(input) {
		return gcsstore.Filename(input)
	}
	return filepath.Base(input)
}
