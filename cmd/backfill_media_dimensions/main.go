package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/yungbote/overlay-backend/internal/app"
	"github.com/yungbote/overlay-backend/internal/platform/dbctx"
)

func main() {
	var dryRun bool
	var limit int
	flag.BoolVar(&dryRun, "dry-run", false, "probe files but do not write dimensions")
	flag.IntVar(&limit, "limit", 0, "limit number of media rows processed")
	flag.Parse()

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	rep, err := application.Services.Media.BackfillDimensions(dbctx.New(context.Background()), limit, dryRun)
	if err != nil {
		fmt.Printf("backfill: %v\n", err)
		application.Close()
		os.Exit(1)
	}
	fmt.Printf("scanned=%d updated=%d failed=%d dry_run=%v\n", rep.Scanned, rep.Updated, rep.Failed, dryRun)
}
