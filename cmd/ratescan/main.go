// Command ratescan scrapes lending-rate tables from protocol dashboards and
// exports the records it finds.
//
//	ratescan --format json,csv,sqlite --out ./data
//	ratescan extract page.html --label mainnet
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
