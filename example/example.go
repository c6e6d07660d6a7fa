package main

import (
	"context"
	"os"

	"github.com/root4loot/oemcert"
	"github.com/root4loot/oemcert/pkg/log"
)

func main() {
	runner := oemcert.NewRunnerWithOptions(&oemcert.Options{
		Token: os.Getenv("OEMCERT_TOKEN"),
	})

	entries, err := runner.Fetch(context.Background())
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}

	if err := oemcert.WriteEntries(os.Stdout, entries, oemcert.FormatPair); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}
