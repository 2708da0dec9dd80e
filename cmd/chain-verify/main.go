package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/ledger_core/config"
	"bitbucket.org/mmdatafocus/ledger_core/workflow"
)

// chain-verify recomputes every GL checksum for one company and reports the
// first broken link, if any. Run it read-only against production when an
// audit requires proof that the ledger has not been edited in place.
func main() {
	companyId := flag.String("company", "", "company id whose hash chain to verify")
	flag.Parse()

	if *companyId == "" {
		fmt.Fprintln(os.Stderr, "usage: chain-verify -company <company_id>")
		os.Exit(2)
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()

	verified, err := workflow.VerifyGLChain(db, *companyId)
	if err != nil {
		var integrityErr *workflow.ChainIntegrityError
		if errors.As(err, &integrityErr) {
			fmt.Fprintf(os.Stderr, "chain broken at seq %d (gl entry %d): stored %s, computed %s; %d rows verified before the break\n",
				integrityErr.ChainSeq, integrityErr.GLEntryId, integrityErr.Stored, integrityErr.Computed, verified)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "verification failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("chain intact for company %s: %d rows verified\n", *companyId, verified)
}
