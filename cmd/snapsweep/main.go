package main

import (
	"fmt"
	"os"

	"github.com/calderaops/snapsweep/internal/app"
	serrors "github.com/calderaops/snapsweep/internal/errors"
)

func main() {
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(serrors.ExitCode(err))
	}
}
