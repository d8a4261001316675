package main

import (
	"fmt"
	"os"

	"github.com/aussiebroadwan/siteauth/internal/auth/command"
)

func main() {
	if err := command.App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "siteauth: %v\n", err)
		os.Exit(1)
	}
}
