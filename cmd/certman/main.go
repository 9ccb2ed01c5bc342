package main

import (
	"github.com/ksyq12/certman/internal/cli"
	_ "github.com/ksyq12/certman/internal/challenge" // Register challenge providers
)

// version is set by goreleaser via ldflags
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.Execute()
}
