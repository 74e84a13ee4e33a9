package main

import (
	"os"

	"github.com/phpwatch/commitlog/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
