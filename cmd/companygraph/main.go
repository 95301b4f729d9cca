package main

import (
	"os"

	"github.com/turtacn/CompanyGraph-Intelligence/internal/interfaces/cli"
)

func main() {
	os.Exit(cli.Execute())
}
