package main

import (
	"os"

	"github.com/possuite/backoffice/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
