package main

import (
	"os"

	"github.com/castboard/castboard/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
