package main

import (
	"os"

	"github.com/dsfleet/dsfleet/cmd/dsfleet"
)

func main() {
	os.Exit(dsfleet.Main())
}
