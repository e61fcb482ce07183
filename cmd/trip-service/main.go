package main

import (
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/tripservice"
)

func main() {
	if err := tripservice.Run(); err != nil {
		os.Exit(1)
	}
}
