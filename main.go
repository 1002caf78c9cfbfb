package main

import (
	"log"

	"github.com/emberops/wildfire/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
