package main

import "github.com/greenobird/service-booking/internal/cli"

func main() {
	cli.Execute()
}
