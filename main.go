package main

import (
	"os"

	"github.com/baslie/yandex-reviews-to-md/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
