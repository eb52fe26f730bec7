package main

import (
	"github.com/opsconsole/bluegreen-manager/internal/cli"
)

func main() {
	cli.Execute()
}
