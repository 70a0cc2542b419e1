package main

import (
	"github.com/silica-lang/go-silica/pkg/cmd"
)

func main() {
	cmd.Execute()
}
