package main

import (
	"os"

	"github.com/nymphium/graft/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
