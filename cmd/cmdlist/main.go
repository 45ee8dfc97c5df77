package main

import (
	"os"

	"github.com/harrison/cmdlist/internal/cmd"
)

func main() {
	os.Exit(cmd.Run(os.Args[1:], os.Stdout, os.Stderr))
}
