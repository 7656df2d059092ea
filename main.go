package main

import (
	"github.com/ColonelBlimp/cwos/cmd"
	"github.com/ColonelBlimp/cwos/internal/recovery"
)

func main() {
	defer recovery.HandlePanic()
	cmd.Execute()
}
