// cmd/hybgo/main.go
package main

import (
	"os"

	"hybgo/internal/commands"
)

func main() {
	os.Exit(commands.Execute())
}
