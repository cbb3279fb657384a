package main

import (
	"os"

	"askverba.app/server/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
