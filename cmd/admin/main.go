package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/rabetweb/internal/admin"
)

func main() {
	root := admin.NewRootCommand(admin.Open)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
