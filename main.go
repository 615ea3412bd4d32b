package main

import (
	"log"
	"os"

	"github.com/KazanKK/mdbextract/cmd"
	_ "github.com/KazanKK/mdbextract/database/odbctables"

	_ "github.com/alexbrainman/odbc"
	_ "github.com/marcboeker/go-duckdb"
	_ "modernc.org/sqlite"
)

func main() {
	app := cmd.NewApp()

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
