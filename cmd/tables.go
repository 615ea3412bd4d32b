package cmd

import (
	"fmt"

	db "github.com/KazanKK/mdbextract/database"
	"github.com/KazanKK/mdbextract/internal/extract"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
)

func TablesCommand() *cli.Command {
	return &cli.Command{
		Name:  "tables",
		Usage: "List the catalog entries of a database file and which of them would be exported",
		Flags: append(inputFlags(), passwordFlags()...),
		Action: func(c *cli.Context) error {
			rt, err := loadRuntime(c)
			if err != nil {
				return err
			}
			driver, err := rt.driver()
			if err != nil {
				return err
			}

			extractor := extract.New(driver, rt.log)
			extractor.Password, err = readPassword(c)
			if err != nil {
				return err
			}

			input := c.String("input")
			conn, err := extractor.Open(input)
			if err != nil {
				return fmt.Errorf("opening %s: %w", input, err)
			}
			defer conn.Close()

			descriptors, err := conn.ListTables()
			if err != nil {
				return fmt.Errorf("listing tables: %w", err)
			}

			fmt.Fprintf(c.App.Writer, "Tables in %s:\n", input)
			fmt.Fprintln(c.App.Writer, "-----------------------------")
			if len(descriptors) == 0 {
				fmt.Fprintln(c.App.Writer, "No tables found.")
				return nil
			}

			table := tablewriter.NewWriter(c.App.Writer)
			table.SetHeader([]string{"Name", "Kind", "Exported"})
			table.SetBorder(false)
			table.SetColumnSeparator(" ")
			for _, d := range descriptors {
				exported := "no"
				if d.Kind == db.KindTable {
					exported = "yes"
				}
				table.Append([]string{d.Name, d.Kind.String(), exported})
			}
			table.Render()
			return nil
		},
	}
}
