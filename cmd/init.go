package cmd

import (
	"fmt"
	"os"

	utils "github.com/KazanKK/mdbextract/internal/utils"

	"github.com/urfave/cli/v2"
)

func InitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize mdbextract configuration file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "output-dir",
				Usage: "Directory for the TSV files",
				Value: "tsv",
			},
			&cli.StringFlag{
				Name:  "driver",
				Usage: "Database driver",
				Value: "jet",
			},
			&cli.StringFlag{
				Name:  "odbc-driver",
				Usage: "ODBC driver name used by the jet driver",
			},
		},
		Action: func(c *cli.Context) error {
			config := utils.DefaultConfig()

			// If no flags provided, keep what an existing config says
			if configPath, err := utils.FindConfigFile("."); err == nil {
				if existing, err := utils.ReadConfig(configPath); err == nil {
					config = existing
				}
			}
			if c.IsSet("output-dir") || config.OutputDir == "" {
				config.OutputDir = c.String("output-dir")
			}
			if c.IsSet("driver") || config.Driver == "" {
				config.Driver = c.String("driver")
			}
			if c.IsSet("odbc-driver") {
				config.ODBCDriver = c.String("odbc-driver")
			}

			if err := utils.WriteConfig(utils.ConfigFileName, config); err != nil {
				return err
			}

			// Create output directory if it doesn't exist
			if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
				return fmt.Errorf("creating output directory: %v", err)
			}

			fmt.Fprintf(c.App.Writer, "Created %s with output directory: %s\n", utils.ConfigFileName, config.OutputDir)
			return nil
		},
	}
}
