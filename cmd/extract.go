package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/KazanKK/mdbextract/internal/extract"
	"github.com/KazanKK/mdbextract/internal/metrics"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

func ExtractCommand() *cli.Command {
	return &cli.Command{
		Name:  "extract",
		Usage: "Export every user table of a database file to TSV files",
		Flags: append(append(inputFlags(), passwordFlags()...),
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "Directory for the TSV files (created if missing)",
				EnvVars: []string{"MDBEXTRACT_OUTPUT_DIR"},
			},
			&cli.StringFlag{
				Name:    "metrics-file",
				Usage:   "Write run metrics in Prometheus textfile format to this path",
				EnvVars: []string{"MDBEXTRACT_METRICS_FILE"},
			},
		),
		Action: func(c *cli.Context) error {
			rt, err := loadRuntime(c)
			if err != nil {
				return err
			}
			if c.IsSet("output-dir") {
				rt.config.OutputDir = c.String("output-dir")
			}
			if c.IsSet("metrics-file") {
				rt.config.MetricsFile = c.String("metrics-file")
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
			if rt.config.MetricsFile != "" {
				extractor.Metrics = metrics.NewRecorder()
			}

			input := c.String("input")
			files, err := extractor.Extract(input, rt.config.OutputDir)

			if rt.config.MetricsFile != "" {
				if merr := extractor.Metrics.WriteTextfile(rt.config.MetricsFile); merr != nil {
					rt.log.Warnf("Could not write metrics: %v", merr)
				}
			}
			if err != nil {
				return fmt.Errorf("extracting %s: %w", input, err)
			}

			printSummary(c, files)
			fmt.Fprintf(c.App.Writer, "\n✅ Extraction successful! %d tables written to %s\n", len(files), rt.config.OutputDir)
			return nil
		},
	}
}

// stdinFd is the descriptor --prompt-password reads from.
var stdinFd = func() int { return int(os.Stdin.Fd()) }

func passwordFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "password",
			Usage:   "Database password (skips recovery from the file header)",
			EnvVars: []string{"MDBEXTRACT_PASSWORD"},
		},
		&cli.BoolFlag{
			Name:  "prompt-password",
			Usage: "Read the database password from the terminal",
		},
	}
}

func readPassword(c *cli.Context) (string, error) {
	if !c.Bool("prompt-password") {
		return c.String("password"), nil
	}
	fd := stdinFd()
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("--prompt-password needs an interactive terminal")
	}
	fmt.Fprint(c.App.ErrWriter, "Database password: ")
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(c.App.ErrWriter)
	if err != nil {
		return "", fmt.Errorf("reading password: %v", err)
	}
	return string(pw), nil
}

func printSummary(c *cli.Context, files []extract.OutputFile) {
	if len(files) == 0 {
		fmt.Fprintln(c.App.Writer, "No user tables found.")
		return
	}
	table := tablewriter.NewWriter(c.App.Writer)
	table.SetHeader([]string{"Table", "Rows", "Size", "File"})
	table.SetBorder(false)
	table.SetColumnSeparator(" ")
	for _, f := range files {
		table.Append([]string{
			f.Table,
			strconv.FormatInt(f.Lines, 10),
			humanize.Bytes(uint64(f.Bytes)),
			filepath.Base(f.Path),
		})
	}
	table.Render()
}
