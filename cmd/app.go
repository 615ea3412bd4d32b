package cmd

import (
	"fmt"
	"strings"

	db "github.com/KazanKK/mdbextract/database"
	utils "github.com/KazanKK/mdbextract/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// NewApp assembles the mdbextract command line.
func NewApp() *cli.App {
	return &cli.App{
		Name:  "mdbextract",
		Usage: "A CLI tool to extract legacy database tables into TSV files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"MDBEXTRACT_LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			InitCommand(),
			ExtractCommand(),
			TablesCommand(),
			PasswordCommand(),
		},
	}
}

// inputFlags are shared by every command that opens a database file.
func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "input",
			Aliases:  []string{"i"},
			Required: true,
			Usage:    "Database file to read",
		},
		&cli.StringFlag{
			Name:    "driver",
			Usage:   fmt.Sprintf("Database driver (%s)", strings.Join(db.Dialects(), ", ")),
			EnvVars: []string{"MDBEXTRACT_DRIVER"},
		},
		&cli.StringFlag{
			Name:    "odbc-driver",
			Usage:   "ODBC driver name used by the jet driver (e.g. MDBTools)",
			EnvVars: []string{"MDBEXTRACT_ODBC_DRIVER"},
		},
	}
}

type runtime struct {
	config *utils.Config
	log    *logrus.Entry
}

// loadRuntime merges the config file with the command line and builds the
// run's logger.
func loadRuntime(c *cli.Context) (*runtime, error) {
	config, configPath, err := utils.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if c.IsSet("log-level") {
		config.LogLevel = c.String("log-level")
	}
	if c.IsSet("driver") {
		config.Driver = c.String("driver")
	}
	if c.IsSet("odbc-driver") {
		config.ODBCDriver = c.String("odbc-driver")
	}

	logger, err := utils.NewLogger(c.App.ErrWriter, config.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}
	log := logger.WithField("run_id", uuid.New().String())
	if configPath != "" {
		log.Debugf("Using config file %s", configPath)
	}
	return &runtime{config: config, log: log}, nil
}

func (r *runtime) driver() (*db.SQLDriver, error) {
	return db.NewSQLDriver(r.config.Driver, db.Options{ODBCDriver: r.config.ODBCDriver}, r.log)
}
