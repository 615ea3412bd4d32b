package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/KazanKK/mdbextract/internal/password"

	"github.com/urfave/cli/v2"
)

func PasswordCommand() *cli.Command {
	return &cli.Command{
		Name:  "password",
		Usage: "Recover the password stored in a Jet database file header",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Required: true,
				Usage:    "Database file to read",
			},
		},
		Action: func(c *cli.Context) error {
			input := c.String("input")
			pw, err := password.Recover(input)
			switch {
			case errors.Is(err, password.ErrUnrecognized):
				fmt.Fprintf(c.App.Writer, "Password header of %s not recognized; the file is probably not a Jet 3 database.\n", input)
				return nil
			case err != nil:
				return fmt.Errorf("recovering password: %w", err)
			}

			if pw == "" {
				fmt.Fprintf(c.App.Writer, "%s is not password protected.\n", input)
				return nil
			}
			fmt.Fprintf(c.App.Writer, "Password: %s\n", pw)
			fmt.Fprintf(c.App.Writer, "Hex:      %s\n", hex.EncodeToString([]byte(pw)))
			return nil
		},
	}
}
