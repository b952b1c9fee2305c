package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mkadlec/libris/core"
	"github.com/mkadlec/libris/storage/database"
)

var errHelp = errors.New("help provided")

// staffMailStore is the slice of the catalog the CLI needs.
type staffMailStore interface {
	StaffEmail(ctx context.Context) (string, error)
	SetStaffEmail(ctx context.Context, email string) error
}

type commandLine struct {
	conf    *core.Config
	db      *sqlx.DB
	catalog staffMailStore
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  createdb                   - create the app database and user if missing")
	fmt.Println("  migrate COMMAND [ARGS]     - run a goose migration command (up, down, status, ...)")
	fmt.Println("  setstaffmail -email EMAIL  - set the address staff notices are sent to")
	fmt.Println("  staffmail                  - print the configured staff address")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	setStaffMailCmd := flag.NewFlagSet("setstaffmail", flag.ExitOnError)
	setStaffMailEmail := setStaffMailCmd.String("email", "", "The email address staff notices are sent to.")

	switch args[1] {
	case "createdb":
		return database.CreateIfNotExist(cli.conf)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "setstaffmail":
		if err := setStaffMailCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *setStaffMailEmail == "" {
			setStaffMailCmd.Usage()
			return errHelp
		}
		return cli.catalog.SetStaffEmail(context.Background(), core.CleanString(*setStaffMailEmail, true /* lower */))
	case "staffmail":
		email, err := cli.catalog.StaffEmail(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(email)
		return nil
	default:
		cli.printUsage()
		return errHelp
	}
}
