package main

import (
	"context"

	"github.com/pressly/goose/v3"

	appfs "github.com/mkadlec/libris/fs"
)

var gooseRunFunc = goose.RunContext // mockable

func (cli *commandLine) migrate(args []string) error {
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	var rest []string
	if len(args) > 1 {
		rest = args[1:]
	}
	return gooseRunFunc(context.Background(), args[0], cli.db.DB, "migrations", rest...)
}
