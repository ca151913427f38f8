package main

import (
	"github.com/trezcool/goose"

	appfs "github.com/trezcool/shule/fs"
	"github.com/trezcool/shule/storage/database"
)

var gooseRunFunc = goose.RunFS // mockable

func (cli *commandLine) migrate(args []string) error {
	db, err := database.Open(cli.conf)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(args[0], db, appfs.FS, "migrations", arguments...)
}
