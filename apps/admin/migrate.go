package main

import (
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/kalenda/storage/database"
)

var migrateRunFunc = database.MigrateCmd // mockable

func (cli *commandLine) migrate(db *sqlx.DB, args []string) error {
	command := "up"
	arguments := make([]string, 0)
	if len(args) > 0 {
		command = args[0]
		arguments = append(arguments, args[1:]...)
	}
	return migrateRunFunc(db, command, arguments...)
}
