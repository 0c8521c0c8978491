package main

import (
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/kalenda/core"
	"github.com/trezcool/kalenda/storage/database"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func setup(t *testing.T) *commandLine {
	t.Helper()

	openDBFunc = func(conf *core.Config) (*sqlx.DB, error) { return nil, nil }
	t.Cleanup(func() { openDBFunc = openDB })

	return &commandLine{
		conf:   &core.Config{},
		logger: nopLogger{},
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantCmd    string
}

func Test_commandLine_run(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "importfeed: no url", args: []string{"importfeed"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	var gotCmd string
	migrateRunFunc = func(db *sqlx.DB, command string, args ...string) error {
		gotCmd = command
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version", "fix": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s requires a VERSION argument", command)
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}
	t.Cleanup(func() { migrateRunFunc = database.MigrateCmd })

	tests := []cliTest{
		{name: "defaults to up", args: []string{"migrate"}, wantCmd: "up"},
		{name: "up", args: []string{"migrate", "up"}, wantCmd: "up"},
		{name: "down", args: []string{"migrate", "down"}, wantCmd: "down"},
		{name: "status", args: []string{"migrate", "status"}, wantCmd: "status"},
		{name: "version", args: []string{"migrate", "version"}, wantCmd: "version"},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}, wantCmd: "up-to"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to requires a VERSION argument"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to requires a VERSION argument"},
		{name: "unknown migration command", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			gotCmd = ""
			err := cli.run(args)
			if tt.wantErrStr != "" {
				if err == nil || err.Error() != tt.wantErrStr {
					t.Errorf("cli.run() error = %v, wantErrStr %s", err, tt.wantErrStr)
				}
				return
			}
			if err != nil {
				t.Errorf("cli.run() unexpected error = %v", err)
			}
			if gotCmd != tt.wantCmd {
				t.Errorf("cli.run() dispatched %q, want %q", gotCmd, tt.wantCmd)
			}
		})
	}
}
