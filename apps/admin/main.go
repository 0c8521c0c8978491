package main

import (
	"fmt"
	"log"
	"os"

	logsvc "github.com/trezcool/kalenda/services/logger"

	"github.com/trezcool/kalenda/core"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	cli := &commandLine{conf: conf, logger: logger}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Printf("%+v\n", err)
		}
		os.Exit(1)
	}
}
