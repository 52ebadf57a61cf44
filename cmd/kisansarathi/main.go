package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "kisansarathi",
		Usage: "Farmer assistance API: documents, scheme eligibility and crop advisory",
		Commands: []*cli.Command{
			serveCommand,
			seedCommand,
			nanoidCommand,
			evaluateCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}
