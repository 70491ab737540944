package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/auth"
	"github.com/trezcool/markaz/core/authz"
	"github.com/trezcool/markaz/services/backend"
	logsvc "github.com/trezcool/markaz/services/logger"
)

func main() {
	logger := logsvc.NewConsoleLogger("ADMIN : ")

	conf := core.NewConfig()
	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())

	// start CLI
	cli := commandLine{
		authSvc: auth.NewService(backend.NewAuth(backend.NewClientFromConfig(conf)), validate),
		guard:   authz.NewGuard(authz.Sections),
		out:     os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %s", err), err)
		}
		os.Exit(1)
	}
}
