package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/markaz/core/auth"
	"github.com/trezcool/markaz/core/authz"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	authSvc *auth.Service
	guard   *authz.Guard
	out     io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  signin -email EMAIL - sign in against the backend and show what the role can open")
	fmt.Fprintln(cli.out, "  routes -role ROLE - show the route guard decision for every section")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	signInCmd := flag.NewFlagSet("signin", flag.ContinueOnError)
	signInCmd.SetOutput(cli.out)
	signInEmail := signInCmd.String("email", "", "The staff member's email. The password will be prompted next.")

	routesCmd := flag.NewFlagSet("routes", flag.ContinueOnError)
	routesCmd.SetOutput(cli.out)
	routesRole := routesCmd.String("role", "", "One of: admin, manager, teacher, developer, user.")

	switch args[1] {
	case "signin":
		if err := signInCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *signInEmail == "" {
			signInCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			signInCmd.Usage()
			return errHelp
		}
		return cli.signIn(*signInEmail, string(pwd))
	case "routes":
		if err := routesCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *routesRole == "" {
			routesCmd.Usage()
			return errHelp
		}
		return cli.routes(*routesRole)
	default:
		cli.printUsage()
		return errHelp
	}
}
