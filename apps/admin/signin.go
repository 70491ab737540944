package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/trezcool/markaz/core/auth"
	"github.com/trezcool/markaz/core/authz"
)

func (cli *commandLine) signIn(email, pwd string) error {
	res, err := cli.authSvc.SignIn(context.Background(), auth.Credentials{Email: email, Password: pwd})
	if err != nil {
		return err
	}
	if !res.OK() {
		return errors.New(res.Message())
	}

	role := res.Session.Role
	fmt.Fprintf(cli.out, "role: %s\n", role)
	fmt.Fprintf(cli.out, "landing: %s\n", cli.guard.Landing(role))
	fmt.Fprintln(cli.out, "sections:")
	for _, s := range authz.VisibleSections(role, authz.Sections) {
		fmt.Fprintf(cli.out, "  %-10s %s\n", s.Key, s.Href)
	}
	return nil
}
