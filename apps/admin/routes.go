package main

import (
	"fmt"

	"github.com/trezcool/markaz/core/authz"
	"github.com/trezcool/markaz/core/session"
)

func (cli *commandLine) routes(role string) error {
	var known bool
	for _, r := range authz.AllRoles {
		if r == role {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown role %q", role)
	}

	sess := session.Session{Token: "-", Role: role}
	for _, path := range append([]string{authz.HomePath, authz.LoginPath}, sectionPaths()...) {
		fmt.Fprintf(cli.out, "%-24s %s\n", path, cli.guard.Check(sess, path))
	}
	return nil
}

func sectionPaths() []string {
	paths := make([]string, 0, len(authz.Sections))
	for _, s := range authz.Sections {
		paths = append(paths, s.Href)
	}
	return paths
}
