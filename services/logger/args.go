package logsvc

import "github.com/trezcool/markaz/core"

// splitArgs takes the Person out of args. Only the first Person with an ID counts; the rest are dropped.
func splitArgs(args []interface{}) (core.Person, []interface{}) {
	var person core.Person
	rest := make([]interface{}, 0, len(args))
	for _, arg := range args {
		p, ok := arg.(core.Person)
		if !ok {
			rest = append(rest, arg)
			continue
		}
		if person.ID == "" {
			person = p
		}
	}
	return person, rest
}
