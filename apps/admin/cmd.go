package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	echoapi "github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/storage/database"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf *core.Config
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  createdb - create the database and app user if they do not exist")
	fmt.Println("  migrate [up|up-by-one|up-to VERSION|down|down-to VERSION|redo|reset|status|version] - run migrations (default: up)")
	fmt.Println("  gentoken -subject SUBJECT [-name NAME] [-roles admin,teacher] - generate a signed service JWT")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	genTokenCmd := flag.NewFlagSet("gentoken", flag.ExitOnError)
	genTokenSubject := genTokenCmd.String("subject", "", "The token's subject, e.g. a service or staff identifier.")
	genTokenName := genTokenCmd.String("name", "", "The holder's display name.")
	genTokenRoles := genTokenCmd.String("roles", "", "Comma-separated roles (admin, teacher).")

	switch args[1] {
	case "createdb":
		return database.CreateIfNotExist(cli.conf)
	case "migrate":
		migrateArgs := args[2:]
		if len(migrateArgs) == 0 {
			migrateArgs = []string{"up"}
		}
		return cli.migrate(migrateArgs)
	case "gentoken":
		if err := genTokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *genTokenSubject == "" {
			genTokenCmd.Usage()
			return errHelp
		}
		var roles []string
		for _, role := range strings.Split(*genTokenRoles, ",") {
			if role = core.CleanString(role, true /* lower */); role != "" {
				roles = append(roles, role)
			}
		}
		return cli.genToken(*genTokenSubject, *genTokenName, roles)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) genToken(subject, name string, roles []string) error {
	claims := echoapi.NewClaims(cli.conf, subject, name, roles)
	token, err := echoapi.GenerateToken(cli.conf, claims)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
