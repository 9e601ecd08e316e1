package main

import (
	"github.com/katalog-cli/katalog/cmd"
	"github.com/katalog-cli/katalog/config"
	"github.com/katalog-cli/katalog/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
