package main

import (
	"log"
	"os"

	dig_container "github.com/trezcool/rastreio/apps/api/di/dig"
	"github.com/trezcool/rastreio/core"
)

var logger = log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

func main() {
	conf := core.NewConfig()
	cli := commandLine{
		conf:      conf,
		container: dig_container.New(func() *core.Config { return conf }),
		out:       os.Stdout,
	}
	if err := cli.run(os.Args[1:]); err != nil {
		logger.Printf("error: %+v\n", err)
		os.Exit(1)
	}
}
