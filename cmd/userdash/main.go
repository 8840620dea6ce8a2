package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/userdash/internal/cli"
	"github.com/dropDatabas3/userdash/internal/observability/logger"
)

func main() {
	// .env es opcional; las variables del sistema siguen valiendo
	_ = godotenv.Load()

	err := cli.NewRootCommand().Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "userdash: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
