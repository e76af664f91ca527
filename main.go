package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"fjacquet/fatura-csv/cmd/batch"
	"fjacquet/fatura-csv/cmd/extract"
	"fjacquet/fatura-csv/cmd/root"
	"fjacquet/fatura-csv/internal/config"
)

func init() {
	// .env must be loaded before viper reads the environment; nothing is logged yet.
	_, _ = config.LoadEnv(".env", filepath.Join("..", ".env"))

	configureLogLevelDirectly()

	root.Init()
	root.Cmd.AddCommand(extract.Cmd)
	root.Cmd.AddCommand(batch.Cmd)
}

// configureLogLevelDirectly sets the global logrus level from FATURA_LOG_LEVEL so that
// anything logged before the container exists honours it.
func configureLogLevelDirectly() {
	level, err := logrus.ParseLevel(strings.ToLower(os.Getenv(config.EnvPrefix + "_LOG_LEVEL")))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
