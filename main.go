package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"geba_importer/convert"
	"geba_importer/utils"
)

type CmdArgs struct {
	Verbose bool               `short:"v" long:"verbose" description:"Increase verbosity level"`
	LogFile string             `long:"log-file" default:"" description:"Optional file the logs are written to instead of stderr"`
	Meta    convert.MetaConfig `command:"meta" description:"Convert a GEBA station metadata file to CSV"`
	Data    convert.DataConfig `command:"data" description:"Convert a GEBA database file to CSV, with one row per month"`
}

func main() {
	// .env is optional, it can be used to set the GEBA_* variables
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Println(err)
		os.Exit(1)
	}

	args := CmdArgs{}
	parser := flags.NewParser(&args, flags.Default)

	// Logger needs to be set after the global options are parsed, but before the command runs
	parser.CommandHandler = func(command flags.Commander, cmdArgs []string) error {
		if command == nil {
			return nil
		}

		logfile, err := utils.SetLogger(args.Verbose, args.LogFile)
		if err != nil {
			return err
		}
		if logfile != nil {
			defer logfile.Close()
		}
		return command.Execute(cmdArgs)
	}

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return
			}
		}
		fmt.Println("Type 'geba_importer -h' for help")
		os.Exit(1)
	}
}
