package convert

import (
	"io"
	"os"
)

// Options shared by all the conversion commands
type Config struct {
	Output      string `long:"output" env:"GEBA_OUTPUT" default:"" description:"CSV file the converted table is written to. Defaults to stdout"`
	StationsCmd string `long:"station" default:"" description:"Optional comma separated list of stations IDs. By default all stations are converted"`
	Stations    []int
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// Opens the output file, or stdout if no file was provided
func (config *Config) openOutput() (io.WriteCloser, error) {
	if config.Output == "" || config.Output == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(config.Output)
}
