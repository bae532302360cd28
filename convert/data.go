package convert

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/go-gota/gota/dataframe"

	"geba_importer/geba"
	"geba_importer/utils"
)

type DataConfig struct {
	Input        string `long:"input" env:"GEBA_DATA" description:"GEBA database file"`
	Meta         string `long:"meta" default:"" description:"Optional station metadata file. If given, station name and coordinates are added to each row"`
	VariablesCmd string `long:"variable" default:"" description:"Optional comma separated list of variable names (e.g. 'sw_down,lw_down'). By default all variables are converted"`
	Combine      bool   `long:"combine" description:"Write values and flags in the same row"`
	Variables    []string
	Config
}

// Checks validity of cmd args and populates slices by parsing the strings provided via cmd
func (config *DataConfig) setup() error {
	if config.Input == "" {
		return errors.New("No database file provided, use '--input' or set GEBA_DATA")
	}

	stations, err := utils.SplitIntList(config.StationsCmd)
	if err != nil {
		return fmt.Errorf("Invalid '--station': %w", err)
	}
	config.Stations = stations

	if variables := utils.SplitList(config.VariablesCmd); variables != nil {
		config.Variables = utils.FilterSlice(variables, geba.Variables(), "Variable '%s' is not a GEBA variable, skipping")
		if len(config.Variables) == 0 {
			return fmt.Errorf("None of the variables in '--variable %s' is a GEBA variable", config.VariablesCmd)
		}
	}
	return nil
}

// Drops the requested stations that are not in the database file
func (config *DataConfig) checkStations(data dataframe.DataFrame) error {
	if config.Stations == nil {
		return nil
	}

	ids, err := data.Col("id").Int()
	if err != nil {
		return err
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	config.Stations = utils.FilterSlice(config.Stations, ids, "Station %v not present in the database file, skipping")
	if len(config.Stations) == 0 {
		return fmt.Errorf("None of the stations in '--station %s' is in %s", config.StationsCmd, config.Input)
	}
	return nil
}

// This method is automatically called by go-flags while parsing the cmd
func (config *DataConfig) Execute(_ []string) error {
	if err := config.setup(); err != nil {
		return err
	}

	data, err := geba.LoadData(config.Input)
	if err != nil {
		return err
	}
	slog.Info(fmt.Sprintf("%s: %v rows loaded", config.Input, data.Nrow()))

	if err := config.checkStations(data); err != nil {
		return err
	}
	data = geba.FilterStations(data, config.Stations)
	data = geba.FilterVariables(data, config.Variables)
	slog.Debug(fmt.Sprintf("%v rows left after filtering", data.Nrow()))

	if config.Combine {
		data = geba.Combine(data)
	}

	if config.Meta != "" {
		meta, err := geba.LoadMeta(config.Meta)
		if err != nil {
			return err
		}
		data = geba.Locate(data, meta)
	}

	if data.Err != nil {
		return data.Err
	}

	out, err := config.openOutput()
	if err != nil {
		return err
	}
	defer out.Close()

	if err := data.WriteCSV(out); err != nil {
		return fmt.Errorf("Could not write table: %w", err)
	}

	slog.Info(fmt.Sprintf("%v rows written", data.Nrow()))
	return nil
}
