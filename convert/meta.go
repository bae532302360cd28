package convert

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/gocarina/gocsv"

	"geba_importer/geba"
	"geba_importer/utils"
)

type MetaConfig struct {
	Input string `long:"input" env:"GEBA_META" description:"GEBA station metadata file (e.g. status_01.txt)"`
	Config
}

// Checks validity of cmd args and populates slices by parsing the strings provided via cmd
func (config *MetaConfig) setup() error {
	if config.Input == "" {
		return errors.New("No metadata file provided, use '--input' or set GEBA_META")
	}

	stations, err := utils.SplitIntList(config.StationsCmd)
	if err != nil {
		return fmt.Errorf("Invalid '--station': %w", err)
	}
	config.Stations = stations
	return nil
}

// This method is automatically called by go-flags while parsing the cmd
func (config *MetaConfig) Execute(_ []string) error {
	if err := config.setup(); err != nil {
		return err
	}

	stations, err := loadStations(config.Input)
	if err != nil {
		return err
	}
	slog.Info(fmt.Sprintf("%s: %v stations loaded", config.Input, len(stations)))

	if config.Stations != nil {
		ids := make([]int, len(stations))
		for i, s := range stations {
			ids[i] = s.ID
		}
		wanted := utils.FilterSlice(config.Stations, ids, "Station %v not present in the metadata file, skipping")
		stations = slices.DeleteFunc(stations, func(s geba.Station) bool {
			return !slices.Contains(wanted, s.ID)
		})
		slog.Debug(fmt.Sprintf("%v stations left after filtering", len(stations)))
	}

	out, err := config.openOutput()
	if err != nil {
		return err
	}
	defer out.Close()

	if err := gocsv.Marshal(stations, out); err != nil {
		return fmt.Errorf("Could not write stations: %w", err)
	}

	slog.Info(fmt.Sprintf("%v stations written", len(stations)))
	return nil
}

func loadStations(filename string) ([]geba.Station, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stations, err := geba.ReadMeta(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return stations, nil
}
