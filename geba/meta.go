package geba

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
)

// Station is one row of a GEBA station metadata file (e.g. status_01.txt).
// The csv tags match the column names of the table returned by LoadMeta.
type Station struct {
	ID            int     `csv:"id"`
	Name          string  `csv:"name"`
	CountryCode   string  `csv:"cc"`
	Lat           float64 `csv:"lat"`
	Lon           float64 `csv:"lon"` // Signed longitude in [-180, 180]
	Elev          float64 `csv:"elev"`
	StartYear     int     `csv:"start_year"`
	EndYear       int     `csv:"end_year"`
	NumMonth      int     `csv:"num_month"`
	NumInstChange int     `csv:"num_inst_change"`
	FlagMonths1   int     `csv:"flag_months_1"`
	FlagMonths2   int     `csv:"flag_months_2"`
	FlagMonths3   int     `csv:"flag_months_3"`
}

// MetaField describes where a field is stored in a metadata line
// and how its text is converted into the Station struct
type MetaField struct {
	Name    string // Column name in the output table
	Start   int    // First byte of the field
	End     int    // Byte after the last byte of the field
	Convert func(*Station, string) error
}

// Fields of a station line, in output column order
var META_FIELDS = []MetaField{
	{"id", 0, 4, setInt(func(s *Station) *int { return &s.ID })},
	{"name", 5, 66, func(s *Station, text string) error { s.Name = text; return nil }},
	{"cc", 67, 69, func(s *Station, text string) error { s.CountryCode = text; return nil }},
	{"lat", 70, 77, setFloat(func(s *Station) *float64 { return &s.Lat })},
	{"lon", 78, 85, setLon},
	{"elev", 86, 90, setFloat(func(s *Station) *float64 { return &s.Elev })},
	{"start_year", 91, 95, setInt(func(s *Station) *int { return &s.StartYear })},
	{"end_year", 98, 102, setInt(func(s *Station) *int { return &s.EndYear })},
	{"num_month", 103, 107, setInt(func(s *Station) *int { return &s.NumMonth })},
	{"num_inst_change", 108, 110, setInt(func(s *Station) *int { return &s.NumInstChange })},
	{"flag_months_1", 110, 115, setInt(func(s *Station) *int { return &s.FlagMonths1 })},
	{"flag_months_2", 115, 120, setInt(func(s *Station) *int { return &s.FlagMonths2 })},
	{"flag_months_3", 120, 125, setInt(func(s *Station) *int { return &s.FlagMonths3 })},
}

func setInt(field func(*Station) *int) func(*Station, string) error {
	return func(s *Station, text string) error {
		val, err := strconv.Atoi(text)
		if err != nil {
			return err
		}
		*field(s) = val
		return nil
	}
}

func setFloat(field func(*Station) *float64) func(*Station, string) error {
	return func(s *Station, text string) error {
		val, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return err
		}
		*field(s) = val
		return nil
	}
}

func setLon(s *Station, text string) error {
	lon, err := ConvertLon(text)
	if err != nil {
		return err
	}
	s.Lon = lon
	return nil
}

// ConvertLon parses a longitude stored in [0, 360) and maps it to [-180, 180]
func ConvertLon(text string) (float64, error) {
	lon, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, err
	}
	if lon > 180 {
		return lon - 360, nil
	}
	return lon, nil
}

// Only lines starting with a station number contain data,
// headers and separators are skipped
func IsStationLine(line string) bool {
	id := strings.TrimSpace(cut(line, 0, 4))
	if id == "" {
		return false
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ReadMeta decodes every station line of a metadata file
func ReadMeta(r io.Reader) ([]Station, error) {
	scanner := bufio.NewScanner(r)

	var stations []Station
	for lineNum := 0; scanner.Scan(); lineNum++ {
		line := scanner.Text()
		if !IsStationLine(line) {
			continue
		}

		var station Station
		for _, field := range META_FIELDS {
			text := strings.TrimSpace(cut(line, field.Start, field.End))
			if err := field.Convert(&station, text); err != nil {
				return nil, newParseError(lineNum, field.Name, text, ErrFieldFormat, err)
			}
		}
		stations = append(stations, station)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return stations, nil
}

// LoadMeta loads a GEBA station metadata file into a table with one row per station, e.g.
// https://iacweb.ethz.ch/data/geba/status_01.txt
func LoadMeta(filename string) (dataframe.DataFrame, error) {
	file, err := os.Open(filename)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer file.Close()

	stations, err := ReadMeta(file)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%s: %w", filename, err)
	}

	df := MetaTable(stations)
	return df, df.Err
}

// MetaTable builds the station table, columns are named after META_FIELDS
func MetaTable(stations []Station) dataframe.DataFrame {
	return dataframe.New(
		intColumn("id", stations, func(s Station) int { return s.ID }),
		stringColumn("name", stations, func(s Station) string { return s.Name }),
		stringColumn("cc", stations, func(s Station) string { return s.CountryCode }),
		floatColumn("lat", stations, func(s Station) float64 { return s.Lat }),
		floatColumn("lon", stations, func(s Station) float64 { return s.Lon }),
		floatColumn("elev", stations, func(s Station) float64 { return s.Elev }),
		intColumn("start_year", stations, func(s Station) int { return s.StartYear }),
		intColumn("end_year", stations, func(s Station) int { return s.EndYear }),
		intColumn("num_month", stations, func(s Station) int { return s.NumMonth }),
		intColumn("num_inst_change", stations, func(s Station) int { return s.NumInstChange }),
		intColumn("flag_months_1", stations, func(s Station) int { return s.FlagMonths1 }),
		intColumn("flag_months_2", stations, func(s Station) int { return s.FlagMonths2 }),
		intColumn("flag_months_3", stations, func(s Station) int { return s.FlagMonths3 }),
	)
}
