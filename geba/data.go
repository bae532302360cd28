package geba

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
)

// In the GEBA database each station/variable/year is stored in two consecutive lines:
// 1. A line with the monthly values;
// 2. A line with the quality flags of those values.
//
// Both lines have the same layout:
// | id (0-4) | variable code (5-7) | year (8-12) | 12 monthly fields of 7 chars, starting at 13, every 8 chars |
//
// Whether a line holds values or flags only depends on its position in the file,
// even lines (counting from 0) are values, odd lines are flags.
const (
	VALUE = "value"
	FLAG  = "flag"

	// Marks a missing measurement in a value line
	MISSING_VALUE = 99999
	// Marks a missing flag in a flag line
	MISSING_FLAG = "-------"

	MONTHS = 12
)

// Names of the GEBA variables, indexed by their code
var VAR_NAMES = map[int]string{
	1:  "sw_down",
	2:  "sw_direct",
	3:  "snw_diffuse",
	4:  "albedo",
	5:  "sw_up",
	6:  "lw_down",
	7:  "lw_up",
	8:  "lw_net",
	9:  "rad_net",
	10: "sensible",
	11: "latent",
	12: "ground",
	13: "latent_melt",
	14: "uv",
	15: "other",
	16: "absorbed",
	17: "rad_up",
	18: "turbulent_up",
	19: "circumglobal",
}

// Returns the variable name for the given code
func VariableName(code int) (string, error) {
	name, ok := VAR_NAMES[code]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownVariable, code)
	}
	return name, nil
}

// Returns all variable names ordered by code
func Variables() []string {
	names := make([]string, 0, len(VAR_NAMES))
	for code := 1; code <= len(VAR_NAMES); code++ {
		names = append(names, VAR_NAMES[code])
	}
	return names
}

// Observation is the value (or flag) of a variable for a single month.
// Missing values and flags are stored as NaN.
type Observation struct {
	ID          int     `csv:"id"`
	FlagOrValue string  `csv:"flag_or_value"`
	Type        string  `csv:"type"`
	Year        int     `csv:"year"`
	Month       int     `csv:"month"`
	Value       float64 `csv:"value"`
}

// Column names of the observation table
var DATA_COLUMNS = []string{"id", "flag_or_value", "type", "year", "month", "value"}

func lineKind(lineNum int) string {
	if lineNum%2 == 0 {
		return VALUE
	}
	return FLAG
}

func monthField(line string, month int) string {
	return cut(line, 13+month*8, 20+month*8)
}

func parseValue(text string) (float64, error) {
	num, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, err
	}
	if num == MISSING_VALUE {
		return math.NaN(), nil
	}
	return num, nil
}

// The missing flag is compared with the untrimmed field
func parseFlag(text string) (float64, error) {
	if text == MISSING_FLAG {
		return math.NaN(), nil
	}
	flag, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, err
	}
	return float64(flag), nil
}

// Decodes a line into 12 observations, one per month
func parseDataLine(lineNum int, line string) ([]Observation, error) {
	idText := strings.TrimSpace(cut(line, 0, 4))
	id, err := strconv.Atoi(idText)
	if err != nil {
		return nil, newParseError(lineNum, "id", idText, ErrFieldFormat, err)
	}

	codeText := strings.TrimSpace(cut(line, 5, 7))
	code, err := strconv.Atoi(codeText)
	if err != nil {
		return nil, newParseError(lineNum, "type", codeText, ErrFieldFormat, err)
	}
	varName, ok := VAR_NAMES[code]
	if !ok {
		return nil, newParseError(lineNum, "type", codeText, ErrUnknownVariable, nil)
	}

	yearText := strings.TrimSpace(cut(line, 8, 12))
	year, err := strconv.Atoi(yearText)
	if err != nil {
		return nil, newParseError(lineNum, "year", yearText, ErrFieldFormat, err)
	}

	kind := lineKind(lineNum)
	parse := parseValue
	if kind == FLAG {
		parse = parseFlag
	}

	obs := make([]Observation, 0, MONTHS)
	for month := 0; month < MONTHS; month++ {
		text := monthField(line, month)
		val, err := parse(text)
		if err != nil {
			return nil, newParseError(lineNum, fmt.Sprintf("month %d", month+1), text, ErrFieldFormat, err)
		}

		obs = append(obs, Observation{
			ID:          id,
			FlagOrValue: kind,
			Type:        varName,
			Year:        year,
			Month:       month + 1,
			Value:       val,
		})
	}
	return obs, nil
}

// ReadData decodes every line of a GEBA database dump
func ReadData(r io.Reader) ([]Observation, error) {
	scanner := bufio.NewScanner(r)

	var data []Observation
	for lineNum := 0; scanner.Scan(); lineNum++ {
		obs, err := parseDataLine(lineNum, scanner.Text())
		if err != nil {
			return nil, err
		}
		data = append(data, obs...)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return data, nil
}

// LoadData loads the full GEBA database, as downloaded from
// https://www.ethz.ch/content/specialinterest/usys/iac/geba/en/data-retrieval/database-access.html
// Each line of the file results in 12 rows of the returned table.
func LoadData(filename string) (dataframe.DataFrame, error) {
	file, err := os.Open(filename)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer file.Close()

	data, err := ReadData(file)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%s: %w", filename, err)
	}

	df := DataTable(data)
	return df, df.Err
}

// DataTable builds the observation table with DATA_COLUMNS
func DataTable(data []Observation) dataframe.DataFrame {
	return dataframe.New(
		intColumn("id", data, func(o Observation) int { return o.ID }),
		stringColumn("flag_or_value", data, func(o Observation) string { return o.FlagOrValue }),
		stringColumn("type", data, func(o Observation) string { return o.Type }),
		intColumn("year", data, func(o Observation) int { return o.Year }),
		intColumn("month", data, func(o Observation) int { return o.Month }),
		floatColumn("value", data, func(o Observation) float64 { return o.Value }),
	)
}
