package geba

import (
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Returns bytes [start, end) of the line, clamped to its length
func cut(line string, start, end int) string {
	if start >= len(line) {
		return ""
	}
	return line[start:min(end, len(line))]
}

func intColumn[T any](name string, rows []T, get func(T) int) series.Series {
	values := make([]int, len(rows))
	for i, row := range rows {
		values[i] = get(row)
	}
	return series.New(values, series.Int, name)
}

func stringColumn[T any](name string, rows []T, get func(T) string) series.Series {
	values := make([]string, len(rows))
	for i, row := range rows {
		values[i] = get(row)
	}
	return series.New(values, series.String, name)
}

// NaN values are stored as NA elements
func floatColumn[T any](name string, rows []T, get func(T) float64) series.Series {
	values := make([]float64, len(rows))
	for i, row := range rows {
		values[i] = get(row)
	}

	s := series.New(values, series.Float, name)
	for i, val := range values {
		if math.IsNaN(val) {
			s.Elem(i).Set("NaN")
		}
	}
	return s
}

// Observations sharing these columns belong to the same station, variable and month
type obsKey struct {
	ID    int
	Type  string
	Year  int
	Month int
}

// A value and its flag in the same row
type Combined struct {
	ID    int     `csv:"id"`
	Type  string  `csv:"type"`
	Year  int     `csv:"year"`
	Month int     `csv:"month"`
	Value float64 `csv:"value"`
	Flag  float64 `csv:"flag"`
}

// Reads the rows of an observation table back into observations
func tableObservations(data dataframe.DataFrame) ([]Observation, error) {
	if data.Err != nil {
		return nil, data.Err
	}

	cols := make(map[string]series.Series, len(DATA_COLUMNS))
	for _, name := range DATA_COLUMNS {
		col := data.Col(name)
		if col.Err != nil {
			return nil, col.Err
		}
		cols[name] = col
	}

	ids, err := cols["id"].Int()
	if err != nil {
		return nil, err
	}
	years, err := cols["year"].Int()
	if err != nil {
		return nil, err
	}
	months, err := cols["month"].Int()
	if err != nil {
		return nil, err
	}
	kinds := cols["flag_or_value"].Records()
	types := cols["type"].Records()
	values := cols["value"].Float()

	obs := make([]Observation, len(ids))
	for i := range obs {
		obs[i] = Observation{ids[i], kinds[i], types[i], years[i], months[i], values[i]}
	}
	return obs, nil
}

// CombineObservations pairs every value with the flags of the same station, variable, year and month.
// Values without a flag get a NaN flag, a value with more than one flag is repeated for each of them.
func CombineObservations(data []Observation) []Combined {
	flags := make(map[obsKey][]float64)
	for _, obs := range data {
		if obs.FlagOrValue == FLAG {
			key := obsKey{obs.ID, obs.Type, obs.Year, obs.Month}
			flags[key] = append(flags[key], obs.Value)
		}
	}

	combined := make([]Combined, 0, len(data)-len(flags))
	for _, obs := range data {
		if obs.FlagOrValue != VALUE {
			continue
		}

		row := Combined{obs.ID, obs.Type, obs.Year, obs.Month, obs.Value, math.NaN()}
		matches, ok := flags[obsKey{obs.ID, obs.Type, obs.Year, obs.Month}]
		if !ok {
			combined = append(combined, row)
			continue
		}
		for _, flag := range matches {
			row.Flag = flag
			combined = append(combined, row)
		}
	}
	return combined
}

// CombinedTable builds a table with columns id, type, year, month, value and flag
func CombinedTable(combined []Combined) dataframe.DataFrame {
	return dataframe.New(
		intColumn("id", combined, func(c Combined) int { return c.ID }),
		stringColumn("type", combined, func(c Combined) string { return c.Type }),
		intColumn("year", combined, func(c Combined) int { return c.Year }),
		intColumn("month", combined, func(c Combined) int { return c.Month }),
		floatColumn("value", combined, func(c Combined) float64 { return c.Value }),
		floatColumn("flag", combined, func(c Combined) float64 { return c.Flag }),
	)
}

// Combine joins every value row of an observation table with the flag row of the same
// station, variable, year and month. The result has columns id, type, year, month, value and flag.
// Value rows without a flag row get a NaN flag.
func Combine(data dataframe.DataFrame) dataframe.DataFrame {
	obs, err := tableObservations(data)
	if err != nil {
		return dataframe.DataFrame{Err: err}
	}
	return CombinedTable(CombineObservations(obs))
}

var STATION_COLUMNS = []string{"name", "cc", "lat", "lon", "elev"}

// Locate adds name, country code and coordinates of the station to each row of data
// Rows of stations missing from meta are dropped.
func Locate(data, meta dataframe.DataFrame) dataframe.DataFrame {
	if data.Err != nil {
		return data
	}
	if meta.Err != nil {
		return meta
	}

	dataIDs, err := data.Col("id").Int()
	if err != nil {
		return dataframe.DataFrame{Err: err}
	}
	metaIDs, err := meta.Col("id").Int()
	if err != nil {
		return dataframe.DataFrame{Err: err}
	}

	stationRows := make(map[int][]int, len(metaIDs))
	for j, id := range metaIDs {
		stationRows[id] = append(stationRows[id], j)
	}

	dataIdx := make([]int, 0, len(dataIDs))
	metaIdx := make([]int, 0, len(dataIDs))
	for i, id := range dataIDs {
		for _, j := range stationRows[id] {
			dataIdx = append(dataIdx, i)
			metaIdx = append(metaIdx, j)
		}
	}

	out := data.Subset(dataIdx)
	for _, name := range STATION_COLUMNS {
		col := meta.Col(name)
		if col.Err != nil {
			return dataframe.DataFrame{Err: col.Err}
		}
		out = out.Mutate(col.Subset(metaIdx))
	}
	return out
}

// Keeps only the rows of the given stations. A nil slice keeps all the rows.
func FilterStations(df dataframe.DataFrame, ids []int) dataframe.DataFrame {
	if ids == nil {
		return df
	}
	return df.Filter(dataframe.F{Colname: "id", Comparator: series.In, Comparando: ids})
}

// Keeps only the rows of the given variables. A nil slice keeps all the rows.
func FilterVariables(df dataframe.DataFrame, names []string) dataframe.DataFrame {
	if names == nil {
		return df
	}
	return df.Filter(dataframe.F{Colname: "type", Comparator: series.In, Comparando: names})
}
