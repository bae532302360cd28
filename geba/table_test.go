package geba

import (
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"
)

func mockData() []Observation {
	nan := math.NaN()
	return []Observation{
		{1, VALUE, "sw_down", 1990, 1, 100},
		{1, VALUE, "sw_down", 1990, 2, nan},
		{1, FLAG, "sw_down", 1990, 1, 5},
		{1, FLAG, "sw_down", 1990, 2, nan},
		{2, VALUE, "albedo", 1991, 1, 0.3},
		{3, VALUE, "uv", 1991, 1, 7},
		{3, FLAG, "uv", 1991, 1, 1},
	}
}

func mockStations() []Station {
	return []Station{
		{ID: 1, Name: "DAVOS", CountryCode: "CH", Lat: 46.81, Lon: 9.84, Elev: 1594},
		{ID: 3, Name: "BARROW", CountryCode: "US", Lat: 71.32, Lon: -156.61, Elev: 8},
	}
}

func TestCombine(t *testing.T) {
	df := Combine(DataTable(mockData()))
	if df.Err != nil {
		t.Fatal(df.Err)
	}

	expectedNames := []string{"id", "type", "year", "month", "value", "flag"}
	if names := df.Names(); !reflect.DeepEqual(names, expectedNames) {
		t.Fatalf("Got columns %v, wanted %v", names, expectedNames)
	}

	if rows := df.Nrow(); rows != 4 {
		t.Fatalf("Got %v rows, wanted 4", rows)
	}

	ids, err := df.Col("id").Int()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids, []int{1, 1, 2, 3}) {
		t.Errorf("Got ids %v", ids)
	}

	values := df.Col("value").Float()
	flags := df.Col("flag").Float()
	if values[0] != 100 || flags[0] != 5 {
		t.Errorf("Got value %v and flag %v for first row", values[0], flags[0])
	}
	if !math.IsNaN(values[1]) || !math.IsNaN(flags[1]) {
		t.Errorf("Expected missing value and flag, got %v and %v", values[1], flags[1])
	}
	// station 2 has no flag line
	if values[2] != 0.3 || !math.IsNaN(flags[2]) {
		t.Errorf("Got value %v and flag %v for station without flags", values[2], flags[2])
	}
	if values[3] != 7 || flags[3] != 1 {
		t.Errorf("Got value %v and flag %v for last row", values[3], flags[3])
	}
}

func TestLocate(t *testing.T) {
	df := Locate(DataTable(mockData()), MetaTable(mockStations()))
	if df.Err != nil {
		t.Fatal(df.Err)
	}

	// rows of station 2 are dropped
	if rows := df.Nrow(); rows != 6 {
		t.Fatalf("Got %v rows, wanted 6", rows)
	}

	expectedNames := []string{"id", "flag_or_value", "type", "year", "month", "value", "name", "cc", "lat", "lon", "elev"}
	if names := df.Names(); !reflect.DeepEqual(names, expectedNames) {
		t.Errorf("Got columns %v, wanted %v", names, expectedNames)
	}

	names := df.Col("name").Records()
	if names[0] != "DAVOS" || names[5] != "BARROW" {
		t.Errorf("Got station names %v", names)
	}
	if lon := df.Col("lon").Float(); lon[5] != -156.61 {
		t.Errorf("Got longitudes %v", lon)
	}
}

func TestCombineObservations(t *testing.T) {
	type testCase struct {
		name     string
		data     []Observation
		expected []float64 // flag of each output row, -1 for NaN
	}

	cases := []testCase{
		{
			"flag before value",
			[]Observation{{1, FLAG, "uv", 1990, 1, 2}, {1, VALUE, "uv", 1990, 1, 10}},
			[]float64{2},
		},
		{
			"flag of another month",
			[]Observation{{1, VALUE, "uv", 1990, 1, 10}, {1, FLAG, "uv", 1990, 2, 2}},
			[]float64{-1},
		},
		{
			"flag of another variable",
			[]Observation{{1, VALUE, "uv", 1990, 1, 10}, {1, FLAG, "sw_up", 1990, 1, 2}},
			[]float64{-1},
		},
		{
			"repeated flag line",
			[]Observation{{1, VALUE, "uv", 1990, 1, 10}, {1, FLAG, "uv", 1990, 1, 2}, {1, FLAG, "uv", 1990, 1, 3}},
			[]float64{2, 3},
		},
		{
			"only flags",
			[]Observation{{1, FLAG, "uv", 1990, 1, 2}},
			[]float64{},
		},
	}

	for _, c := range cases {
		t.Log("Testing:", c.name)

		combined := CombineObservations(c.data)
		if len(combined) != len(c.expected) {
			t.Errorf("Got %v rows, wanted %v", len(combined), len(c.expected))
			continue
		}
		for i, row := range combined {
			if row.Value != 10 {
				t.Errorf("Row %v: got value %v, wanted 10", i, row.Value)
			}
			if c.expected[i] == -1 {
				if !math.IsNaN(row.Flag) {
					t.Errorf("Row %v: got flag %v, wanted NaN", i, row.Flag)
				}
			} else if row.Flag != c.expected[i] {
				t.Errorf("Row %v: got flag %v, wanted %v", i, row.Flag, c.expected[i])
			}
		}
	}
}

// Value and flag rows of n database line pairs, one station per pair
func largeData(n int) []Observation {
	data := make([]Observation, 0, 2*n*MONTHS)
	for i := 0; i < n; i++ {
		id := i + 1
		for m := 1; m <= MONTHS; m++ {
			data = append(data, Observation{id, VALUE, "sw_down", 1990, m, float64(id*100 + m)})
		}
		for m := 1; m <= MONTHS; m++ {
			data = append(data, Observation{id, FLAG, "sw_down", 1990, m, float64(m % 8)})
		}
	}
	return data
}

func TestCombineLarge(t *testing.T) {
	// 5000 database lines
	pairs := 2500
	df := DataTable(largeData(pairs))

	start := time.Now()
	combined := Combine(df)
	elapsed := time.Since(start)
	t.Log("Combined", df.Nrow(), "rows in", elapsed)

	if combined.Err != nil {
		t.Fatal(combined.Err)
	}
	if rows := combined.Nrow(); rows != pairs*MONTHS {
		t.Fatalf("Got %v rows, wanted %v", rows, pairs*MONTHS)
	}
	if elapsed > 5*time.Second {
		t.Errorf("Combine took %v", elapsed)
	}

	ids, err := combined.Col("id").Int()
	if err != nil {
		t.Fatal(err)
	}
	months, err := combined.Col("month").Int()
	if err != nil {
		t.Fatal(err)
	}
	values := combined.Col("value").Float()
	flags := combined.Col("flag").Float()
	for i := range ids {
		if ids[i] != i/MONTHS+1 || months[i] != i%MONTHS+1 {
			t.Fatalf("Row %v: got station %v month %v", i, ids[i], months[i])
		}
		if values[i] != float64(ids[i]*100+months[i]) || flags[i] != float64(months[i]%8) {
			t.Fatalf("Row %v: got value %v and flag %v", i, values[i], flags[i])
		}
	}
}

func TestLocateLarge(t *testing.T) {
	pairs := 2000
	stations := make([]Station, pairs)
	for i := range stations {
		// stations listed in reverse order of the data
		id := pairs - i
		stations[i] = Station{ID: id, Name: fmt.Sprintf("STATION %v", id), CountryCode: "NO", Lat: float64(id) / 100, Lon: 10, Elev: 5}
	}
	df := DataTable(largeData(pairs))

	start := time.Now()
	located := Locate(df, MetaTable(stations))
	elapsed := time.Since(start)
	t.Log("Located", df.Nrow(), "rows in", elapsed)

	if located.Err != nil {
		t.Fatal(located.Err)
	}
	if rows := located.Nrow(); rows != df.Nrow() {
		t.Fatalf("Got %v rows, wanted %v", rows, df.Nrow())
	}
	if elapsed > 5*time.Second {
		t.Errorf("Locate took %v", elapsed)
	}

	ids, err := located.Col("id").Int()
	if err != nil {
		t.Fatal(err)
	}
	names := located.Col("name").Records()
	lats := located.Col("lat").Float()
	for i, id := range ids {
		if names[i] != fmt.Sprintf("STATION %v", id) || lats[i] != float64(id)/100 {
			t.Fatalf("Row %v: station %v located as %v at %v", i, id, names[i], lats[i])
		}
	}
}

func TestLocateMissingColumn(t *testing.T) {
	meta := MetaTable(mockStations()).Select([]string{"id", "name"})
	if df := Locate(DataTable(mockData()), meta); df.Err == nil {
		t.Error("Expected error for metadata without coordinates")
	}
}

func TestFilterStations(t *testing.T) {
	df := DataTable(mockData())

	if all := FilterStations(df, nil); all.Nrow() != df.Nrow() {
		t.Errorf("Nil filter should keep all rows, got %v", all.Nrow())
	}

	filtered := FilterStations(df, []int{3, 2})
	ids, err := filtered.Col("id").Int()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids, []int{2, 3, 3}) {
		t.Errorf("Got ids %v", ids)
	}
}

func TestFilterVariables(t *testing.T) {
	df := DataTable(mockData())

	if all := FilterVariables(df, nil); all.Nrow() != df.Nrow() {
		t.Errorf("Nil filter should keep all rows, got %v", all.Nrow())
	}

	filtered := FilterVariables(df, []string{"uv"})
	if types := filtered.Col("type").Records(); !reflect.DeepEqual(types, []string{"uv", "uv"}) {
		t.Errorf("Got types %v", types)
	}
}

func TestCut(t *testing.T) {
	type testCase struct {
		line       string
		start, end int
		expected   string
	}

	cases := []testCase{
		{"0001 DAVOS", 0, 4, "0001"},
		{"0001 DAVOS", 5, 66, "DAVOS"},
		{"0001", 5, 66, ""},
		{"0001", 4, 8, ""},
		{"0001", 2, 8, "01"},
	}

	for _, c := range cases {
		if result := cut(c.line, c.start, c.end); result != c.expected {
			t.Errorf("cut(%q, %v, %v): got %q, wanted %q", c.line, c.start, c.end, result, c.expected)
		}
	}
}
