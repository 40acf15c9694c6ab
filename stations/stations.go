package stations

import (
	"bytes"
	_ "embed"
	"io"
	"sort"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/spkg/bom"

	"setram.dev/tram/model"
)

//go:embed stations.csv
var defaultCSV []byte

type StationCSV struct {
	Ordinal int    `csv:"ordinal"`
	Name    string `csv:"name"`
}

// The stations of the line, in outbound order.
type Network struct {
	names   []model.Station
	ordinal map[model.Station]int
}

// Default returns the line's built in station list.
func Default() *Network {
	n, err := Parse(bytes.NewReader(defaultCSV))
	if err != nil {
		// The embedded list is covered by tests.
		panic(err)
	}
	return n
}

// Parses a station list from CSV with header "ordinal,name". A
// leading BOM is ignored.
func Parse(data io.Reader) (*Network, error) {
	rows := []*StationCSV{}
	if err := gocsv.UnmarshalCSV(gocsv.LazyCSVReader(bom.NewReader(data)), &rows); err != nil {
		return nil, errors.Wrap(err, "unmarshaling stations csv")
	}

	if len(rows) < 2 {
		return nil, errors.Errorf("need at least 2 stations, found %d", len(rows))
	}

	seenName := map[string]bool{}
	seenOrdinal := map[int]bool{}
	for _, row := range rows {
		if row.Name == "" {
			return nil, errors.Errorf("empty name for ordinal %d", row.Ordinal)
		}
		if row.Ordinal <= 0 {
			return nil, errors.Errorf("invalid ordinal %d for '%s'", row.Ordinal, row.Name)
		}
		if seenName[row.Name] {
			return nil, errors.Errorf("repeated station '%s'", row.Name)
		}
		if seenOrdinal[row.Ordinal] {
			return nil, errors.Errorf("repeated ordinal %d", row.Ordinal)
		}
		seenName[row.Name] = true
		seenOrdinal[row.Ordinal] = true
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Ordinal < rows[j].Ordinal
	})

	n := &Network{
		names:   make([]model.Station, 0, len(rows)),
		ordinal: make(map[model.Station]int, len(rows)),
	}
	for i, row := range rows {
		name := model.Station(row.Name)
		n.names = append(n.names, name)
		n.ordinal[name] = i + 1
	}

	return n, nil
}

func (n *Network) Contains(s model.Station) bool {
	_, found := n.ordinal[s]
	return found
}

// Names lists all stations in outbound order.
func (n *Network) Names() []model.Station {
	names := make([]model.Station, len(n.names))
	copy(names, n.names)
	return names
}

// Ordinal is the 1-based position of a station in outbound order, or
// 0 if unknown.
func (n *Network) Ordinal(s model.Station) int {
	return n.ordinal[s]
}

// Termini returns the first and last station a tram traveling in the
// given direction visits.
func (n *Network) Termini(d model.Direction) (model.Station, model.Station) {
	first, last := n.names[0], n.names[len(n.names)-1]
	if d == model.DirectionInbound {
		return last, first
	}
	return first, last
}
