package stationview

import (
	"strings"

	"github.com/sciflow/gridtransform/vardata"
)

// Logger is the narrow warning sink Merge uses for missing-field/missing-
// slice conditions (spec §4.10: "not fatal" - logged, filled with missing).
type Logger interface {
	Warn(msg string, kv ...interface{})
}

func warn(l Logger, msg string, kv ...interface{}) {
	if l != nil {
		l.Warn(msg, kv...)
	}
}

// fieldSlice is one station's contribution to one field: the source
// variable holding that station's slice.
type fieldSlice struct {
	src *vardata.Variable
}

// MergeResult bundles the per-field merged variables plus the station
// bookkeeping variables spec §4.10 requires alongside them.
type MergeResult struct {
	Fields      map[string]*vardata.Variable
	StationDim  *vardata.Dimension
	StrlenDim   *vardata.Dimension
	StationName *vardata.Variable
}

// Merge implements spec §4.10: scan every dataset for variables named
// "<field>@<station>", group them by field across the discovered station
// set (sorted per Registry.Names), and produce one "[...,station]"-shaped
// variable per field. A station missing a given field, or whose slice's
// element count differs from that of the field's established shape, is
// logged and filled with the field's missing value rather than failing
// the whole merge.
func Merge(datasets []*vardata.Dataset, log Logger) (*MergeResult, error) {
	reg := NewRegistry()
	fieldShape := make(map[string][]*vardata.Dimension)
	fieldMissing := make(map[string]float64)
	fieldOrder := []string{}
	seenField := make(map[string]bool)

	for _, ds := range datasets {
		if ds == nil {
			continue
		}
		for name, v := range ds.Vars {
			field, station, ok := splitStationName(name)
			if !ok {
				continue
			}
			st := reg.touch(station)
			st.Fields[field] = &fieldSlice{src: v}
			if !seenField[field] {
				seenField[field] = true
				fieldOrder = append(fieldOrder, field)
				fieldShape[field] = v.Dims
				fieldMissing[field] = v.MissingValue()
			}
		}
	}

	stationNames := reg.Names()
	nStations := len(stationNames)

	stationDim := &vardata.Dimension{Name: "station", Length: nStations}
	strlen := 0
	for _, n := range stationNames {
		if len(n) > strlen {
			strlen = len(n)
		}
	}
	strlenDim := &vardata.Dimension{Name: "strlen", Length: strlen}

	result := &MergeResult{
		Fields:     make(map[string]*vardata.Variable),
		StationDim: stationDim,
		StrlenDim:  strlenDim,
	}

	for _, field := range fieldOrder {
		baseDims := fieldShape[field]
		merged := vardata.NewVariable(field, append(append([]*vardata.Dimension(nil), baseDims...), stationDim)...)
		merged.Attrs["missing_value"] = fieldMissing[field]
		merged.AllocateData(fieldMissing[field])

		innerLen := 1
		for _, d := range baseDims {
			innerLen *= d.Length
		}

		for st, name := range stationNames {
			station, _ := reg.station(name)
			fs, ok := station.Fields[field]
			if !ok {
				warn(log, "stationview: station missing field", "station", name, "field", field)
				continue
			}
			if len(fs.src.Data) != innerLen {
				warn(log, "stationview: station field shape mismatch", "station", name, "field", field)
				continue
			}
			for i := 0; i < innerLen; i++ {
				merged.Data[i*nStations+st] = fs.src.Data[i]
			}
		}

		result.Fields[field] = merged
	}

	nameData := make([]float64, nStations*strlen)
	for i := range nameData {
		nameData[i] = 0
	}
	for st, name := range stationNames {
		for ci, r := range name {
			if ci >= strlen {
				break
			}
			nameData[st*strlen+ci] = float64(r)
		}
	}
	stationNameVar := vardata.NewVariable("station_name", stationDim, strlenDim)
	stationNameVar.Data = nameData
	result.StationName = stationNameVar

	return result, nil
}

// splitStationName splits "<field>@<station>" into its two halves. Names
// without an "@" are not station-scoped and are skipped by Merge.
func splitStationName(name string) (field, station string, ok bool) {
	i := strings.IndexByte(name, '@')
	if i < 0 {
		return "", "", false
	}
	return name[:i], name[i+1:], true
}
