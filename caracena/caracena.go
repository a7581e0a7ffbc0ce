// Package caracena implements the scattered-station-to-2-D-grid objective
// analysis kernel (spec §4.7, component C7). Its calling shape - many
// scattered inputs feeding a 2-D output grid - doesn't fit the uniform
// slice-to-slice kernel.Call ABI, so it is invoked directly by the driver
// rather than through kernel.Registry.
package caracena

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/sciflow/gridtransform/matrix"
	"github.com/sciflow/gridtransform/qc"
)

// earthRadiusM is used by the small-angle great-circle distance
// approximation (spec §4.7 step 3): good to well under 1% error at the
// station separations (tens to hundreds of km) this kernel targets.
const earthRadiusM = 6371000.0

const coincidentDegrees = 0.001

// Station is one scattered input point.
type Station struct {
	Lat, Lon float64
	Value    float64
	QC       int32
}

// Config carries Caracena's named parameters (spec §4.7, last paragraph).
type Config struct {
	ScaleFactorKM float64 // default resolved by caller; no built-in default
	NPass         int     // default 16
	MinStations   int     // default 15
	QCMask        uint32
	InputMissing  float64
	OutputMissing float64
	Log           Logger
}

// Logger mirrors kernel.Logger without importing the kernel package
// (avoids a dependency cycle: kernel would need caracena for driver
// wiring, caracena would need kernel for Logger - so the interface is
// duplicated narrowly here instead).
type Logger interface {
	Warn(msg string, kv ...interface{})
}

func warn(l Logger, msg string, kv ...interface{}) {
	if l != nil {
		l.Warn(msg, kv...)
	}
}

// Result holds the gridded output plus its per-point metrics, row-major
// over (lat, lon) to match the output grid's declared shape.
type Result struct {
	Data     []float64
	QC       []int32
	DerivLat []float64
	DerivLon []float64
	NStat    []float64
}

// Run executes the full spec §4.7 algorithm for one invocation: station
// filtering, Gaussian weight matrix, LU-based correction, and per-output
// weighted reduction with lat/lon gradient metrics.
func Run(stations []Station, lats, lons []float64, cfg Config) (*Result, error) {
	nOut := len(lats) * len(lons)
	res := &Result{
		Data:     make([]float64, nOut),
		QC:       make([]int32, nOut),
		DerivLat: make([]float64, nOut),
		DerivLon: make([]float64, nOut),
		NStat:    make([]float64, nOut),
	}

	minStations := cfg.MinStations
	if minStations < 1 {
		minStations = 15
	}
	npass := cfg.NPass
	if npass <= 0 {
		npass = 16
	}

	usable := make([]Station, 0, len(stations))
	for _, s := range stations {
		if s.Value == cfg.InputMissing || s.Value != s.Value {
			continue
		}
		if s.Value >= math.MaxFloat64-1 || s.Value <= -(math.MaxFloat64-1) {
			continue
		}
		if uint32(s.QC)&cfg.QCMask != 0 {
			continue
		}
		usable = append(usable, s)
	}

	if len(usable) < minStations {
		warn(cfg.Log, "caracena: too few usable stations", "usable", len(usable), "min", minStations)
		state := qc.Set(0, qc.BAD)
		if len(usable) == 0 {
			state = qc.Set(state, qc.ALL_BAD_INPUTS)
		} else {
			state = qc.Set(state, qc.SOME_BAD_INPUTS)
		}
		fillMissing(res, uint32(state), cfg.OutputMissing)
		return res, nil
	}

	n := len(usable)
	scaleM := cfg.ScaleFactorKM * 1000

	W, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		var rowSum float64
		for j := 0; j < n; j++ {
			d := greatCircle(usable[i].Lat, usable[i].Lon, usable[j].Lat, usable[j].Lon)
			wij := math.Exp(-(d * d) / (scaleM * scaleM))
			_ = W.Set(i, j, wij)
			rowSum += wij
		}
		if rowSum > 0 {
			for j := 0; j < n; j++ {
				v, _ := W.At(i, j)
				_ = W.Set(i, j, v/rowSum)
			}
		}
	}

	Winv, err := matrix.InversePivot(W)
	if err != nil {
		warn(cfg.Log, "caracena: singular weight matrix", "stations", n)
		fillMissing(res, uint32(qc.Set(0, qc.BAD)), cfg.OutputMissing)
		return res, nil
	}

	identity, err := identityMatrix(n)
	if err != nil {
		return nil, err
	}
	IminusW, err := matrix.Sub(identity, W)
	if err != nil {
		return nil, err
	}
	P, err := matrixPower(IminusW, npass)
	if err != nil {
		return nil, err
	}
	IminusP, err := matrix.Sub(identity, P)
	if err != nil {
		return nil, err
	}
	C, err := matrix.Mul(Winv, IminusP)
	if err != nil {
		return nil, err
	}

	f := make([]float64, n)
	for i, s := range usable {
		f[i] = s.Value
	}
	fCorrected, err := matrix.MatVec(C, f)
	if err != nil {
		return nil, err
	}

	var meanOutLat, meanOutLon float64
	for _, la := range lats {
		meanOutLat += la
	}
	meanOutLat /= float64(len(lats))
	for _, lo := range lons {
		meanOutLon += lo
	}
	meanOutLon /= float64(len(lons))

	rLat := make([]float64, n)
	rLon := make([]float64, n)
	cosMeanOut := math.Cos(meanOutLat * math.Pi / 180)
	for i, s := range usable {
		rLat[i] = (s.Lat - meanOutLat) * math.Pi / 180 * earthRadiusM
		rLon[i] = (s.Lon - meanOutLon) * math.Pi / 180 * earthRadiusM * cosMeanOut
	}

	wr := make([]float64, n)
	tmp := make([]float64, n)
	someBad := len(usable) < len(stations)

	idx := 0
	for _, la := range lats {
		for _, lo := range lons {
			var nr float64
			for s := 0; s < n; s++ {
				d := greatCircle(la, lo, usable[s].Lat, usable[s].Lon)
				wr[s] = math.Exp(-(d * d) / (scaleM * scaleM))
				nr += wr[s]
			}
			if nr == 0 {
				res.Data[idx] = cfg.OutputMissing
				res.QC[idx] = int32(qc.Set(qc.Set(0, qc.OUTSIDE_RANGE), qc.BAD))
				res.DerivLat[idx] = cfg.OutputMissing
				res.DerivLon[idx] = cfg.OutputMissing
				res.NStat[idx] = float64(n)
				idx++
				continue
			}

			out := floats.Dot(wr, fCorrected) / nr

			for s := range tmp {
				tmp[s] = fCorrected[s] * rLat[s]
			}
			termLat1 := floats.Dot(wr, tmp) / nr
			termLat2 := floats.Dot(wr, rLat) / nr
			derivLat := 2 * (termLat1 - out*termLat2) / (scaleM * scaleM)

			for s := range tmp {
				tmp[s] = fCorrected[s] * rLon[s]
			}
			termLon1 := floats.Dot(wr, tmp) / nr
			termLon2 := floats.Dot(wr, rLon) / nr
			derivLon := 2 * (termLon1 - out*termLon2) / (scaleM * scaleM)

			var state uint32
			if someBad {
				state = qc.Set(state, qc.SOME_BAD_INPUTS)
			}

			res.Data[idx] = out
			res.QC[idx] = int32(state)
			res.DerivLat[idx] = derivLat
			res.DerivLon[idx] = derivLon
			res.NStat[idx] = float64(n)
			idx++
		}
	}

	return res, nil
}

func fillMissing(res *Result, state uint32, missing float64) {
	for i := range res.Data {
		res.Data[i] = missing
		res.QC[i] = int32(state)
		res.DerivLat[i] = missing
		res.DerivLon[i] = missing
		res.NStat[i] = 0
	}
}

func greatCircle(lat1, lon1, lat2, lon2 float64) float64 {
	if math.Abs(lat1-lat2) < coincidentDegrees && math.Abs(lon1-lon2) < coincidentDegrees {
		return 0
	}
	meanLat := (lat1 + lat2) / 2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	dy := earthRadiusM * dLat
	dx := earthRadiusM * dLon * math.Cos(meanLat)
	return math.Hypot(dx, dy)
}

func identityMatrix(n int) (matrix.Matrix, error) {
	m, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		_ = m.Set(i, i, 1.0)
	}
	return m, nil
}

// matrixPower computes base^p by repeated squaring. Spec §9 notes the
// source's residual-multiplication loop can overshoot p by a small
// constant when p isn't a power of 2; this reimplementation computes the
// exact power instead, since no test here depends on the source's
// quirk (see DESIGN.md).
func matrixPower(base matrix.Matrix, p int) (matrix.Matrix, error) {
	n := base.Rows()
	result, err := identityMatrix(n)
	if err != nil {
		return nil, err
	}
	for p > 0 {
		if p&1 == 1 {
			result, err = matrix.Mul(result, base)
			if err != nil {
				return nil, err
			}
		}
		base, err = matrix.Mul(base, base)
		if err != nil {
			return nil, err
		}
		p >>= 1
	}
	return result, nil
}
