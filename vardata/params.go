package vardata

import "strconv"

// Param resolves a transform parameter for (variable, dimension) using the
// cascade from spec §3: "dim_name:param_name" on the variable, then
// "param_name" on the variable, then "param_name" on the dimension.
// Unknown parameters yield (nil, false), never an error.
func Param(v *Variable, dimName, name string) (interface{}, bool) {
	if v == nil {
		return nil, false
	}
	if dimName != "" {
		if val, ok := v.Attrs[dimName+":"+name]; ok {
			return val, true
		}
	}
	if val, ok := v.Attrs[name]; ok {
		return val, true
	}
	if d := v.DimByName(dimName); d != nil {
		if val, ok := d.Param(name); ok {
			return val, true
		}
	}
	return nil, false
}

// ParamString resolves a char-typed parameter.
func ParamString(v *Variable, dimName, name string) (string, bool) {
	val, ok := Param(v, dimName, name)
	if !ok {
		return "", false
	}
	s, ok := val.(string)
	return s, ok
}

// ParamFloat64 resolves a scalar double parameter. Single-element float64
// vectors are accepted, matching the "scalar or vector" typing in spec §3.
func ParamFloat64(v *Variable, dimName, name string) (float64, bool) {
	val, ok := Param(v, dimName, name)
	if !ok {
		return 0, false
	}
	switch t := val.(type) {
	case float64:
		return t, true
	case []float64:
		if len(t) == 1 {
			return t[0], true
		}
	case int:
		return float64(t), true
	}
	return 0, false
}

// ParamFloat64Slice resolves a double-vector parameter. A bare scalar is
// accepted and returned as a length-1 slice.
func ParamFloat64Slice(v *Variable, dimName, name string) ([]float64, bool) {
	val, ok := Param(v, dimName, name)
	if !ok {
		return nil, false
	}
	switch t := val.(type) {
	case []float64:
		return t, true
	case float64:
		return []float64{t}, true
	}
	return nil, false
}

// ParamInt resolves a scalar int32 parameter.
func ParamInt(v *Variable, dimName, name string) (int, bool) {
	val, ok := Param(v, dimName, name)
	if !ok {
		return 0, false
	}
	switch t := val.(type) {
	case int:
		return t, true
	case int32:
		return int(t), true
	case float64:
		return int(t), true
	case []int:
		if len(t) == 1 {
			return t[0], true
		}
	}
	return 0, false
}

// ParamIntSlice resolves an int32-vector parameter (used for qc_bad).
func ParamIntSlice(v *Variable, dimName, name string) ([]int, bool) {
	val, ok := Param(v, dimName, name)
	if !ok {
		return nil, false
	}
	switch t := val.(type) {
	case []int:
		return t, true
	case int:
		return []int{t}, true
	}
	return nil, false
}

// Stringify renders any supported parameter value the way paramstore's
// provenance serializer needs it (spec §4.4): scalars print bare, float
// vectors and int vectors print space-joined.
func Stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case []float64:
		s := ""
		for i, f := range t {
			if i > 0 {
				s += " "
			}
			s += strconv.FormatFloat(f, 'g', -1, 64)
		}
		return s
	case []int:
		s := ""
		for i, n := range t {
			if i > 0 {
				s += " "
			}
			s += strconv.Itoa(n)
		}
		return s
	default:
		return ""
	}
}
