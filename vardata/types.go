package vardata

// Dimension is a name, a length, and a parent dataset (spec §3). Coord, if
// set, is the rank-1 coordinate variable whose name equals this
// dimension's name.
type Dimension struct {
	Name   string
	Length int
	Coord  *Variable

	ds    *Dataset
	attrs map[string]interface{}
}

// Dataset returns the parent dataset, or nil if the dimension is detached.
func (d *Dimension) Dataset() *Dataset { return d.ds }

// Param reads a dimension-level attribute by name. Dimension attributes
// are the last stop in the cascade described in spec §3.
func (d *Dimension) Param(name string) (interface{}, bool) {
	if d == nil || d.attrs == nil {
		return nil, false
	}
	v, ok := d.attrs[name]
	return v, ok
}

// SetParam writes a dimension-level attribute.
func (d *Dimension) SetParam(name string, v interface{}) {
	if d.attrs == nil {
		d.attrs = make(map[string]interface{})
	}
	d.attrs[name] = v
}

// Variable is a named, typed, N-dimensional array (spec §3). Data backs
// float64-valued variables (input/output data, metrics); QC backs the
// parallel int32 quality-control state. A variable is either a data
// variable (Data set) or a QC variable (QC set); the driver and kernels
// never need both populated on the same Variable.
type Variable struct {
	Name string
	Dims []*Dimension

	Data []float64 // row-major flattened values, len == Len()
	QC   []int32   // row-major flattened QC state, len == Len()

	Attrs map[string]interface{} // missing_value, units, qc_mask, transform params, ...
	Tags  map[string]interface{} // mutable user-data bag (sibling pointers, estimated_boundaries_<d>, ...)

	ds *Dataset
}

// NewVariable constructs a Variable with the given dimensions. Data/QC are
// left nil; callers allocate whichever they need via AllocateData/AllocateQC.
func NewVariable(name string, dims ...*Dimension) *Variable {
	return &Variable{
		Name:  name,
		Dims:  dims,
		Attrs: make(map[string]interface{}),
		Tags:  make(map[string]interface{}),
	}
}

// Rank returns the number of dimensions.
func (v *Variable) Rank() int { return len(v.Dims) }

// Len returns the product of dimension lengths (total element count).
// Rank 0 (scalar) returns 1.
func (v *Variable) Len() int {
	n := 1
	for _, d := range v.Dims {
		n *= d.Length
	}
	return n
}

// Lengths returns the per-dimension length vector.
func (v *Variable) Lengths() []int {
	out := make([]int, len(v.Dims))
	for i, d := range v.Dims {
		out[i] = d.Length
	}
	return out
}

// AllocateData allocates v.Data sized to Len(), filled with fill.
func (v *Variable) AllocateData(fill float64) {
	v.Data = make([]float64, v.Len())
	for i := range v.Data {
		v.Data[i] = fill
	}
}

// AllocateQC allocates v.QC sized to Len(), zero-filled.
func (v *Variable) AllocateQC() {
	v.QC = make([]int32, v.Len())
}

// DimIndex returns the position of a named dimension in Dims, or -1.
func (v *Variable) DimIndex(name string) int {
	for i, d := range v.Dims {
		if d.Name == name {
			return i
		}
	}
	return -1
}

// DimByName returns the named dimension, or nil.
func (v *Variable) DimByName(name string) *Dimension {
	if i := v.DimIndex(name); i >= 0 {
		return v.Dims[i]
	}
	return nil
}

// DimCoord returns the coordinate variable attached to the named
// dimension, or nil.
func (v *Variable) DimCoord(name string) *Variable {
	if d := v.DimByName(name); d != nil {
		return d.Coord
	}
	return nil
}

// MissingValue returns the variable's missing_value attribute, defaulting
// to -9999 per spec §6 ("Default missing values ... applied if caller
// leaves the fields unset").
func (v *Variable) MissingValue() float64 {
	if mv, ok := v.Attrs["missing_value"].(float64); ok {
		return mv
	}
	return -9999
}

// Units returns the variable's units attribute, or "".
func (v *Variable) Units() string {
	u, _ := v.Attrs["units"].(string)
	return u
}

// Dataset returns the parent dataset, or nil if detached.
func (v *Variable) Dataset() *Dataset { return v.ds }

// Clone returns a deep copy of v, detached from any dataset and with a
// fresh Tags map (tags are per-invocation bookkeeping, not data).
func (v *Variable) Clone() *Variable {
	cp := &Variable{
		Name:  v.Name,
		Dims:  append([]*Dimension(nil), v.Dims...),
		Attrs: make(map[string]interface{}, len(v.Attrs)),
		Tags:  make(map[string]interface{}),
	}
	for k, val := range v.Attrs {
		cp.Attrs[k] = val
	}
	if v.Data != nil {
		cp.Data = append([]float64(nil), v.Data...)
	}
	if v.QC != nil {
		cp.QC = append([]int32(nil), v.QC...)
	}
	return cp
}

// Dataset is a named group holding variables and dimensions (spec §3). It
// provides cell_transform-style attribute sinks and sibling-variable
// storage for metric fields produced alongside a transformed variable.
type Dataset struct {
	Name  string
	Vars  map[string]*Variable
	Dims  map[string]*Dimension
	Attrs map[string]interface{}
}

// NewDataset constructs an empty, named Dataset.
func NewDataset(name string) *Dataset {
	return &Dataset{
		Name:  name,
		Vars:  make(map[string]*Variable),
		Dims:  make(map[string]*Dimension),
		Attrs: make(map[string]interface{}),
	}
}

// AddDimension registers a new dimension on the dataset.
func (ds *Dataset) AddDimension(name string, length int) (*Dimension, error) {
	if _, ok := ds.Dims[name]; ok {
		return nil, ErrDimExists
	}
	d := &Dimension{Name: name, Length: length, ds: ds}
	ds.Dims[name] = d
	return d, nil
}

// AddVariable registers v under its own Name, attaching it to the dataset.
func (ds *Dataset) AddVariable(v *Variable) {
	v.ds = ds
	ds.Vars[v.Name] = v
}

// Var looks up a variable by name.
func (ds *Dataset) Var(name string) (*Variable, bool) {
	v, ok := ds.Vars[name]
	return v, ok
}

// Dim looks up a dimension by name.
func (ds *Dataset) Dim(name string) (*Dimension, bool) {
	d, ok := ds.Dims[name]
	return d, ok
}
