package engine

// DaysPerYear is the production trajectory resolution: one sample per day.
const DaysPerYear = 365

// Channel indices into the variable axis of the output buffer. These are
// shared between the dispatch (writer) and the decoder (reader); they must
// match the variable order the caller declared.
const (
	channelTemperature   = 0
	channelPrecipitation = 1
	channelWindSpeed     = 2
)

// BufferLayout describes the shape of a raw result buffer. The flat index of
// logical position (iter, year, day, varIdx) is
//
//	iter*years*days*V + year*days*V + day*V + varIdx
//
// where V is the variable count and days is DaysPerYear in production. The
// accelerated and fallback/decoder paths must agree on this layout, so all
// index arithmetic goes through this type.
type BufferLayout struct {
	Iterations int
	Years      int
	Days       int
	Variables  int
}

// layoutFor derives the production buffer layout from validated parameters.
func layoutFor(iterations, years uint32, variables int) BufferLayout {
	return BufferLayout{
		Iterations: int(iterations),
		Years:      int(years),
		Days:       DaysPerYear,
		Variables:  variables,
	}
}

// Len returns the total number of float32 values in the buffer.
func (l BufferLayout) Len() int {
	return l.Iterations * l.LaneStride()
}

// LaneStride returns the number of values written by one lane.
func (l BufferLayout) LaneStride() int {
	return l.Years * l.Days * l.Variables
}

// Index computes the flat index for a logical position. Callers are expected
// to bounds-check the result against Len before reading or writing.
func (l BufferLayout) Index(iter, year, day, varIdx int) int {
	return iter*l.LaneStride() + year*l.Days*l.Variables + day*l.Variables + varIdx
}
