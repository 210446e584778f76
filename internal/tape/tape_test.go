package tape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTape(t *testing.T, declared ...string) *Tape {
	t.Helper()
	vars, err := NewVariables(declared)
	require.NoError(t, err)
	return New(vars)
}

func TestIncrementWraps(t *testing.T) {
	tests := []struct {
		name  string
		start int
		add   int
		want  byte
	}{
		{"simple", 0, 5, 5},
		{"to max", 250, 5, 255},
		{"wrap", 255, 1, 0},
		{"wrap far", 200, 100, 44},
		{"large count", 0, 256*3 + 7, 7},
		{"zero", 9, 0, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp := newTape(t)
			tp.Increment(tt.start)
			tp.Increment(tt.add)
			assert.Equal(t, tt.want, tp.Value())
		})
	}
}

func TestDecrementWraps(t *testing.T) {
	tp := newTape(t)
	tp.Decrement(1)
	assert.Equal(t, byte(255), tp.Value())

	tp.Decrement(256 + 5)
	assert.Equal(t, byte(250), tp.Value())

	tp.ResetToZero()
	assert.Equal(t, byte(0), tp.Value())
}

func TestIncrementDecrementMatchSimulation(t *testing.T) {
	for start := 0; start < 256; start++ {
		for _, v := range []int{1, 17, 255, 256, 1000} {
			tp := newTape(t)
			tp.Increment(start)
			tp.Increment(v)
			assert.Equal(t, byte((start+v)%256), tp.Value())
			tp.Decrement(v)
			assert.Equal(t, byte(start), tp.Value())
		}
	}
}

func TestForwardOverrun(t *testing.T) {
	tp := newTape(t)
	require.NoError(t, tp.Forward(MaxPosition))
	assert.Equal(t, MaxPosition, tp.Position())

	err := tp.Forward(1)
	require.Error(t, err)
	assert.True(t, IsFault(err, FaultOverrun))
	assert.Equal(t, "Buffer overrun occurred. The current position [ 30000 ] exceeds `29999`.", err.Error())

	// Position is not clamped.
	assert.Equal(t, MaxPosition+1, tp.Position())
	assert.False(t, tp.InRange())
}

func TestBackwardOverrun(t *testing.T) {
	tp := newTape(t)
	err := tp.Backward(3)
	require.Error(t, err)
	assert.True(t, IsFault(err, FaultOverrun))
	assert.Equal(t, "Buffer overrun occurred. The current position has the negative value [ -3 ].", err.Error())
	assert.Equal(t, -3, tp.Position())
}

func TestMoveTo(t *testing.T) {
	tp := newTape(t, "xx", "counter")

	require.NoError(t, tp.MoveTo("c"))
	assert.Equal(t, 2, tp.Position())

	require.NoError(t, tp.MoveTo("counter"))
	assert.Equal(t, 53, tp.Position())

	require.NoError(t, tp.MoveTo("a"))
	assert.Equal(t, 0, tp.Position())

	require.NoError(t, tp.MoveTo("a"), "jump to the current cell")
	assert.Equal(t, 0, tp.Position())

	err := tp.MoveTo("missing")
	require.Error(t, err)
	assert.True(t, IsFault(err, FaultUndefinedVariable))
	assert.Equal(t, "The variable [ missing ] is not defined.", err.Error())
	assert.Equal(t, 0, tp.Position())
}

func TestNamedAddressingRoundTrip(t *testing.T) {
	tp := newTape(t, "xy")
	require.NoError(t, tp.MoveTo("xy"))
	tp.Increment(42)
	require.NoError(t, tp.MoveTo("a"))
	assert.Equal(t, byte(0), tp.Value())
	require.NoError(t, tp.MoveTo("xy"))
	assert.Equal(t, byte(42), tp.Value())

	v, ok := tp.ValueOf("xy")
	require.True(t, ok)
	assert.Equal(t, byte(42), v)
}

func TestReadInput(t *testing.T) {
	tp := newTape(t)
	in := NewStringInput("AB")

	require.NoError(t, tp.ReadInput(in))
	assert.Equal(t, byte(65), tp.Value())
	require.NoError(t, tp.ReadInput(in))
	assert.Equal(t, byte(66), tp.Value())

	err := tp.ReadInput(in)
	require.Error(t, err)
	assert.True(t, IsFault(err, FaultEOF))
	assert.Equal(t, byte(66), tp.Value(), "cell untouched on EOF")
	assert.Equal(t, 2, in.Consumed())
	assert.Equal(t, 0, in.Remaining())
}

func TestReadInputReducesWideCharacters(t *testing.T) {
	tp := newTape(t)
	// U+0101 is 257.
	require.NoError(t, tp.ReadInput(NewStringInput("ā")))
	assert.Equal(t, byte(1), tp.Value())
}

func TestReaderInput(t *testing.T) {
	in := NewReaderInput(strings.NewReader("hé"))
	r, ok := in.Next()
	require.True(t, ok)
	assert.Equal(t, 'h', r)
	r, ok = in.Next()
	require.True(t, ok)
	assert.Equal(t, 'é', r)
	_, ok = in.Next()
	assert.False(t, ok)
	_, ok = in.Next()
	assert.False(t, ok)
}

func TestRendering(t *testing.T) {
	tp := newTape(t)
	tp.Increment(65)
	assert.Equal(t, "AAA", tp.Char(3))
	assert.Equal(t, "", tp.Char(0))
	assert.Equal(t, "65\n", tp.Raw())

	tp.Increment(168)
	assert.Equal(t, "é", tp.Char(1), "values above 127 render as Latin-1")
}

func TestStructure(t *testing.T) {
	tp := newTape(t, "total")
	tp.Increment(3)
	require.NoError(t, tp.MoveTo("total"))
	tp.Increment(7)

	want := "---------- Current Memory Structure ----------\n" +
		"Position: 52 (total)\n" +
		"   Value: 7\n" +
		"  Memory: {'a': 3, 'total': 7, }\n" +
		"----------------------------------------------\n"
	assert.Equal(t, want, tp.Structure())

	require.NoError(t, tp.Forward(100))
	assert.Contains(t, tp.Structure(), "Position: 152 (unnamed)\n")
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder(NewStringInput("héllo"))

	for i := 0; i < 3; i++ {
		_, ok := rec.Next()
		require.True(t, ok)
	}
	assert.Equal(t, "hél", rec.Consumed())

	replay := NewStringInput(rec.Consumed())
	for _, want := range "hél" {
		got, ok := replay.Next()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := replay.Next()
	assert.False(t, ok)
}

func TestRecorderAtEOF(t *testing.T) {
	rec := NewRecorder(NewStringInput("a"))
	_, _ = rec.Next()
	_, ok := rec.Next()
	assert.False(t, ok)
	assert.Equal(t, "a", rec.Consumed())
}
