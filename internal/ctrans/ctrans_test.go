package ctrans

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ybf/internal/preproc"
)

func translate(t *testing.T, src string) (string, error) {
	t.Helper()
	prog, err := preproc.Process(src)
	require.NoError(t, err)
	return Translate(prog)
}

func mustTranslate(t *testing.T, src string) string {
	t.Helper()
	out, err := translate(t, src)
	require.NoError(t, err)
	return out
}

func TestTranslate_Skeleton(t *testing.T) {
	out := mustTranslate(t, "")
	assert.True(t, strings.HasPrefix(out, "#include <stdio.h>\n#include <stdlib.h>\n"))
	assert.Contains(t, out, "#define CELL_COUNT 30000\n")
	assert.Contains(t, out, "int main(void) {\n")
	assert.True(t, strings.HasSuffix(out, "    return 0;\n}\n"))
	assert.NotContains(t, out, "read_input(void)", "helpers are emitted on demand")
	assert.NotContains(t, out, "dump(void)")
}

func TestTranslate_FoldsArithmetic(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"+", "    ++data[pos];\n"},
		{"-", "    --data[pos];\n"},
		{"+++", "    data[pos] += 3;\n"},
		{"++-", "    ++data[pos];\n"},
		{"5+2-", "    data[pos] += 3;\n"},
		{"300+", "    data[pos] += 44;\n"},
		{"3-", "    data[pos] += 253;\n"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Contains(t, mustTranslate(t, tt.src), tt.want)
		})
	}

	out := mustTranslate(t, "+-")
	assert.NotContains(t, out, "data[pos] +=", "a zero delta emits nothing")
	assert.NotContains(t, out, "++data[pos]")
}

func TestTranslate_SpaceBreaksFolding(t *testing.T) {
	out := mustTranslate(t, "+ +")
	assert.Equal(t, 2, strings.Count(out, "++data[pos];"))
}

func TestTranslate_Commands(t *testing.T) {
	out := mustTranslate(t, "!total\n3> 2< total ? . 4. , ~")
	assert.Contains(t, out, "forward(3);")
	assert.Contains(t, out, "backward(2);")
	assert.Contains(t, out, "pos = 52; /* total */")
	assert.Contains(t, out, `printf("%d\n", data[pos]);`)
	assert.Contains(t, out, "    emit(data[pos]);\n")
	assert.Contains(t, out, "for (int i = 0; i < 4; i++) emit(data[pos]);")
	assert.Contains(t, out, "read_input();")
	assert.Contains(t, out, "static void read_input(void) {")
	assert.Contains(t, out, "    return 0;\n\n    return 0;\n}", "halt returns early")
}

func TestTranslate_Loops(t *testing.T) {
	out := mustTranslate(t, "+[>+[-]<-]")
	assert.Contains(t, out, "    while (data[pos]) {\n        forward(1);\n        ++data[pos];\n        data[pos] = 0;\n")
	assert.Contains(t, out, "        --data[pos];\n    }\n")
}

func TestTranslate_Dump(t *testing.T) {
	out := mustTranslate(t, "!xy\n%")
	assert.Contains(t, out, "static const char *const names[53] = {")
	assert.Contains(t, out, `"xy",`)
	assert.Contains(t, out, "dump();")
	assert.Contains(t, out, `pos < 53 ? names[pos] : "unnamed"`)
}

func TestTranslate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		offset int
		msg    string
	}{
		{"invalid command", "+@", 1, "The command [ @ ] is invalid."},
		{"undefined variable", "++ nope", 3, "The variable [ nope ] is not defined."},
		{"unmatched close", "+]", 1, "The [ ] ] has no matching [ [ ]."},
		{"unmatched open", "[[+]", 0, "The [ [ ] has no matching [ ] ]."},
		{"huge repeat", "99999999999+", 0, "The repeat count [ 99999999999 ] is too large."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := translate(t, tt.src)
			require.Error(t, err)

			var terr *Error
			require.ErrorAs(t, err, &terr)
			assert.Equal(t, tt.offset, terr.Offset)
			assert.Equal(t, tt.msg, terr.Message)
		})
	}
}
