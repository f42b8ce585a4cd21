package outwriter

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestRenderGrid(t *testing.T) {
	tests := []struct {
		name string
		rows [][]Cell
		want string
	}{
		{
			name: "mixed justification",
			rows: [][]Cell{
				{Left("a"), Right("1"), Center("x")},
				{Left("long"), Right("22"), Center("wide")},
			},
			want: "a     1  x  \nlong 22 wide\n",
		},
		{
			name: "plain aligns right",
			rows: [][]Cell{{Plain("ab")}, {Plain("c")}},
			want: "ab\n c\n",
		},
		{
			name: "short rows are padded",
			rows: [][]Cell{{Left("a"), Left("b")}, {Left("c")}},
			want: "a b\nc  \n",
		},
		{
			name: "center puts the odd space on the right",
			rows: [][]Cell{{Center("ab")}, {Left("abcde")}},
			want: " ab  \nabcde\n",
		},
		{
			name: "width counts runes",
			rows: [][]Cell{{Left("é")}, {Left("ab")}},
			want: "é \nab\n",
		},
		{
			name: "empty",
			rows: nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderGrid(tt.rows))
		})
	}
}

func TestRenderGridPaintedCell(t *testing.T) {
	paint := func(s string) string { return "<" + s + ">" }
	got := RenderGrid([][]Cell{
		{Right("1").Painted(paint)},
		{Right("100")},
	})
	assert.Equal(t, "<  1>\n100\n", got)
}

func TestRenderGridColumnsShareWidth(t *testing.T) {
	rows := [][]Cell{
		{Left("name"), Center("avg"), Right("x")},
		{Left("a much longer name"), Right("0.12345"), Right("[-----]")},
		{Left("b"), Right("12.00000"), Right("[+1.0%]")},
	}
	lines := strings.Split(strings.TrimSuffix(RenderGrid(rows), "\n"), "\n")
	for _, line := range lines {
		assert.Equal(t, utf8.RuneCountInString(lines[0]), utf8.RuneCountInString(line))
	}
}

func TestCellConstructors(t *testing.T) {
	assert.Equal(t, JustifyLeft, Left("x").Justify)
	assert.Equal(t, JustifyRight, Right("x").Justify)
	assert.Equal(t, JustifyCenter, Center("x").Justify)
	assert.Equal(t, JustifyNone, Plain("x").Justify)
	assert.Equal(t, 3, Plain("héé").Width())
}
