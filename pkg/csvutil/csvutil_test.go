package csvutil_test

import (
	"strings"
	"testing"

	"go-hiring-pipeline/pkg/csvutil"

	"github.com/stretchr/testify/assert"
)

func TestSplitLine(t *testing.T) {
	t.Run("quoted field keeps its comma", func(t *testing.T) {
		fields := csvutil.SplitLine(`"Jo,Doe",jo@x.com,Dev`)
		assert.Equal(t, []string{"Jo,Doe", "jo@x.com", "Dev"}, fields)
	})

	t.Run("doubled quote becomes literal quote", func(t *testing.T) {
		fields := csvutil.SplitLine(`"say ""hi""",b`)
		assert.Equal(t, []string{`say "hi"`, "b"}, fields)
	})

	t.Run("fields are trimmed after unquoting", func(t *testing.T) {
		fields := csvutil.SplitLine(`  a , " b " ,c  `)
		assert.Equal(t, []string{"a", "b", "c"}, fields)
	})

	t.Run("empty fields are preserved", func(t *testing.T) {
		fields := csvutil.SplitLine(`a,,c,`)
		assert.Equal(t, []string{"a", "", "c", ""}, fields)
	})

	t.Run("empty line is one empty field", func(t *testing.T) {
		assert.Equal(t, []string{""}, csvutil.SplitLine(""))
	})
}

func TestLines(t *testing.T) {
	t.Run("whitespace only is empty", func(t *testing.T) {
		assert.Nil(t, csvutil.Lines([]byte("  \n\t \n")))
	})

	t.Run("strips bom and carriage returns", func(t *testing.T) {
		lines := csvutil.Lines([]byte("\uFEFFname,email\r\nA,a@x.com\r\n"))
		assert.Equal(t, []string{"name,email", "A,a@x.com"}, lines)
	})

	t.Run("blank interior line is kept as its own record", func(t *testing.T) {
		lines := csvutil.Lines([]byte("name\n\nA"))
		assert.Equal(t, []string{"name", "", "A"}, lines)
	})

	t.Run("quoted line break stays inside the record", func(t *testing.T) {
		lines := csvutil.Lines([]byte("name,exp\r\n\"Jo\",\"5y at X\r\n3y at Y\"\r\n\"Al\",\"\"\"quoted\"\"\nnext\""))
		assert.Equal(t, []string{
			"name,exp",
			"\"Jo\",\"5y at X\n3y at Y\"",
			"\"Al\",\"\"\"quoted\"\"\nnext\"",
		}, lines)
		assert.Equal(t, []string{"Jo", "5y at X\n3y at Y"}, csvutil.SplitLine(lines[1]))
		assert.Equal(t, []string{"Al", "\"quoted\"\nnext"}, csvutil.SplitLine(lines[2]))
	})

	t.Run("unterminated quote swallows the rest", func(t *testing.T) {
		lines := csvutil.Lines([]byte("name\n\"open\nB\nC"))
		assert.Equal(t, []string{"name", "\"open\nB\nC"}, lines)
	})

	t.Run("invalid utf8 is replaced", func(t *testing.T) {
		lines := csvutil.Lines([]byte{'a', 0xff, 'b'})
		assert.Equal(t, []string{"a\uFFFDb"}, lines)
	})
}

func TestQuoting(t *testing.T) {
	assert.Equal(t, `"a ""b"" c"`, csvutil.Quote(`a "b" c`))
	assert.Equal(t, `"x","","y,z"`, csvutil.JoinQuoted([]string{"x", "", "y,z"}))

	t.Run("quoted output splits back to the same values", func(t *testing.T) {
		values := []string{`He said "no"`, "a,b", "plain", ""}
		assert.Equal(t, values, csvutil.SplitLine(csvutil.JoinQuoted(values)))
	})
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", csvutil.Preview("short", 100))
	long := strings.Repeat("x", 150)
	assert.Len(t, csvutil.Preview(long, 100), 100)
	// multi-byte rune straddling the cut is dropped rather than split
	assert.Equal(t, "ab", csvutil.Preview("abé", 3))
}
