package specd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		rows []Row
		want string
	}{
		{
			name: "simple",
			rows: []Row{
				{StringField("a"), StringField("b")},
				{StringField("1"), StringField("2")},
			},
			want: "a,b\n1,2\n",
		},
		{
			name: "null and empty",
			rows: []Row{{StringField("a"), NullField(), StringField("")}},
			want: "a,,\"\"\n",
		},
		{
			name: "quoting",
			rows: []Row{{StringField("x,y"), StringField(`say "hi"`), StringField("two\nlines")}},
			want: "\"x,y\",\"say \"\"hi\"\"\",\"two\nlines\"\n",
		},
		{
			name: "empty",
			rows: nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(RowsNode(tt.rows))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestRenderRecord(t *testing.T) {
	got, err := Render(RowNode(Row{StringField("a"), NullField()}))
	require.NoError(t, err)
	assert.Equal(t, "a,", string(got))
}

func TestRenderLoneNullKeepsRow(t *testing.T) {
	rows := []Row{{StringField("a")}, {NullField()}, {StringField("x")}}

	got, err := Render(RowsNode(rows))
	require.NoError(t, err)
	assert.Equal(t, "a\n\"\"\nx\n", string(got))

	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, row := range rows {
		require.NoError(t, w.WriteRow(row))
	}
	require.NoError(t, w.Flush())

	again, err := ParseRows(buf.String(), ModeStrict)
	require.NoError(t, err)
	// the row survives; its null reads back as the empty string
	assert.Equal(t, []Row{{StringField("a")}, {StringField("")}, {StringField("x")}}, again)
}

func TestRenderRoundTrip(t *testing.T) {
	inputs := []string{
		"a,b,c\n1,,\"\"\n",
		"\"x,y\",\"q\"\"q\"\n\"multi\nline\",z\n",
		"nan,NaN,inf\n",
		"FILE, padded ,\n",
	}

	for _, input := range inputs {
		rows, err := ParseRows(input, ModeStrict)
		require.NoError(t, err)

		var buf bytes.Buffer
		w := NewWriter(&buf)
		for _, row := range rows {
			require.NoError(t, w.WriteRow(row))
		}
		require.NoError(t, w.Flush())

		again, err := ParseRows(buf.String(), ModeStrict)
		require.NoError(t, err)
		assert.Equal(t, rows, again, "input %q", input)
	}
}
