package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	buf := &bytes.Buffer{}
	err := WriteCSV(buf, Table{
		Columns: []string{"id", "title"},
		Records: [][]string{{"1", "Go, in depth"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "id,title\n1,\"Go, in depth\"\n", buf.String())
}

func TestWriteCSVRejectsRaggedRecords(t *testing.T) {
	err := WriteCSV(&bytes.Buffer{}, Table{Columns: []string{"id"}, Records: [][]string{{"1", "extra"}}})
	assert.Error(t, err)

	err = WriteCSV(&bytes.Buffer{}, Table{})
	assert.Error(t, err)
}

func TestRenderPDF(t *testing.T) {
	data, err := RenderPDF(Document{
		Title:  "Introduction à Go",
		Fields: []Field{{Label: "Status", Value: "PUBLISHED"}},
		Body:   "Goroutines and channels.",
		Table:  &Table{Columns: []string{"student", "progress"}, Records: [][]string{{"7", "40"}}},
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}
