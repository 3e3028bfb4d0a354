package ingest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_HeaderAndRows(t *testing.T) {
	raw := "user_id,email,status\n1,a@example.com,1\n2,b@example.com,2\n"
	rows, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{"user_id": "1", "email": "a@example.com", "status": "1"}, rows[0])
	assert.Equal(t, Row{"user_id": "2", "email": "b@example.com", "status": "2"}, rows[1])
}

func TestParse_SkipsBlankLines(t *testing.T) {
	raw := "\n\nuser_id,email\n\n1,a@example.com\n\n2,b@example.com\n\n"
	rows, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "1", rows[0]["user_id"])
	assert.Equal(t, "2", rows[1]["user_id"])
}

func TestParse_PreservesRowOrder(t *testing.T) {
	raw := "id\nc\na\nb\n"
	rows, err := Parse(raw)
	require.NoError(t, err)
	got := make([]string, len(rows))
	for i, r := range rows {
		got[i] = r["id"]
	}
	assert.Equal(t, []string{"c", "a", "b"}, got, "output order must match input order")
}

func TestParse_QuotedCells(t *testing.T) {
	raw := "id,comment\n1,\"hello, world\"\n2,\"line\nbreak\"\n"
	rows, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "hello, world", rows[0]["comment"])
	assert.Equal(t, "line\nbreak", rows[1]["comment"])
}

func TestParse_ColumnCountMismatch(t *testing.T) {
	raw := "id,name\n1,alice\n2\n"
	_, err := Parse(raw)
	var pe *ParseError
	require.True(t, errors.As(err, &pe), "want *ParseError, got %v", err)
	assert.Equal(t, 3, pe.Line)
}

func TestParse_MalformedQuoting(t *testing.T) {
	raw := "id,name\n1,\"unterminated\n"
	_, err := Parse(raw)
	var pe *ParseError
	require.True(t, errors.As(err, &pe), "want *ParseError, got %v", err)
}

func TestParse_EmptyDocument(t *testing.T) {
	rows, err := Parse("")
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = Parse("id,name\n")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParse_StripsBOMAndHeaderWhitespace(t *testing.T) {
	raw := "\uFEFFid, name\n1,alice\n"
	rows, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "alice", rows[0]["name"])
	assert.Equal(t, "1", rows[0]["id"])
}
