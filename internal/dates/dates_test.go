package dates

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"empty passes through empty", "", "", false},
		{"canonical passes through", "2024-06-01", "2024-06-01", false},
		{"epoch milliseconds", "1700000000000", "2023-11-14", false},
		{"epoch milliseconds midnight boundary", "1704067200000", "2024-01-01", false},
		{"rfc3339 truncated", "2024-06-01T12:34:56Z", "2024-06-01", false},
		{"sql timestamp truncated", "2024-06-01 12:34:56", "2024-06-01", false},
		{"us slash date", "06/01/2024", "2024-06-01", false},
		{"slash date", "2024/06/01", "2024-06-01", false},
		{"human readable", "Jun 1, 2024", "2024-06-01", false},
		{"garbage fails", "not a date", "", true},
		{"short digit run fails", "12345", "", true},
		{"canonical shape with letters fails", "20a4-06-01", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatDate(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				var fe *FormatError
				require.True(t, errors.As(err, &fe), "error must be *FormatError")
				assert.Equal(t, tt.raw, fe.Raw)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDate_OutputShape(t *testing.T) {
	got, err := FormatDate("1700000000000")
	require.NoError(t, err)
	require.Len(t, got, 10)
	assert.Equal(t, byte('-'), got[4])
	assert.Equal(t, byte('-'), got[7])
}
