package csvimport

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTiles(t *testing.T) {
	t.Run("valid catalogue", func(t *testing.T) {
		sheet, err := ReadTiles(strings.NewReader("size,coverage,box_packing\n2x2,16,4\n1x1,10.5,\n"), 0)
		require.NoError(t, err)
		assert.False(t, sheet.Errors.HasErrors())
		assert.Equal(t, 2, sheet.TotalRows)
		require.Len(t, sheet.Records, 2)
		assert.True(t, decimal.NewFromFloat(10.5).Equal(sheet.Records[1].Coverage))
		assert.Equal(t, 4, sheet.Records[0].BoxPacking)
		assert.Equal(t, 0, sheet.Records[1].BoxPacking)
	})

	t.Run("missing required column", func(t *testing.T) {
		sheet, err := ReadTiles(strings.NewReader("size,box_packing\n2x2,4\n"), 0)
		require.NoError(t, err)
		require.Equal(t, 1, sheet.Errors.TotalCount())
		assert.Equal(t, "coverage", sheet.Errors.Errors()[0].Column)
		assert.Empty(t, sheet.Records)
	})

	t.Run("bad rows are reported and skipped", func(t *testing.T) {
		csv := "size,coverage,box_packing\n" +
			",16,4\n" +
			"2x2,abc,4\n" +
			"4x4,-1,\n" +
			"1x2,8,x\n" +
			"2x4,12,6\n" +
			"2X4,12,6\n"
		sheet, err := ReadTiles(strings.NewReader(csv), 0)
		require.NoError(t, err)
		require.Len(t, sheet.Records, 1)
		assert.Equal(t, "2x4", sheet.Records[0].Size)

		codes := map[int]string{}
		for _, e := range sheet.Errors.Errors() {
			codes[e.Row] = e.Code
		}
		assert.Equal(t, map[int]string{
			2: ErrCodeRequiredField,
			3: ErrCodeInvalidNumber,
			4: ErrCodeInvalidValue,
			5: ErrCodeInvalidNumber,
			7: ErrCodeDuplicateRow,
		}, codes)
	})
}
