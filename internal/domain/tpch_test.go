package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScale(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{raw: "1", want: 1},
		{raw: "10", want: 10},
		{raw: "0.01", want: 0.01},
		{raw: " 2 ", want: 2},
		{raw: "0", wantErr: true},
		{raw: "-3", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "NaN", wantErr: true},
		{raw: "+Inf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseScale(tt.raw)
			if tt.wantErr {
				var scaleErr *InvalidScaleError
				require.True(t, errors.As(err, &scaleErr), "want InvalidScaleError, got %v", err)
				assert.Equal(t, tt.raw, scaleErr.Value)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateScale(t *testing.T) {
	assert.NoError(t, ValidateScale(1))
	assert.NoError(t, ValidateScale(0.1))
	assert.Error(t, ValidateScale(0))
	assert.Error(t, ValidateScale(-1))
	assert.Error(t, ValidateScale(math.Inf(-1)))
}

func TestFormatScale(t *testing.T) {
	assert.Equal(t, "1", FormatScale(1))
	assert.Equal(t, "0.5", FormatScale(0.5))
	assert.Equal(t, "100", FormatScale(100))
}

func TestTPCHRelations(t *testing.T) {
	assert.Len(t, TPCHRelations, 8)
	assert.Contains(t, TPCHRelations, "lineitem")
	assert.Contains(t, TPCHRelations, "partsupp")
}
