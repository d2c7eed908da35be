package util

import (
	"context"
	"testing"

	"github.com/infigaming-com/gold-monitor/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueFromCtx(t *testing.T) {
	tests := []struct {
		name        string
		setupCtx    func() context.Context
		key         ContextKey
		wantValue   string
		wantErrCode int64
	}{
		{
			name: "string value - success",
			setupCtx: func() context.Context {
				return ValueToCtx(context.Background(), "string-key", "test-value")
			},
			key:       "string-key",
			wantValue: "test-value",
		},
		{
			name:        "missing value - error",
			setupCtx:    context.Background,
			key:         "missing-key",
			wantErrCode: ErrCodeValueNotFoundInContext,
		},
		{
			name: "wrong type - error",
			setupCtx: func() context.Context {
				return ValueToCtx(context.Background(), "wrong-type", 42)
			},
			key:         "wrong-type",
			wantErrCode: ErrCodeInvalidValueInContext,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValueFromCtx[string](tt.setupCtx(), tt.key)
			if tt.wantErrCode != 0 {
				var codedErr *errors.Error
				require.ErrorAs(t, err, &codedErr)
				assert.Equal(t, tt.wantErrCode, codedErr.GetCode())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantValue, got)
		})
	}
}

func TestCorrelationIdRoundTrip(t *testing.T) {
	ctx := CorrelationIdToCtx(context.Background(), "abc-123")

	id, err := CorrelationIdFromCtx(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id)

	_, err = CorrelationIdFromCtx(context.Background())
	assert.Error(t, err)
}
