package billtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vcbot/internal/core/apperror"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    BillType
		wantErr bool
	}{
		{name: "plain", input: "hr", want: HR},
		{name: "uppercase", input: "HR", want: HR},
		{name: "mixed case", input: "HJRes", want: HJRes},
		{name: "surrounding whitespace", input: "  s \n", want: S},
		{name: "concurrent resolution", input: "hconres", want: HConRes},
		{name: "unknown", input: "xyz", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "near miss", input: "hres2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperror.IsCode(err, apperror.CodeInvalidBillType))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAllAreValid(t *testing.T) {
	for _, bt := range All() {
		assert.True(t, bt.Valid(), "type %q should be valid", bt)
	}
	assert.Len(t, All(), 8)
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "HR", HR.Display())
	assert.Equal(t, "SJRES", SJRes.Display())
}
