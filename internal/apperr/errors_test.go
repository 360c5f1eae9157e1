package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("stock.report", "quantity", "must be >= 0"), KindValidation},
		{"not found", NotFound("hospital.get", "hospital", "h-1"), KindNotFound},
		{"wrapped infrastructure", fmt.Errorf("outer: %w", Infrastructure("stock.list", errors.New("conn refused"))), KindInfrastructure},
		{"foreign", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestIsMatchesSentinelByKind(t *testing.T) {
	err := fmt.Errorf("ctx: %w", NotFound("stock.update", "stock record", "r-9"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
}

func TestErrorMessageCarriesContext(t *testing.T) {
	err := Validation("geo.find_within_radius", "radius_km", "must be between 1 and 500")
	assert.Equal(t, "geo.find_within_radius: radius_km: must be between 1 and 500", err.Error())

	nf := NotFound("hospital.get", "hospital", "abc")
	assert.Equal(t, "hospital.get: hospital not found (id abc)", nf.Error())
	assert.Equal(t, "", FieldOf(nf))
	assert.Equal(t, "radius_km", FieldOf(err))
}

func TestInfrastructureUnwraps(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Infrastructure("hospital.list", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "dial tcp: refused")
}
