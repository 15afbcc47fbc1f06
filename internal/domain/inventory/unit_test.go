package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyUnit(t *testing.T) {
	tests := []struct {
		name string
		unit string
		want UnitClass
	}{
		{"kilograms", "KGS", UnitClassSmall},
		{"kilogram lowercase", "kilogram", UnitClassSmall},
		{"grams", "GMS", UnitClassSmall},
		{"liters", "LTR", UnitClassSmall},
		{"pieces", "PCS", UnitClassSmall},
		{"bag", "BAG", UnitClassLarge},
		{"bags with noise", "Bags (50)", UnitClassLarge},
		{"carton", "CARTON", UnitClassLarge},
		{"drum", "Drum", UnitClassLarge},
		{"unknown", "DOZEN", UnitClassUnknown},
		{"empty", "", UnitClassUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyUnit(tt.unit))
		})
	}
}

func TestResolveDirection(t *testing.T) {
	tests := []struct {
		name          string
		primary       string
		secondary     string
		wantDirection ConversionDirection
		wantAmbiguous bool
	}{
		{"bag primary, kgs secondary", "BAG", "KGS", DirectionDivide, false},
		{"drum primary, liters secondary", "DRUM", "LTR", DirectionDivide, false},
		{"kgs primary, bag secondary", "KGS", "BAG", DirectionMultiply, false},
		{"both small", "KGS", "GMS", DirectionMultiply, true},
		{"both large", "BAG", "BOX", DirectionMultiply, true},
		{"unknown secondary", "BAG", "DOZEN", DirectionMultiply, true},
		{"unknown both", "FOO", "BAR", DirectionMultiply, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, ambiguous := ResolveDirection(tt.primary, tt.secondary)
			assert.Equal(t, tt.wantDirection, dir)
			assert.Equal(t, tt.wantAmbiguous, ambiguous)
		})
	}
}

func TestToBaseQuantity(t *testing.T) {
	t.Run("divide converts kgs to bags", func(t *testing.T) {
		// 1 BAG = 20 KGS; 6 KGS = 0.3 BAG
		got, err := ToBaseQuantity(decimal.NewFromInt(6), DirectionDivide, decimal.NewFromInt(20))
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromFloat(0.3)), "got %s", got)
	})

	t.Run("multiply converts bags to kgs", func(t *testing.T) {
		got, err := ToBaseQuantity(decimal.NewFromInt(3), DirectionMultiply, decimal.NewFromInt(20))
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromInt(60)))
	})

	t.Run("rejects non-positive rate", func(t *testing.T) {
		_, err := ToBaseQuantity(decimal.NewFromInt(6), DirectionDivide, decimal.Zero)
		require.Error(t, err)
	})
}

func TestUnitRoundTrip(t *testing.T) {
	// FromBaseQuantity must be the exact inverse of ToBaseQuantity for every
	// direction the decision table can produce.
	rates := []decimal.Decimal{
		decimal.NewFromInt(20),
		decimal.NewFromInt(4),
		decimal.NewFromFloat(2.5),
	}
	quantities := []decimal.Decimal{
		decimal.NewFromInt(6),
		decimal.NewFromFloat(1.2),
		decimal.NewFromInt(100),
	}

	for _, dir := range []ConversionDirection{DirectionDivide, DirectionMultiply} {
		for _, rate := range rates {
			for _, qty := range quantities {
				base, err := ToBaseQuantity(qty, dir, rate)
				require.NoError(t, err)
				back, err := FromBaseQuantity(base, dir, rate)
				require.NoError(t, err)
				assert.True(t, back.Equal(qty), "direction %s rate %s qty %s came back as %s", dir, rate, qty, back)
			}
		}
	}
}

func TestAllowsFractions(t *testing.T) {
	assert.True(t, AllowsFractions("KG"))
	assert.True(t, AllowsFractions("KGS"))
	assert.True(t, AllowsFractions("Kilogram"))
	assert.False(t, AllowsFractions("BAG"))
	assert.False(t, AllowsFractions("PCS"))
	assert.False(t, AllowsFractions(""))
}
