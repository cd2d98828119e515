package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/oncall-lab/argus/pkg/domain/types"
)

func TestProvider_IsValid(t *testing.T) {
	for _, p := range types.AllProviders() {
		gt.B(t, p.IsValid()).Describef("Provider %s should be valid", p).True()
	}

	gt.B(t, types.Provider("mistral").IsValid()).False()
	gt.B(t, types.Provider("").IsValid()).False()
}

func TestParseSeverity(t *testing.T) {
	got, err := types.ParseSeverity("critical")
	gt.NoError(t, err)
	gt.V(t, got).Equal(types.SeverityCritical)

	_, err = types.ParseSeverity("urgent")
	gt.Error(t, err)
}
