package core_test

import (
	"testing"

	"github.com/aretw0/jobboard/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuery(t *testing.T) {
	t.Run("Empty Spec Builds Empty Query", func(t *testing.T) {
		q := core.BuildQuery(core.FilterSpec{})
		assert.NotNil(t, q)
		assert.Empty(t, q)
		assert.Equal(t, "", q.Encode())
	})

	t.Run("Canonical Order And Verbatim Values", func(t *testing.T) {
		spec := core.FilterSpec{
			DateCreated: "2024-01-01",
			Company:     "Acme & Co",
			SalaryMin:   "50000",
			Status:      "Applied",
			JobType:     "   ",
		}
		q := core.BuildQuery(spec)
		require.Len(t, q, 4)
		assert.Equal(t, core.FilterStatus, q[0].Key)
		assert.Equal(t, core.FilterSalaryMin, q[1].Key)
		assert.Equal(t, "50000", q[1].Value)
		assert.Equal(t, core.FilterCompany, q[2].Key)
		assert.Equal(t, core.FilterDateCreated, q[3].Key)
		assert.Equal(t, "status=Applied&salary_min=50000&company=Acme+%26+Co&date_created=2024-01-01", q.Encode())
	})

	t.Run("Idempotent", func(t *testing.T) {
		spec := core.FilterSpec{LocationType: "Office based", SalaryMax: "90000"}
		assert.Equal(t, core.BuildQuery(spec).Encode(), core.BuildQuery(spec).Encode())
		assert.Equal(t, spec, core.BuildQuery(spec).Spec())
	})
}

func TestFilterSpec_Keys(t *testing.T) {
	spec := core.FilterSpec{}.With(core.FilterCompany, "Acme").With(core.FilterStatus, "Offer")
	assert.Equal(t, "Acme", spec.Get(core.FilterCompany))
	assert.False(t, spec.IsZero())

	spec = spec.Without(core.FilterCompany)
	assert.Equal(t, "", spec.Company)
	assert.Equal(t, "Offer", spec.Status)

	for in, want := range map[string]core.FilterKey{
		"jobType":      core.FilterJobType,
		"job_type":     core.FilterJobType,
		"salaryMin":    core.FilterSalaryMin,
		"DATE_CREATED": core.FilterDateCreated,
	} {
		got, err := core.ParseFilterKey(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := core.ParseFilterKey("title")
	assert.ErrorIs(t, err, core.ErrValidation)
}
