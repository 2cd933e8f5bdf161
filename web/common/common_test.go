package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOnlyJSON(t *testing.T) {
	var d DateOnly
	require.NoError(t, d.UnmarshalJSON([]byte(`"2024-03-05"`)))
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), d.Time)

	b, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-05"`, string(b))

	assert.Error(t, d.UnmarshalJSON([]byte(`"05/03/2024"`)))
}

func TestNewSearchResponseNil(t *testing.T) {
	res := NewSearchResponse[string](nil)
	assert.NotNil(t, res.Data)
	assert.Equal(t, int64(0), res.Pagination.Total)
}
