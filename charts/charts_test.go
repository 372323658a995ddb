package charts

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/billiard-pos/services"
)

func TestTopProducts_PNG(t *testing.T) {
	report := &services.DailyReport{
		Date: "2024-05-01",
		TopProducts: []services.ProductSales{
			{Name: "Coca Cola", Units: 12},
			{Name: "Chips", Units: 5},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, TopProducts(&buf, report))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestTopProducts_EmptyDay(t *testing.T) {
	err := TopProducts(&bytes.Buffer{}, &services.DailyReport{Date: "2024-05-02"})
	assert.ErrorIs(t, err, ErrNoSales)
	assert.ErrorIs(t, TopProducts(&bytes.Buffer{}, nil), ErrNoSales)
}

func TestTopProducts_FlatData(t *testing.T) {
	cases := map[string][]services.ProductSales{
		"single product": {{Name: "Coca Cola", Units: 3}},
		"equal units":    {{Name: "Coca Cola", Units: 3}, {Name: "Chips", Units: 3}},
	}
	for name, top := range cases {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, TopProducts(&buf, &services.DailyReport{Date: "2024-05-01", TopProducts: top}))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
		})
	}
}
