package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordLookup(t *testing.T) {
	matchedBefore := testutil.ToFloat64(LookupsTotal.WithLabelValues(OutcomeMatched))
	notFoundBefore := testutil.ToFloat64(LookupsTotal.WithLabelValues(OutcomeNotFound))

	pos := 3
	RecordLookup(OutcomeMatched, &pos)
	RecordLookup(OutcomeNotFound, nil)
	RecordLookup(OutcomeNotFound, nil)

	assert.Equal(t, matchedBefore+1, testutil.ToFloat64(LookupsTotal.WithLabelValues(OutcomeMatched)))
	assert.Equal(t, notFoundBefore+2, testutil.ToFloat64(LookupsTotal.WithLabelValues(OutcomeNotFound)))
}

func TestLocationsLoadedGauge(t *testing.T) {
	LocationsLoaded.Set(250)
	assert.Equal(t, 250.0, testutil.ToFloat64(LocationsLoaded))
}
