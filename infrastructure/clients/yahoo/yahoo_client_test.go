package yahoo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"solar-pipeline/infrastructure/clients/yahoo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartBody = `{"chart":{"result":[{
	"meta":{"symbol":"HUBC.KA","gmtoffset":18000},
	"timestamp":[1704168000,1704254400,1704340800],
	"indicators":{
		"quote":[{
			"open":[100.5,101,null],
			"high":[102,103.25,null],
			"low":[99,100,null],
			"close":[101.5,102.75,null],
			"volume":[150000,null,null]
		}],
		"adjclose":[{"adjclose":[95.1,96.2,null]}]
	}
}],"error":null}}`

func TestDailyBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/HUBC.KA", r.URL.Path)
		assert.Equal(t, "1704067200", q.Get("period1"))
		assert.Equal(t, "1704499200", q.Get("period2"))
		assert.Equal(t, "1d", q.Get("interval"))
		assert.Equal(t, "history", q.Get("events"))
		assert.Equal(t, "true", q.Get("includeAdjustedClose"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)

	bars, err := yahoo.NewClient(srv.URL+"/").DailyBars(context.Background(), "HUBC.KA", start, end, "1d")
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.Equal(t, 100.5, bars[0].Open)
	assert.Equal(t, 101.5, bars[0].Close)
	assert.Equal(t, 95.1, bars[0].AdjClose)
	assert.Equal(t, int64(150000), bars[0].Volume)
	assert.Equal(t, int64(0), bars[1].Volume)
}

func TestDailyBars_ChartError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	_, err := yahoo.NewClient(srv.URL).DailyBars(context.Background(), "NOPE.KA", time.Now(), time.Now(), "1d")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "symbol may be delisted")
}

func TestDailyBars_EmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"X"},"indicators":{"quote":[{}]}}],"error":null}}`))
	}))
	defer srv.Close()

	bars, err := yahoo.NewClient(srv.URL).DailyBars(context.Background(), "X", time.Now(), time.Now(), "1d")
	require.NoError(t, err)
	assert.Empty(t, bars)
}
