package dataflow_test

import (
	"context"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/locvowork/quotes_service/pkg/dataflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_CollectKeepsSourceOrder(t *testing.T) {
	ctx := context.Background()
	source := dataflow.From(ctx, "3", "x", "1", "7", "2")

	var inFlight, peak int32
	results := dataflow.Collect(dataflow.Map(ctx, source, func(_ context.Context, s string) (int, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return strconv.Atoi(s)
	}, dataflow.WithWorkers(3)))

	require.Len(t, results, 5)
	for i, r := range results {
		assert.Equal(t, i, r.Index)
	}
	assert.Equal(t, 3, results[0].Value)
	assert.Error(t, results[1].Err)
	assert.Equal(t, "x", results[1].Input)
	assert.Equal(t, 2, results[4].Value)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}
