package goemerchant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnflattenRecords_RebuildsIndexedFamilies(t *testing.T) {
	record := FlatRecord{
		"order_id1": "ord-a", "amount1": "10.00",
		"order_id2": "ord-b", "amount2": "20.00",
		"order_id3": "ord-c", "amount3": "30.00",
	}

	records := unflattenRecords(record, 3, []string{"order_id", "amount"}, nil)
	require.Len(t, records, 3)

	assert.Equal(t, FlatRecord{"order_id": "ord-a", "amount": "10.00"}, records[0])
	assert.Equal(t, FlatRecord{"order_id": "ord-b", "amount": "20.00"}, records[1])
	assert.Equal(t, FlatRecord{"order_id": "ord-c", "amount": "30.00"}, records[2])
}

func TestUnflattenRecords_MissingKeysStayAbsent(t *testing.T) {
	record := FlatRecord{
		"order_id1": "ord-a",
		// amount1 never arrived
		"order_id2": "ord-b", "amount2": "20.00",
	}

	records := unflattenRecords(record, 2, []string{"order_id", "amount"}, nil)
	require.Len(t, records, 2)

	_, ok := records[0]["amount"]
	assert.False(t, ok, "absent source keys must not materialize as empty strings")
	assert.Equal(t, "20.00", records[1]["amount"])
}

func TestUnflattenRecords_CountBoundsTheScan(t *testing.T) {
	record := FlatRecord{
		"order_id1": "ord-a",
		"order_id2": "ord-b",
		"order_id3": "ord-c",
	}

	records := unflattenRecords(record, 2, []string{"order_id"}, nil)
	require.Len(t, records, 2)
	assert.Equal(t, "ord-b", records[1]["order_id"])
}

func TestUnflattenRecords_FilterNeverShiftsIndices(t *testing.T) {
	record := FlatRecord{
		"status1": "1", "order_id1": "ord-a",
		"status2": "0", "order_id2": "ord-b",
		"status3": "1", "order_id3": "ord-c",
	}

	records := unflattenRecords(record, 3, []string{"status", "order_id"},
		func(sub FlatRecord) bool { return sub["status"] == "1" })

	require.Len(t, records, 2)
	assert.Equal(t, "ord-a", records[0]["order_id"])
	assert.Equal(t, "ord-c", records[1]["order_id"],
		"the row after a filtered one still reads its own suffix")
}

func TestUnflattenRecords_ZeroCount(t *testing.T) {
	records := unflattenRecords(FlatRecord{"order_id1": "ord-a"}, 0, []string{"order_id"}, nil)
	assert.Empty(t, records)
}
