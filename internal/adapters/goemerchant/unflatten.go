package goemerchant

import "strconv"

// unflattenRecords reconstructs an ordered sequence of sub-records from a
// numerically suffixed field family: for i in 1..count, one record is built
// by reading record[name+i] for each name in fieldNames. Missing keys stay
// absent in the sub-record rather than mapping to empty strings.
//
// keep, when non-nil, filters rows after construction. Filtering never
// changes the source indices consulted for subsequent rows; it only decides
// which reconstructed records are returned. The result is materialized in
// ascending index order.
func unflattenRecords(record FlatRecord, count int, fieldNames []string, keep func(FlatRecord) bool) []FlatRecord {
	records := make([]FlatRecord, 0, count)
	for i := 1; i <= count; i++ {
		suffix := strconv.Itoa(i)
		sub := make(FlatRecord, len(fieldNames))
		for _, name := range fieldNames {
			if value, ok := record[name+suffix]; ok {
				sub[name] = value
			}
		}
		if keep != nil && !keep(sub) {
			continue
		}
		records = append(records, sub)
	}
	return records
}
