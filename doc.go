// Package vdb provides an embeddable vector collection store with an
// append-only, crash-safe storage engine.
//
// A collection is a named container of embedding vectors with a fixed
// dimension and distance metric. Items are appended durably through a
// write-ahead log and read back in insertion order.
//
// # Quick Start
//
//	col, _ := vdb.Create("./data", "demo", 3, model.MetricCosine)
//	_ = col.Append("a", []float32{1, 0, 0}, nil)
//	_ = col.Append("b", []float32{0, 1, 0}, []byte(`{"lang":"en"}`))
//	_ = col.Close()
//
//	col, _ = vdb.Open("./data", "demo")
//	_ = col.Iterate(func(item *model.Item) bool {
//		fmt.Println(item.ID, item.Vector.Data())
//		return true
//	})
//
// # Durability
//
// Every append is written to the WAL and fsynced before the segment files
// are touched, and the append only commits once all segment fsyncs
// succeeded. A crash mid-append leaves a non-empty WAL that the next Open
// discards; committed items are never affected.
//
// The store is single-writer: one process owns a collection directory at a
// time. Indexing and similarity search are out of scope.
package vdb
