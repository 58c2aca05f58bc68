// Package fs provides filesystem abstractions for testability and fault
// injection.
//
//   - [LocalFS]: production implementation backed by the os package
//   - [FaultyFS]: test utility that injects I/O errors per file pattern
//
// Production code uses fs.Default; tests wrap it:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("wal.log", fs.Fault{FailOnSync: true})
//	// inject ffs into the component under test
//
// The interfaces intentionally carry no context.Context: local file
// operations are not interruptible at the syscall level.
package fs
