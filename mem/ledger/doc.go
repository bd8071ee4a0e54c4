// Package ledger implements the region ledger of a dynamic-partition memory
// manager.
//
// # Overview
//
// A Ledger covers a fixed-size address space with an ordered list of
// regions. Each region is either free or occupied by an Owner. The list is
// the only source of truth for memory state:
//
//   - regions are sorted by Start and contiguous, with no gaps or overlaps
//   - the regions span exactly the ledger capacity
//   - no two adjacent regions are both free
//   - at most one region is reserved, and it ends at capacity
//
// # Operations
//
//   - Reserve(size): install the protected system region at the high end
//   - Allocate(index, owner, size): occupy a free region, splitting off the remainder
//   - ReleaseByOwner(program): free a program's regions and merge free neighbours
//   - Compact(): slide occupied regions up against the reserved region
//   - Snapshot(): ordered copy for metrics, rendering and persistence
//
// Allocation decisions (which index to use) are made by package fit; the
// place package ties selection, compaction and allocation together.
//
// # Sizes
//
// Sizes and offsets are Size values, a fixed-point count of millionths of a
// MiB. Use FromMiB and Size.MiBs to convert from and to floating MiB.
//
// # Thread Safety
//
// Ledger instances are not thread-safe.
package ledger
