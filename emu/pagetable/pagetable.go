/*
 * PCIeVC - Sparse page table
 *
 * Copyright 2025, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

/*
   The page table maps a 64 bit address onto fixed size pages which are
   only allocated the first time they are touched. The table has a fixed
   number of buckets, the bucket for an address is the page number masked
   by TableMask. Pages whose numbers collide in a bucket are chained, so
   every page stays reachable and no page is ever owned by two entries.
*/

package pagetable

const (
	TableSize = 4096          // Number of buckets.
	TableMask = TableSize - 1 // Mask page number to bucket.
)

type entry[P any] struct {
	base uint64 // Page aligned address this entry covers.
	page *P     // Storage, owned by this entry only.
}

// Table of lazily allocated pages of type P.
type Table[P any] struct {
	shift   uint         // Log2 of page size.
	buckets [][]entry[P] // Hash buckets, each a chain of entries.
	pages   int          // Number of allocated pages.
	newPage func() *P    // Create a fresh page.
}

// Create a new table for pages of 1<<shift addresses.
func New[P any](shift uint, newPage func() *P) *Table[P] {
	return &Table[P]{
		shift:   shift,
		buckets: make([][]entry[P], TableSize),
		newPage: newPage,
	}
}

// Drop all pages.
func (t *Table[P]) Reset() {
	for i := range t.buckets {
		t.buckets[i] = nil
	}
	t.pages = 0
}

// Return page aligned base of address.
func (t *Table[P]) Base(addr uint64) uint64 {
	return addr &^ ((uint64(1) << t.shift) - 1)
}

// Return offset of address within its page.
func (t *Table[P]) Offset(addr uint64) int {
	return int(addr & ((uint64(1) << t.shift) - 1))
}

func (t *Table[P]) bucket(addr uint64) int {
	return int((addr >> t.shift) & TableMask)
}

// Find page holding address, nil if never allocated.
func (t *Table[P]) Locate(addr uint64) *P {
	base := t.Base(addr)
	for _, e := range t.buckets[t.bucket(addr)] {
		if e.base == base {
			return e.page
		}
	}
	return nil
}

// Find page holding address, allocating it if missing.
// Also returns true if a new page was created.
func (t *Table[P]) LocateOrAllocate(addr uint64) (*P, bool) {
	base := t.Base(addr)
	b := t.bucket(addr)
	for _, e := range t.buckets[b] {
		if e.base == base {
			return e.page, false
		}
	}
	page := t.newPage()
	if page == nil {
		panic("pagetable: unable to allocate page")
	}
	t.buckets[b] = append(t.buckets[b], entry[P]{base: base, page: page})
	t.pages++
	return page, true
}

// Number of pages allocated.
func (t *Table[P]) Pages() int {
	return t.pages
}

// Length of longest bucket chain.
func (t *Table[P]) LongestChain() int {
	longest := 0
	for _, chain := range t.buckets {
		longest = max(longest, len(chain))
	}
	return longest
}

// Call fn for every allocated page, in no particular order.
func (t *Table[P]) Walk(fn func(base uint64, page *P)) {
	for _, chain := range t.buckets {
		for _, e := range chain {
			fn(e.base, e.page)
		}
	}
}
