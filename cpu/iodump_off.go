//go:build !iodump

package cpu

// IODump turns on the hit/miss report and the TLB dumps.
const IODump = false
