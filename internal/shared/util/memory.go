package util

import "runtime"

// HeapUsage is a snapshot of the Go heap taken for health reports.
type HeapUsage struct {
	AllocBytes uint64
	SysBytes   uint64
	Objects    uint64
	NumGC      uint32
}

func ReadHeapUsage() HeapUsage {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return HeapUsage{
		AllocBytes: m.HeapAlloc,
		SysBytes:   m.HeapSys,
		Objects:    m.HeapObjects,
		NumGC:      m.NumGC,
	}
}

// AllocMB rounds the live heap down to whole MiB.
func (h HeapUsage) AllocMB() uint64 {
	return h.AllocBytes >> 20
}
