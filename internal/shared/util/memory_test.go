package util

import "testing"

func TestReadHeapUsage(t *testing.T) {
	usage := ReadHeapUsage()
	if usage.AllocBytes == 0 || usage.Objects == 0 {
		t.Fatalf("expected a live heap, got %+v", usage)
	}
	if usage.SysBytes < usage.AllocBytes {
		t.Fatalf("expected heap sys >= alloc, got %+v", usage)
	}
	if got := (HeapUsage{AllocBytes: 3<<20 + 12345}).AllocMB(); got != 3 {
		t.Fatalf("expected 3 MiB, got %d", got)
	}
}
