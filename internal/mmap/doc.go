// Package mmap provides read-only memory-mapped file access.
//
// Training corpora are scanned once from start to end. Mapping them avoids a
// copy through kernel buffers, and the AccessSequential hint lets the kernel
// read ahead aggressively.
//
//	m, err := mmap.Open("train.txt")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	r := m.Reader()
//
// Unix uses mmap(2) and madvise(2). Windows uses CreateFileMapping and
// MapViewOfFile; Advise is a no-op there.
//
// Close is idempotent. Callers must not touch Bytes or a Reader after Close.
package mmap
