// Package memory sets the Go runtime's soft memory limit for the daemon when
// it runs under a container memory limit.
//
// GOMEMLIMIT, when present, is left to the runtime. Otherwise MEMORY_LIMIT
// (bytes, usually injected through the Kubernetes Downward API) is scaled by
// MEMORY_RATIO, default 0.90, and applied with debug.SetMemoryLimit. The
// remainder covers SQLite's C allocations and goroutine stacks.
//
//	env:
//	- name: MEMORY_LIMIT
//	  valueFrom:
//	    resourceFieldRef:
//	      resource: limits.memory
package memory
