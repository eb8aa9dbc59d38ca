package scan

import "golang.org/x/sys/cpu"

// RecommendedVectorLength returns a vector-mode chunk width suited to the
// running CPU: 64 bytes (matching a typical cache line and a convenient
// uint64 bitmask) on x86 with AVX2 or SSE4.2, 32 bytes on ARM64 with ASIMD,
// and 0 (scalar-only) otherwise. Dialect.VectorLength defaults to 0 and
// must be set explicitly via WithVectorLength or WithAutoVectorLength; this helper exists for
// callers that want "use vector scanning if this machine can make good use
// of it" without hand-probing CPUID themselves.
func RecommendedVectorLength() int {
	if cpu.X86.HasAVX2 || cpu.X86.HasSSE42 {
		return 64
	}
	if cpu.ARM64.HasASIMD {
		return 32
	}
	return 0
}
