package hierarchy

import (
	"time"

	"github.com/mvp-joe/classmap/internal/signature"
)

// BuildProgress reports progress while the hierarchy is walked.
type BuildProgress interface {
	OnBuildStart(root signature.Signature)
	OnClassVisited(sig signature.Signature, visited int)
	OnBuildComplete(stats BuildStats, duration time.Duration)
}

// MapProgress reports progress while catalogue methods are mapped.
type MapProgress interface {
	OnMappingStart(total int)
	OnMethodMapped(method signature.Signature, matched int)
	OnMappingComplete(overriding int, duration time.Duration)
}

// BuildStats summarises one Build call.
type BuildStats struct {
	Visited       int // Classes inserted into the hierarchy
	Missing       int // Classes whose record had no declaration or definition
	CyclesSkipped int // Child edges that would have closed a cycle
	Excluded      int // Children dropped by exclusion patterns
	MaxDepth      int // Deepest level below the root
}
