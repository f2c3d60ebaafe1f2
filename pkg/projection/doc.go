// Package projection maps projector settings to the values a host scene needs:
// camera lens parameters, the texture-space transform that frames the
// projected image on the spotlight cone, and the frustum outline used for
// visualization.
//
// Every function is a pure recomputation from its arguments. Values that would
// divide by zero (throw ratio, resolution components) are rejected with
// ErrInvalidParameter instead of producing NaN or Inf.
package projection
