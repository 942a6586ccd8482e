// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

//go:build !rngcore_insecure_fallback

package entropy

// InsecureFallbackAvailable reports whether the insecure gatherer was compiled
// in.
const InsecureFallbackAvailable = false

// NewInsecureGatherer returns nil since the insecure gatherer requires the
// rngcore_insecure_fallback build tag.
func NewInsecureGatherer() Gatherer {
	return nil
}
