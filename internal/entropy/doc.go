// Copyright (c) 2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package entropy provides the entropy gatherers that feed the random generators.

A gatherer pushes bytes to a caller supplied callback, possibly in several
partial deliveries, until the requested amount has been provided.  Two kinds
exist:

  - The slow gatherer blocks until the operating system can provide high
    quality entropy.  It is mandatory.
  - The fast poller never blocks and contributes low quality but cheap data
    such as high resolution timestamps and host resource counters.

A third, insecure gatherer is only compiled in with the
rngcore_insecure_fallback build tag.  It exists for platforms without any
entropy mechanism and must never be enabled for production builds.
*/
package entropy
