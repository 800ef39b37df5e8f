package sav

import (
	"github.com/xyproto/env/v2"
)

// Version selects which generation of record 7 extensions OpenWriter emits.
// Files written as VersionSPSS12 or later carry the long variable name map
// (subtype 13); earlier targets truncate every name to its short form.
type Version int

const (
	VersionSPSS9  Version = 2
	VersionSPSS12 Version = 3
)

// WriteOptions controls OpenWriter's output (§4.3, §6.2). The zero value is
// not meant to be used directly; call DefaultWriteOptions to get sane,
// environment-overridable defaults the way the teacher's commands resolve
// their own knobs.
type WriteOptions struct {
	// Compress selects the bias-VM case encoding (§4.4) over raw 8-byte
	// segments. Compression is the common case for real system files.
	Compress bool

	// Version controls which extension records are emitted, see Version.
	Version Version

	// ProductName is stamped into the header's banner field. An empty
	// string falls back to a generic name.
	ProductName string
}

const defaultProductName = "github.com/daxplore/spssreader"

// DefaultWriteOptions returns the options OpenWriter uses when the caller
// doesn't build its own, reading SPSSREADER_COMPRESS and
// SPSSREADER_PRODUCT_NAME from the environment so a deployment can flip the
// defaults without a recompile.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{
		Compress:    env.Bool("SPSSREADER_COMPRESS", true),
		Version:     VersionSPSS12,
		ProductName: env.Str("SPSSREADER_PRODUCT_NAME", defaultProductName),
	}
}
