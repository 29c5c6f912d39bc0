// Package ir provides the record types shared by the objtok engine, the run
// journal and the CLI.
//
// This package contains type definitions and serialization only. All other
// internal packages may import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Resolution events carry a logical seq, never a wall-clock timestamp
//   - All JSON tags use snake_case
//   - Document digests are computed over canonical JSON (sorted keys, NFC)
package ir
