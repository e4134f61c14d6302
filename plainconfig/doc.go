/*
Package plainconfig implements a textual, line-oriented key/value store
format with typed values and round-trip-preserving structure metadata.

It's meant for configuration files that humans edit and programs update:
reading a file returns both the decoded values and an opaque Structure
token; writing the values back with that token keeps comments, blank
lines and key ordering intact, so diffs stay small.

The basic format is one key per line, with an optional type modifier:

	# comment
	hostname=example.com
	port/i=8080
	timeout/f=30.5
	enabled/r=True
	blob/32=MZXW6===

Modifiers name the decode operations applied left to right:

	i    parse as integer
	f    parse as float
	r    parse as restricted literal (True, False, None, numbers,
	     quoted strings, nested tuples/lists/sets/dicts of those)
	s    bytes to string (utf-8)
	b    string to bytes (utf-8)
	32   base32 decode
	64   base64 decode
	p    deserialize an opaque object (requires Unsafe, see Pickler)

When writing, the modifier is picked automatically from the Go type of
the value. Long values are wrapped over multiple physical lines using a
per-value continuation character encoded as a leading "C<char>" modifier,
so wrapped files still round-trip exactly.

Binary values use base32 rather than base64 because base32 output
survives case-insensitive filesystems.

Reading is best-effort: lines that fail to decode are logged, kept out
of the result map and never re-emitted on writes. Only a truncated
continuation aborts a read.
*/
package plainconfig
