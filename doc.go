/*
pktscan reads an unbounded byte stream carrying a marker-framed protocol and writes a transcript of every
well-formed frame it finds, resynchronizing on the next start marker whenever a frame turns out to be malformed.

A frame on the wire is laid out as follows, the payload is raw and unescaped:

	+------+------+--------+-------------------+
	| 0x21 | 0x22 | length | payload (length)  |
	+------+------+--------+-------------------+

Each well-formed frame is reported on one line holding its right-justified length and its payload bytes in hex:

	{  3} 41 42 43

Malformed frames never reach the transcript, they are reported on the diagnostics logger instead.

A transcript of stdin is produced as shown below, diagnostics go to the logger set up in pkg/logging
unless another one is given with WithLogger:

	package main

	import (
		"os"

		"github.com/panjf2000/pktscan"
		"github.com/panjf2000/pktscan/pkg/logging"
	)

	func main() {
		defer logging.Cleanup()

		stats, err := pktscan.Scan(os.Stdin, os.Stdout, pktscan.WithResyncPolicy(pktscan.ResyncActive))
		if err != nil {
			logging.Errorf("scan stopped after %d frames: %v", stats.Frames, err)
		}
	}
*/
package pktscan
