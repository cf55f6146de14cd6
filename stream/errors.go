// SPDX-License-Identifier: EPL-2.0

package stream

import "errors"

var (
	ErrNotWAVFile            = errors.New("not a WAV file")
	ErrUnsupportedWAVLayout  = errors.New("unsupported WAV layout")
	ErrOnlyPCM16bitSupported = errors.New("only PCM 16-bit supported")
	ErrUnsupportedWAVChunks  = errors.New("unsupported WAV chunks")

	ErrNotAIFFFile           = errors.New("not an AIFF file")
	ErrOnlyAIFFPCM16bit      = errors.New("only 16-bit PCM AIFF is supported")
	ErrUnsupportedAIFFLayout = errors.New("unsupported AIFF layout")
)
