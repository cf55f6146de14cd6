// SPDX-License-Identifier: EPL-2.0

// Package afstream provides an async audio file streamer: a realtime-safe
// playback engine backed by a background decoder thread, for applications
// that need to play back wav, aiff, mp3, or Ogg Vorbis files without the
// audio callback ever blocking on disk I/O.
//
// # Supported Formats
//
// The package supports decoding the following audio formats, via the
// stream subpackage:
//   - WAV (PCM) via stream.NewWAV / stream.OpenWAV
//   - AIFF (PCM) via stream.NewAIFF
//   - MP3 via stream.NewMP3
//   - Ogg Vorbis via stream.NewVorbis
//
// # Quick Start
//
//	file, _ := os.Open("song.wav")
//	in, _ := stream.NewWAV(file)
//	s, err := afstream.New(in, config.Default())
//	if err != nil {
//		// handle error
//	}
//	defer s.Close()
//
//	// from the audio callback, once per host block:
//	out := engine.Output{left, right}
//	s.Process(hostSampleRate, out)
//
// # Seeking and Querying
//
// Control threads call Seek, GetHeader, GetEstimatedFrameCount,
// GetChunkInfo, IsPlaying, GetPlaybackPos, and RequestPlaybackPos; none
// of these block the audio thread, and none are safe to call from it.
//
//	s.Seek(44100 * 30) // jump to 30 seconds in
//	if s.IsPlaying() {
//		fmt.Println("position:", s.GetPlaybackPos())
//	}
//
// # Concurrency Model
//
// Three thread classes cooperate through a single-writer, many-reader
// Model Store (package store): the audio thread reads snapshots and never
// blocks; the loader worker (package loader) publishes every decoded
// chunk, blocking freely on stream I/O; control threads read and
// occasionally publish a seek target. Writers are serialized by the Store. See the store, atomics, servo, and engine subpackages for
// the pieces this façade wires together.
package afstream
