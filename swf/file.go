// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package swf parses the SWF container tag stream wrapping one or more ABC
// units: signature detection, optional zlib decompression, and the tag loop
// that hands DoABC, DefineBinaryData, and SymbolClass payloads off to their
// handlers.
package swf

import (
	"bytes"
	"io"
	"os"
	"sync"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/klauspost/compress/zlib"

	"github.com/saferwall/swfabc"
	"github.com/saferwall/swfabc/log"
)

// Tag codes this package understands; every other tag is skipped whole.
const (
	tagEnd              = 0x00
	tagDoABC            = 0x52
	tagSymbolClass      = 0x4C
	tagDefineBinaryData = 0x57
)

const tagLenEscape = 0x3f

// RECT is the SWF frame-size rectangle. This package only needs its encoded
// byte length to skip past it, so the four signed fields themselves are not
// decoded; NBits records the field width that determined the byte length.
type RECT struct {
	NBits uint8
}

// Options controls File parsing.
type Options struct {
	// MaxTagSize caps the trusted length of a single tag body, guarding
	// against a corrupt or hostile length escape requesting an
	// unreasonably large allocation. Zero means DefaultMaxTagSize.
	MaxTagSize uint32

	// Concurrent decodes each DoABC tag's abc.Unit on its own goroutine
	// instead of sequentially.
	Concurrent bool

	// ABCOptions is forwarded to abc.Read for every DoABC tag.
	ABCOptions abc.Options

	// Logger receives parse diagnostics; nil disables logging.
	Logger log.Logger
}

// DefaultMaxTagSize bounds a single tag body absent an explicit Options.MaxTagSize.
const DefaultMaxTagSize = 64 << 20

// File is a parsed SWF container: its header fields plus every ABC unit,
// binary-data blob, and symbol-class entry pulled out of its tag stream.
type File struct {
	Signature  [3]byte
	Version    uint8
	FrameSize  RECT
	FrameRate  uint16
	FrameCount uint16

	ABCs       map[string]*abc.Unit
	BinaryData map[uint16][]byte
	Symbols    map[uint16]string

	data   []byte
	mapped mmap.MMap
	f      *os.File
	opts   Options
	logger log.Logger
}

func newFile(opts *Options) *File {
	file := &File{
		ABCs:       make(map[string]*abc.Unit),
		BinaryData: make(map[uint16][]byte),
		Symbols:    make(map[uint16]string),
	}
	if opts != nil {
		file.opts = *opts
	}
	if file.opts.MaxTagSize == 0 {
		file.opts.MaxTagSize = DefaultMaxTagSize
	}
	file.logger = file.opts.Logger
	return file
}

// Open memory-maps the SWF file at path and parses it.
func Open(path string, opts *Options) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	mapped, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	file := newFile(opts)
	file.f = f
	file.mapped = mapped

	raw, err := decompress(mapped)
	if err != nil {
		f.Close()
		return nil, err
	}
	file.data = raw
	if err := file.parse(); err != nil {
		f.Close()
		return nil, err
	}
	return file, nil
}

// NewBytes parses an in-memory SWF buffer.
func NewBytes(data []byte, opts *Options) (*File, error) {
	file := newFile(opts)
	raw, err := decompress(data)
	if err != nil {
		return nil, err
	}
	file.data = raw
	if err := file.parse(); err != nil {
		return nil, err
	}
	return file, nil
}

// Close unmaps and releases the underlying file, if Open was used.
func (f *File) Close() error {
	if f.mapped != nil {
		f.mapped.Unmap()
	}
	if f.f != nil {
		return f.f.Close()
	}
	return nil
}

// decompress detects the FWS/CWS signature and, for CWS, inflates the body
// past the first 8 header bytes, rewriting the signature to FWS in the
// returned buffer so the rest of this package only ever sees one shape.
func decompress(data []byte) ([]byte, error) {
	if len(data) < 8 {
		return nil, &abc.Truncated{Offset: 0, Want: 8, Have: len(data)}
	}
	sig := data[:3]
	switch {
	case bytes.Equal(sig, []byte("FWS")):
		return data, nil
	case bytes.Equal(sig, []byte("CWS")):
		zr, err := zlib.NewReader(bytes.NewReader(data[8:]))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		body, err := io.ReadAll(zr)
		if err != nil {
			return nil, err
		}
		out := make([]byte, 0, 8+len(body))
		out = append(out, 'F', 'W', 'S')
		out = append(out, data[3:8]...)
		out = append(out, body...)
		return out, nil
	default:
		return nil, &UnsupportedSignature{Signature: [3]byte{sig[0], sig[1], sig[2]}}
	}
}

// parse walks the decompressed buffer's fixed header and tag stream.
func (f *File) parse() error {
	r := newReader(f.data)

	sig, err := r.readBytes(3)
	if err != nil {
		return err
	}
	copy(f.Signature[:], sig)

	version, err := r.readU8()
	if err != nil {
		return err
	}
	f.Version = version

	if _, err := r.readU32(); err != nil { // file length, untrusted
		return err
	}

	rect, err := f.skipRECT(r)
	if err != nil {
		return err
	}
	f.FrameSize = rect

	frameRate, err := r.readU16()
	if err != nil {
		return err
	}
	f.FrameRate = frameRate

	frameCount, err := r.readU16()
	if err != nil {
		return err
	}
	f.FrameCount = frameCount

	var jobs []abcJob

	for {
		record, err := r.readU16()
		if err != nil {
			return err
		}
		tagCode := byte(record >> 6)
		tagLen := uint32(record & 0x3f)
		if tagLen == tagLenEscape {
			tagLen, err = r.readU32()
			if err != nil {
				return err
			}
		}
		if tagLen > f.opts.MaxTagSize {
			return &TagTooLarge{Code: tagCode, Len: tagLen, Max: f.opts.MaxTagSize}
		}

		body, err := r.readBytes(int(tagLen))
		if err != nil {
			return err
		}

		switch tagCode {
		case tagDoABC:
			name, abcData, err := parseDoABC(body)
			if err != nil {
				return err
			}
			jobs = append(jobs, abcJob{name: name, data: abcData})
		case tagDefineBinaryData:
			if err := f.handleBinaryData(body); err != nil {
				return err
			}
		case tagSymbolClass:
			if err := f.handleSymbolClass(body); err != nil {
				return err
			}
		case tagEnd:
			return f.decodeABCs(jobs)
		}
	}
}

// abcJob is one queued DoABC tag body awaiting decode.
type abcJob struct {
	name string
	data []byte
}

// decodeABCs decodes every queued DoABC payload into an abc.Unit, either
// sequentially or, when Options.Concurrent is set, with one goroutine per
// tag guarded by a mutex over the shared ABCs map — the same
// WaitGroup-plus-shared-result idiom the teacher's batch CLI uses at
// file granularity, applied here at tag granularity.
func (f *File) decodeABCs(jobs []abcJob) error {
	if !f.opts.Concurrent || len(jobs) < 2 {
		for _, j := range jobs {
			u, err := abc.Read(j.data, f.opts.ABCOptions)
			if err != nil {
				if f.logger != nil {
					f.logger.Warnf("swf: DoABC %q: %v", j.name, err)
				}
				return err
			}
			f.ABCs[j.name] = u
		}
		return nil
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, j := range jobs {
		j := j
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, err := abc.Read(j.data, f.opts.ABCOptions)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			f.ABCs[j.name] = u
		}()
	}
	wg.Wait()
	return firstErr
}

// skipRECT consumes the frame-size rectangle: a 5-bit field-width prefix
// followed by four signed fields of that width, whose total encoded length
// is all this package needs to find the next field in the header.
func (f *File) skipRECT(r *reader) (RECT, error) {
	first, err := r.readU8()
	if err != nil {
		return RECT{}, err
	}
	nbits := first >> 3
	totalBits := 5 + int(nbits)*4
	totalBytes := (totalBits+7)/8 - 1
	if _, err := r.readBytes(totalBytes); err != nil {
		return RECT{}, err
	}
	return RECT{NBits: nbits}, nil
}

func parseDoABC(data []byte) (name string, abcData []byte, err error) {
	r := newReader(data)
	if _, err = r.readU32(); err != nil { // flags
		return "", nil, err
	}
	name, err = r.readCString()
	if err != nil {
		return "", nil, err
	}
	abcData, err = r.readBytes(r.remaining())
	if err != nil {
		return "", nil, err
	}
	return name, abcData, nil
}

func (f *File) handleBinaryData(data []byte) error {
	r := newReader(data)
	tag, err := r.readU16()
	if err != nil {
		return err
	}
	if _, err := r.readU32(); err != nil { // reserved
		return err
	}
	body, err := r.readBytes(r.remaining())
	if err != nil {
		return err
	}
	f.BinaryData[tag] = body
	return nil
}

func (f *File) handleSymbolClass(data []byte) error {
	r := newReader(data)
	count, err := r.readU16()
	if err != nil {
		return err
	}
	for i := uint16(0); i < count; i++ {
		tag, err := r.readU16()
		if err != nil {
			return err
		}
		name, err := r.readCString()
		if err != nil {
			return err
		}
		f.Symbols[tag] = name
	}
	return nil
}
