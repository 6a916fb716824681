package export

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"

	"github.com/roach88/chloe/internal/value"
)

// Format is the encoding of a file export.
type Format string

const (
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// ZstdSuffix marks a file export as zstd-compressed.
const ZstdSuffix = ".zst"

// FileResult describes a finished file export.
type FileResult struct {
	File       string `json:"file" yaml:"file"`
	Format     Format `json:"format" yaml:"format"`
	Compressed bool   `json:"compressed" yaml:"compressed"`
	Bytes      int    `json:"bytes" yaml:"bytes"`

	// Checksum is the hex BLAKE3-256 digest of the bytes on disk.
	Checksum string `json:"checksum" yaml:"checksum"`
}

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode

	zstdEnc *zstd.Encoder
	zstdDec *zstd.Decoder
)

func init() {
	var err error

	// Core deterministic encoding sorts map keys, so the same document
	// always produces the same bytes and the same checksum.
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("export: CBOR encoder initialization failed: " + err.Error())
	}
	cborDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("export: CBOR decoder initialization failed: " + err.Error())
	}

	zstdEnc, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("export: zstd encoder initialization failed: " + err.Error())
	}
	zstdDec, err = zstd.NewReader(nil)
	if err != nil {
		panic("export: zstd decoder initialization failed: " + err.Error())
	}
}

// ParseFormat accepts "json" or "cbor".
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCBOR:
		return FormatCBOR, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want json or cbor)", s)
	}
}

// FormatFromPath guesses the format from the file name, ignoring a trailing
// ".zst". Anything that is not ".cbor" is JSON.
func FormatFromPath(path string) Format {
	name := strings.TrimSuffix(strings.ToLower(path), ZstdSuffix)
	if filepath.Ext(name) == ".cbor" {
		return FormatCBOR
	}
	return FormatJSON
}

// ToFile writes root to path in the given format, compressing with zstd when
// path ends in ".zst". The file is written to a sibling temp file and renamed
// into place, so readers never see a partial export.
func ToFile(path string, format Format, root value.Value) (FileResult, error) {
	data, err := encodeFile(format, root)
	if err != nil {
		return FileResult{}, err
	}
	compressed := strings.HasSuffix(strings.ToLower(path), ZstdSuffix)
	if compressed {
		data = zstdEnc.EncodeAll(data, nil)
	}

	if err := writeFileAtomic(path, data); err != nil {
		return FileResult{}, err
	}

	sum := blake3.Sum256(data)
	return FileResult{
		File:       path,
		Format:     format,
		Compressed: compressed,
		Bytes:      len(data),
		Checksum:   hex.EncodeToString(sum[:]),
	}, nil
}

// ReadFile loads a file written by ToFile. Format and compression are taken
// from the file name.
func ReadFile(path string) (value.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	if strings.HasSuffix(strings.ToLower(path), ZstdSuffix) {
		data, err = zstdDec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
	}

	switch FormatFromPath(path) {
	case FormatCBOR:
		var raw any
		if err := cborDec.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode CBOR export: %w", err)
		}
		return value.FromGo(raw)
	default:
		v, err := value.Unmarshal(data)
		if err != nil {
			return nil, fmt.Errorf("decode JSON export: %w", err)
		}
		return v, nil
	}
}

func encodeFile(format Format, root value.Value) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := value.Marshal(root)
		if err != nil {
			return nil, fmt.Errorf("encode JSON export: %w", err)
		}
		return append(data, '\n'), nil
	case FormatCBOR:
		data, err := cborEnc.Marshal(value.ToGo(root))
		if err != nil {
			return nil, fmt.Errorf("encode CBOR export: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close export: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename export: %w", err)
	}
	return nil
}
