package frame

import (
	"image"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/prometheus/common/log"
	"github.com/spf13/afero"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// defaultCacheSize is the number of decoded reference frames kept in memory
const defaultCacheSize = 8

// Store reads and writes frames as image files. The format follows the file
// extension: .png, .bmp, .tif or .tiff.
//
// Decoded frames are cached by path, as several scenarios often validate
// against the same reference.
type Store struct {
	fs        afero.Fs
	cacheSize int
	cache     *lru.Cache[string, *Frame]
	log       log.Logger
}

type StoreOption func(*Store)

// WithCacheSize sets how many decoded frames are kept. Sizes below one
// disable caching.
func WithCacheSize(size int) StoreOption {
	return func(s *Store) {
		s.cacheSize = size
	}
}

// WithStoreLogger sets the logger of the store
func WithStoreLogger(l log.Logger) StoreOption {
	return func(s *Store) {
		s.log = l
	}
}

// NewStore returns a store reading and writing files on fs
func NewStore(fs afero.Fs, opts ...StoreOption) (*Store, error) {
	s := &Store{
		fs:        fs,
		cacheSize: defaultCacheSize,
		log:       log.Base(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "store")

	if s.cacheSize > 0 {
		cache, err := lru.New[string, *Frame](s.cacheSize)
		if err != nil {
			return nil, errors.Wrap(err, "unable to create frame cache")
		}
		s.cache = cache
	}
	return s, nil
}

// Load reads the image at path as a frame of bits deep samples. The returned
// frame belongs to the caller.
func (s *Store) Load(path string, bits int) (*Frame, error) {
	if s.cache != nil {
		if f, ok := s.cache.Get(path); ok && f.Bits == bits {
			return f.Clone(), nil
		}
	}

	fp, err := s.fs.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s", path)
	}
	defer fp.Close()

	img, format, err := image.Decode(fp)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to decode %s", path)
	}

	f, err := FromImage(img, bits)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to convert %s", path)
	}
	s.log.Debugf("loaded %s from %s (%s)", f, path, format)

	if s.cache != nil {
		s.cache.Add(path, f.Clone())
	}
	return f, nil
}

// Save writes f to path, creating parent directories as needed
func (s *Store) Save(path string, f *Frame) error {
	return s.write(path, f.Image())
}

// SaveZoomed writes f to path magnified zoom times with nearest neighbour
// scaling, which keeps every pixel a solid block for visual inspection.
func (s *Store) SaveZoomed(path string, f *Frame, zoom int) error {
	if zoom < 1 {
		return errors.Errorf("invalid zoom factor %d", zoom)
	}
	src := f.Image()
	dst := image.NewRGBA(image.Rect(0, 0, f.Width*zoom, f.Height*zoom))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return s.write(path, dst)
}

func (s *Store) write(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "unable to create %s", dir)
		}
	}

	fp, err := s.fs.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", path)
	}

	if err := encode(fp, path, img); err != nil {
		fp.Close()
		return errors.Wrapf(err, "unable to encode %s", path)
	}
	if err := fp.Close(); err != nil {
		return errors.Wrapf(err, "unable to write %s", path)
	}

	if s.cache != nil {
		s.cache.Remove(path)
	}
	s.log.Debugf("wrote %s", path)
	return nil
}

// Validate compares got against the reference image. When they differ, or
// the reference cannot be read, got is preserved at artifact (unless
// artifact is empty) so the failure can be inspected offline.
func (s *Store) Validate(got *Frame, reference, artifact string) error {
	want, err := s.Load(reference, got.Bits)
	if err == nil {
		err = Compare(got, want)
	}
	if err == nil {
		return nil
	}

	if artifact != "" {
		if saveErr := s.Save(artifact, got); saveErr != nil {
			s.log.Errorf("unable to preserve acquired frame: %v", saveErr)
		} else {
			s.log.Infof("acquired frame preserved at %s", artifact)
		}
	}
	return errors.Wrapf(err, "validation against %s failed", reference)
}

func encode(w io.Writer, path string, img image.Image) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return png.Encode(w, img)
	case ".bmp":
		return bmp.Encode(w, img)
	case ".tif", ".tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return errors.Errorf("unsupported image format %q", ext)
	}
}
