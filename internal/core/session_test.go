package core

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// invert flips every sample and counts how often it ran
type invert struct {
	calls int
	seen  []Image
}

func (f *invert) Name() string { return "invert" }

func (f *invert) Transform(src Image) (Image, error) {
	f.calls++
	f.seen = append(f.seen, src.Clone())
	out := src.Clone()
	for i := range out.Pix {
		out.Pix[i] = 255 - out.Pix[i]
	}
	return out, nil
}

type failing struct{ err error }

func (f failing) Name() string                   { return "failing" }
func (f failing) Transform(Image) (Image, error) { return Image{}, f.err }

func solid(t *testing.T, w, h int, v uint8) Image {
	t.Helper()
	img, err := NewImage(w, h, 3)
	require.NoError(t, err)
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestSession_EmptyRejectsActions(t *testing.T) {
	var s Session

	assert.False(t, s.HasImage())
	assert.Empty(t, s.ID())

	_, err := s.Apply(&invert{})
	assert.ErrorIs(t, err, ErrNoImageLoaded)

	_, err = s.Reset()
	assert.ErrorIs(t, err, ErrNoImageLoaded)

	_, err = s.Processed()
	assert.ErrorIs(t, err, ErrNoImageLoaded)
	assert.True(t, IsWarning(err))
}

func TestSession_LoadCopiesInput(t *testing.T) {
	img := solid(t, 2, 2, 10)
	s, err := Load(img, "/tmp/Photo.PNG")
	require.NoError(t, err)

	img.Pix[0] = 99

	orig, err := s.Original()
	require.NoError(t, err)
	assert.Equal(t, uint8(10), orig.Pix[0])
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, "png", s.Metadata().Format)
	assert.False(t, s.HasProcessed())

	_, err = s.Processed()
	assert.ErrorIs(t, err, ErrNoProcessedImage)
}

func TestSession_LoadRejectsInvalidImage(t *testing.T) {
	_, err := Load(Image{Width: 2, Height: 2, Channels: 4, Pix: make([]uint8, 16)}, "x.png")
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestSession_TransformsAlwaysReadOriginal(t *testing.T) {
	s, err := Load(solid(t, 3, 2, 40), "a.png")
	require.NoError(t, err)

	fn := &invert{}
	first, err := s.Apply(fn)
	require.NoError(t, err)
	second, err := first.Apply(fn)
	require.NoError(t, err)

	require.Len(t, fn.seen, 2)
	for _, in := range fn.seen {
		assert.Equal(t, uint8(40), in.Pix[0], "transform must receive the original")
	}

	out, err := second.Processed()
	require.NoError(t, err)
	assert.Equal(t, uint8(215), out.Pix[0])
	assert.Equal(t, "invert", second.LastOperation())

	// earlier values are unaffected
	assert.False(t, s.HasProcessed())
	assert.Equal(t, s.ID(), second.ID())
}

func TestSession_FailedTransformKeepsState(t *testing.T) {
	s, err := Load(solid(t, 2, 2, 1), "a.png")
	require.NoError(t, err)
	s, err = s.Apply(&invert{})
	require.NoError(t, err)

	boom := errors.New("boom")
	after, err := s.Apply(failing{err: boom})
	assert.ErrorIs(t, err, boom)
	assert.True(t, after.HasProcessed())

	out, err := after.Processed()
	require.NoError(t, err)
	assert.Equal(t, uint8(254), out.Pix[0])
}

func TestSession_ResetDropsProcessed(t *testing.T) {
	s, err := Load(solid(t, 2, 2, 1), "a.png")
	require.NoError(t, err)
	s, err = s.Apply(&invert{})
	require.NoError(t, err)

	s, err = s.Reset()
	require.NoError(t, err)
	assert.False(t, s.HasProcessed())

	cur, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, uint8(1), cur.Pix[0])
}

// slowInvert records how many transforms overlap in time
type slowInvert struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
}

func (f *slowInvert) Name() string { return "slow-invert" }

func (f *slowInvert) Transform(src Image) (Image, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	f.calls.Add(1)

	time.Sleep(2 * time.Millisecond)
	out := src.Clone()
	for i := range out.Pix {
		out.Pix[i] = 255 - out.Pix[i]
	}
	return out, nil
}

func TestController_OneTransformInFlight(t *testing.T) {
	c := NewController(quietLogger())
	src := solid(t, 3, 2, 40)
	_, err := c.Load(src, "a.png")
	require.NoError(t, err)

	transform := &slowInvert{}
	const workers = 8

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Apply(transform)
			assert.NoError(t, err)
			c.Session()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(workers), transform.calls.Load())
	assert.Equal(t, int32(1), transform.peak.Load(), "transforms overlapped")

	session := c.Session()
	processed, err := session.Processed()
	require.NoError(t, err)
	assert.True(t, processed.Equal(solid(t, 3, 2, 215)), "every run reads the original")

	original, err := session.Original()
	require.NoError(t, err)
	assert.True(t, original.Equal(src))
}

func TestController_SequentialActions(t *testing.T) {
	c := NewController(quietLogger())

	_, err := c.Apply(&invert{})
	assert.ErrorIs(t, err, ErrNoImageLoaded)

	first, err := c.Load(solid(t, 2, 2, 0), "a.png")
	require.NoError(t, err)

	s, err := c.Apply(&invert{})
	require.NoError(t, err)
	assert.True(t, s.HasProcessed())
	assert.True(t, c.Session().HasProcessed())

	second, err := c.Load(solid(t, 4, 4, 0), "b.png")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), second.ID())
	assert.False(t, c.Session().HasProcessed(), "a new load clears the processed image")

	_, err = c.Load(Image{}, "broken.png")
	assert.ErrorIs(t, err, ErrInvalidImage)
	assert.Equal(t, second.ID(), c.Session().ID(), "rejected load keeps the previous session")
}
