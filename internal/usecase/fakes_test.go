package usecase

import (
	"context"
	"errors"
	"image"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/ryanhaynes01/Individual-Project/internal/domain/entity"
	"github.com/ryanhaynes01/Individual-Project/internal/domain/port"
)

var errDecode = errors.New("corrupt packet")

type fakeDecoder struct {
	mu      sync.Mutex
	frames  int
	failAt  int // 1-based frame that fails to decode, 0 for none
	nilAt   int // 1-based frame that decodes to nothing
	openErr error
	opened  int
	block   chan struct{}
}

func (d *fakeDecoder) Open(_ context.Context, _ string) (port.FrameSource, error) {
	d.mu.Lock()
	d.opened++
	d.mu.Unlock()
	if d.openErr != nil {
		return nil, d.openErr
	}
	if d.block != nil {
		<-d.block
	}
	return &fakeSource{d: d}, nil
}

func (d *fakeDecoder) openCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opened
}

type fakeSource struct {
	d      *fakeDecoder
	next   int
	closed bool
}

func (s *fakeSource) FrameCount() int { return s.d.frames }

func (s *fakeSource) Next() (image.Image, error) {
	s.next++
	switch s.next {
	case s.d.failAt:
		return nil, errDecode
	case s.d.nilAt:
		return nil, nil
	}
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}

type fakeWriter struct {
	mu     sync.Mutex
	paths  []string
	failAt int
	panics bool
}

func (w *fakeWriter) WriteFrame(path string, _ image.Image) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.panics {
		panic("encoder exploded")
	}
	if w.failAt > 0 && len(w.paths)+1 == w.failAt {
		return io.ErrShortWrite
	}
	w.paths = append(w.paths, path)
	return os.WriteFile(path, []byte("frame"), 0o644)
}

type recordingSink struct {
	bounds    []int
	advances  int
	dismissed int
	order     []string
}

func (s *recordingSink) SetUpperBound(n int) {
	s.bounds = append(s.bounds, n)
	s.order = append(s.order, "bound")
}

func (s *recordingSink) Advance(n int) {
	s.advances += n
	s.order = append(s.order, "advance")
}

func (s *recordingSink) Dismiss() {
	s.dismissed++
}

type recordingNotifier struct {
	mu       sync.Mutex
	outcomes []entity.Outcome
}

func (n *recordingNotifier) NotifyOutcome(_ context.Context, ex *entity.Extraction) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.outcomes = append(n.outcomes, ex.Outcome)
}

func (n *recordingNotifier) all() []entity.Outcome {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]entity.Outcome(nil), n.outcomes...)
}

type memoryRepo struct {
	mu        sync.Mutex
	items     map[uuid.UUID]entity.Conversion
	createErr error
	updateErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[uuid.UUID]entity.Conversion{}}
}

func (r *memoryRepo) Create(_ context.Context, c *entity.Conversion) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[c.ID] = *c
	return nil
}

func (r *memoryRepo) Update(_ context.Context, c *entity.Conversion) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[c.ID] = *c
	return nil
}

func (r *memoryRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Conversion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &c, nil
}

func (r *memoryRepo) List(_ context.Context, limit int) ([]*entity.Conversion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Conversion
	for _, c := range r.items {
		c := c
		out = append(out, &c)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeStorage struct {
	mu        sync.Mutex
	uploads     map[string]int64
	uploadErr   error
	downloads   []string
	downloadErr error
}

func (s *fakeStorage) DownloadSource(_ context.Context, objectKey, destPath string) error {
	s.mu.Lock()
	s.downloads = append(s.downloads, objectKey)
	s.mu.Unlock()
	if s.downloadErr != nil {
		return s.downloadErr
	}
	return os.WriteFile(destPath, []byte("video"), 0o644)
}

func (s *fakeStorage) UploadArchive(_ context.Context, objectKey string, r io.Reader, _ int64) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploads == nil {
		s.uploads = map[string]int64{}
	}
	s.uploads[objectKey] = n
	return nil
}

type fakePublisher struct {
	mu       sync.Mutex
	msgs     [][]byte
	reasons  []string
	requests [][]byte
	err      error
}

func (p *fakePublisher) PublishRequest(_ context.Context, msg []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.requests = append(p.requests, msg)
	return nil
}

func (p *fakePublisher) PublishStatus(_ context.Context, msg []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *fakePublisher) PublishToDLQ(_ context.Context, msg []byte, reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	p.reasons = append(p.reasons, reason)
	return nil
}

type fakeMailer struct {
	sent []string
}

func (m *fakeMailer) NotifyFailure(_ context.Context, userEmail, _, sourceName, _ string) error {
	m.sent = append(m.sent, userEmail+":"+sourceName)
	return nil
}
