package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"resty.dev/v3"

	"github.com/shashiranjanraj/furnivision/app/models"
	"github.com/shashiranjanraj/furnivision/config"
	"github.com/shashiranjanraj/furnivision/pkg/gemini"
	"github.com/shashiranjanraj/furnivision/pkg/logger"
	"github.com/shashiranjanraj/furnivision/pkg/metrics"
	"github.com/shashiranjanraj/furnivision/pkg/workerpool"
)

// Job states.
const (
	JobProcessing = "processing"
	JobDone       = "done"
	JobFailed     = "failed"
)

// ProgressMessages are shown while a placement renders, in order.
var ProgressMessages = []string{
	"Analyzing room dimensions...",
	"Matching ambient lighting...",
	"Calculating spatial perspective...",
	"Scaling furniture accurately...",
	"Applying realistic shadows...",
	"Finalizing visual placement...",
}

const (
	initialMessage = "Initializing AI..."
	doneMessage    = "Done"
	progressCap    = 98
	progressStep   = 5
)

// JobState is a snapshot of a placement job.
type JobState struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Status    string `json:"status"`
	Progress  int    `json:"progress"`
	Message   string `json:"message"`
	Result    string `json:"result,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Terminal reports whether the job has finished.
func (s JobState) Terminal() bool { return s.Status != JobProcessing }

type job struct {
	mu        sync.Mutex
	id        string
	owner     string
	productID string
	status    string
	progress  float64
	message   string
	result    string
	errMsg    string
	finished  time.Time
	done      chan struct{}
	subs      map[chan struct{}]struct{}
}

func (j *job) snapshot() JobState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobState{
		ID:        j.id,
		ProductID: j.productID,
		Status:    j.status,
		Progress:  int(math.Floor(j.progress)),
		Message:   j.message,
		Result:    j.result,
		Error:     j.errMsg,
	}
}

// notifyLocked wakes every subscriber. Notifications coalesce; subscribers
// read the latest snapshot.
func (j *job) notifyLocked() {
	for ch := range j.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// advance moves progress by step, capped, and picks the status message.
// Finished jobs are left alone.
func (j *job) advance(step float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != JobProcessing {
		return
	}
	j.progress = NextProgress(j.progress, step)
	j.message = ProgressMessage(j.progress)
	j.notifyLocked()
}

func (j *job) finish(result string, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != JobProcessing {
		return
	}
	j.progress = 100
	j.message = doneMessage
	j.finished = time.Now()
	if err != nil {
		j.status = JobFailed
		j.errMsg = MessageOf(err)
	} else {
		j.status = JobDone
		j.result = result
	}
	close(j.done)
	j.notifyLocked()
}

// NextProgress returns prev+step, except that progress at or above 98 holds.
func NextProgress(prev, step float64) float64 {
	if prev >= progressCap {
		return prev
	}
	return prev + step
}

// ProgressMessage picks the status line for progress p.
func ProgressMessage(p float64) string {
	idx := int(math.Floor(p / 100 * float64(len(ProgressMessages))))
	if idx > len(ProgressMessages)-1 {
		idx = len(ProgressMessages) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return ProgressMessages[idx]
}

// VisualizerService renders products into room photos and tracks the
// asynchronous jobs doing it.
type VisualizerService struct {
	gen    Generator
	model  string
	images *resty.Client
	pool   *workerpool.Pool
	tick   time.Duration
	step   func() float64

	mu   sync.RWMutex
	jobs map[string]*job
}

func NewVisualizerService(gen Generator, pool *workerpool.Pool) *VisualizerService {
	return &VisualizerService{
		gen:    gen,
		model:  config.GeminiPlacementModel(),
		images: newImageClient(config.MaxImageBytes(), publicOnly),
		pool:   pool,
		tick:   config.VisualizerTick(),
		step:   func() float64 { return rand.Float64() * progressStep },
		jobs:   map[string]*job{},
	}
}

// newImageClient downloads product images. Bodies over limit are refused
// and every dial, redirects included, goes through control.
func newImageClient(limit int64, control func(network, address string, c syscall.RawConn) error) *resty.Client {
	return resty.NewWithDialer(&net.Dialer{Control: control}).
		SetTimeout(20 * time.Second).
		SetRetryCount(0).
		SetResponseBodyLimit(limit)
}

var errPrivateHost = errors.New("product image host is not public")

// publicOnly refuses loopback, private, link-local, multicast and
// unspecified addresses. It sees the resolved IP, so DNS names pointing
// inward are caught too.
func publicOnly(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || !publicIP(ip) {
		return fmt.Errorf("%w: %s", errPrivateHost, host)
	}
	return nil
}

func publicIP(ip net.IP) bool {
	return !(ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() || ip.IsMulticast())
}

// placementPrompt is the instruction sent alongside the two images.
func placementPrompt(p models.Product) string {
	return fmt.Sprintf(`SPATIAL RENDERING TASK: Please place the furniture piece "%s" into the provided room photo.
    - Style: %s
    - Description: %s
    - Technical Requirements: Match the room's lighting intensity and direction. Ensure the piece is at a realistic scale relative to the room's geometry. Add soft grounding shadows where the legs touch the floor.`,
		p.Name, p.Style, p.Description)
}

// GeneratePlacement makes one model call and returns the composited image
// as a PNG data URI.
func (s *VisualizerService) GeneratePlacement(ctx context.Context, room string, p models.Product) (result string, err error) {
	defer func(start time.Time) { metrics.ObserveAI("placement", err, start) }(time.Now())

	parts := []gemini.Part{gemini.Inline("image/jpeg", StripDataURI(room))}
	if data, ok := s.productImage(ctx, p.Image); ok {
		parts = append(parts, gemini.Inline("image/jpeg", data))
	}
	parts = append(parts, gemini.Text(placementPrompt(p)))

	resp, err := s.gen.GenerateContent(ctx, s.model, gemini.Request{
		Contents: []gemini.Content{{Parts: parts}},
	})
	if err != nil {
		logger.WithCtx(ctx).Error("visualizer: placement call failed", "product_id", p.ID, "error", err)
		return "", fail(ErrRendering, MsgRendering, err)
	}

	blob, ok := resp.FirstInline()
	if !ok {
		return "", fail(ErrRendering, MsgNoImage, errors.New("no image in model response"))
	}
	return "data:image/png;base64," + blob.Data, nil
}

// productImage returns the base64 payload of a product image. Data URIs are
// used as is; URLs are downloaded byte for byte. A failed, oversized or
// non-public download yields ok=false and the call goes ahead without the
// product image.
func (s *VisualizerService) productImage(ctx context.Context, image string) (string, bool) {
	if image == "" {
		return "", false
	}
	if strings.HasPrefix(image, "data:") {
		data := StripDataURI(image)
		return data, data != ""
	}

	resp, err := s.images.R().SetContext(ctx).Get(image)
	if err != nil {
		logger.WithCtx(ctx).Warn("visualizer: product image fetch failed", "url", image, "error", err)
		return "", false
	}
	if resp.IsError() {
		logger.WithCtx(ctx).Warn("visualizer: product image fetch failed", "url", image, "status", resp.StatusCode())
		return "", false
	}
	body := resp.Bytes()
	if len(body) == 0 {
		return "", false
	}
	return base64.StdEncoding.EncodeToString(body), true
}

// Start queues a placement job for owner and returns its first snapshot.
// A full pool yields ErrBusy.
func (s *VisualizerService) Start(ctx context.Context, owner, room string, p models.Product) (JobState, error) {
	if StripDataURI(room) == "" {
		return JobState{}, fail(ErrInvalidInput, "Room photo is required.", nil)
	}

	j := &job{
		id:        uuid.NewString(),
		owner:     owner,
		productID: p.ID,
		status:    JobProcessing,
		message:   initialMessage,
		done:      make(chan struct{}),
		subs:      map[chan struct{}]struct{}{},
	}

	// detached from the request so the job outlives it, keeping its logger
	jobCtx := context.WithoutCancel(ctx)
	log := logger.WithCtx(ctx).With("job_id", j.id, "product_id", p.ID)

	s.mu.Lock()
	s.jobs[j.id] = j
	s.mu.Unlock()
	metrics.VisualizerInFlight.Inc()

	err := s.pool.Submit(func() {
		var (
			result string
			err    error
		)
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("placement panicked: %v", r)
			}
			j.finish(result, err)
			st := j.snapshot()
			metrics.VisualizerInFlight.Dec()
			metrics.VisualizerJobs.WithLabelValues(st.Status).Inc()
			log.Info("visualizer: job finished", "status", st.Status)
		}()
		result, err = s.GeneratePlacement(jobCtx, room, p)
	})
	if err != nil {
		s.mu.Lock()
		delete(s.jobs, j.id)
		s.mu.Unlock()
		metrics.VisualizerInFlight.Dec()
		metrics.VisualizerJobs.WithLabelValues("rejected").Inc()
		log.Warn("visualizer: job rejected", "error", err)
		return JobState{}, fail(ErrBusy, MsgBusy, err)
	}

	go s.tickProgress(j)
	log.Info("visualizer: job started")
	return j.snapshot(), nil
}

func (s *VisualizerService) tickProgress(j *job) {
	t := time.NewTicker(s.tick)
	defer t.Stop()
	for {
		select {
		case <-j.done:
			return
		case <-t.C:
			j.advance(s.step())
		}
	}
}

func (s *VisualizerService) lookup(id, owner string) (*job, error) {
	s.mu.RLock()
	j, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok || j.owner != owner {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return j, nil
}

// Job returns the state of owner's job id.
func (s *VisualizerService) Job(id, owner string) (JobState, error) {
	j, err := s.lookup(id, owner)
	if err != nil {
		return JobState{}, err
	}
	return j.snapshot(), nil
}

// Subscribe returns a channel that receives a signal on every change of
// owner's job id. Call cancel when done.
func (s *VisualizerService) Subscribe(id, owner string) (JobState, <-chan struct{}, func(), error) {
	j, err := s.lookup(id, owner)
	if err != nil {
		return JobState{}, nil, nil, err
	}
	ch := make(chan struct{}, 1)
	j.mu.Lock()
	j.subs[ch] = struct{}{}
	j.mu.Unlock()

	cancel := func() {
		j.mu.Lock()
		delete(j.subs, ch)
		j.mu.Unlock()
	}
	return j.snapshot(), ch, cancel, nil
}

// Purge drops jobs that finished more than ttl ago and returns how many.
func (s *VisualizerService) Purge(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, j := range s.jobs {
		j.mu.Lock()
		expired := j.status != JobProcessing && j.finished.Before(cutoff)
		j.mu.Unlock()
		if expired {
			delete(s.jobs, id)
			n++
		}
	}
	return n
}

// InFlight returns the number of jobs still processing.
func (s *VisualizerService) InFlight() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, j := range s.jobs {
		if j.snapshot().Status == JobProcessing {
			n++
		}
	}
	return n
}
