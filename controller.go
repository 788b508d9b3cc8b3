package sprited

import (
	"context"
	"image/color"
	"io/ioutil"
	"log"
	"time"

	"github.com/bodgit/sprited/editor"
	"github.com/bodgit/sprited/jres"
	"github.com/bodgit/sprited/literal"
	"github.com/bodgit/sprited/palette"
	"github.com/bodgit/sprited/transform"
	"github.com/pkg/errors"
)

// Defaults used by New
const (
	DefaultAutosaveInterval = 2 * time.Second
	DefaultSnapshotTimeout  = time.Second
)

// ErrClosed is returned when the controller is no longer running.
var ErrClosed = errors.New("sprited: controller closed")

// State is the state of the Controller.
type State int

// Controller states
const (
	Idle State = iota
	AwaitingEditorReady
	AwaitingSnapshotForTransform
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingEditorReady:
		return "awaiting editor ready"
	case AwaitingSnapshotForTransform:
		return "awaiting snapshot for transform"
	}
	return "unknown"
}

// Editor is the message channel to the sprite editor.
type Editor interface {
	Send(editor.Message) error
	Messages() <-chan editor.Message
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger, by default nothing is logged.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithPalette sets the palette used for previews.
func WithPalette(p color.Palette) Option {
	return func(c *Controller) {
		c.palette = p
	}
}

// WithAutosaveInterval sets how often a snapshot is requested from the
// editor.
func WithAutosaveInterval(d time.Duration) Option {
	return func(c *Controller) {
		c.autosaveInterval = d
	}
}

// WithSnapshotTimeout sets how long a transform waits for the editor to
// answer a snapshot request before using the current sprite.
func WithSnapshotTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.snapshotTimeout = d
	}
}

type pendingTransform struct {
	id    uint64
	op    transform.Op
	timer *time.Timer
	done  chan error
}

// Controller keeps the sprite in sync between the editor and the store.
//
// Everything below the channels is only touched by the goroutine calling
// Run; other goroutines reach it through the exported methods.
type Controller struct {
	editor           Editor
	store            Store
	logger           *log.Logger
	palette          color.Palette
	autosaveInterval time.Duration
	snapshotTimeout  time.Duration

	requests chan func()
	timeouts chan uint64
	quit     chan struct{}

	state   State
	item    *jres.Image
	nextID  uint64
	pending []*pendingTransform
}

// New returns a Controller for the editor e persisting to s. It does
// nothing until Run is called.
func New(e Editor, s Store, opts ...Option) *Controller {
	c := &Controller{
		editor:           e,
		store:            s,
		logger:           log.New(ioutil.Discard, "", 0),
		palette:          palette.Arcade,
		autosaveInterval: DefaultAutosaveInterval,
		snapshotTimeout:  DefaultSnapshotTimeout,
		requests:         make(chan func()),
		timeouts:         make(chan uint64),
		quit:             make(chan struct{}),
		item:             jres.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Run loads the sprite, initializes the editor and then services editor
// messages, autosaves and requests until ctx is cancelled. The sprite is
// always persisted before Run returns. Run must only be called once.
func (c *Controller) Run(ctx context.Context) error {
	c.start()
	defer c.stop()

	ticker := time.NewTicker(c.autosaveInterval)
	defer ticker.Stop()

	messages := c.editor.Messages()
	for {
		select {
		case m, ok := <-messages:
			if !ok {
				messages = nil
				continue
			}
			c.handleMessage(m)
		case <-ticker.C:
			c.autosave()
		case fn := <-c.requests:
			fn()
		case id := <-c.timeouts:
			c.snapshotTimedOut(id)
		case <-ctx.Done():
			return nil
		}
	}
}

// do runs fn on the Run goroutine and waits for it to finish.
func (c *Controller) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	select {
	case c.requests <- func() { fn(); close(done) }:
	case <-c.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	<-done
	return nil
}

// Transform requests a fresh snapshot from the editor, applies op to it
// and sends the result back to the editor. It returns once the transform
// has been applied.
func (c *Controller) Transform(ctx context.Context, op transform.Op) error {
	done := make(chan error, 1)
	if err := c.do(ctx, func() { c.beginTransform(op, done) }); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Record returns a copy of the current sprite record.
func (c *Controller) Record(ctx context.Context) (*jres.Image, error) {
	var item *jres.Image
	if err := c.do(ctx, func() { item = c.item.Clone() }); err != nil {
		return nil, err
	}
	return item, nil
}

// Literal returns the current sprite as a source literal.
func (c *Controller) Literal(ctx context.Context, f literal.Format) (string, error) {
	item, err := c.Record(ctx)
	if err != nil {
		return "", err
	}
	b, err := item.Bitmap()
	if err != nil {
		return "", err
	}
	return literal.Marshal(b, f), nil
}

// State returns the current state.
func (c *Controller) State(ctx context.Context) (State, error) {
	var s State
	if err := c.do(ctx, func() { s = c.state }); err != nil {
		return 0, err
	}
	return s, nil
}

func (c *Controller) start() {
	c.item = Load(c.store, c.logger)
	c.state = AwaitingEditorReady
	c.send(editor.Initialize(c.item.Data))
}

func (c *Controller) stop() {
	close(c.quit)
	for _, p := range c.pending {
		p.timer.Stop()
		p.done <- ErrClosed
	}
	c.pending = nil
	c.persist()
}

func (c *Controller) send(m editor.Message) error {
	err := c.editor.Send(m)
	switch {
	case errors.Is(err, editor.ErrChannelUnavailable):
		c.logger.Printf("Editor not connected, dropped %q message\n", m.Type)
	case err != nil:
		c.logger.Printf("Sending %q message failed: %v\n", m.Type, err)
	}
	return err
}

func (c *Controller) persist() {
	if err := Save(c.store, c.item); err != nil {
		c.logger.Printf("Storage unavailable: %v\n", err)
	}
}

// replace swaps in a new sprite record and persists it.
func (c *Controller) replace(item *jres.Image) {
	c.item = item
	c.persist()
}

func (c *Controller) handleMessage(m editor.Message) {
	switch m.Type {
	case editor.TypeReady:
		c.send(editor.Initialize(c.item.Data))
		if len(c.pending) == 0 {
			c.state = Idle
		}
	case editor.TypeUpdate:
		item, err := jres.FromDataString(m.Message, c.palette)
		if err != nil {
			c.logger.Printf("Editor sent bad sprite, using default sprite: %v\n", err)
			item = jres.Default()
		}
		c.replace(item)

		if p := c.claim(m.ID); p != nil {
			c.applyTransform(p)
		}
	default:
		c.logger.Printf("Ignoring %q message from editor\n", m.Type)
	}
}

func (c *Controller) autosave() {
	if len(c.pending) > 0 {
		return
	}
	c.nextID++
	c.send(editor.RequestUpdate(c.nextID))
}

func (c *Controller) beginTransform(op transform.Op, done chan error) {
	c.nextID++
	p := &pendingTransform{
		id:   c.nextID,
		op:   op,
		done: done,
	}

	if err := c.send(editor.RequestUpdate(p.id)); err != nil {
		// No snapshot is coming so the current sprite is the latest
		c.applyTransform(p)
		return
	}

	id := p.id
	p.timer = time.AfterFunc(c.snapshotTimeout, func() {
		select {
		case c.timeouts <- id:
		case <-c.quit:
		}
	})
	c.pending = append(c.pending, p)
	c.state = AwaitingSnapshotForTransform
}

// claim removes and returns the pending transform answered by a reply with
// the given id. A reply without an id answers the oldest one.
func (c *Controller) claim(id uint64) *pendingTransform {
	for i, p := range c.pending {
		if id == 0 || p.id == id {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return p
		}
	}
	return nil
}

func (c *Controller) snapshotTimedOut(id uint64) {
	for i, p := range c.pending {
		if p.id == id {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			c.logger.Printf("No snapshot for request %d after %s, using current sprite\n", id, c.snapshotTimeout)
			c.applyTransform(p)
			return
		}
	}
}

func (c *Controller) applyTransform(p *pendingTransform) {
	if p.timer != nil {
		p.timer.Stop()
	}
	if len(c.pending) == 0 && c.state == AwaitingSnapshotForTransform {
		c.state = Idle
	}

	b, err := c.item.Bitmap()
	if err != nil {
		p.done <- err
		return
	}

	item, err := jres.NewImage(p.op.Apply(b), c.palette)
	if err != nil {
		p.done <- err
		return
	}

	c.replace(item)
	c.send(editor.Initialize(item.Data))
	p.done <- nil
}
