// Package livesync drives draft synchronisation for one page being edited:
// it debounces edits, posts the form, and applies only the newest response.
package livesync

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/printstudio/internal/content"
	"github.com/printstudio/internal/logger"
)

// DefaultDelay is the quiet period after the last edit before a sync is sent.
const DefaultDelay = 250 * time.Millisecond

// State of a controller.
type State int

const (
	Idle State = iota
	Pending
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Failed:
		return "error"
	}
	return "unknown"
}

// Result is what the sync endpoint answers with.
type Result struct {
	Page content.Document `json:"page"`
	Site content.Document `json:"site"`
}

// Transport sends one synchronisation request.
type Transport interface {
	Sync(ctx context.Context, page string, form content.Form) (Result, error)
}

// Controller owns the editing form of one page. All methods are safe for
// concurrent use.
type Controller struct {
	page      string
	transport Transport
	apply     func(Result)
	preview   func(content.Form)
	onState   func(State, error)
	delay     time.Duration
	timeout   time.Duration

	mu      sync.Mutex
	form    content.Form
	state   State
	timer   *time.Timer
	gen     uint64 // bumped for every timer; stale callbacks return early
	issued  uint64
	lastErr error
	closed  bool

	applyMu  sync.Mutex
	inflight sync.WaitGroup
}

// Option configures a Controller.
type Option func(*Controller)

// WithDelay overrides the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// WithPreview is called synchronously with the form after a structural edit,
// before the debounced sync is sent.
func WithPreview(fn func(content.Form)) Option {
	return func(c *Controller) { c.preview = fn }
}

// WithStateHook observes state transitions. err is set on Failed. The hook
// runs under the controller's lock and must not call back into it.
func WithStateHook(fn func(State, error)) Option {
	return func(c *Controller) { c.onState = fn }
}

// New returns a controller for page, seeded with the form currently shown in
// the editor. apply receives every accepted response.
func New(page string, form content.Form, transport Transport, apply func(Result), opts ...Option) *Controller {
	c := &Controller{
		page:      page,
		transport: transport,
		apply:     apply,
		delay:     DefaultDelay,
		timeout:   10 * time.Second,
		form:      copyForm(form),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set records an input event for one field.
func (c *Controller) Set(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form[name] = value
	c.scheduleLocked()
}

// Replace swaps the whole form, as when the editor is reloaded from a file.
func (c *Controller) Replace(form content.Form) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = copyForm(form)
	c.scheduleLocked()
}

// AddItem appends an entry to the collection whose flat prefix is given
// (e.g. "what_we_print_item") and returns its index.
func (c *Controller) AddItem(prefix string, fields map[string]string) int {
	c.mu.Lock()
	index := 0
	if indices := itemIndices(c.form, prefix); len(indices) > 0 {
		index = indices[len(indices)-1] + 1
	}
	itemPrefix := content.ItemPrefix(prefix, index)
	for name, value := range fields {
		c.form[content.FieldName(itemPrefix, name)] = value
	}
	snapshot := copyForm(c.form)
	c.scheduleLocked()
	c.mu.Unlock()

	c.runPreview(snapshot)
	return index
}

// RemoveItem drops one entry of a collection and renumbers the entries after
// it so indices stay contiguous.
func (c *Controller) RemoveItem(prefix string, index int) {
	c.mu.Lock()
	c.form = removeItem(c.form, prefix, index)
	snapshot := copyForm(c.form)
	c.scheduleLocked()
	c.mu.Unlock()

	c.runPreview(snapshot)
}

func (c *Controller) runPreview(form content.Form) {
	if c.preview != nil {
		c.preview(form)
	}
}

// Form returns a copy of the current form.
func (c *Controller) Form() content.Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyForm(c.form)
}

// State reports the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the last sync failure, cleared by the next accepted response.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Flush sends a pending sync now instead of waiting for the delay.
func (c *Controller) Flush() {
	c.mu.Lock()
	if c.timer == nil || !c.timer.Stop() {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	gen := c.gen
	c.mu.Unlock()
	c.fire(gen)
}

// Wait blocks until no request is in flight.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// Close stops the debounce timer and waits for in-flight requests. Edits
// after Close are recorded but never sent.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	c.inflight.Wait()
}

func (c *Controller) scheduleLocked() {
	if c.closed {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen
	c.timer = time.AfterFunc(c.delay, func() { c.fire(gen) })
	c.setStateLocked(Pending, nil)
}

// fire sends the form for the timer of generation gen. A timer that fired
// just before being replaced finds a newer generation and leaves the new
// timer alone.
func (c *Controller) fire(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.issued++
	seq := c.issued
	form := copyForm(c.form)
	c.inflight.Add(1)
	c.mu.Unlock()

	go c.send(seq, form)
}

func (c *Controller) send(seq uint64, form content.Form) {
	defer c.inflight.Done()

	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	res, err := c.transport.Sync(ctx, c.page, form)

	c.applyMu.Lock()
	defer c.applyMu.Unlock()

	c.mu.Lock()
	if seq != c.issued {
		c.mu.Unlock()
		logger.Debugf("[livesync] drop stale response %d for %s (latest %d)", seq, c.page, c.issued)
		return
	}
	if err != nil {
		c.lastErr = err
		c.setStateLocked(Failed, err)
		c.settleLocked()
		c.mu.Unlock()
		logger.Errorf("[livesync] sync %s failed: %v", c.page, err)
		return
	}
	c.lastErr = nil
	c.settleLocked()
	c.mu.Unlock()

	if c.apply != nil {
		c.apply(res)
	}
}

// settleLocked returns to idle unless another edit is already waiting.
func (c *Controller) settleLocked() {
	if c.timer != nil {
		c.setStateLocked(Pending, nil)
		return
	}
	c.setStateLocked(Idle, nil)
}

func (c *Controller) setStateLocked(s State, err error) {
	if c.state == s && err == nil {
		return
	}
	c.state = s
	if c.onState != nil {
		c.onState(s, err)
	}
}

func copyForm(form content.Form) content.Form {
	out := make(content.Form, len(form))
	for k, v := range form {
		out[k] = v
	}
	return out
}

// itemIndices lists the distinct entry indices present under prefix.
func itemIndices(form content.Form, prefix string) []int {
	seen := map[int]bool{}
	for name := range form {
		if index, _, ok := splitItemName(name, prefix); ok {
			seen[index] = true
		}
	}
	indices := make([]int, 0, len(seen))
	for index := range seen {
		indices = append(indices, index)
	}
	sort.Ints(indices)
	return indices
}

func splitItemName(name, prefix string) (int, string, bool) {
	rest, ok := strings.CutPrefix(name, prefix+"_")
	if !ok {
		return 0, "", false
	}
	digits, field, ok := strings.Cut(rest, "_")
	if !ok || digits == "" || field == "" {
		return 0, "", false
	}
	index, err := strconv.Atoi(digits)
	if err != nil || index < 0 {
		return 0, "", false
	}
	return index, field, true
}

func removeItem(form content.Form, prefix string, index int) content.Form {
	indices := itemIndices(form, prefix)
	renumber := make(map[int]int, len(indices))
	next := 0
	for _, i := range indices {
		if i == index {
			continue
		}
		renumber[i] = next
		next++
	}

	out := make(content.Form, len(form))
	for name, value := range form {
		i, field, ok := splitItemName(name, prefix)
		if !ok {
			out[name] = value
			continue
		}
		if to, keep := renumber[i]; keep {
			out[content.FieldName(content.ItemPrefix(prefix, to), field)] = value
		}
	}
	return out
}
