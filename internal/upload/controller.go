package upload

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/jonathan/resume-upload/internal/types"
	"golang.org/x/sync/semaphore"
)

// Uploader performs the network side of an upload. *Client implements it.
type Uploader interface {
	Upload(ctx context.Context, file *types.SelectedFile) (*Response, error)
}

// Options configures a Controller.
type Options struct {
	Flow   Flow
	Logger *log.Logger
}

// Controller owns the selected file and the result of the last upload.
//
// Submit calls are serialized: while one is in flight, further calls return
// ErrUploadInFlight without sending anything. A response that arrives after
// SelectFile or Reset was called is dropped.
type Controller struct {
	uploader Uploader
	flow     Flow
	logger   *log.Logger
	inFlight *semaphore.Weighted

	mu         sync.Mutex
	selected   *types.SelectedFile
	result     types.UploadResult
	generation uint64
}

// NewController creates a controller in the Empty state.
func NewController(uploader Uploader, opts Options) *Controller {
	flow := opts.Flow
	if flow == "" {
		flow = FlowRich
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Controller{
		uploader: uploader,
		flow:     flow,
		logger:   logger,
		inFlight: semaphore.NewWeighted(1),
		result:   types.EmptyResult(),
	}
}

// Flow returns the response shape this controller expects.
func (c *Controller) Flow() Flow {
	return c.flow
}

// SelectFile replaces the selection and resets the result to Empty.
// A nil file clears the selection.
func (c *Controller) SelectFile(file *types.SelectedFile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.selected = file
	c.result = types.EmptyResult()
	c.generation++
}

// Reset clears both the selection and the result.
func (c *Controller) Reset() {
	c.SelectFile(nil)
}

// Selected returns the current selection, or nil.
func (c *Controller) Selected() *types.SelectedFile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Result returns the current display state.
func (c *Controller) Result() types.UploadResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Submit uploads the selected file and stores the classified outcome.
//
// The returned error is non-nil only for local failures: *ValidationError when
// nothing is selected, ErrUploadInFlight when another Submit is running.
// Server-flagged and transport failures are reported through the Error variant
// of the returned result.
func (c *Controller) Submit(ctx context.Context) (types.UploadResult, error) {
	if !c.inFlight.TryAcquire(1) {
		return c.Result(), ErrUploadInFlight
	}
	defer c.inFlight.Release(1)

	c.mu.Lock()
	file := c.selected
	generation := c.generation
	if file == nil {
		c.result = types.ErrorResult(MessageNoFile)
		result := c.result
		c.mu.Unlock()
		return result, &ValidationError{Field: FileField, Message: "no file selected"}
	}
	c.mu.Unlock()

	result := c.classify(c.uploader.Upload(ctx, file))

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != generation {
		c.logger.Printf("Discarding upload response for %s: selection changed while in flight", file.Name)
		return c.result, nil
	}
	c.result = result
	return result, nil
}

// classify turns the outcome of an upload into a display state.
func (c *Controller) classify(resp *Response, err error) types.UploadResult {
	requestID := ""
	if resp != nil {
		requestID = resp.RequestID
	}

	if err != nil {
		var transportErr *TransportError
		if errors.As(err, &transportErr) && resp != nil && len(resp.Body) > 0 {
			c.logger.Printf("Error uploading file (request %s): %v: body: %s", requestID, err, truncate(resp.Body, 512))
		} else {
			c.logger.Printf("Error uploading file (request %s): %v", requestID, err)
		}
		return types.ErrorResult(c.flow.FailureMessage())
	}

	p, err := decodePayload(resp.Body)
	if err != nil {
		c.logger.Printf("Error uploading file (request %s): %v", requestID, err)
		return types.ErrorResult(c.flow.FailureMessage())
	}

	if serverErr := p.serverError(); serverErr != nil {
		c.logger.Printf("Upload rejected by parsing service (request %s): %v", requestID, serverErr)
		return types.ErrorResult(serverErr.Message)
	}

	if c.flow == FlowMinimal {
		return types.AcknowledgedResult(p.acknowledgement())
	}
	return types.SuccessResult(p.resume())
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
