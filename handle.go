package gublas

// Handle is the opaque state every BLAS entry point operates through. It
// binds an execution context, the stream the two reduction kernels are
// ordered on, and the workspace size-query state.
//
// A Handle is not safe for concurrent use by multiple goroutines; use one
// handle (and therefore one stream and one workspace) per concurrent caller.
type Handle struct {
	ctx    *Context
	stream *Stream

	sizeQuery bool
	queried   int
}

// NewHandle creates a handle bound to the default context with its own
// stream.
func NewHandle() *Handle {
	return &Handle{
		ctx:    defaultContext,
		stream: defaultContext.CreateStream(),
	}
}

// Stream returns the handle's execution stream.
func (h *Handle) Stream() *Stream {
	return h.stream
}

// Synchronize blocks until every operation issued through the handle has
// completed, and returns the first execution fault captured on the stream.
// Results of asynchronous reductions are defined only after Synchronize
// returns nil.
func (h *Handle) Synchronize() error {
	if h == nil {
		return NewInvalidHandleError("Synchronize")
	}
	return h.stream.Synchronize()
}

// Destroy waits for outstanding work, shuts down the handle's stream
// worker, and releases the handle. The handle must not be used afterwards.
func (h *Handle) Destroy() error {
	if h == nil || h.ctx == nil {
		return NewInvalidHandleError("Destroy")
	}
	err := h.stream.Synchronize()
	h.ctx.destroyStream(h.stream)
	h.ctx = nil
	return err
}

// StartSizeQuery switches the handle into workspace size-query mode. While
// in this mode, entry points record the scratch bytes they would need and
// perform no computation: no kernels are dispatched and no user buffer is
// touched. Repeated calls with identical arguments record identical sizes.
func (h *Handle) StartSizeQuery() error {
	if h == nil || h.ctx == nil {
		return NewInvalidHandleError("StartSizeQuery")
	}
	if h.sizeQuery {
		return NewInvalidArgError("StartSizeQuery", "size query already in progress")
	}
	h.sizeQuery = true
	h.queried = 0
	return nil
}

// StopSizeQuery leaves size-query mode and returns the largest scratch byte
// count recorded since StartSizeQuery.
func (h *Handle) StopSizeQuery() (int, error) {
	if h == nil || h.ctx == nil {
		return 0, NewInvalidHandleError("StopSizeQuery")
	}
	if !h.sizeQuery {
		return 0, NewInvalidArgError("StopSizeQuery", "no size query in progress")
	}
	h.sizeQuery = false
	return h.queried, nil
}

// noteQuerySize records a required workspace size during a size query.
// The maximum over all bracketed calls is retained.
func (h *Handle) noteQuerySize(bytes int) {
	if bytes > h.queried {
		h.queried = bytes
	}
}

// valid reports whether the handle can service calls.
func (h *Handle) valid() bool {
	return h != nil && h.ctx != nil
}
