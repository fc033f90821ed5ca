package routekit

// execution is the per-request chain state machine. Stages run in order by
// index; the continuation handed to each stage dispatches the next one. The
// last response produced by any stage is recorded here, so an outer stage
// that calls next and returns nothing leaves the downstream response in
// place, while returning its own replaces it.
type execution struct {
	ctx      *Context
	stages   []Handler
	response *Response
}

func (e *execution) run() error {
	return e.dispatch(0)
}

func (e *execution) dispatch(i int) error {
	if i >= len(e.stages) {
		return nil
	}
	next := func() (*Response, error) {
		if err := e.dispatch(i + 1); err != nil {
			return nil, err
		}
		return e.response, nil
	}
	resp, err := e.stages[i](e.ctx, next)
	if err != nil {
		return err
	}
	if resp != nil {
		e.response = resp
	}
	return nil
}

// noopNext is the continuation handed to a handler invoked outside the
// generic chain machinery (the single-handler fast path).
func noopNext() (*Response, error) {
	return nil, nil
}
