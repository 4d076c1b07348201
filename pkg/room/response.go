package room

// PayloadIn is a message sent by a websocket client
type PayloadIn struct {
	Action  string `json:"action"`
	Context string `json:"context,omitempty"`
}

// Response is a message sent to a websocket client
type Response struct {
	Key     string      `json:"key"`
	Value   string      `json:"value,omitempty"`
	Context string      `json:"context,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// OK returns an acknowledgement for the message sent in ctx
func OK(ctx string) *Response {
	return &Response{
		Key:     "ok",
		Context: ctx,
	}
}

func newErrorResponse(ctx string, err error) *Response {
	return &Response{
		Key:     "error",
		Value:   err.Error(),
		Context: ctx,
	}
}
