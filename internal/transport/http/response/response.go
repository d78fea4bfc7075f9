package response

// Body is the JSON envelope for status replies. Resource payloads ride next
// to Message in purpose-built structs such as ServiceResult.
type Body struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func Message(msg string) Body { return Body{Message: msg} }

// Fail builds an error body. detail is only included when expose is set.
func Fail(msg string, detail error, expose bool) Body {
	b := Body{Message: msg}
	if expose && detail != nil {
		b.Error = detail.Error()
	}
	return b
}
