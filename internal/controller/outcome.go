package controller

// Kind classifies the result of a translate action.
type Kind string

const (
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindFailure Kind = "failure"
)

const (
	MessageEmptyInput = "Please provide some text to translate in the left column."
	MessageFailure    = "Translation failed. Please check your network connection."
)

// Outcome is what the UI shows after a translate action.
type Outcome struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	// Text is the translation, set on success only.
	Text string `json:"text,omitempty"`
	// Detail is the raw provider error, shown with low prominence on failure.
	Detail string `json:"detail,omitempty"`
}

func Success(text, message string) Outcome {
	return Outcome{Kind: KindSuccess, Message: message, Text: text}
}

func Warning(message string) Outcome {
	return Outcome{Kind: KindWarning, Message: message}
}

func Failure(message, detail string) Outcome {
	return Outcome{Kind: KindFailure, Message: message, Detail: detail}
}

func (o Outcome) IsSuccess() bool { return o.Kind == KindSuccess }
func (o Outcome) IsWarning() bool { return o.Kind == KindWarning }
func (o Outcome) IsFailure() bool { return o.Kind == KindFailure }
