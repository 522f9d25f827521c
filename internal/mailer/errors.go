package mailer

import "errors"

var (
	ErrUnsupportedDriver  = errors.New("unsupported mail driver")
	ErrRenderingTemplate  = errors.New("error rendering mail template")
	ErrSendingMail        = errors.New("error sending mail")
	ErrRelayRejected      = errors.New("mail relay rejected the message")
	ErrInvalidRecipient   = errors.New("invalid mail address")
	ErrRetryLimitExceeded = errors.New("mail delivery retry limit exceeded")

	// ErrTemporaryFailure marks failures worth another attempt, such as an
	// unreachable relay or a 4xx SMTP reply.
	ErrTemporaryFailure = errors.New("temporary mail delivery failure")
)
